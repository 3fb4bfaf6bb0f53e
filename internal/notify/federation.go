package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"classroom-live-service/internal/domain"
)

// Card is the message shape the federation accepts.
type Card struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Link  string `json:"link,omitempty"`
}

// Client posts cards to the third-party chat/calendar federation. Credentials
// are assumed valid; token refresh is the federation's concern.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// PostCard delivers one card to a federation channel.
func (c *Client) PostCard(ctx context.Context, channelID string, card Card) error {
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	url := c.baseURL + "/channels/" + channelID + "/cards"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("federation returned %s", resp.Status)
	}
	return nil
}

// AnnouncementPosted implements app.Federation: each classroom maps to the
// federation channel of the same id.
func (c *Client) AnnouncementPosted(ctx context.Context, classroomID string, a domain.Announcement) error {
	return c.PostCard(ctx, classroomID, Card{Title: a.Title, Text: a.Body})
}
