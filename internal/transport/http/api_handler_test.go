package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/auth"
	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/infra/memory"
	"classroom-live-service/internal/realtime"
)

func newAPIServer(t *testing.T) (*httptest.Server, *auth.Verifier) {
	t.Helper()
	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry)
	publisher := realtime.NewPublisher(gateway)

	content := memory.NewContentRepository(memory.NewStaticContentLoader(map[string]domain.Test{
		"test-1": {
			ID: "test-1",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "o1", Text: "3", Correct: false},
						{ID: "o2", Text: "4", Correct: true},
					},
					Points: 1,
				},
			},
		},
	}), time.Minute)

	board := app.NewLeaderboardAggregator(publisher)
	tests := app.NewLiveTestService(content, memory.NewSubmissionStore(), board, publisher, nil)
	classrooms := app.NewClassroomService(memory.NewClassroomStore(), publisher, nil)
	notifications := app.NewNotificationService(publisher)
	verifier := auth.NewVerifier("test-secret")

	mux := http.NewServeMux()
	NewAPIHandler(tests, classrooms, notifications, verifier).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, verifier
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	server, _ := newAPIServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/tests/test-1/participants", "", map[string]string{"displayName": "Alice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestJoinAndSubmitFlow(t *testing.T) {
	server, verifier := newAPIServer(t)
	token, err := verifier.Issue("u1", "student", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/tests/test-1/participants", token, map[string]string{"displayName": "Alice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", resp.StatusCode)
	}
	var lb domain.Leaderboard
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].UserID != "u1" {
		t.Fatalf("unexpected leaderboard %+v", lb)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/tests/test-1/submissions", token, map[string]string{
		"displayName": "Alice",
		"questionId":  "q1",
		"optionId":    "o2",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	var result domain.AnswerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Correct || result.Awarded != 1 || result.TotalScore != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestJoinUnknownTestReturns404(t *testing.T) {
	server, verifier := newAPIServer(t)
	token, _ := verifier.Issue("u1", "student", time.Minute)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/tests/test-404/participants", token, map[string]string{"displayName": "Alice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEndTestRequiresTeacherRole(t *testing.T) {
	server, verifier := newAPIServer(t)
	studentToken, _ := verifier.Issue("u1", "student", time.Minute)
	teacherToken, _ := verifier.Issue("t1", "teacher", time.Minute)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/tests/test-1/end", studentToken, map[string]string{"message": "done"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/tests/test-1/end", teacherToken, map[string]string{"message": "done"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for teacher, got %d", resp.StatusCode)
	}
}

func TestAnnouncementCRUD(t *testing.T) {
	server, verifier := newAPIServer(t)
	token, _ := verifier.Issue("t1", "teacher", time.Minute)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/classrooms/c1/announcements", token, map[string]string{"title": "Exam", "body": "Friday"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}
	var a domain.Announcement
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatalf("decode announcement: %v", err)
	}

	resp = doJSON(t, http.MethodPut, server.URL+"/api/classrooms/c1/announcements/"+a.ID, token, map[string]string{"title": "Exam moved", "body": "Monday"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/classrooms/c1/announcements/"+a.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/classrooms/c1/announcements/"+a.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestSendNotification(t *testing.T) {
	server, verifier := newAPIServer(t)
	token, _ := verifier.Issue("t1", "teacher", time.Minute)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/notifications", token, map[string]string{
		"userId": "u1",
		"title":  "Graded",
		"body":   "Your quiz was graded",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var n domain.Notification
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if n.UserID != "u1" || n.ID == "" {
		t.Fatalf("unexpected notification %+v", n)
	}
}
