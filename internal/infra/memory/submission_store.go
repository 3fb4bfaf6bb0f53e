package memory

import (
	"context"
	"sync"
	"time"

	"classroom-live-service/internal/domain"
)

// SubmissionRecord is one persisted answer submission.
type SubmissionRecord struct {
	TestID     string
	UserID     string
	QuestionID string
	OptionID   string
	Awarded    int
	CreatedAt  time.Time
}

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
type SubmissionStore struct {
	mu      sync.Mutex
	records []SubmissionRecord
	clock   func() time.Time
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{clock: time.Now}
}

func (s *SubmissionStore) SaveSubmission(_ context.Context, testID, userID string, sub domain.AnswerSubmission, awarded int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, SubmissionRecord{
		TestID:     testID,
		UserID:     userID,
		QuestionID: sub.QuestionID,
		OptionID:   sub.OptionID,
		Awarded:    awarded,
		CreatedAt:  s.clock(),
	})
	return nil
}

// ByTest returns the stored submissions for one test, in insertion order.
func (s *SubmissionStore) ByTest(testID string) []SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SubmissionRecord, 0)
	for _, r := range s.records {
		if r.TestID == testID {
			out = append(out, r)
		}
	}
	return out
}
