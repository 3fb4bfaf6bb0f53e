package app

import (
	"context"
	"log"

	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/realtime"
)

// ContentRepository loads test content (from cache/backing store).
type ContentRepository interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// SubmissionStore persists answer submissions before any real-time work
// happens; delivery is a side channel layered on already-durable state.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, testID, userID string, sub domain.AnswerSubmission, awarded int) error
}

// PresenceMarker tracks which tests are live. Best effort; implementations
// must not fail the caller.
type PresenceMarker interface {
	Mark(ctx context.Context, testID string)
	Clear(ctx context.Context, testID string)
}

// NopPresence is the default PresenceMarker when no backing store is wired.
type NopPresence struct{}

func (NopPresence) Mark(context.Context, string)  {}
func (NopPresence) Clear(context.Context, string) {}

// LiveTestService drives the live-test and quick-quiz use cases: joins,
// answer submissions, and lifecycle events.
type LiveTestService struct {
	content  ContentRepository
	subs     SubmissionStore
	board    *LeaderboardAggregator
	pub      *realtime.Publisher
	presence PresenceMarker
}

func NewLiveTestService(content ContentRepository, subs SubmissionStore, board *LeaderboardAggregator, pub *realtime.Publisher, presence PresenceMarker) *LiveTestService {
	if presence == nil {
		presence = NopPresence{}
	}
	return &LiveTestService{content: content, subs: subs, board: board, pub: pub, presence: presence}
}

// Join registers a participant in a live test. Unknown tests are rejected.
func (s *LiveTestService) Join(ctx context.Context, testID, userID, displayName string) (domain.Leaderboard, error) {
	if _, err := s.content.GetTest(ctx, testID); err != nil {
		return domain.Leaderboard{}, err
	}
	s.presence.Mark(ctx, testID)
	return s.board.Join(testID, userID, displayName), nil
}

// SubmitAnswer scores one answer, persists the submission, and updates the
// leaderboard. Real-time delivery failures never surface here.
func (s *LiveTestService) SubmitAnswer(ctx context.Context, testID, userID, displayName string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	test, err := s.content.GetTest(ctx, testID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	correct, points, err := scoreSubmission(test, sub)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	awarded := 0
	if correct {
		awarded = points
	}

	if err := s.subs.SaveSubmission(ctx, testID, userID, sub, awarded); err != nil {
		return domain.AnswerResult{}, err
	}

	s.board.AddPoints(testID, userID, displayName, awarded)
	return domain.AnswerResult{
		QuestionID: sub.QuestionID,
		Correct:    correct,
		Awarded:    awarded,
		TotalScore: s.board.Score(testID, userID),
	}, nil
}

// EndTest broadcasts the end of a test and discards its scoreboard.
func (s *LiveTestService) EndTest(ctx context.Context, testID, message, redirectURL string) {
	s.pub.TestEnded(testID, message, redirectURL)
	s.board.Drop(testID)
	s.presence.Clear(ctx, testID)
	log.Printf("live-test %s ended", testID)
}

// JoinQuickQuiz announces a participant to everyone in the quiz room.
func (s *LiveTestService) JoinQuickQuiz(_ context.Context, quizID, userID, displayName string) {
	s.pub.ParticipantJoined(quizID, userID, displayName)
}

// StartQuickQuiz broadcasts the start signal to the quiz room.
func (s *LiveTestService) StartQuickQuiz(ctx context.Context, quizID string) {
	s.presence.Mark(ctx, quizID)
	s.pub.QuizStarted(quizID)
}

// EndQuickQuiz broadcasts the end signal to the quiz room.
func (s *LiveTestService) EndQuickQuiz(ctx context.Context, quizID string) {
	s.pub.QuizEnded(quizID)
	s.presence.Clear(ctx, quizID)
}

// scoreSubmission validates the answer against test content and returns
// (correct, points).
func scoreSubmission(test domain.Test, sub domain.AnswerSubmission) (bool, int, error) {
	var question *domain.Question
	for i := range test.Questions {
		if test.Questions[i].ID == sub.QuestionID {
			question = &test.Questions[i]
			break
		}
	}
	if question == nil {
		return false, 0, domain.ErrQuestionNotFound
	}

	var selected *domain.Option
	for i := range question.Options {
		if question.Options[i].ID == sub.OptionID {
			selected = &question.Options[i]
			break
		}
	}
	if selected == nil {
		return false, 0, domain.ErrOptionNotFound
	}

	points := question.Points
	if points == 0 {
		points = 1
	}
	if selected.Correct {
		return true, points, nil
	}
	return false, 0, nil
}
