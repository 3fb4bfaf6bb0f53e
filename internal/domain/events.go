package domain

// Event names on the wire. Each name pairs with exactly one payload type
// below so handlers can switch on the tag instead of probing untyped maps.
const (
	EventMaterialAdded       = "material-added"
	EventMaterialDeleted     = "material-deleted"
	EventAnnouncementAdded   = "announcement-added"
	EventAnnouncementUpdated = "announcement-updated"
	EventAnnouncementDeleted = "announcement-deleted"
	EventLeaderboardUpdate   = "update"
	EventTestEnded           = "test-ended"
	EventParticipantJoined   = "participant-joined"
	EventQuizStarted         = "quiz-started"
	EventQuizEnded           = "quiz-ended"
	EventNewNotification     = "new-notification"
)

// MaterialDeletedEvent carries the id of a removed material.
type MaterialDeletedEvent struct {
	ClassroomID string `json:"classroomId"`
	MaterialID  string `json:"materialId"`
}

// AnnouncementDeletedEvent carries the id of a removed announcement.
type AnnouncementDeletedEvent struct {
	ClassroomID    string `json:"classroomId"`
	AnnouncementID string `json:"announcementId"`
}

// TestEndedEvent tells live-test members the test is over and where to go next.
type TestEndedEvent struct {
	TestID      string `json:"testId"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// ParticipantJoinedEvent announces a new quick-quiz participant to the room.
type ParticipantJoinedEvent struct {
	QuizID      string `json:"quizId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// QuizLifecycleEvent marks a quick quiz starting or ending.
type QuizLifecycleEvent struct {
	QuizID string `json:"quizId"`
}
