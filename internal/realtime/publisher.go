package realtime

import (
	"log"

	"classroom-live-service/internal/domain"
)

// Emitter delivers one named event to every member of a room. The Gateway is
// the in-process implementation; a broker-backed one lives in broker.go.
// Exactly one backing is chosen per deployment.
type Emitter interface {
	Emit(room domain.RoomKey, event string, payload any)
}

// Publisher exposes one named operation per business event. Callers sit in
// request-handling code paths, so nothing here ever returns an error: a
// failed or impossible delivery must not fail the business mutation that
// triggered it.
type Publisher struct {
	emitter Emitter
}

// NewPublisher wraps an emitter. A nil emitter yields a degraded-mode
// publisher whose operations warn and do nothing, for the window during
// startup/shutdown when no gateway exists.
func NewPublisher(emitter Emitter) *Publisher {
	return &Publisher{emitter: emitter}
}

func (p *Publisher) emit(room domain.RoomKey, event string, payload any) {
	if p == nil || p.emitter == nil {
		log.Printf("publisher: no gateway active, dropping %s for %s", event, room)
		return
	}
	p.emitter.Emit(room, event, payload)
}

func (p *Publisher) MaterialAdded(m domain.Material) {
	p.emit(domain.MaterialsRoom(m.ClassroomID), domain.EventMaterialAdded, m)
}

func (p *Publisher) MaterialDeleted(classroomID, materialID string) {
	p.emit(domain.MaterialsRoom(classroomID), domain.EventMaterialDeleted, domain.MaterialDeletedEvent{
		ClassroomID: classroomID,
		MaterialID:  materialID,
	})
}

func (p *Publisher) AnnouncementAdded(a domain.Announcement) {
	p.emit(domain.AnnouncementsRoom(a.ClassroomID), domain.EventAnnouncementAdded, a)
}

func (p *Publisher) AnnouncementUpdated(a domain.Announcement) {
	p.emit(domain.AnnouncementsRoom(a.ClassroomID), domain.EventAnnouncementUpdated, a)
}

func (p *Publisher) AnnouncementDeleted(classroomID, announcementID string) {
	p.emit(domain.AnnouncementsRoom(classroomID), domain.EventAnnouncementDeleted, domain.AnnouncementDeletedEvent{
		ClassroomID:    classroomID,
		AnnouncementID: announcementID,
	})
}

func (p *Publisher) LeaderboardUpdated(testID string, lb domain.Leaderboard) {
	p.emit(domain.LeaderboardRoom(testID), domain.EventLeaderboardUpdate, lb)
}

func (p *Publisher) TestEnded(testID, message, redirectURL string) {
	p.emit(domain.LiveTestRoom(testID), domain.EventTestEnded, domain.TestEndedEvent{
		TestID:      testID,
		Message:     message,
		RedirectURL: redirectURL,
	})
}

func (p *Publisher) ParticipantJoined(quizID, userID, displayName string) {
	p.emit(domain.QuickQuizRoom(quizID), domain.EventParticipantJoined, domain.ParticipantJoinedEvent{
		QuizID:      quizID,
		UserID:      userID,
		DisplayName: displayName,
	})
}

func (p *Publisher) QuizStarted(quizID string) {
	p.emit(domain.QuickQuizRoom(quizID), domain.EventQuizStarted, domain.QuizLifecycleEvent{QuizID: quizID})
}

func (p *Publisher) QuizEnded(quizID string) {
	p.emit(domain.QuickQuizRoom(quizID), domain.EventQuizEnded, domain.QuizLifecycleEvent{QuizID: quizID})
}

func (p *Publisher) NotifyUser(n domain.Notification) {
	p.emit(domain.UserRoom(n.UserID), domain.EventNewNotification, n)
}
