package realtime

import (
	"log"
	"sync"

	"classroom-live-service/internal/domain"
	"github.com/google/uuid"
)

// Sender is the write half of one client connection. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Sender interface {
	WriteJSON(v any) error
	Close() error
}

// Envelope is the outbound wire format: an event name tag plus its payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Session is one live client connection. The user association is set via an
// explicit identify message, never implied by the transport.
type Session struct {
	ID string

	mu     sync.Mutex
	userID string

	send chan Envelope
	done chan struct{}
	once sync.Once
}

// UserID returns the identity last set by an identify message, if any.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) setUserID(id string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.userID
	s.userID = id
	return previous
}

// Gateway owns session lifecycle and the server-to-client push primitive.
// One gateway per process, constructed at startup and injected wherever
// publishing is needed.
type Gateway struct {
	registry *Registry

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewGateway(registry *Registry) *Gateway {
	return &Gateway{
		registry: registry,
		sessions: make(map[string]*Session),
	}
}

// Connect registers a new session with no room memberships and starts its
// writer pump. The pump is the only goroutine writing to the sender, which
// keeps gorilla's single-writer requirement satisfied.
func (g *Gateway) Connect(sender Sender) *Session {
	sess := &Session{
		ID:   uuid.NewString(),
		send: make(chan Envelope, 32),
		done: make(chan struct{}),
	}

	g.mu.Lock()
	g.sessions[sess.ID] = sess
	g.mu.Unlock()

	go g.writePump(sess, sender)
	return sess
}

func (g *Gateway) writePump(sess *Session, sender Sender) {
	defer sender.Close()
	for {
		select {
		case env := <-sess.send:
			if err := sender.WriteJSON(env); err != nil {
				// A dead socket is indistinguishable from a disconnect.
				log.Printf("gateway: write to session %s failed: %v", sess.ID, err)
				g.Disconnect(sess, "write error")
				return
			}
		case <-sess.done:
			return
		}
	}
}

// Disconnect tears the session down and removes it from every room.
// Safe to call more than once; only the first call takes effect.
func (g *Gateway) Disconnect(sess *Session, reason string) {
	sess.once.Do(func() {
		g.mu.Lock()
		delete(g.sessions, sess.ID)
		g.mu.Unlock()

		g.registry.DropSession(sess.ID)
		close(sess.done)
		log.Printf("gateway: session %s disconnected: %s", sess.ID, reason)
	})
}

// HandleControl applies one inbound control message. Malformed or unknown
// messages are logged and dropped; the connection stays open.
func (g *Gateway) HandleControl(sess *Session, msgType, id string) {
	if id == "" {
		log.Printf("gateway: session %s sent %q without an id, dropping", sess.ID, msgType)
		return
	}

	switch msgType {
	case "identify":
		if prev := sess.setUserID(id); prev != "" && prev != id {
			g.registry.Leave(sess.ID, domain.UserRoom(prev))
		}
		g.registry.Join(sess.ID, domain.UserRoom(id))
	case "join-classroom":
		g.registry.Join(sess.ID, domain.MaterialsRoom(id))
		g.registry.Join(sess.ID, domain.AnnouncementsRoom(id))
	case "leave-classroom":
		g.registry.Leave(sess.ID, domain.MaterialsRoom(id))
		g.registry.Leave(sess.ID, domain.AnnouncementsRoom(id))
	case "join-live-test":
		g.registry.Join(sess.ID, domain.LiveTestRoom(id))
		g.registry.Join(sess.ID, domain.LeaderboardRoom(id))
	case "leave-live-test":
		g.registry.Leave(sess.ID, domain.LiveTestRoom(id))
		g.registry.Leave(sess.ID, domain.LeaderboardRoom(id))
	case "join-quick-quiz":
		g.registry.Join(sess.ID, domain.QuickQuizRoom(id))
	case "leave-quick-quiz":
		g.registry.Leave(sess.ID, domain.QuickQuizRoom(id))
	case "subscribe-materials":
		g.registry.Join(sess.ID, domain.MaterialsRoom(id))
	case "unsubscribe-materials":
		g.registry.Leave(sess.ID, domain.MaterialsRoom(id))
	case "subscribe-announcements":
		g.registry.Join(sess.ID, domain.AnnouncementsRoom(id))
	case "unsubscribe-announcements":
		g.registry.Leave(sess.ID, domain.AnnouncementsRoom(id))
	default:
		log.Printf("gateway: session %s sent unknown control message %q, dropping", sess.ID, msgType)
	}
}

// Push delivers one event to one session, best effort. A missing session is
// a silent no-op since disconnects race with sends. A full send buffer drops
// the event rather than blocking the caller.
func (g *Gateway) Push(sessionID, event string, payload any) {
	g.mu.RLock()
	sess, ok := g.sessions[sessionID]
	g.mu.RUnlock()
	if !ok {
		return
	}

	env := Envelope{Type: event, Payload: payload}
	select {
	case sess.send <- env:
	case <-sess.done:
	default:
		log.Printf("gateway: session %s send buffer full, dropping %s", sessionID, event)
	}
}

// Emit fans one event out to every current member of a room. Failures to
// deliver to an individual session never affect the others.
func (g *Gateway) Emit(room domain.RoomKey, event string, payload any) {
	for _, sessionID := range g.registry.MembersOf(room) {
		g.Push(sessionID, event, payload)
	}
}
