package app

import (
	"context"
	"log"
	"time"

	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/realtime"
	"github.com/google/uuid"
)

// ClassroomStore abstracts how classroom documents are stored (in-memory,
// Postgres, etc).
type ClassroomStore interface {
	AddAnnouncement(ctx context.Context, a domain.Announcement) error
	UpdateAnnouncement(ctx context.Context, a domain.Announcement) error
	DeleteAnnouncement(ctx context.Context, classroomID, announcementID string) error
	ListAnnouncements(ctx context.Context, classroomID string) ([]domain.Announcement, error)
	AddMaterial(ctx context.Context, m domain.Material) error
	DeleteMaterial(ctx context.Context, classroomID, materialID string) error
	ListMaterials(ctx context.Context, classroomID string) ([]domain.Material, error)
}

// Federation posts classroom updates to the third-party chat/calendar
// integration. Opaque to this service; failures are logged and swallowed.
type Federation interface {
	AnnouncementPosted(ctx context.Context, classroomID string, a domain.Announcement) error
}

// ClassroomService owns announcement and material mutations: persist first,
// then broadcast, then best-effort federation.
type ClassroomService struct {
	store      ClassroomStore
	pub        *realtime.Publisher
	federation Federation
	now        func() time.Time
	newID      func() string
}

func NewClassroomService(store ClassroomStore, pub *realtime.Publisher, federation Federation) *ClassroomService {
	return &ClassroomService{
		store:      store,
		pub:        pub,
		federation: federation,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// NewClassroomServiceWithClock is test-only for deterministic ids/timestamps.
func NewClassroomServiceWithClock(store ClassroomStore, pub *realtime.Publisher, federation Federation, now func() time.Time, newID func() string) *ClassroomService {
	return &ClassroomService{store: store, pub: pub, federation: federation, now: now, newID: newID}
}

func (s *ClassroomService) AddAnnouncement(ctx context.Context, classroomID, authorID, title, body string) (domain.Announcement, error) {
	now := s.now()
	a := domain.Announcement{
		ID:          s.newID(),
		ClassroomID: classroomID,
		AuthorID:    authorID,
		Title:       title,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddAnnouncement(ctx, a); err != nil {
		return domain.Announcement{}, err
	}
	s.pub.AnnouncementAdded(a)
	s.postToFederation(ctx, classroomID, a)
	return a, nil
}

func (s *ClassroomService) UpdateAnnouncement(ctx context.Context, classroomID, announcementID, title, body string) (domain.Announcement, error) {
	a := domain.Announcement{
		ID:          announcementID,
		ClassroomID: classroomID,
		Title:       title,
		Body:        body,
		UpdatedAt:   s.now(),
	}
	if err := s.store.UpdateAnnouncement(ctx, a); err != nil {
		return domain.Announcement{}, err
	}
	s.pub.AnnouncementUpdated(a)
	return a, nil
}

func (s *ClassroomService) DeleteAnnouncement(ctx context.Context, classroomID, announcementID string) error {
	if err := s.store.DeleteAnnouncement(ctx, classroomID, announcementID); err != nil {
		return err
	}
	s.pub.AnnouncementDeleted(classroomID, announcementID)
	return nil
}

func (s *ClassroomService) ListAnnouncements(ctx context.Context, classroomID string) ([]domain.Announcement, error) {
	return s.store.ListAnnouncements(ctx, classroomID)
}

func (s *ClassroomService) AddMaterial(ctx context.Context, classroomID, title, url string) (domain.Material, error) {
	m := domain.Material{
		ID:          s.newID(),
		ClassroomID: classroomID,
		Title:       title,
		URL:         url,
		CreatedAt:   s.now(),
	}
	if err := s.store.AddMaterial(ctx, m); err != nil {
		return domain.Material{}, err
	}
	s.pub.MaterialAdded(m)
	return m, nil
}

func (s *ClassroomService) DeleteMaterial(ctx context.Context, classroomID, materialID string) error {
	if err := s.store.DeleteMaterial(ctx, classroomID, materialID); err != nil {
		return err
	}
	s.pub.MaterialDeleted(classroomID, materialID)
	return nil
}

func (s *ClassroomService) ListMaterials(ctx context.Context, classroomID string) ([]domain.Material, error) {
	return s.store.ListMaterials(ctx, classroomID)
}

func (s *ClassroomService) postToFederation(ctx context.Context, classroomID string, a domain.Announcement) {
	if s.federation == nil {
		return
	}
	if err := s.federation.AnnouncementPosted(ctx, classroomID, a); err != nil {
		log.Printf("classroom %s: federation post failed: %v", classroomID, err)
	}
}
