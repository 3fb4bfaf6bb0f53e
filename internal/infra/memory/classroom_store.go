package memory

import (
	"context"
	"sync"

	"classroom-live-service/internal/domain"
)

// ClassroomStore is an in-memory implementation of app.ClassroomStore.
type ClassroomStore struct {
	mu            sync.RWMutex
	announcements map[string][]domain.Announcement
	materials     map[string][]domain.Material
}

func NewClassroomStore() *ClassroomStore {
	return &ClassroomStore{
		announcements: make(map[string][]domain.Announcement),
		materials:     make(map[string][]domain.Material),
	}
}

func (s *ClassroomStore) AddAnnouncement(_ context.Context, a domain.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements[a.ClassroomID] = append(s.announcements[a.ClassroomID], a)
	return nil
}

func (s *ClassroomStore) UpdateAnnouncement(_ context.Context, a domain.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.announcements[a.ClassroomID]
	for i := range list {
		if list[i].ID == a.ID {
			a.AuthorID = list[i].AuthorID
			a.CreatedAt = list[i].CreatedAt
			list[i] = a
			return nil
		}
	}
	return domain.ErrAnnouncementNotFound
}

func (s *ClassroomStore) DeleteAnnouncement(_ context.Context, classroomID, announcementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.announcements[classroomID]
	for i := range list {
		if list[i].ID == announcementID {
			s.announcements[classroomID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrAnnouncementNotFound
}

func (s *ClassroomStore) ListAnnouncements(_ context.Context, classroomID string) ([]domain.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Announcement, len(s.announcements[classroomID]))
	copy(out, s.announcements[classroomID])
	return out, nil
}

func (s *ClassroomStore) AddMaterial(_ context.Context, m domain.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ClassroomID] = append(s.materials[m.ClassroomID], m)
	return nil
}

func (s *ClassroomStore) DeleteMaterial(_ context.Context, classroomID, materialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.materials[classroomID]
	for i := range list {
		if list[i].ID == materialID {
			s.materials[classroomID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrMaterialNotFound
}

func (s *ClassroomStore) ListMaterials(_ context.Context, classroomID string) ([]domain.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Material, len(s.materials[classroomID]))
	copy(out, s.materials[classroomID])
	return out, nil
}
