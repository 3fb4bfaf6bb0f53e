package postgres

import (
	"context"
	"fmt"

	"classroom-live-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ClassroomStore is a Postgres implementation of app.ClassroomStore.
type ClassroomStore struct {
	pool *pgxpool.Pool
}

func NewClassroomStore(pool *pgxpool.Pool) *ClassroomStore {
	return &ClassroomStore{pool: pool}
}

func (s *ClassroomStore) AddAnnouncement(ctx context.Context, a domain.Announcement) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO announcements (id, classroom_id, author_id, title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ClassroomID, a.AuthorID, a.Title, a.Body, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

func (s *ClassroomStore) UpdateAnnouncement(ctx context.Context, a domain.Announcement) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE announcements SET title=$1, body=$2, updated_at=$3 WHERE id=$4 AND classroom_id=$5`,
		a.Title, a.Body, a.UpdatedAt, a.ID, a.ClassroomID)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnnouncementNotFound
	}
	return nil
}

func (s *ClassroomStore) DeleteAnnouncement(ctx context.Context, classroomID, announcementID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM announcements WHERE id=$1 AND classroom_id=$2`, announcementID, classroomID)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnnouncementNotFound
	}
	return nil
}

func (s *ClassroomStore) ListAnnouncements(ctx context.Context, classroomID string) ([]domain.Announcement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, classroom_id, author_id, title, body, created_at, updated_at
		 FROM announcements WHERE classroom_id=$1 ORDER BY created_at`, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Announcement, 0)
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.ClassroomID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *ClassroomStore) AddMaterial(ctx context.Context, m domain.Material) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO materials (id, classroom_id, title, url, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ClassroomID, m.Title, m.URL, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (s *ClassroomStore) DeleteMaterial(ctx context.Context, classroomID, materialID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM materials WHERE id=$1 AND classroom_id=$2`, materialID, classroomID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (s *ClassroomStore) ListMaterials(ctx context.Context, classroomID string) ([]domain.Material, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, classroom_id, title, url, created_at FROM materials WHERE classroom_id=$1 ORDER BY created_at`, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Material, 0)
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(&m.ID, &m.ClassroomID, &m.Title, &m.URL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
