package domain

import "errors"

var (
	// ErrTestNotFound indicates the test content could not be loaded.
	ErrTestNotFound = errors.New("test not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrAnnouncementNotFound is returned for updates/deletes of unknown announcements.
	ErrAnnouncementNotFound = errors.New("announcement not found")
	// ErrMaterialNotFound is returned for deletes of unknown materials.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrInvalidToken is returned when a presented token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)
