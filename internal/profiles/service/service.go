// Package service implements the imam profile use cases and fires the
// notification hook after each committed write.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"imamportal_backend/internal/notification"
	"imamportal_backend/internal/profiles/repository"
	"imamportal_backend/platform/apperr"
	"imamportal_backend/platform/logger"
)

// Notifier is the notification entry point this module fires after commits.
type Notifier interface {
	Notify(table string, action notification.Action, record, previous notification.Record, explicit ...string)
}

type Service struct {
	repo     *repository.Repository
	notifier Notifier
	log      *logger.Logger
}

func New(repo *repository.Repository, notifier Notifier, log *logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Profile, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Create(ctx context.Context, p repository.CreateParams) (repository.Profile, error) {
	if err := validateContact(p.Name, p.Surname, p.Email); err != nil {
		return repository.Profile{}, err
	}
	if strings.TrimSpace(p.FileNumber) == "" {
		return repository.Profile{}, apperr.Validation("file number is required")
	}
	if p.StatusID < 1 {
		p.StatusID = 1
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return repository.Profile{}, err
	}
	s.notifier.Notify(notification.TableImamProfiles, notification.ActionCreate, record(created), nil)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p repository.UpdateParams) (repository.Profile, error) {
	if err := validateContact(p.Name, p.Surname, p.Email); err != nil {
		return repository.Profile{}, err
	}
	if p.StatusID < 1 {
		return repository.Profile{}, apperr.Validation("status id must be positive")
	}

	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Profile{}, err
	}
	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return repository.Profile{}, err
	}
	s.notifier.Notify(notification.TableImamProfiles, notification.ActionUpdate, record(updated), record(previous))
	return updated, nil
}

// UpdateStatus moves a profile to a new status. The pre-write row is passed
// along so the dispatch engine can detect the transition.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) (repository.Profile, error) {
	if statusID < 1 {
		return repository.Profile{}, apperr.Validation("status id must be positive")
	}

	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Profile{}, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, statusID)
	if err != nil {
		return repository.Profile{}, err
	}
	s.notifier.Notify(notification.TableImamProfiles, notification.ActionUpdate, record(updated), record(previous))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.notifier.Notify(notification.TableImamProfiles, notification.ActionDelete, record(deleted), nil)
	return nil
}

func validateContact(name, surname, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(surname) == "" {
		return apperr.Validation("name and surname are required")
	}
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email is required")
	}
	return nil
}

// record flattens a profile into the loose field map the dispatch engine
// consumes.
func record(p repository.Profile) notification.Record {
	return notification.Record{
		"id":          p.ID.String(),
		"name":        p.Name,
		"surname":     p.Surname,
		"email":       p.Email,
		"file_number": p.FileNumber,
		"status_id":   p.StatusID,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
