// Package service implements the aid application and bonus request use
// cases and fires the notification hook after each committed write.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"imamportal_backend/internal/applications/repository"
	"imamportal_backend/internal/notification"
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

// ---- application forms ----

func (s *Service) CreateForm(ctx context.Context, profileID uuid.UUID, title, description string) (repository.ApplicationForm, error) {
	if strings.TrimSpace(title) == "" {
		return repository.ApplicationForm{}, apperr.Validation("title is required")
	}
	f, err := s.repo.CreateForm(ctx, profileID, title, description, 1)
	if err != nil {
		return repository.ApplicationForm{}, err
	}
	s.notifier.Notify(notification.TableApplicationForms, notification.ActionCreate, formRecord(f), nil)
	return f, nil
}

func (s *Service) GetForm(ctx context.Context, id uuid.UUID) (repository.ApplicationForm, error) {
	return s.repo.GetForm(ctx, id)
}

func (s *Service) ListForms(ctx context.Context, limit, offset int) ([]repository.ApplicationForm, int, error) {
	return s.repo.ListForms(ctx, clampLimit(limit), clampOffset(offset))
}

func (s *Service) UpdateFormStatus(ctx context.Context, id uuid.UUID, statusID int) (repository.ApplicationForm, error) {
	if statusID < 1 {
		return repository.ApplicationForm{}, apperr.Validation("status id must be positive")
	}
	previous, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return repository.ApplicationForm{}, err
	}
	updated, err := s.repo.UpdateFormStatus(ctx, id, statusID)
	if err != nil {
		return repository.ApplicationForm{}, err
	}
	s.notifier.Notify(notification.TableApplicationForms, notification.ActionUpdate, formRecord(updated), formRecord(previous))
	return updated, nil
}

func (s *Service) DeleteForm(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteForm(ctx, id)
	if err != nil {
		return err
	}
	s.notifier.Notify(notification.TableApplicationForms, notification.ActionDelete, formRecord(deleted), nil)
	return nil
}

// ---- bonus requests ----

func (s *Service) CreateBonus(ctx context.Context, profileID uuid.UUID, description string, amountCents int64) (repository.BonusRequest, error) {
	if strings.TrimSpace(description) == "" {
		return repository.BonusRequest{}, apperr.Validation("description is required")
	}
	if amountCents <= 0 {
		return repository.BonusRequest{}, apperr.Validation("amount must be positive")
	}
	b, err := s.repo.CreateBonus(ctx, profileID, description, amountCents, 1)
	if err != nil {
		return repository.BonusRequest{}, err
	}
	s.notifier.Notify(notification.TableBonusRequests, notification.ActionCreate, bonusRecord(b), nil)
	return b, nil
}

func (s *Service) GetBonus(ctx context.Context, id uuid.UUID) (repository.BonusRequest, error) {
	return s.repo.GetBonus(ctx, id)
}

func (s *Service) ListBonuses(ctx context.Context, limit, offset int) ([]repository.BonusRequest, int, error) {
	return s.repo.ListBonuses(ctx, clampLimit(limit), clampOffset(offset))
}

func (s *Service) UpdateBonusStatus(ctx context.Context, id uuid.UUID, statusID int) (repository.BonusRequest, error) {
	if statusID < 1 {
		return repository.BonusRequest{}, apperr.Validation("status id must be positive")
	}
	previous, err := s.repo.GetBonus(ctx, id)
	if err != nil {
		return repository.BonusRequest{}, err
	}
	updated, err := s.repo.UpdateBonusStatus(ctx, id, statusID)
	if err != nil {
		return repository.BonusRequest{}, err
	}
	s.notifier.Notify(notification.TableBonusRequests, notification.ActionUpdate, bonusRecord(updated), bonusRecord(previous))
	return updated, nil
}

func (s *Service) DeleteBonus(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteBonus(ctx, id)
	if err != nil {
		return err
	}
	s.notifier.Notify(notification.TableBonusRequests, notification.ActionDelete, bonusRecord(deleted), nil)
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func formRecord(f repository.ApplicationForm) notification.Record {
	return notification.Record{
		"id":              f.ID.String(),
		"imam_profile_id": f.ImamProfileID.String(),
		"title":           f.Title,
		"description":     f.Description,
		"status_id":       f.StatusID,
		"created_at":      f.CreatedAt,
		"updated_at":      f.UpdatedAt,
	}
}

func bonusRecord(b repository.BonusRequest) notification.Record {
	return notification.Record{
		"id":              b.ID.String(),
		"imam_profile_id": b.ImamProfileID.String(),
		"description":     b.Description,
		"amount_cents":    b.AmountCents,
		"status_id":       b.StatusID,
		"created_at":      b.CreatedAt,
		"updated_at":      b.UpdatedAt,
	}
}
