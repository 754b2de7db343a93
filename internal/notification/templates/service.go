package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"imamportal_backend/internal/notification"
	"imamportal_backend/platform/apperr"
	"imamportal_backend/platform/logger"
)

const (
	opSvcCreate = "notification.templates.service.create"
	opSvcUpdate = "notification.templates.service.update"

	maxImageBytes = 2 << 20
)

var validActions = map[notification.Action]struct{}{
	notification.ActionCreate: {},
	notification.ActionUpdate: {},
	notification.ActionDelete: {},
}

var validRecipientTypes = map[notification.RecipientType]struct{}{
	notification.RecipientImam:  {},
	notification.RecipientAdmin: {},
	notification.RecipientBoth:  {},
}

// Service implements template administration. It also backs the dispatch
// engine's read-only template source through the repository.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]notification.Template, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (notification.Template, error) {
	return s.repo.GetByID(ctx, id)
}

// FindActiveByRecipientType satisfies the dispatch engine's template source.
func (s *Service) FindActiveByRecipientType(ctx context.Context, rt notification.RecipientType) ([]notification.Template, error) {
	return s.repo.FindActiveByRecipientType(ctx, rt)
}

// Create stores a new template. The returned warning is non-empty when
// another active template already carries an identical trigger rule; such a
// duplicate is allowed but resolution will always pick the newer template.
func (s *Service) Create(ctx context.Context, p TemplateParams) (notification.Template, string, error) {
	if err := validateParams(p, opSvcCreate); err != nil {
		return notification.Template{}, "", err
	}
	warning := s.duplicateTriggerWarning(ctx, p, 0)

	t, err := s.repo.Create(ctx, p)
	if err != nil {
		return notification.Template{}, "", err
	}
	if warning != "" {
		s.log.Warn("notification_template_duplicate_trigger",
			slog.Int64("template_id", t.ID),
			slog.String("warning", warning),
		)
	}
	return t, warning, nil
}

// Update replaces a template's writable fields. Warning semantics match
// Create.
func (s *Service) Update(ctx context.Context, id int64, p TemplateParams) (notification.Template, string, error) {
	if err := validateParams(p, opSvcUpdate); err != nil {
		return notification.Template{}, "", err
	}
	warning := s.duplicateTriggerWarning(ctx, p, id)

	t, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return notification.Template{}, "", err
	}
	if warning != "" {
		s.log.Warn("notification_template_duplicate_trigger",
			slog.Int64("template_id", t.ID),
			slog.String("warning", warning),
		)
	}
	return t, warning, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	return s.repo.GetImage(ctx, id)
}

func (s *Service) UploadImage(ctx context.Context, id int64, data []byte, mime string) error {
	if len(data) == 0 {
		return apperr.Validation("image data is required")
	}
	if len(data) > maxImageBytes {
		return apperr.Validation("image exceeds maximum size")
	}
	if !strings.HasPrefix(mime, "image/") {
		return apperr.Validation("content type must be an image")
	}
	return s.repo.StoreImage(ctx, id, data, mime)
}

func validateParams(p TemplateParams, op string) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required").WithOp(op)
	}
	if _, ok := validRecipientTypes[p.RecipientType]; !ok {
		return apperr.Validation(fmt.Sprintf("unknown recipient type %q", p.RecipientType)).WithOp(op)
	}
	if len(p.Triggers) == 0 {
		return apperr.Validation("at least one trigger is required").WithOp(op)
	}
	for i, rule := range p.Triggers {
		if strings.TrimSpace(rule.TableName) == "" {
			return apperr.Validation(fmt.Sprintf("trigger %d: table name is required", i)).WithOp(op)
		}
		if _, ok := validActions[rule.Action]; !ok {
			return apperr.Validation(fmt.Sprintf("trigger %d: unknown action %q", i, rule.Action)).WithOp(op)
		}
	}
	if p.Subject == "" || p.Body == "" {
		return apperr.Validation("subject and body are required").WithOp(op)
	}
	return nil
}

// duplicateTriggerWarning checks the new template's rules against other
// active templates in the same recipient slot. A failure to check is not a
// reason to block the write.
func (s *Service) duplicateTriggerWarning(ctx context.Context, p TemplateParams, excludeID int64) string {
	if !p.Active {
		return ""
	}
	existing, err := s.repo.FindActiveByRecipientType(ctx, p.RecipientType)
	if err != nil {
		s.log.Warn("notification_template_duplicate_check_failed", slog.String("error", err.Error()))
		return ""
	}
	for _, t := range existing {
		if t.ID == excludeID {
			continue
		}
		for _, have := range t.Triggers {
			for _, want := range p.Triggers {
				if sameRule(have, want) {
					return fmt.Sprintf("trigger %s overlaps active template %q (id %d); the newer template will win",
						describeRule(want), t.Name, t.ID)
				}
			}
		}
	}
	return ""
}

func sameRule(a, b notification.TriggerRule) bool {
	if a.TableName != b.TableName || a.Action != b.Action {
		return false
	}
	if (a.StatusID == nil) != (b.StatusID == nil) {
		return false
	}
	return a.StatusID == nil || *a.StatusID == *b.StatusID
}

func describeRule(r notification.TriggerRule) string {
	if r.StatusID == nil {
		return fmt.Sprintf("(%s, %s)", r.TableName, r.Action)
	}
	return fmt.Sprintf("(%s, %s, status %d)", r.TableName, r.Action, *r.StatusID)
}
