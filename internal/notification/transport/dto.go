// Package transport defines the request and response shapes of the
// notification administration API.
package transport

import (
	"time"

	"imamportal_backend/internal/notification"
	"imamportal_backend/internal/notification/templates"
)

// TriggerRuleRequest is one trigger rule in a template write request.
type TriggerRuleRequest struct {
	TableName string `json:"tableName" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=CREATE UPDATE DELETE"`
	StatusID  *int   `json:"statusId"`
}

// TemplateRequest is the write shape for creating or updating a template.
type TemplateRequest struct {
	Name          string               `json:"name" validate:"required,max=200"`
	RecipientType string               `json:"recipientType" validate:"required,oneof=imam admin both"`
	Triggers      []TriggerRuleRequest `json:"triggers" validate:"required,min=1,dive"`
	Subject       string               `json:"subject" validate:"required"`
	Body          string               `json:"body" validate:"required"`
	Active        bool                 `json:"active"`
	LoginURL      *string              `json:"loginUrl" validate:"omitempty,url"`
	ImageShowLink *string              `json:"imageShowLink" validate:"omitempty,url"`
}

// ToParams converts the request into service parameters.
func (r TemplateRequest) ToParams() templates.TemplateParams {
	rules := make([]notification.TriggerRule, 0, len(r.Triggers))
	for _, t := range r.Triggers {
		rules = append(rules, notification.TriggerRule{
			TableName: t.TableName,
			Action:    notification.Action(t.Action),
			StatusID:  t.StatusID,
		})
	}
	return templates.TemplateParams{
		Name:          r.Name,
		RecipientType: notification.RecipientType(r.RecipientType),
		Triggers:      rules,
		Subject:       r.Subject,
		Body:          r.Body,
		Active:        r.Active,
		LoginURL:      r.LoginURL,
		ImageShowLink: r.ImageShowLink,
	}
}

// TemplateResponse is the read shape of a template. Image bytes are never
// inlined; HasImage signals that the image endpoint will serve content.
type TemplateResponse struct {
	ID            int64                      `json:"id"`
	Name          string                     `json:"name"`
	RecipientType string                     `json:"recipientType"`
	Triggers      []notification.TriggerRule `json:"triggers"`
	Subject       string                     `json:"subject"`
	Body          string                     `json:"body"`
	Active        bool                       `json:"active"`
	LoginURL      *string                    `json:"loginUrl,omitempty"`
	ImageShowLink *string                    `json:"imageShowLink,omitempty"`
	HasImage      bool                       `json:"hasImage"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

// FromTemplate maps a domain template to its response shape.
func FromTemplate(t notification.Template) TemplateResponse {
	return TemplateResponse{
		ID:            t.ID,
		Name:          t.Name,
		RecipientType: string(t.RecipientType),
		Triggers:      t.Triggers,
		Subject:       t.Subject,
		Body:          t.Body,
		Active:        t.Active,
		LoginURL:      t.LoginURL,
		ImageShowLink: t.ImageShowLink,
		HasImage:      t.HasImageData,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// TemplateWriteResponse wraps a written template with an optional trigger
// overlap warning.
type TemplateWriteResponse struct {
	Template TemplateResponse `json:"template"`
	Warning  string           `json:"warning,omitempty"`
}
