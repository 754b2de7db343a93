package templates

import (
	"testing"

	"imamportal_backend/internal/notification"
	"imamportal_backend/platform/apperr"
)

func validParams() TemplateParams {
	return TemplateParams{
		Name:          "welcome",
		RecipientType: notification.RecipientImam,
		Triggers: []notification.TriggerRule{
			{TableName: notification.TableImamProfiles, Action: notification.ActionCreate},
		},
		Subject: "Welcome",
		Body:    "Hello {{imam_name}}",
		Active:  true,
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateParamsAcceptsCompleteTemplate(t *testing.T) {
	if err := validateParams(validParams(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateParamsRejectsMissingFields(t *testing.T) {
	p := validParams()
	p.Name = "  "
	assertValidationError(t, validateParams(p, "test"))

	p = validParams()
	p.RecipientType = "everyone"
	assertValidationError(t, validateParams(p, "test"))

	p = validParams()
	p.Triggers = nil
	assertValidationError(t, validateParams(p, "test"))

	p = validParams()
	p.Triggers[0].Action = "UPSERT"
	assertValidationError(t, validateParams(p, "test"))

	p = validParams()
	p.Triggers[0].TableName = ""
	assertValidationError(t, validateParams(p, "test"))

	p = validParams()
	p.Body = ""
	assertValidationError(t, validateParams(p, "test"))
}

func TestSameRule(t *testing.T) {
	three := 3
	alsoThree := 3
	five := 5

	a := notification.TriggerRule{TableName: notification.TableApplicationForms, Action: notification.ActionUpdate, StatusID: &three}
	b := notification.TriggerRule{TableName: notification.TableApplicationForms, Action: notification.ActionUpdate, StatusID: &alsoThree}
	if !sameRule(a, b) {
		t.Fatalf("identical rules must match")
	}

	b.StatusID = &five
	if sameRule(a, b) {
		t.Fatalf("different statuses must not match")
	}

	b.StatusID = nil
	if sameRule(a, b) {
		t.Fatalf("status rule must not match generic rule")
	}

	generic := notification.TriggerRule{TableName: notification.TableApplicationForms, Action: notification.ActionUpdate}
	if !sameRule(generic, b) {
		t.Fatalf("generic rules must match")
	}

	other := notification.TriggerRule{TableName: notification.TableBonusRequests, Action: notification.ActionUpdate}
	if sameRule(generic, other) {
		t.Fatalf("different tables must not match")
	}
}

func TestDescribeRule(t *testing.T) {
	three := 3
	r := notification.TriggerRule{TableName: notification.TableApplicationForms, Action: notification.ActionUpdate, StatusID: &three}
	if got := describeRule(r); got != "(Application_Forms, UPDATE, status 3)" {
		t.Fatalf("describeRule = %q", got)
	}
	r.StatusID = nil
	if got := describeRule(r); got != "(Application_Forms, UPDATE)" {
		t.Fatalf("describeRule = %q", got)
	}
}
