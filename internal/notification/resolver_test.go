package notification

import "testing"

func statusTemplate(id int64, name string, table string, action Action, status int) Template {
	return Template{
		ID:            id,
		Name:          name,
		RecipientType: RecipientImam,
		Active:        true,
		Triggers:      []TriggerRule{{TableName: table, Action: action, StatusID: intPtr(status)}},
	}
}

func genericTemplate(id int64, name string, table string, action Action) Template {
	return Template{
		ID:            id,
		Name:          name,
		RecipientType: RecipientImam,
		Active:        true,
		Triggers:      []TriggerRule{{TableName: table, Action: action}},
	}
}

func TestResolveStatusRuleShadowsGeneric(t *testing.T) {
	r := NewResolver()
	candidates := []Template{
		genericTemplate(1, "generic-update", TableApplicationForms, ActionUpdate),
		statusTemplate(2, "approved", TableApplicationForms, ActionUpdate, 3),
	}

	got := r.Resolve(candidates, TableApplicationForms, ActionUpdate, intPtr(3))
	if got == nil || got.Name != "approved" {
		t.Fatalf("expected status-specific template to win, got %+v", got)
	}
}

func TestResolveStatusShadowingAppliesAcrossTemplates(t *testing.T) {
	// One template defines a status rule for the pair; a transition into a
	// status no template names must match nothing, even though another
	// template carries a generic rule for the same pair.
	r := NewResolver()
	candidates := []Template{
		genericTemplate(1, "generic-update", TableApplicationForms, ActionUpdate),
		statusTemplate(2, "approved", TableApplicationForms, ActionUpdate, 3),
	}

	if got := r.Resolve(candidates, TableApplicationForms, ActionUpdate, intPtr(5)); got != nil {
		t.Fatalf("expected no match for uncovered status, got %q", got.Name)
	}
}

func TestResolveGenericFallbackWhenNoStatusRulesExist(t *testing.T) {
	r := NewResolver()
	candidates := []Template{
		genericTemplate(1, "generic-update", TableBonusRequests, ActionUpdate),
	}

	got := r.Resolve(candidates, TableBonusRequests, ActionUpdate, intPtr(2))
	if got == nil || got.Name != "generic-update" {
		t.Fatalf("expected generic fallback, got %+v", got)
	}
}

func TestResolveNonTransitionNeverMatchesStatusRule(t *testing.T) {
	r := NewResolver()
	candidates := []Template{
		statusTemplate(1, "approved", TableApplicationForms, ActionUpdate, 3),
	}

	if got := r.Resolve(candidates, TableApplicationForms, ActionUpdate, nil); got != nil {
		t.Fatalf("expected no match without a status transition, got %q", got.Name)
	}
}

func TestResolveNonTransitionStillMatchesGenericRule(t *testing.T) {
	// Status-specific rules govern transitions only. An event without a
	// status change resolves against generic rules even when the pair also
	// has status-specific rules.
	r := NewResolver()
	candidates := []Template{
		genericTemplate(1, "generic-update", TableApplicationForms, ActionUpdate),
		statusTemplate(2, "approved", TableApplicationForms, ActionUpdate, 3),
	}

	got := r.Resolve(candidates, TableApplicationForms, ActionUpdate, nil)
	if got == nil || got.Name != "generic-update" {
		t.Fatalf("expected generic rule to match a non-transition event, got %+v", got)
	}
}

func TestResolveTieBreakPrefersNewestTemplate(t *testing.T) {
	r := NewResolver()
	candidates := []Template{
		genericTemplate(4, "older", TableImamProfiles, ActionCreate),
		genericTemplate(9, "newer", TableImamProfiles, ActionCreate),
	}

	got := r.Resolve(candidates, TableImamProfiles, ActionCreate, nil)
	if got == nil || got.Name != "newer" {
		t.Fatalf("expected highest-id template to win, got %+v", got)
	}
}

func TestResolveIgnoresInactiveTemplates(t *testing.T) {
	r := NewResolver()
	inactive := genericTemplate(7, "disabled", TableImamProfiles, ActionCreate)
	inactive.Active = false
	candidates := []Template{
		inactive,
		genericTemplate(2, "enabled", TableImamProfiles, ActionCreate),
	}

	got := r.Resolve(candidates, TableImamProfiles, ActionCreate, nil)
	if got == nil || got.Name != "enabled" {
		t.Fatalf("expected inactive template to be skipped, got %+v", got)
	}
}

func TestResolveInactiveStatusRuleDoesNotShadow(t *testing.T) {
	r := NewResolver()
	inactive := statusTemplate(5, "disabled-status", TableApplicationForms, ActionUpdate, 3)
	inactive.Active = false
	candidates := []Template{
		inactive,
		genericTemplate(1, "generic-update", TableApplicationForms, ActionUpdate),
	}

	got := r.Resolve(candidates, TableApplicationForms, ActionUpdate, intPtr(3))
	if got == nil || got.Name != "generic-update" {
		t.Fatalf("expected inactive status rule to be ignored for shadowing, got %+v", got)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve(nil, TableImamProfiles, ActionCreate, nil); got != nil {
		t.Fatalf("expected nil for empty candidate set, got %+v", got)
	}
}

func TestResolveWrongTableOrAction(t *testing.T) {
	r := NewResolver()
	candidates := []Template{
		genericTemplate(1, "forms-create", TableApplicationForms, ActionCreate),
	}

	if got := r.Resolve(candidates, TableBonusRequests, ActionCreate, nil); got != nil {
		t.Fatalf("expected no match for other table, got %q", got.Name)
	}
	if got := r.Resolve(candidates, TableApplicationForms, ActionDelete, nil); got != nil {
		t.Fatalf("expected no match for other action, got %q", got.Name)
	}
}
