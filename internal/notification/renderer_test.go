package notification

import "testing"

func TestRenderSubstitutesBothSpellings(t *testing.T) {
	r := NewRenderer(testConfig{})
	tpl := &Template{
		Subject: "Update for {{imam_name}}",
		Body:    "Dear ((name)), your {{topic}} was received on {{submission_date}}.",
	}
	vars := map[string]string{
		"imam_name":       "Ahmed Yilmaz",
		"name":            "Ahmed",
		"topic":           "Housing support",
		"submission_date": "14 March 2026",
	}

	subject, body := r.Render(tpl, vars)
	if subject != "Update for Ahmed Yilmaz" {
		t.Fatalf("subject = %q", subject)
	}
	if body != "Dear Ahmed, your Housing support was received on 14 March 2026." {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderDoesNotReprocessSubstitutedValues(t *testing.T) {
	// A variable value shaped like a placeholder must survive verbatim.
	r := NewRenderer(testConfig{})
	tpl := &Template{Subject: "Hello {{name}}", Body: "{{name}}"}
	vars := map[string]string{"name": "{{admin}}", "admin": "leaked"}

	subject, body := r.Render(tpl, vars)
	if subject != "Hello {{admin}}" {
		t.Fatalf("subject = %q", subject)
	}
	if body != "{{admin}}" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderUnknownPlaceholderBecomesEmpty(t *testing.T) {
	r := NewRenderer(testConfig{})
	tpl := &Template{Subject: "x", Body: "Value: {{does_not_exist}}!"}

	_, body := r.Render(tpl, map[string]string{})
	if body != "Value: !" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderRewritesDevelopmentImageLink(t *testing.T) {
	r := NewRenderer(testConfig{publicBaseURL: "https://portal.example.com"})
	tpl := &Template{
		Body:          "<img src=\"{{background_image}}\">",
		ImageShowLink: strPtr("http://localhost:8080/uploads/banner.png"),
	}

	_, body := r.Render(tpl, nil)
	if body != "<img src=\"https://portal.example.com/uploads/banner.png\">" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderKeepsExternalImageLink(t *testing.T) {
	r := NewRenderer(testConfig{})
	tpl := &Template{
		Body:          "{{background_image}}",
		ImageShowLink: strPtr("https://cdn.example.org/banner.png"),
	}

	_, body := r.Render(tpl, nil)
	if body != "https://cdn.example.org/banner.png" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderSynthesizesImageURLFromStoredData(t *testing.T) {
	r := NewRenderer(testConfig{publicBaseURL: "https://portal.example.com"})
	tpl := &Template{ID: 42, HasImageData: true, Body: "{{background_image}}"}

	_, body := r.Render(tpl, nil)
	if body != "https://portal.example.com/api/v1/admin/notification-templates/42/image" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderLoginURL(t *testing.T) {
	r := NewRenderer(testConfig{})
	tpl := &Template{Body: "((login_url))", LoginURL: strPtr("https://portal.example.com/login")}

	_, body := r.Render(tpl, nil)
	if body != "https://portal.example.com/login" {
		t.Fatalf("body = %q", body)
	}

	tpl = &Template{Body: "((login_url))"}
	_, body = r.Render(tpl, nil)
	if body != "" {
		t.Fatalf("expected empty login url, got %q", body)
	}
}
