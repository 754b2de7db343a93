package notification

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"imamportal_backend/platform/config"
)

// placeholderRe matches both placeholder spellings, {{name}} and ((name)).
// Exactly one of the two capture groups is set per match.
var placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}|\(\(\s*(\w+)\s*\)\)`)

// Renderer substitutes variables into a template's subject and body and
// resolves the template's image and login URLs to absolute form.
type Renderer struct {
	cfg config.NotificationConfig
}

// NewRenderer creates a renderer.
func NewRenderer(cfg config.NotificationConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render produces the final subject and body for one template. Substitution
// is a single pass over the original text, so placeholder-shaped sequences
// inside substituted values are left untouched. Unknown placeholders become
// empty strings.
func (r *Renderer) Render(t *Template, vars map[string]string) (subject, body string) {
	merged := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		merged[k] = v
	}
	merged["background_image"] = r.backgroundImageURL(t)
	merged["login_url"] = loginURL(t)

	return substitute(t.Subject, merged), substitute(t.Body, merged)
}

// substitute replaces every placeholder in s with its variable value in one
// pass over s.
func substitute(s string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		groups := placeholderRe.FindStringSubmatch(m)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		return vars[name]
	})
}

// backgroundImageURL resolves the template's image reference to an absolute
// URL. A stored show link pointing at a development host is rewritten onto
// the public base URL, keeping only its path. A template with image data but
// no show link gets the canonical image-by-id URL.
func (r *Renderer) backgroundImageURL(t *Template) string {
	base := strings.TrimRight(r.cfg.GetPublicBaseURL(), "/")

	if t.ImageShowLink != nil && *t.ImageShowLink != "" {
		link := *t.ImageShowLink
		parsed, err := url.Parse(link)
		if err != nil || parsed.Host == "" {
			return link
		}
		if isDevelopmentHost(parsed.Hostname()) {
			return base + parsed.Path
		}
		return link
	}

	if t.HasImageData && t.ID != 0 {
		return fmt.Sprintf("%s/api/v1/admin/notification-templates/%d/image", base, t.ID)
	}
	return ""
}

func loginURL(t *Template) string {
	if t.LoginURL != nil {
		return *t.LoginURL
	}
	return ""
}

func isDevelopmentHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return false
}
