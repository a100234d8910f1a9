package emailtmpl

import (
	"regexp"
	"time"

	"github.com/fastbreakhq/fastbreak/core"
)

// Variable is a named substitution slot in a template, e.g. {{parentName}}.
type Variable struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Default     string `json:"default"`
}

// Template is an admin-managed email template. Subject and HTML may contain
// {{variable}} tokens resolved at send time.
type Template struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	HTML      string     `json:"html"`
	Active    bool       `json:"active"`
	Category  string     `json:"category,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Variables []Variable `json:"variables,omitempty"`
	CreatedAt time.Time  `json:"createdAt"` // UTC
	UpdatedAt time.Time  `json:"updatedAt"` // UTC
}

var varTokenRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render substitutes {{name}} tokens in the subject and HTML body. Missing
// values fall back to the variable's declared default; tokens with neither
// are replaced with an empty string.
func (t Template) Render(vars map[string]string) (subject, html string) {
	defaults := make(map[string]string, len(t.Variables))
	for _, v := range t.Variables {
		defaults[v.Name] = v.Default
	}
	sub := func(s string) string {
		return varTokenRegex.ReplaceAllStringFunc(s, func(tok string) string {
			name := varTokenRegex.FindStringSubmatch(tok)[1]
			if val, ok := vars[name]; ok {
				return val
			}
			return defaults[name]
		})
	}
	return sub(t.Subject), sub(t.HTML)
}

// NewTemplate contains information needed to create a Template.
type NewTemplate struct {
	Title     string     `json:"title" validate:"required"`
	Subject   string     `json:"subject" validate:"required"`
	HTML      string     `json:"html" validate:"required"`
	Active    bool       `json:"active"`
	Category  string     `json:"category"`
	Tags      []string   `json:"tags,omitempty"`
	Variables []Variable `json:"variables,omitempty" validate:"omitempty,dive"`
}

func (nt *NewTemplate) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Subject = core.CleanString(nt.Subject)
	if flds := core.FieldErrors(nt); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}

// UpdateTemplate defines what may be modified on an existing Template.
type UpdateTemplate struct {
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	HTML      string     `json:"html"`
	Active    *bool      `json:"active"`
	Category  string     `json:"category"`
	Tags      []string   `json:"tags,omitempty"`
	Variables []Variable `json:"variables,omitempty" validate:"omitempty,dive"`
}

func (ut *UpdateTemplate) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	ut.Subject = core.CleanString(ut.Subject)
	if flds := core.FieldErrors(ut); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}

// SendTemplate requests a template send for a guardian (and optionally one
// of their players, for player-scoped variables).
type SendTemplate struct {
	TemplateID string `json:"templateId" validate:"required"`
	GuardianID string `json:"parentId" validate:"required"`
	PlayerID   string `json:"playerId"`
}

func (st SendTemplate) Validate() error {
	if flds := core.FieldErrors(st); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}
