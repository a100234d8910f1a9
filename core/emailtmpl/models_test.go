package emailtmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateRender(t *testing.T) {
	tmpl := Template{
		Subject: "Welcome {{parentName}}!",
		HTML:    "<p>Hi {{ parentName }}, {{playerName}} is set for {{season}} {{year}}.</p>",
		Variables: []Variable{
			{Name: "parentName", Default: "there"},
			{Name: "playerName", Default: "your player"},
		},
	}

	tests := []struct {
		name        string
		vars        map[string]string
		wantSubject string
		wantHTML    string
	}{
		{
			name: "all vars provided",
			vars: map[string]string{
				"parentName": "Jamie Lee",
				"playerName": "Alex Lee",
				"season":     "Fall",
				"year":       "2026",
			},
			wantSubject: "Welcome Jamie Lee!",
			wantHTML:    "<p>Hi Jamie Lee, Alex Lee is set for Fall 2026.</p>",
		},
		{
			name:        "missing vars fall back to defaults or empty",
			vars:        map[string]string{"season": "Spring"},
			wantSubject: "Welcome there!",
			wantHTML:    "<p>Hi there, your player is set for Spring .</p>",
		},
		{
			name:        "nil vars",
			vars:        nil,
			wantSubject: "Welcome there!",
			wantHTML:    "<p>Hi there, your player is set for  .</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html := tmpl.Render(tt.vars)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Equal(t, tt.wantHTML, html)
		})
	}
}

func TestNewTemplateValidate(t *testing.T) {
	nt := &NewTemplate{Title: "  Welcome  ", Subject: "Hi", HTML: "<p>Hi</p>"}
	assert.NoError(t, nt.Validate())
	assert.Equal(t, "Welcome", nt.Title)

	empty := &NewTemplate{}
	err := empty.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "invalid input")
	}
}
