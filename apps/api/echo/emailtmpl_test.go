package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
	emailsvc "github.com/fastbreakhq/fastbreak/services/email"
)

func Test_emailTemplateApi_crud(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)
	admin := env.createGuardian(t, "Coach Carter", "carter@test.fb", "hotstuff", true)
	adminToken := env.getToken(t, admin)

	newTemplate := emailtmpl.NewTemplate{
		Title:   "Season reminder",
		Subject: "{{season}} {{year}} is coming up, {{parentName}}!",
		HTML:    "<p>Hi {{parentName}}, enrollment for {{season}} {{year}} is open.</p>",
		Active:  true,
		Variables: []emailtmpl.Variable{
			{Name: "parentName", Default: "there"},
			{Name: "season"},
			{Name: "year"},
		},
	}

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/email-templates", env.getToken(t, gdn))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing fields accumulate", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/email-templates", adminToken, marchallObj(t, emailtmpl.NewTemplate{}))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Len(t, fields, 3)
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "subject")
		assert.Contains(t, fields, "html")
	})

	var created emailtmpl.Template
	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/email-templates", adminToken, marchallObj(t, newTemplate))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, newTemplate.Title, created.Title)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, emailtmpl.UpdateTemplate{Title: "Enrollment reminder"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/email-templates/"+created.ID, adminToken, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var updated emailtmpl.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Enrollment reminder", updated.Title)
		assert.Equal(t, created.Subject, updated.Subject, "omitted fields are left untouched")
	})

	t.Run("send resolves variables", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		body := marchallObj(t, emailtmpl.SendTemplate{GuardianID: gdn.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/email-templates/"+created.ID+"/send", adminToken, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		require.Len(t, msg.To, 1)
		assert.Equal(t, gdn.Email, msg.To[0].Address)
		assert.Contains(t, msg.Subject, "Jane Doe")
		assert.NotContains(t, msg.Subject, "{{")
	})

	t.Run("inactive templates cannot be sent", func(t *testing.T) {
		inactive, err := env.tmplSvc.Create(context.Background(), emailtmpl.NewTemplate{
			Title:   "Drafts stay drafts",
			Subject: "Draft",
			HTML:    "<p>Draft</p>",
		})
		require.NoError(t, err)

		body := marchallObj(t, emailtmpl.SendTemplate{GuardianID: gdn.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/email-templates/"+inactive.ID+"/send", adminToken, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send to unknown template", func(t *testing.T) {
		body := marchallObj(t, emailtmpl.SendTemplate{GuardianID: gdn.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/email-templates/nope/send", adminToken, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/email-templates/"+created.ID, adminToken)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/email-templates/"+created.ID, adminToken)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
