package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/core/guardian"
	emailsvc "github.com/fastbreakhq/fastbreak/services/email"
)

func Test_guardianApi_login(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)

	errAuthFailed := marchallObj(t, httpErr{Error: "authentication failed"})
	tests := []httpTest{
		{
			name: "empty credentials", body: marchallObj(t, guardian.Login{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", body: marchallObj(t, guardian.Login{Email: "who@test.fb", Password: "hotstuff"}),
			wantCode: http.StatusBadRequest, wantData: errAuthFailed,
		},
		{
			name: "wrong password", body: marchallObj(t, guardian.Login{Email: gdn.Email, Password: "nope-nope"}),
			wantCode: http.StatusBadRequest, wantData: errAuthFailed,
		},
		{
			name: "success", body: marchallObj(t, guardian.Login{Email: gdn.Email, Password: "hotstuff"}),
			wantCode: http.StatusOK,
		},
		{
			name: "email is case-insensitive", body: marchallObj(t, guardian.Login{Email: "JANE@Test.fb", Password: "hotstuff"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/login", tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var res LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.Token)
				assert.Equal(t, gdn.ID, res.GuardianID)
			}
		})
	}
}

func Test_guardianApi_register(t *testing.T) {
	env := setup(t)
	existing := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)
	emailsvc.ClearSentMessages()

	newAccount := func() guardian.NewGuardian {
		return guardian.NewGuardian{
			FullName:        "John Roe",
			Email:           "john@test.fb",
			Password:        "hotstuff",
			PasswordConfirm: "hotstuff",
			Phone:           "425-555-0199",
			Address:         "500 Main St, Apt 2, Kirkland, Washington 98033",
			Relationship:    "Father",
			AgreeToTerms:    true,
		}
	}

	t.Run("accumulates all field errors", func(t *testing.T) {
		data := newAccount()
		data.FullName = ""
		data.Email = "not-an-email"
		data.Phone = "12345"
		data.PasswordConfirm = "mismatch!"

		req, rec := newRequest(http.MethodPost, "/v1/register", marchallObj(t, data))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Len(t, fields, 4)
		assert.Contains(t, fields, "fullName")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "phone")
		assert.Contains(t, fields, "passwordConfirm")
	})

	t.Run("duplicate email", func(t *testing.T) {
		data := newAccount()
		data.Email = existing.Email

		req, rec := newRequest(http.MethodPost, "/v1/register", marchallObj(t, data))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Contains(t, fields, "email")
	})

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/register", marchallObj(t, newAccount()))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var res RegisterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "john@test.fb", res.Guardian.Email)

		// the single-line address came back structured, with the state normalized
		assert.Equal(t, "500 Main St", res.Guardian.Address.Street)
		assert.Equal(t, "Apt 2", res.Guardian.Address.Street2)
		assert.Equal(t, "Kirkland", res.Guardian.Address.City)
		assert.Equal(t, "WA", res.Guardian.Address.State)
		assert.Equal(t, "98033", res.Guardian.Address.Zip)

		// welcome email went out
		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "Welcome to Fastbreak", msg.Subject)
		require.Len(t, msg.To, 1)
		assert.Equal(t, "john@test.fb", msg.To[0].Address)
	})
}

func Test_guardianApi_query(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)
	admin := env.createGuardian(t, "Coach Carter", "carter@test.fb", "hotstuff", true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/guardians", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/guardians", token: env.getToken(t, gdn),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "get all", path: "/v1/guardians", token: env.getToken(t, admin), wantCode: http.StatusOK},
		{name: "search match", path: "/v1/guardians?search=jane", token: env.getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var gs []guardian.Guardian
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gs))
				if tt.name == "get all" {
					assert.Len(t, gs, 2)
				} else {
					require.Len(t, gs, 1)
					assert.Equal(t, gdn.ID, gs[0].ID)
				}
			}
		})
	}
}

func Test_guardianApi_retrieveUpdate(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)
	other := env.createGuardian(t, "John Roe", "john@test.fb", "hotstuff", false)
	admin := env.createGuardian(t, "Coach Carter", "carter@test.fb", "hotstuff", true)

	t.Run("other families are hidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians/"+other.ID, env.getToken(t, gdn))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("self retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians/"+gdn.ID, env.getToken(t, gdn))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var g guardian.Guardian
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
		assert.Equal(t, gdn.Email, g.Email)
	})

	t.Run("admin retrieves anyone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardians/"+other.ID, env.getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("self update", func(t *testing.T) {
		body := marchallObj(t, guardian.UpdateGuardian{Phone: "4255550142", Relationship: "Mother"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/guardians/"+gdn.ID, env.getToken(t, gdn), body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var g guardian.Guardian
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
		assert.Equal(t, "4255550142", g.Phone)
		assert.Equal(t, "Mother", g.Relationship)
		assert.Equal(t, gdn.Address, g.Address, "omitted address is left untouched")
	})
}

func Test_guardianApi_destroy(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)
	admin := env.createGuardian(t, "Coach Carter", "carter@test.fb", "hotstuff", true)

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/guardians/"+admin.ID, env.getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-admins cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/guardians/"+gdn.ID, env.getToken(t, gdn))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes an account", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/guardians/"+gdn.ID, env.getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/guardians/"+gdn.ID, env.getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_guardianApi_tokenRefresh(t *testing.T) {
	env := setup(t)
	gdn := env.createGuardian(t, "Jane Doe", "jane@test.fb", "hotstuff", false)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/guardians/token-refresh")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refreshes a valid token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/guardians/token-refresh", env.getToken(t, gdn))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
	})
}
