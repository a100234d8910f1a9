package guardian

import (
	"testing"
	"time"

	"github.com/fastbreakhq/fastbreak/core"
)

func TestMakeVerifyToken(t *testing.T) {
	conf := &core.Config{
		SecretKey:                 []byte("secret"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	now := time.Now()
	g := Guardian{
		ID:        "g1",
		FullName:  "T Parent",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = g.SetPassword("pwd")

	validToken, err := MakeToken(conf, g)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(conf, g)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", wantErr: errInvalidToken},
		{name: "invalid parts len", token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(conf, g, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// changing the password invalidates outstanding tokens
	_ = g.SetPassword("new-pwd")
	if err := verifyToken(conf, g, validToken); err != errInvalidToken {
		t.Errorf("verifyToken() after password change error = %v, wantErr %v", err, errInvalidToken)
	}
}
