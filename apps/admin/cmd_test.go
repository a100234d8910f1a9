package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core/guardian"
	inmemdb "github.com/fastbreakhq/fastbreak/storage/database/inmem"
)

var gdnRepo guardian.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	gdnRepo = inmemdb.NewGuardianRepository(db)

	return &commandLine{gdnRepo: gdnRepo}
}

func createGuardian(t *testing.T, email, pwd string) guardian.Guardian {
	t.Helper()
	g := guardian.Guardian{ID: "gdn-" + email, Email: email, FullName: "Test Guardian"}
	if err := g.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	g, err := gdnRepo.CreateGuardian(context.Background(), g)
	if err != nil {
		t.Fatalf("CreateGuardian(): %v", err)
	}
	return g
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var migrated bool
	migrateFunc = func(db *sql.DB) error {
		migrated = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !migrated {
		t.Error("migrate subcommand did not run the migration")
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)
	existing := createGuardian(t, "jane@test.fb", "hotstuff")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no email", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-email", "coach@test.fb"}, wantErr: errHelp},
		{name: "creates a new admin", args: []string{"addadmin", "-email", "coach@test.fb", "-name", "Coach Carter"}, pwd: "hotstuff"},
		{name: "promotes an existing account", args: []string{"addadmin", "-email", existing.Email}, pwd: "hotstuff"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			email := tt.args[2]
			g, err := gdnRepo.GetGuardianByEmail(context.Background(), email)
			if err != nil {
				t.Fatalf("GetGuardianByEmail(): %v", err)
			}
			if !g.IsAdmin {
				t.Error("account was not made an admin")
			}
			if g.CheckPassword(tt.pwd) != nil {
				t.Error("password was not set")
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	gdn := createGuardian(t, "jane@test.fb", "oldstuff")

	tests := []cliTest{
		{name: "no email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", gdn.Email}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "who@test.fb"}, pwd: "newstuff", wantErr: guardian.ErrNotFound},
		{name: "resets the password", args: []string{"resetpassword", "-email", gdn.Email}, pwd: "newstuff"},
		{name: "email is case-insensitive", args: []string{"resetpassword", "-email", "JANE@Test.fb"}, pwd: "otherstuff"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			refreshed, err := gdnRepo.GetGuardianByEmail(context.Background(), gdn.Email)
			if err != nil {
				t.Fatalf("GetGuardianByEmail(): %v", err)
			}
			if bytes.Equal(refreshed.PasswordHash, gdn.PasswordHash) {
				t.Error("failed to update the password")
			}
			if refreshed.CheckPassword(tt.pwd) != nil {
				t.Error("new password does not verify")
			}
		})
	}
}
