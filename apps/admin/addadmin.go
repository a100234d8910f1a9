package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
)

// addAdmin updates or creates an admin guardian account.
func (cli *commandLine) addAdmin(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	g, err := cli.gdnRepo.GetGuardianByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != guardian.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		g = guardian.Guardian{
			ID:        uuid.NewString(),
			Email:     email,
			FullName:  name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		g.IsAdmin = true
		if err := g.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.gdnRepo.CreateGuardian(ctx, g)
		return err
	}

	g.IsAdmin = true
	if name != "" {
		g.FullName = name
	}
	if err := g.SetPassword(pwd); err != nil {
		return err
	}
	g.UpdatedAt = time.Now().UTC()
	_, err = cli.gdnRepo.UpdateGuardian(ctx, g)
	return err
}
