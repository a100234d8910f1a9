package main

import (
	"context"
	"time"

	"github.com/fastbreakhq/fastbreak/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	g, err := cli.gdnRepo.GetGuardianByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := g.SetPassword(pwd); err != nil {
		return err
	}
	g.UpdatedAt = time.Now().UTC()
	_, err = cli.gdnRepo.UpdateGuardian(ctx, g)
	return err
}
