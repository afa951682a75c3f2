package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core/profile"
)

// setRole grants role to the profile registered with email. The profile must exist,
// which happens once its owner has saved it from the dashboard.
func (cli *commandLine) setRole(email, role string) error {
	sr := profile.SetRole{Email: email, Role: role}
	if err := sr.Validate(cli.validate); err != nil {
		return err
	}
	p, err := cli.profileSvc.SetRole(context.Background(), sr.Email, sr.Role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s) is now %s\n", p.Email, p.ID, p.Role)
	return nil
}
