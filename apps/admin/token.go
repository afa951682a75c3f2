package main

import (
	"fmt"
	"time"

	"github.com/trezcool/academia/core/identity"
	identitysvc "github.com/trezcool/academia/services/identity"
)

// issueToken signs an access token accepted by the "token" identity provider.
func (cli *commandLine) issueToken(id, email, name string, ttl time.Duration) error {
	provider, err := identitysvc.NewTokenProvider(cli.conf.Identity)
	if err != nil {
		return err
	}
	token, err := provider.Issue(identity.Identity{ID: id, Email: email, Name: name}, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
