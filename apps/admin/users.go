package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	if err := nu.Validate(); err != nil {
		return err
	}

	usr, err := cli.users.FindByEmail(ctx, nu.Email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return err
	}
	found := err == nil
	if !found {
		usr = user.User{
			Email:   nu.Email,
			Avatar:  user.DefaultAvatar(nu.Name),
			Billing: user.DefaultBilling(),
		}
	}
	usr.Name = nu.Name
	usr.Role = nu.Role
	if err := usr.SetPassword(nu.Password); err != nil {
		return err
	}

	if found {
		usr, err = cli.users.Update(ctx, usr)
	} else {
		usr, err = cli.users.Add(ctx, usr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s <%s> as %s\n", usr.ID, usr.Name, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd, confirm string) error {
	usr, err := cli.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := user.NewResetUserPassword(usr, pwd, confirm).Validate(); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.users.Update(ctx, usr)
	return err
}

// signIn syncs the identity carried by token with the local users.
func (cli *commandLine) signIn(ctx context.Context, token string) error {
	ev, err := cli.identity.Parse(token)
	if err != nil {
		return err
	}
	usr, err := cli.users.SyncExternalIdentity(ctx, ev)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s <%s> as %s\n", usr.ID, usr.Name, usr.Email, usr.Role)
	return nil
}
