package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = uname
	}

	usr, err := cli.findUser(ctx, uname, email)
	exists := err == nil
	if err != nil && err != user.ErrNotFound {
		return err
	}

	now := core.NowFunc().UTC()
	if !exists {
		usr = user.User{Name: name, CreatedAt: now}
	}
	usr.Username = uname
	usr.Email = email
	usr.IsActive = true
	usr.UpdatedAt = now
	if isAdmin {
		usr.Roles = []string{user.RoleAdminPrincipal}
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return err
	}
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return err
}

func (cli *commandLine) findUser(ctx context.Context, uname, email string) (user.User, error) {
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	if err == user.ErrNotFound {
		return cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	}
	return usr, err
}
