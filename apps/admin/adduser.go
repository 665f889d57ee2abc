package main

import (
	"context"
	"time"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/user"
)

// addUser updates or creates a user account with the given role.
func (cli *commandLine) addUser(uname, email, pwd string, role access.Role) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Username:  uname,
			Email:     email,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr.SetActive(true)
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Email = email
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, usr.IsActive)
	return err
}
