package main

import (
	"context"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// addAdmin updates or creates a platform-level admin account (no school scope).
func (cli *commandLine) addAdmin(name, uname, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if core.IsNotFound(err) {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email})
	}
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      name,
			Username:  uname,
			Email:     email,
			Roles:     user.AdminRoles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr.SetActive(true)
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	usr.Username = uname
	usr.Email = email
	usr.Roles = user.AdminRoles
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}
