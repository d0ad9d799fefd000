package main

import (
	"context"

	"github.com/schoolmate/backend/core/user"
)

// addUser updates or creates an active staff user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	roles := user.TeacherRoles
	if isAdmin {
		roles = user.AdminRoles
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Roles:           roles,
		})
		return err
	}

	if usr, err = cli.usrSvc.SetPassword(ctx, user.ChangePassword{Email: usr.Email, Password: pwd, PasswordConfirm: pwd}); err != nil {
		return err
	}
	usr.Name = name
	usr.Roles = roles
	usr.IsActive = true
	_, err = cli.usrSvc.Update(ctx, usr)
	return err
}
