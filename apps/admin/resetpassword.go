package main

import (
	"context"

	"github.com/schoolmate/backend/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	_, err := cli.usrSvc.SetPassword(context.Background(), user.ChangePassword{
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
