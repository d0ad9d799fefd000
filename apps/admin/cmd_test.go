package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/backend/core/user"
	dummydb "github.com/schoolmate/backend/storage/database/dummy"
	testutil "github.com/schoolmate/backend/tests"
)

const testPwd = "Tr0ub4dor&3xK"

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	validate, _ := testutil.NewValidator()
	usrRepo = dummydb.NewUserRepository(dummydb.Open())

	// start CLI
	return &commandLine{
		usrSvc: user.NewService(usrRepo, validate),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("no sql database", func(t *testing.T) {
		if err := cli.run([]string{"admin", "migrate", "up"}); err != errNoSQLDB {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errNoSQLDB)
		}
	})

	cli.db = &sql.DB{}
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	t.Run("missing flags", func(t *testing.T) {
		mockPassword(testPwd)
		for _, args := range [][]string{
			{"admin", "adduser"},
			{"admin", "adduser", "-email", "ada@schoolmate.edu"},
			{"admin", "adduser", "-name", "Ada"},
		} {
			assert.Equal(t, errHelp, cli.run(args))
		}
	})

	t.Run("empty password", func(t *testing.T) {
		mockPassword("")
		err := cli.run([]string{"admin", "adduser", "-email", "ada@schoolmate.edu", "-name", "Ada"})
		assert.Equal(t, errPwdEmpty, err)
	})

	t.Run("weak password", func(t *testing.T) {
		mockPassword("12345678")
		err := cli.run([]string{"admin", "adduser", "-email", "ada@schoolmate.edu", "-name", "Ada"})
		_, ok := err.(validator.ValidationErrors)
		assert.True(t, ok, "cli.run() error = %v, want validator.ValidationErrors", err)
	})

	t.Run("create teacher", func(t *testing.T) {
		mockPassword(testPwd)
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", " Ada@SchoolMate.edu ", "-name", "Ada"}))

		usr, err := cli.usrSvc.GetByEmail(ctx, "ada@schoolmate.edu")
		require.NoError(t, err)
		assert.Equal(t, "Ada", usr.Name)
		assert.True(t, usr.IsActive)
		assert.True(t, usr.IsTeacher())
		assert.False(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword(testPwd))
	})

	t.Run("update to admin", func(t *testing.T) {
		newPwd := "C0rrect-H0rse!"
		mockPassword(newPwd)
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "ada@schoolmate.edu", "-name", "Ada Lovelace", "-admin"}))

		usr, err := cli.usrSvc.GetByEmail(ctx, "ada@schoolmate.edu")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", usr.Name)
		assert.True(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword(newPwd))
		assert.Error(t, usr.CheckPassword(testPwd))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Grace Hopper", "grace@schoolmate.edu", "std_00", user.TeacherRoles, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@schoolmate.edu"}, wantErr: errPwdEmpty},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@schoolmate.edu"}, extra: extra{pwd: testPwd}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: testPwd}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if extra, ok := tt.extra.(extra); ok {
			pwd = extra.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				assert.NoError(t, refreshedUsr.CheckPassword(testPwd))
			}
		})
	}
}
