package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
	logsvc "github.com/shulesys/shule/services/logger"
	inmemdb "github.com/shulesys/shule/storage/database/inmem"
	testutil "github.com/shulesys/shule/tests"
)

var (
	usrRepo  user.Repository
	schlRepo school.Repository
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	logger = log.New(ioutil.Discard, "", 0)
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	schlRepo = inmemdb.NewSchoolRepository(db)

	return &commandLine{
		conf:     testutil.NewConfig(),
		usrRepo:  usrRepo,
		schlRepo: schlRepo,
		appLog:   logsvc.NewStdLogger(logger),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var called bool
	migrateFunc = func(db *sqlx.DB) error {
		called = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !called {
		t.Error("migrate command did not run the migrations")
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	admin, err := usrRepo.GetUserByEmail(context.Background(), "admin@school.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed, %v", err)
	}
	if admin.Role != user.RoleAdmin {
		t.Errorf("seeded admin role = %s, want %s", admin.Role, user.RoleAdmin)
	}

	// seeding twice must not duplicate anything
	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() unexpected error on second seed = %v", err)
	}
	users, err := usrRepo.QueryAllUsers(context.Background())
	if err != nil {
		t.Fatalf("QueryAllUsers() failed, %v", err)
	}
	if len(users) != 5 {
		t.Errorf("seeded users = %d, want 5", len(users))
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "User", "awe@test.cd", "mdr", user.RoleStudent)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
