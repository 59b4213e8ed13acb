package user_test

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/shulesys/shule/core"
	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
	emailsvc "github.com/shulesys/shule/services/email"
	logsvc "github.com/shulesys/shule/services/logger"
	inmemdb "github.com/shulesys/shule/storage/database/inmem"
	testutil "github.com/shulesys/shule/tests"
)

// brokenMailService fails every send; used to exercise the
// account-kept-on-mail-failure path.
type brokenMailService struct{}

func (brokenMailService) SendMessage(*core.EmailMessage) error { return errors.New("smtp down") }
func (brokenMailService) SendMessages(...*core.EmailMessage)   {}

func newTestService(t *testing.T, mailSvc core.EmailService) (user.Service, user.Repository) {
	t.Helper()

	db := inmemdb.NewDB()
	uRepo := inmemdb.NewUserRepository(db)
	sRepo := inmemdb.NewSchoolRepository(db)
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	return user.NewService(testutil.NewConfig(), uRepo, sRepo, mailSvc, logger), uRepo
}

func Test_service_Authenticate(t *testing.T) {
	conf := testutil.NewConfig()
	svc, repo := newTestService(t, emailsvc.NewConsoleServiceMock(conf))
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "Kid", "hero@test.cd", "LolC@t123", user.RoleStudent)

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "lol@test.cd", "LolC@t123"); errors.Cause(err) != user.ErrAuthenticationFailed {
			t.Errorf("Authenticate() error = %v, wantErr %v", err, user.ErrAuthenticationFailed)
		}
	})
	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, usr.Email, "wrong"); errors.Cause(err) != user.ErrAuthenticationFailed {
			t.Errorf("Authenticate() error = %v, wantErr %v", err, user.ErrAuthenticationFailed)
		}
	})
	t.Run("ok", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "  HERO@test.cd ", "LolC@t123") // email is cleaned
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if got.ID != usr.ID {
			t.Errorf("Authenticate() user = %v, want %v", got.ID, usr.ID)
		}
		if got.LastLogin.IsZero() {
			t.Error("Authenticate() did not record LastLogin")
		}
	})
}

func Test_service_RegisterByAdmin(t *testing.T) {
	conf := testutil.NewConfig()
	svc, _ := newTestService(t, emailsvc.NewConsoleServiceMock(conf))
	ctx := context.Background()

	nu := user.RegisterNewUser{FirstName: "New", LastName: "Kid", Email: "new@test.cd"}

	emailsvc.ClearSentMessages()
	res, err := svc.RegisterByAdmin(ctx, nu)
	if err != nil {
		t.Fatalf("RegisterByAdmin() error = %v", err)
	}
	if res.Status != user.RegisterOK {
		t.Errorf("Status = %v, want %v", res.Status, user.RegisterOK)
	}
	if res.User.Role != user.RolePending {
		t.Errorf("Role = %v, want %v", res.User.Role, user.RolePending)
	}
	if !res.User.EmailConfirmed {
		t.Error("admin-created accounts are pre-confirmed")
	}

	// fish the temporary password out of the credential mail and log in with it
	sent := emailsvc.GetSentMessages()
	if len(sent) != 1 {
		t.Fatalf("len(SentMessages) = %d, want 1", len(sent))
	}
	tempPwd := extractTempPassword(t, sent[0].TextContent)
	if err := user.ValidatePassword(tempPwd, res.User.FullName(), res.User.Email); err != nil {
		t.Errorf("temporary password %q violates the password policy: %v", tempPwd, err)
	}
	if _, err := svc.Authenticate(ctx, nu.Email, tempPwd); err != nil {
		t.Errorf("Authenticate() with temporary password failed: %v", err)
	}

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := svc.RegisterByAdmin(ctx, nu); errors.Cause(err) != user.ErrEmailExists {
			t.Errorf("RegisterByAdmin() error = %v, wantErr %v", err, user.ErrEmailExists)
		}
	})
}

func Test_service_RegisterByAdmin_mailFailure(t *testing.T) {
	svc, repo := newTestService(t, brokenMailService{})
	ctx := context.Background()

	res, err := svc.RegisterByAdmin(ctx, user.RegisterNewUser{FirstName: "New", LastName: "Kid", Email: "new@test.cd"})
	if err != nil {
		t.Fatalf("RegisterByAdmin() error = %v", err)
	}
	if res.Status != user.RegisterMailFailed {
		t.Errorf("Status = %v, want %v", res.Status, user.RegisterMailFailed)
	}
	if res.MailError == "" {
		t.Error("missing MailError detail")
	}

	// the account survives the mail failure; a retry must not duplicate it
	if _, err := repo.GetUserByEmail(ctx, "new@test.cd"); err != nil {
		t.Errorf("account was not kept: %v", err)
	}
	if _, err := svc.RegisterByAdmin(ctx, user.RegisterNewUser{FirstName: "New", LastName: "Kid", Email: "new@test.cd"}); errors.Cause(err) != user.ErrEmailExists {
		t.Errorf("RegisterByAdmin() error = %v, wantErr %v", err, user.ErrEmailExists)
	}
}

func Test_service_ChangeOwnProfile_syncsEmployeeProfile(t *testing.T) {
	conf := testutil.NewConfig()
	db := inmemdb.NewDB()
	uRepo := inmemdb.NewUserRepository(db)
	sRepo := inmemdb.NewSchoolRepository(db)
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	svc := user.NewService(conf, uRepo, sRepo, emailsvc.NewConsoleServiceMock(conf), logger)
	ctx := context.Background()

	usr := testutil.CreateUser(t, uRepo, "Jane", "Clerk", "jane@test.cd", "LolC@t123", user.RoleEmployee)
	_, err := sRepo.CreateEmployee(ctx, school.Employee{
		UserID:     usr.ID,
		FirstName:  usr.FirstName,
		LastName:   usr.LastName,
		Department: school.DeptFinance,
		HireDate:   time.Now().UTC(),
		Status:     school.EmployeeActive,
		Phone:      "0000000000",
	})
	if err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}

	principal := user.Principal{UserID: usr.ID, Email: usr.Email, Role: usr.Role}
	got, err := svc.ChangeOwnProfile(ctx, principal, user.UpdateProfile{
		FirstName: "Janet",
		LastName:  "Clerk",
		Phone:     "+111 222 3333",
	})
	if err != nil {
		t.Fatalf("ChangeOwnProfile() error = %v", err)
	}
	if got.FirstName != "Janet" || got.Phone != "+111 222 3333" {
		t.Errorf("ChangeOwnProfile() user = %s / %s, want Janet / +111 222 3333", got.FirstName, got.Phone)
	}

	emp, err := sRepo.GetEmployeeByUserID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetEmployeeByUserID() error = %v", err)
	}
	if emp.FirstName != "Janet" {
		t.Errorf("employee profile first name = %s, want Janet", emp.FirstName)
	}
	if emp.Phone != "+111 222 3333" {
		t.Errorf("employee profile phone = %s, want +111 222 3333", emp.Phone)
	}
}

func Test_service_ChangePassword(t *testing.T) {
	conf := testutil.NewConfig()
	svc, repo := newTestService(t, emailsvc.NewConsoleServiceMock(conf))
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "Kid", "hero@test.cd", "LolC@t123", user.RoleStudent)
	principal := user.Principal{UserID: usr.ID, Email: usr.Email, Role: usr.Role}

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, principal, user.ChangeUserPassword{OldPassword: "nope", Password: "NewC@t456", PasswordConfirm: "NewC@t456"})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("ChangePassword() error = %v, want ValidationError", err)
		}
		if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "old_password" {
			t.Errorf("fields = %+v, want old_password", vErr.Fields)
		}
	})
	t.Run("policy applies", func(t *testing.T) {
		err := svc.ChangePassword(ctx, principal, user.ChangeUserPassword{OldPassword: "LolC@t123", Password: "12345678", PasswordConfirm: "12345678"})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("ChangePassword() error = %v, want ValidationError", err)
		}
	})
	t.Run("ok", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, principal, user.ChangeUserPassword{OldPassword: "LolC@t123", Password: "NewC@t456", PasswordConfirm: "NewC@t456"}); err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		if _, err := svc.Authenticate(ctx, usr.Email, "NewC@t456"); err != nil {
			t.Errorf("Authenticate() with new password failed: %v", err)
		}
	})
}

func Test_service_passwordResetFlow(t *testing.T) {
	conf := testutil.NewConfig()
	svc, repo := newTestService(t, emailsvc.NewConsoleServiceMock(conf))
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "Kid", "hero@test.cd", "LolC@t123", user.RoleStudent)

	t.Run("unknown email", func(t *testing.T) {
		if err := svc.RequestPasswordReset(ctx, "lol@test.cd"); errors.Cause(err) != user.ErrNotFound {
			t.Errorf("RequestPasswordReset() error = %v, wantErr %v", err, user.ErrNotFound)
		}
	})

	emailsvc.ClearSentMessages()
	if err := svc.RequestPasswordReset(ctx, usr.Email); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	sent := emailsvc.GetSentMessages()
	if len(sent) != 1 {
		t.Fatalf("len(SentMessages) = %d, want 1", len(sent))
	}
	token := extractResetToken(t, sent[0].TextContent)

	t.Run("reset ok", func(t *testing.T) {
		rp := user.ResetUserPassword{Email: usr.Email, Token: token, Password: "NewC@t456", PasswordConfirm: "NewC@t456"}
		if err := svc.ResetPassword(ctx, rp); err != nil {
			t.Fatalf("ResetPassword() error = %v", err)
		}
		if _, err := svc.Authenticate(ctx, usr.Email, "NewC@t456"); err != nil {
			t.Errorf("Authenticate() with reset password failed: %v", err)
		}
	})
	t.Run("token is single-use", func(t *testing.T) {
		rp := user.ResetUserPassword{Email: usr.Email, Token: token, Password: "Again1@bc", PasswordConfirm: "Again1@bc"}
		if err := svc.ResetPassword(ctx, rp); errors.Cause(err) != user.ErrInvalidToken {
			t.Errorf("ResetPassword() error = %v, wantErr %v", err, user.ErrInvalidToken)
		}
	})
}

func Test_service_AssignRole(t *testing.T) {
	conf := testutil.NewConfig()
	svc, repo := newTestService(t, emailsvc.NewConsoleServiceMock(conf))
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "New", "Kid", "new@test.cd", "LolC@t123", user.RolePending)

	t.Run("invalid role", func(t *testing.T) {
		if _, err := svc.AssignRole(ctx, usr.ID, user.Role("Overlord")); errors.Cause(err) != user.ErrInvalidRole {
			t.Errorf("AssignRole() error = %v, wantErr %v", err, user.ErrInvalidRole)
		}
	})
	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.AssignRole(ctx, "lol", user.RoleStudent); errors.Cause(err) != user.ErrNotFound {
			t.Errorf("AssignRole() error = %v, wantErr %v", err, user.ErrNotFound)
		}
	})
	t.Run("ok", func(t *testing.T) {
		got, err := svc.AssignRole(ctx, usr.ID, user.RoleTeacher)
		if err != nil {
			t.Fatalf("AssignRole() error = %v", err)
		}
		if got.Role != user.RoleTeacher {
			t.Errorf("Role = %v, want %v", got.Role, user.RoleTeacher)
		}
	})
}

func extractTempPassword(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "Temporary password: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Temporary password: "))
		}
	}
	t.Fatal("credential mail does not carry a temporary password")
	return ""
}

func extractResetToken(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	if idx < 0 {
		t.Fatal("reset mail does not carry a token")
	}
	token := body[idx+len("token="):]
	if amp := strings.IndexByte(token, '&'); amp >= 0 {
		token = token[:amp]
	}
	return strings.TrimSpace(token)
}
