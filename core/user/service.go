package user

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/shulesys/shule/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("failed to log in")
	ErrInvalidRole          = errors.New("invalid role")
)

// tempPwdPrefix guarantees the generated temporary password satisfies
// the complexity policy regardless of the random suffix.
const (
	tempPwdPrefix    = "Ab3!"
	tempPwdSuffixLen = 8
	tempPwdAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetRole(ctx context.Context, id string, role Role) (User, error)
	}

	// ProfileRepository propagates user changes into the role-specific
	// profile row (teacher/student/employee) so dashboards that query
	// profiles directly stay in sync.
	ProfileRepository interface {
		SyncUserProfile(ctx context.Context, usr User) error
	}

	// Service is the account lifecycle manager.
	Service interface {
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		RegisterByAdmin(ctx context.Context, nu RegisterNewUser) (RegisterResult, error)
		ChangeOwnProfile(ctx context.Context, principal Principal, up UpdateProfile) (User, error)
		ChangePassword(ctx context.Context, principal Principal, cp ChangeUserPassword) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
		AssignRole(ctx context.Context, userID string, role Role) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
	}

	service struct {
		conf     *core.Config
		repo     Repository
		profiles ProfileRepository
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	profiles ProfileRepository,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		conf:     conf,
		repo:     repo,
		profiles: profiles,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Authenticate verifies the credentials and records the login. An
// unknown email and a wrong password both return ErrAuthenticationFailed
// so callers cannot probe which emails are registered.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	usr, err = svc.repo.SetLastLogin(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// RegisterByAdmin creates an account with a server-generated temporary
// password and role Pending, then mails the credentials. The mail body
// is the only place the temporary password ever surfaces; it is never
// logged or returned. A mail failure does not roll back the account:
// the result's status reports it so the admin can fix mail config.
func (svc *service) RegisterByAdmin(ctx context.Context, nu RegisterNewUser) (RegisterResult, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return RegisterResult{}, ErrEmailExists
		}
		return RegisterResult{}, errors.Wrap(err, "checking email uniqueness")
	}

	tempPwd, err := generateTemporaryPassword()
	if err != nil {
		return RegisterResult{}, errors.Wrap(err, "generating temporary password")
	}

	now := time.Now().UTC()
	usr := User{
		FirstName:      nu.FirstName,
		LastName:       nu.LastName,
		Email:          nu.Email,
		Address:        nu.Address,
		Phone:          nu.Phone,
		Role:           RolePending,
		EmailConfirmed: true, // administrative trust model; no self-confirmation loop
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = usr.SetPassword(tempPwd); err != nil {
		return RegisterResult{}, errors.Wrap(err, "hashing temporary password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			// concurrent registration lost the race; the store's unique
			// constraint is the arbiter
			return RegisterResult{}, ErrEmailExists
		}
		return RegisterResult{}, errors.Wrap(err, "creating user")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Account Created",
		TemplateName: "account-created",
		TemplateData: struct{ Email, TempPassword string }{usr.Email, tempPwd},
	}
	if err = svc.mailSvc.SendMessage(msg); err != nil {
		svc.logger.Error("sending account-created mail", err)
		return RegisterResult{User: usr, Status: RegisterMailFailed, MailError: err.Error()}, nil
	}
	return RegisterResult{User: usr, Status: RegisterOK}, nil
}

// ChangeOwnProfile updates the caller's own profile fields and
// propagates them into the role-specific profile row.
func (svc *service) ChangeOwnProfile(ctx context.Context, principal Principal, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return User{}, err
	}

	usr.FirstName = up.FirstName
	usr.LastName = up.LastName
	usr.Address = up.Address
	usr.Phone = up.Phone
	usr.UpdatedAt = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	if err = svc.profiles.SyncUserProfile(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "syncing role profile")
	}
	return usr, nil
}

// ChangePassword rotates the caller's password after verifying the old one.
func (svc *service) ChangePassword(ctx context.Context, principal Principal, cp ChangeUserPassword) error {
	usr, err := svc.repo.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if err = usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(
			errors.New("old password is incorrect"),
			core.FieldError{Field: "old_password", Error: "old password is incorrect"},
		)
	}
	if err = ValidatePassword(cp.Password, usr.FullName(), usr.Email); err != nil {
		return err
	}
	if err = usr.SetPassword(cp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails a recovery link
// carrying the token and the email; the email must travel with the
// token because reset-by-token alone cannot locate the user.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	token, err := MakeToken(svc.conf, usr)
	if err != nil {
		return errors.Wrap(err, "generating reset token")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct{ Token, Email string }{token, usr.Email},
	}
	if err = svc.mailSvc.SendMessage(msg); err != nil {
		return errors.Wrap(err, "sending password-reset mail")
	}
	return nil
}

// ResetPassword consumes a reset token and rotates the password. The
// token is single-use: it binds the current password hash, so a
// successful reset invalidates it.
func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	usr, err := svc.repo.GetUserByEmail(ctx, rp.Email)
	if err != nil {
		return err
	}
	if err = verifyToken(svc.conf, usr, rp.Token); err != nil {
		return ErrInvalidToken
	}
	if err = ValidatePassword(rp.Password, usr.FullName(), usr.Email); err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

// AssignRole moves a user out of Pending into a substantive role.
func (svc *service) AssignRole(ctx context.Context, userID string, role Role) (User, error) {
	if !role.Valid() {
		return User{}, ErrInvalidRole
	}
	return svc.repo.SetRole(ctx, userID, role)
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func generateTemporaryPassword() (string, error) {
	suffix := make([]byte, tempPwdSuffixLen)
	max := big.NewInt(int64(len(tempPwdAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = tempPwdAlphabet[n.Int64()]
	}
	return tempPwdPrefix + string(suffix), nil
}
