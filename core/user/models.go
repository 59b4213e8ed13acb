package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/shulesys/shule/core"
)

// Role is a user's single operative role. It is a closed set: anything
// outside it routes to the default dashboard, never errors.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleTeacher   Role = "Teacher"
	RoleStudent   Role = "Student"
	RoleEmployee  Role = "Employee"
	RolePending   Role = "Pending"
	RoleAnonymous Role = "Anonymous"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleEmployee, RolePending, RoleAnonymous}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Dashboard is a routing directive for an authenticated user.
type Dashboard string

const (
	AdminDashboard    Dashboard = "admin"
	EmployeeDashboard Dashboard = "employee"
	TeacherDashboard  Dashboard = "teacher"
	StudentDashboard  Dashboard = "student"
	DefaultDashboard  Dashboard = "default"
)

// DashboardForRole maps a role to its dashboard. The mapping is total:
// Pending, Anonymous and any unrecognized role fall back to the default.
func DashboardForRole(r Role) Dashboard {
	switch r {
	case RoleAdmin:
		return AdminDashboard
	case RoleEmployee:
		return EmployeeDashboard
	case RoleTeacher:
		return TeacherDashboard
	case RoleStudent:
		return StudentDashboard
	default:
		return DefaultDashboard
	}
}

type User struct {
	ID             string    `json:"id" db:"id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Email          string    `json:"email" db:"email"` // also the login name
	Address        string    `json:"address" db:"address"`
	Phone          string    `json:"phone" db:"phone"`
	Role           Role      `json:"role" db:"role"`
	EmailConfirmed bool      `json:"email_confirmed" db:"email_confirmed"`
	PasswordHash   []byte    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin      time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool  { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool  { return u.Role == RoleStudent }
func (u *User) IsEmployee() bool { return u.Role == RoleEmployee }

// Principal is the authenticated caller's identity, passed explicitly
// into every lifecycle and dashboard operation.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (p Principal) Dashboard() Dashboard { return DashboardForRole(p.Role) }

// RegisterNewUser contains the information an admin provides to create
// an account. There is deliberately no password field.
type RegisterNewUser struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Address   string `json:"address" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20,phone"`
}

func (nu *RegisterNewUser) Validate(validate *validator.Validate) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Address = core.CleanString(nu.Address)
	nu.Phone = core.CleanString(nu.Phone)
	return validate.Struct(nu)
}

// RegisterStatus discriminates the outcome of an admin registration.
type RegisterStatus int

const (
	// RegisterOK: account created, credentials mailed.
	RegisterOK RegisterStatus = iota
	// RegisterMailFailed: account created but the credential mail did
	// not go out; the admin should check the mail configuration. The
	// account is kept so a retry does not duplicate it.
	RegisterMailFailed
)

type RegisterResult struct {
	User      User
	Status    RegisterStatus
	MailError string
}

// UpdateProfile defines the fields a user may change on their own account.
type UpdateProfile struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address   string `json:"address" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20,phone"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Address = core.CleanString(up.Address)
	up.Phone = core.CleanString(up.Phone)
	return validate.Struct(up)
}

type ChangeUserPassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangeUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}
