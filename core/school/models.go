package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulesys/shule/core"
)

type TeacherStatus string

const (
	TeacherActive   TeacherStatus = "Active"
	TeacherInactive TeacherStatus = "Inactive"
	TeacherOnLeave  TeacherStatus = "OnLeave"
)

type AcademicDegree string

const (
	DegreeBachelors AcademicDegree = "BachelorsDegree"
	DegreeMasters   AcademicDegree = "MastersDegree"
	DegreeDoctorate AcademicDegree = "Doctorate"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeInactive EmployeeStatus = "Inactive"
)

type Department string

const (
	DeptAdministration Department = "Administration"
	DeptFinance        Department = "Finance"
	DeptMaintenance    Department = "Maintenance"
)

// PaymentPending is the status of a payment awaiting settlement.
const PaymentPending = "Pendente"

type (
	// Teacher is the domain profile linked 1:1 to a user account.
	Teacher struct {
		ID             int            `json:"id" db:"id"`
		UserID         string         `json:"user_id" db:"user_id"`
		FirstName      string         `json:"first_name" db:"first_name"`
		LastName       string         `json:"last_name" db:"last_name"`
		HireDate       time.Time      `json:"hire_date" db:"hire_date"`
		Status         TeacherStatus  `json:"status" db:"status"`
		AcademicDegree AcademicDegree `json:"academic_degree" db:"academic_degree"`
	}

	// Student belongs to at most one school class at a time.
	Student struct {
		ID            int       `json:"id" db:"id"`
		UserID        string    `json:"user_id" db:"user_id"`
		FirstName     string    `json:"first_name" db:"first_name"`
		LastName      string    `json:"last_name" db:"last_name"`
		SchoolClassID *int      `json:"school_class_id" db:"school_class_id"`
		EnrolledAt    time.Time `json:"enrolled_at" db:"enrolled_at"`
	}

	Employee struct {
		ID         int            `json:"id" db:"id"`
		UserID     string         `json:"user_id" db:"user_id"`
		FirstName  string         `json:"first_name" db:"first_name"`
		LastName   string         `json:"last_name" db:"last_name"`
		Department Department     `json:"department" db:"department"`
		HireDate   time.Time      `json:"hire_date" db:"hire_date"`
		Status     EmployeeStatus `json:"status" db:"status"`
		Phone      string         `json:"phone" db:"phone"`
	}

	Subject struct {
		ID           int    `json:"id" db:"id"`
		Name         string `json:"name" db:"name"`
		Description  string `json:"description" db:"description"`
		Credits      int    `json:"credits" db:"credits"`
		TotalClasses int    `json:"total_classes" db:"total_classes"`
	}

	Course struct {
		ID          int       `json:"id" db:"id"`
		Name        string    `json:"name" db:"name"`
		Description string    `json:"description" db:"description"`
		Duration    int       `json:"duration" db:"duration"`
		IsActive    bool      `json:"is_active" db:"is_active"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"`
		UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	}

	// SchoolClass is a scheduled section. It may exist without a
	// course; deleting a course nulls the reference, never the class.
	SchoolClass struct {
		ID        int       `json:"id" db:"id"`
		Name      string    `json:"name" db:"name"`
		StartDate time.Time `json:"start_date" db:"start_date"`
		EndDate   time.Time `json:"end_date" db:"end_date"`
		CourseID  *int      `json:"course_id" db:"course_id"`
	}

	Payment struct {
		ID            int       `json:"id" db:"id"`
		StudentID     int       `json:"student_id" db:"student_id"`
		Amount        float64   `json:"amount" db:"amount"`
		PaymentDate   time.Time `json:"payment_date" db:"payment_date"`
		Status        string    `json:"status" db:"status"`
		TransactionID string    `json:"transaction_id" db:"transaction_id"`
		PaymentMethod string    `json:"payment_method" db:"payment_method"`
	}
)

// NewPayment contains the information needed to record a payment.
type NewPayment struct {
	StudentID     int     `json:"student_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gte=0.01,lte=10000"`
	Status        string  `json:"status" validate:"required,max=20"`
	PaymentMethod string  `json:"payment_method" validate:"required,max=20"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Status = core.CleanString(np.Status)
	np.PaymentMethod = core.CleanString(np.PaymentMethod)
	return validate.Struct(np)
}
