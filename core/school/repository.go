package school

import (
	"context"
	"errors"

	"github.com/shulesys/shule/core/user"
)

var (
	// errors
	ErrTeacherNotFound  = errors.New("teacher not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrClassNotFound    = errors.New("school class not found")
	ErrSubjectNotFound  = errors.New("subject not found")
)

// Repository is the relational store for the academic graph.
// Concrete implementations enforce the referential actions the schema
// declares: restrict on profile→user and student→class, set-null on
// class→course.
type Repository interface {
	// teachers
	CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	GetTeacherByUserID(ctx context.Context, userID string) (Teacher, error)
	AnyTeachers(ctx context.Context) (bool, error)
	AssignTeacherSubject(ctx context.Context, teacherID, subjectID int) error
	AssignTeacherClass(ctx context.Context, teacherID, classID int) error
	// QueryTeacherClasses returns the classes a teacher is assigned
	// to. The traversal is not pre-distincted: repeats are possible
	// and callers must deduplicate by ID before counting.
	QueryTeacherClasses(ctx context.Context, teacherID int) ([]SchoolClass, error)
	// QueryTeacherSubjects returns the subjects a teacher is assigned
	// to; same repeat caveat as QueryTeacherClasses.
	QueryTeacherSubjects(ctx context.Context, teacherID int) ([]Subject, error)

	// students
	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudentByUserID(ctx context.Context, userID string) (Student, error)
	CountStudentsByClass(ctx context.Context, classID int) (int, error)
	AnyStudents(ctx context.Context) (bool, error)

	// employees
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error)
	AnyEmployees(ctx context.Context) (bool, error)

	// subjects
	CreateSubject(ctx context.Context, s Subject) (Subject, error)
	GetSubjectByName(ctx context.Context, name string) (Subject, error)
	AnySubjects(ctx context.Context) (bool, error)

	// courses
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourseByID(ctx context.Context, id int) (Course, error)
	GetCourseByName(ctx context.Context, name string) (Course, error)
	AnyCourses(ctx context.Context) (bool, error)
	LinkCourseSubject(ctx context.Context, courseID, subjectID int) error
	SetClassCourse(ctx context.Context, classID int, courseID *int) error

	// school classes
	CreateSchoolClass(ctx context.Context, sc SchoolClass) (SchoolClass, error)
	GetSchoolClassByName(ctx context.Context, name string) (SchoolClass, error)
	AnySchoolClasses(ctx context.Context) (bool, error)

	// payments
	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	QueryPaymentsByStudent(ctx context.Context, studentID int) ([]Payment, error)
	QueryPendingPayments(ctx context.Context) ([]Payment, error)

	// profile sync (user.ProfileRepository)
	SyncUserProfile(ctx context.Context, usr user.User) error
}
