package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
)

type schoolRepository struct {
	db *sqlx.DB
}

var (
	_ school.Repository      = (*schoolRepository)(nil)
	_ user.ProfileRepository = (*schoolRepository)(nil)
)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) any(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+`)`)
	if err != nil {
		return false, errors.Wrapf(err, "checking %s existence", table)
	}
	return exists, nil
}

// ------------------------------------------------------------------ teachers

func (repo *schoolRepository) CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO teacher (user_id, first_name, last_name, hire_date, status, academic_degree)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.UserID, t.FirstName, t.LastName, t.HireDate, t.Status, t.AcademicDegree,
	).Scan(&t.ID)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *schoolRepository) GetTeacherByUserID(ctx context.Context, userID string) (school.Teacher, error) {
	var t school.Teacher
	err := repo.db.GetContext(ctx, &t, `SELECT * FROM teacher WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Teacher{}, school.ErrTeacherNotFound
		}
		return school.Teacher{}, errors.Wrap(err, "getting teacher by user id")
	}
	return t, nil
}

func (repo *schoolRepository) AnyTeachers(ctx context.Context) (bool, error) {
	return repo.any(ctx, "teacher")
}

func (repo *schoolRepository) AssignTeacherSubject(ctx context.Context, teacherID, subjectID int) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO teacher_subject (teacher_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		teacherID, subjectID,
	)
	return errors.Wrap(err, "assigning teacher subject")
}

func (repo *schoolRepository) AssignTeacherClass(ctx context.Context, teacherID, classID int) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO teacher_school_class (teacher_id, school_class_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		teacherID, classID,
	)
	return errors.Wrap(err, "assigning teacher class")
}

func (repo *schoolRepository) QueryTeacherClasses(ctx context.Context, teacherID int) ([]school.SchoolClass, error) {
	var classes []school.SchoolClass
	err := repo.db.SelectContext(ctx, &classes, `
		SELECT sc.*
		FROM school_class sc
		JOIN teacher_school_class tsc ON tsc.school_class_id = sc.id
		WHERE tsc.teacher_id = $1`,
		teacherID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher classes")
	}
	return classes, nil
}

func (repo *schoolRepository) QueryTeacherSubjects(ctx context.Context, teacherID int) ([]school.Subject, error) {
	var subjects []school.Subject
	err := repo.db.SelectContext(ctx, &subjects, `
		SELECT s.*
		FROM subject s
		JOIN teacher_subject ts ON ts.subject_id = s.id
		WHERE ts.teacher_id = $1`,
		teacherID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher subjects")
	}
	return subjects, nil
}

// ------------------------------------------------------------------ students

func (repo *schoolRepository) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO student (user_id, first_name, last_name, school_class_id, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		s.UserID, s.FirstName, s.LastName, s.SchoolClassID, s.EnrolledAt,
	).Scan(&s.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *schoolRepository) GetStudentByUserID(ctx context.Context, userID string) (school.Student, error) {
	var s school.Student
	err := repo.db.GetContext(ctx, &s, `SELECT * FROM student WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Student{}, school.ErrStudentNotFound
		}
		return school.Student{}, errors.Wrap(err, "getting student by user id")
	}
	return s, nil
}

func (repo *schoolRepository) CountStudentsByClass(ctx context.Context, classID int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM student WHERE school_class_id = $1`, classID)
	if err != nil {
		return 0, errors.Wrap(err, "counting students by class")
	}
	return count, nil
}

func (repo *schoolRepository) AnyStudents(ctx context.Context) (bool, error) {
	return repo.any(ctx, "student")
}

// ----------------------------------------------------------------- employees

func (repo *schoolRepository) CreateEmployee(ctx context.Context, e school.Employee) (school.Employee, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO employee (user_id, first_name, last_name, department, hire_date, status, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, e.FirstName, e.LastName, e.Department, e.HireDate, e.Status, e.Phone,
	).Scan(&e.ID)
	if err != nil {
		return school.Employee{}, errors.Wrap(err, "inserting employee")
	}
	return e, nil
}

func (repo *schoolRepository) GetEmployeeByUserID(ctx context.Context, userID string) (school.Employee, error) {
	var e school.Employee
	err := repo.db.GetContext(ctx, &e, `SELECT * FROM employee WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Employee{}, school.ErrEmployeeNotFound
		}
		return school.Employee{}, errors.Wrap(err, "getting employee by user id")
	}
	return e, nil
}

func (repo *schoolRepository) AnyEmployees(ctx context.Context) (bool, error) {
	return repo.any(ctx, "employee")
}

// ------------------------------------------------------------------ subjects

func (repo *schoolRepository) CreateSubject(ctx context.Context, s school.Subject) (school.Subject, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO subject (name, description, credits, total_classes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.Name, s.Description, s.Credits, s.TotalClasses,
	).Scan(&s.ID)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo *schoolRepository) GetSubjectByName(ctx context.Context, name string) (school.Subject, error) {
	var s school.Subject
	err := repo.db.GetContext(ctx, &s, `SELECT * FROM subject WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Subject{}, school.ErrSubjectNotFound
		}
		return school.Subject{}, errors.Wrap(err, "getting subject by name")
	}
	return s, nil
}

func (repo *schoolRepository) AnySubjects(ctx context.Context) (bool, error) {
	return repo.any(ctx, "subject")
}

// ------------------------------------------------------------------- courses

func (repo *schoolRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO course (name, description, duration, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.Name, c.Description, c.Duration, c.IsActive, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *schoolRepository) GetCourseByID(ctx context.Context, id int) (school.Course, error) {
	var c school.Course
	err := repo.db.GetContext(ctx, &c, `SELECT * FROM course WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Course{}, school.ErrCourseNotFound
		}
		return school.Course{}, errors.Wrap(err, "getting course by id")
	}
	return c, nil
}

func (repo *schoolRepository) GetCourseByName(ctx context.Context, name string) (school.Course, error) {
	var c school.Course
	err := repo.db.GetContext(ctx, &c, `SELECT * FROM course WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Course{}, school.ErrCourseNotFound
		}
		return school.Course{}, errors.Wrap(err, "getting course by name")
	}
	return c, nil
}

func (repo *schoolRepository) AnyCourses(ctx context.Context) (bool, error) {
	return repo.any(ctx, "course")
}

func (repo *schoolRepository) LinkCourseSubject(ctx context.Context, courseID, subjectID int) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course_subject (course_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		courseID, subjectID,
	)
	return errors.Wrap(err, "linking course subject")
}

func (repo *schoolRepository) SetClassCourse(ctx context.Context, classID int, courseID *int) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE school_class SET course_id = $1 WHERE id = $2`, courseID, classID)
	if err != nil {
		return errors.Wrap(err, "setting class course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrClassNotFound
	}
	return nil
}

// ------------------------------------------------------------ school classes

func (repo *schoolRepository) CreateSchoolClass(ctx context.Context, sc school.SchoolClass) (school.SchoolClass, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO school_class (name, start_date, end_date, course_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		sc.Name, sc.StartDate, sc.EndDate, sc.CourseID,
	).Scan(&sc.ID)
	if err != nil {
		return school.SchoolClass{}, errors.Wrap(err, "inserting school class")
	}
	return sc, nil
}

func (repo *schoolRepository) GetSchoolClassByName(ctx context.Context, name string) (school.SchoolClass, error) {
	var sc school.SchoolClass
	err := repo.db.GetContext(ctx, &sc, `SELECT * FROM school_class WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.SchoolClass{}, school.ErrClassNotFound
		}
		return school.SchoolClass{}, errors.Wrap(err, "getting school class by name")
	}
	return sc, nil
}

func (repo *schoolRepository) AnySchoolClasses(ctx context.Context) (bool, error) {
	return repo.any(ctx, "school_class")
}

// ------------------------------------------------------------------ payments

func (repo *schoolRepository) CreatePayment(ctx context.Context, p school.Payment) (school.Payment, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO payment (student_id, amount, payment_date, status, transaction_id, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.StudentID, p.Amount, p.PaymentDate, p.Status, p.TransactionID, p.PaymentMethod,
	).Scan(&p.ID)
	if err != nil {
		return school.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *schoolRepository) QueryPaymentsByStudent(ctx context.Context, studentID int) ([]school.Payment, error) {
	var payments []school.Payment
	err := repo.db.SelectContext(ctx, &payments, `
		SELECT * FROM payment WHERE student_id = $1 ORDER BY payment_date DESC`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments by student")
	}
	return payments, nil
}

func (repo *schoolRepository) QueryPendingPayments(ctx context.Context) ([]school.Payment, error) {
	var payments []school.Payment
	err := repo.db.SelectContext(ctx, &payments, `
		SELECT * FROM payment WHERE status = $1 ORDER BY payment_date`,
		school.PaymentPending,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending payments")
	}
	return payments, nil
}

// --------------------------------------------------------------- profile sync

// SyncUserProfile copies the user's name into whichever role profile
// row references it. At most one row matches per table. Employee rows
// also carry the user's phone.
func (repo *schoolRepository) SyncUserProfile(ctx context.Context, usr user.User) error {
	for _, table := range []string{"teacher", "student"} {
		_, err := repo.db.ExecContext(ctx,
			`UPDATE `+table+` SET first_name = $1, last_name = $2 WHERE user_id = $3`,
			usr.FirstName, usr.LastName, usr.ID,
		)
		if err != nil {
			return errors.Wrapf(err, "syncing %s profile", table)
		}
	}
	_, err := repo.db.ExecContext(ctx,
		`UPDATE employee SET first_name = $1, last_name = $2, phone = $3 WHERE user_id = $4`,
		usr.FirstName, usr.LastName, usr.Phone, usr.ID,
	)
	if err != nil {
		return errors.Wrap(err, "syncing employee profile")
	}
	return nil
}
