package inmemdb

import (
	"context"
	"sort"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
)

type schoolRepository struct {
	db *DB
}

var (
	_ school.Repository      = (*schoolRepository)(nil)
	_ user.ProfileRepository = (*schoolRepository)(nil)
)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// ------------------------------------------------------------------ teachers

func (repo *schoolRepository) CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = repo.db.nextPK()
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) GetTeacherByUserID(ctx context.Context, userID string) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.teachers {
		if t.UserID == userID {
			return *t, nil
		}
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) AnyTeachers(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.teachers) > 0, nil
}

func (repo *schoolRepository) AssignTeacherSubject(ctx context.Context, teacherID, subjectID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.teacherSubjects = append(repo.db.teacherSubjects, link{teacherID, subjectID})
	return nil
}

func (repo *schoolRepository) AssignTeacherClass(ctx context.Context, teacherID, classID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.teacherClasses = append(repo.db.teacherClasses, link{teacherID, classID})
	return nil
}

func (repo *schoolRepository) QueryTeacherClasses(ctx context.Context, teacherID int) ([]school.SchoolClass, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var classes []school.SchoolClass
	for _, lnk := range repo.db.teacherClasses {
		if lnk.left != teacherID {
			continue
		}
		if sc, ok := repo.db.classes[lnk.right]; ok {
			classes = append(classes, *sc)
		}
	}
	return classes, nil
}

func (repo *schoolRepository) QueryTeacherSubjects(ctx context.Context, teacherID int) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var subjects []school.Subject
	for _, lnk := range repo.db.teacherSubjects {
		if lnk.left != teacherID {
			continue
		}
		if s, ok := repo.db.subjects[lnk.right]; ok {
			subjects = append(subjects, *s)
		}
	}
	return subjects, nil
}

// ------------------------------------------------------------------ students

func (repo *schoolRepository) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.nextPK()
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) GetStudentByUserID(ctx context.Context, userID string) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.students {
		if s.UserID == userID {
			return *s, nil
		}
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) CountStudentsByClass(ctx context.Context, classID int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, s := range repo.db.students {
		if s.SchoolClassID != nil && *s.SchoolClassID == classID {
			count++
		}
	}
	return count, nil
}

func (repo *schoolRepository) AnyStudents(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.students) > 0, nil
}

// ----------------------------------------------------------------- employees

func (repo *schoolRepository) CreateEmployee(ctx context.Context, e school.Employee) (school.Employee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = repo.db.nextPK()
	repo.db.employees[e.ID] = &e
	return e, nil
}

func (repo *schoolRepository) GetEmployeeByUserID(ctx context.Context, userID string) (school.Employee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, e := range repo.db.employees {
		if e.UserID == userID {
			return *e, nil
		}
	}
	return school.Employee{}, school.ErrEmployeeNotFound
}

func (repo *schoolRepository) AnyEmployees(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.employees) > 0, nil
}

// ------------------------------------------------------------------ subjects

func (repo *schoolRepository) CreateSubject(ctx context.Context, s school.Subject) (school.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.nextPK()
	repo.db.subjects[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) GetSubjectByName(ctx context.Context, name string) (school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.subjects {
		if s.Name == name {
			return *s, nil
		}
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) AnySubjects(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.subjects) > 0, nil
}

// ------------------------------------------------------------------- courses

func (repo *schoolRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *schoolRepository) GetCourseByID(ctx context.Context, id int) (school.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return school.Course{}, school.ErrCourseNotFound
}

func (repo *schoolRepository) GetCourseByName(ctx context.Context, name string) (school.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.courses {
		if c.Name == name {
			return *c, nil
		}
	}
	return school.Course{}, school.ErrCourseNotFound
}

func (repo *schoolRepository) AnyCourses(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.courses) > 0, nil
}

func (repo *schoolRepository) LinkCourseSubject(ctx context.Context, courseID, subjectID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.courseSubjects = append(repo.db.courseSubjects, link{courseID, subjectID})
	return nil
}

func (repo *schoolRepository) SetClassCourse(ctx context.Context, classID int, courseID *int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sc, ok := repo.db.classes[classID]
	if !ok {
		return school.ErrClassNotFound
	}
	sc.CourseID = courseID
	return nil
}

// ------------------------------------------------------------ school classes

func (repo *schoolRepository) CreateSchoolClass(ctx context.Context, sc school.SchoolClass) (school.SchoolClass, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sc.ID = repo.db.nextPK()
	repo.db.classes[sc.ID] = &sc
	return sc, nil
}

func (repo *schoolRepository) GetSchoolClassByName(ctx context.Context, name string) (school.SchoolClass, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sc := range repo.db.classes {
		if sc.Name == name {
			return *sc, nil
		}
	}
	return school.SchoolClass{}, school.ErrClassNotFound
}

func (repo *schoolRepository) AnySchoolClasses(ctx context.Context) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.classes) > 0, nil
}

// ------------------------------------------------------------------ payments

func (repo *schoolRepository) CreatePayment(ctx context.Context, p school.Payment) (school.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = repo.db.nextPK()
	repo.db.payments[p.ID] = &p
	return p, nil
}

func (repo *schoolRepository) QueryPaymentsByStudent(ctx context.Context, studentID int) ([]school.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var payments []school.Payment
	for _, p := range repo.db.payments {
		if p.StudentID == studentID {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaymentDate.After(payments[j].PaymentDate) })
	return payments, nil
}

func (repo *schoolRepository) QueryPendingPayments(ctx context.Context) ([]school.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var payments []school.Payment
	for _, p := range repo.db.payments {
		if p.Status == school.PaymentPending {
			payments = append(payments, *p)
		}
	}
	return payments, nil
}

// --------------------------------------------------------------- profile sync

func (repo *schoolRepository) SyncUserProfile(ctx context.Context, usr user.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.db.teachers {
		if t.UserID == usr.ID {
			t.FirstName, t.LastName = usr.FirstName, usr.LastName
		}
	}
	for _, s := range repo.db.students {
		if s.UserID == usr.ID {
			s.FirstName, s.LastName = usr.FirstName, usr.LastName
		}
	}
	for _, e := range repo.db.employees {
		if e.UserID == usr.ID {
			e.FirstName, e.LastName = usr.FirstName, usr.LastName
			e.Phone = usr.Phone
		}
	}
	return nil
}
