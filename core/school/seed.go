package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shulesys/shule/core"
	"github.com/shulesys/shule/core/user"
)

// Seeder populates the baseline data the app needs before it is
// usable: an admin account, a minimal academic graph, one teacher and
// one employee. Every step is guarded by an existence check so the
// seeder can run at every process start; it tolerates partial prior
// state by checking each category independently.
type Seeder struct {
	conf     *core.Config
	usrRepo  user.Repository
	schlRepo Repository
	logger   core.Logger
}

func NewSeeder(conf *core.Config, usrRepo user.Repository, schlRepo Repository, logger core.Logger) *Seeder {
	return &Seeder{
		conf:     conf,
		usrRepo:  usrRepo,
		schlRepo: schlRepo,
		logger:   logger,
	}
}

// Run seeds the database. Order matters: users before role profiles,
// classes/subjects before courses, courses before join rows.
func (s *Seeder) Run(ctx context.Context) error {
	if _, err := s.ensureUser(ctx, "admin@school.com", "Admin", "User", "Admin123!", user.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.ensureUser(ctx, "student1@school.com", "Student1", "User", "Student123!", user.RoleStudent); err != nil {
		return err
	}
	if _, err := s.ensureUser(ctx, "student2@school.com", "Student2", "User", "Student123!", user.RoleStudent); err != nil {
		return err
	}
	teacherUsr, err := s.ensureUser(ctx, "teacher1@school.com", "Teacher1", "User", "Teacher123!", user.RoleTeacher)
	if err != nil {
		return err
	}
	employeeUsr, err := s.ensureUser(ctx, "employee1@school.com", "Employee1", "User", "Employee123!", user.RoleEmployee)
	if err != nil {
		return err
	}

	if err = s.ensureSchoolClasses(ctx); err != nil {
		return err
	}
	if err = s.ensureSubjects(ctx); err != nil {
		return err
	}

	classA, err := s.schlRepo.GetSchoolClassByName(ctx, "Class A")
	if err != nil {
		return errors.Wrap(err, "finding Class A")
	}
	classB, err := s.schlRepo.GetSchoolClassByName(ctx, "Class B")
	if err != nil {
		return errors.Wrap(err, "finding Class B")
	}
	algebra, err := s.schlRepo.GetSubjectByName(ctx, "Algebra")
	if err != nil {
		return errors.Wrap(err, "finding Algebra")
	}
	physics, err := s.schlRepo.GetSubjectByName(ctx, "Physics")
	if err != nil {
		return errors.Wrap(err, "finding Physics")
	}

	if err = s.ensureCourses(ctx, classA, classB, algebra, physics); err != nil {
		return err
	}
	if err = s.ensureTeacher(ctx, teacherUsr, classA, algebra, physics); err != nil {
		return err
	}
	if err = s.ensureEmployee(ctx, employeeUsr); err != nil {
		return err
	}
	s.logger.Info("database seeding complete")
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, email, firstName, lastName, pwd string, role user.Role) (user.User, error) {
	usr, err := s.usrRepo.GetUserByEmail(ctx, email)
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != user.ErrNotFound {
		return user.User{}, errors.Wrapf(err, "finding user %s", email)
	}

	now := time.Now().UTC()
	usr = user.User{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Role:           role,
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = s.usrRepo.CreateUser(ctx, usr)
	if err != nil {
		return user.User{}, errors.Wrapf(err, "creating user %s", email)
	}
	return usr, nil
}

func (s *Seeder) ensureSchoolClasses(ctx context.Context) error {
	exists, err := s.schlRepo.AnySchoolClasses(ctx)
	if err != nil {
		return errors.Wrap(err, "checking school classes")
	}
	if exists {
		return nil
	}

	now := time.Now().UTC()
	end := now.AddDate(0, 6, 0)
	for _, name := range []string{"Class A", "Class B"} {
		sc := SchoolClass{Name: name, StartDate: now, EndDate: end}
		if _, err = s.schlRepo.CreateSchoolClass(ctx, sc); err != nil {
			return errors.Wrapf(err, "creating %s", name)
		}
	}
	return nil
}

func (s *Seeder) ensureSubjects(ctx context.Context) error {
	exists, err := s.schlRepo.AnySubjects(ctx)
	if err != nil {
		return errors.Wrap(err, "checking subjects")
	}
	if exists {
		return nil
	}

	subjects := []Subject{
		{Name: "Algebra", Description: "Basic Algebra", Credits: 5, TotalClasses: 30},
		{Name: "Physics", Description: "Basic Physics", Credits: 4, TotalClasses: 25},
	}
	for _, subj := range subjects {
		if _, err = s.schlRepo.CreateSubject(ctx, subj); err != nil {
			return errors.Wrapf(err, "creating subject %s", subj.Name)
		}
	}
	return nil
}

func (s *Seeder) ensureCourses(ctx context.Context, classA, classB SchoolClass, algebra, physics Subject) error {
	exists, err := s.schlRepo.AnyCourses(ctx)
	if err != nil {
		return errors.Wrap(err, "checking courses")
	}
	if exists {
		return nil
	}

	now := time.Now().UTC()
	math := Course{Name: "Mathematics", Description: "Mathematics Course", Duration: 16, IsActive: true, CreatedAt: now, UpdatedAt: now}
	science := Course{Name: "Science", Description: "Science Course", Duration: 16, IsActive: true, CreatedAt: now, UpdatedAt: now}

	math, err = s.schlRepo.CreateCourse(ctx, math)
	if err != nil {
		return errors.Wrap(err, "creating Mathematics")
	}
	science, err = s.schlRepo.CreateCourse(ctx, science)
	if err != nil {
		return errors.Wrap(err, "creating Science")
	}

	if err = s.schlRepo.SetClassCourse(ctx, classA.ID, &math.ID); err != nil {
		return errors.Wrap(err, "linking Class A to Mathematics")
	}
	if err = s.schlRepo.SetClassCourse(ctx, classB.ID, &science.ID); err != nil {
		return errors.Wrap(err, "linking Class B to Science")
	}
	if err = s.schlRepo.LinkCourseSubject(ctx, math.ID, algebra.ID); err != nil {
		return errors.Wrap(err, "linking Mathematics to Algebra")
	}
	if err = s.schlRepo.LinkCourseSubject(ctx, science.ID, physics.ID); err != nil {
		return errors.Wrap(err, "linking Science to Physics")
	}
	return nil
}

func (s *Seeder) ensureTeacher(ctx context.Context, teacherUsr user.User, classA SchoolClass, algebra, physics Subject) error {
	exists, err := s.schlRepo.AnyTeachers(ctx)
	if err != nil {
		return errors.Wrap(err, "checking teachers")
	}
	if exists {
		return nil
	}

	teacher := Teacher{
		UserID:         teacherUsr.ID,
		FirstName:      teacherUsr.FirstName,
		LastName:       teacherUsr.LastName,
		HireDate:       time.Now().UTC(),
		Status:         TeacherActive,
		AcademicDegree: DegreeMasters,
	}
	teacher, err = s.schlRepo.CreateTeacher(ctx, teacher)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}

	if err = s.schlRepo.AssignTeacherSubject(ctx, teacher.ID, algebra.ID); err != nil {
		return errors.Wrap(err, "assigning Algebra")
	}
	if err = s.schlRepo.AssignTeacherSubject(ctx, teacher.ID, physics.ID); err != nil {
		return errors.Wrap(err, "assigning Physics")
	}
	if err = s.schlRepo.AssignTeacherClass(ctx, teacher.ID, classA.ID); err != nil {
		return errors.Wrap(err, "assigning Class A")
	}
	return nil
}

func (s *Seeder) ensureEmployee(ctx context.Context, employeeUsr user.User) error {
	exists, err := s.schlRepo.AnyEmployees(ctx)
	if err != nil {
		return errors.Wrap(err, "checking employees")
	}
	if exists {
		return nil
	}

	employee := Employee{
		UserID:     employeeUsr.ID,
		FirstName:  employeeUsr.FirstName,
		LastName:   employeeUsr.LastName,
		Department: DeptAdministration,
		HireDate:   time.Now().UTC(),
		Status:     EmployeeActive,
		Phone:      "1234567890",
	}
	if _, err = s.schlRepo.CreateEmployee(ctx, employee); err != nil {
		return errors.Wrap(err, "creating employee")
	}
	return nil
}
