package school_test

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
	logsvc "github.com/shulesys/shule/services/logger"
	inmemdb "github.com/shulesys/shule/storage/database/inmem"
	testutil "github.com/shulesys/shule/tests"
)

func newSeededRepos(t *testing.T) (user.Repository, school.Repository) {
	t.Helper()

	db := inmemdb.NewDB()
	uRepo := inmemdb.NewUserRepository(db)
	sRepo := inmemdb.NewSchoolRepository(db)
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))

	seeder := school.NewSeeder(testutil.NewConfig(), uRepo, sRepo, logger)
	if err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return uRepo, sRepo
}

func TestSeeder_Run(t *testing.T) {
	uRepo, sRepo := newSeededRepos(t)
	ctx := context.Background()

	wantRoles := map[string]user.Role{
		"admin@school.com":     user.RoleAdmin,
		"student1@school.com":  user.RoleStudent,
		"student2@school.com":  user.RoleStudent,
		"teacher1@school.com":  user.RoleTeacher,
		"employee1@school.com": user.RoleEmployee,
	}
	for email, role := range wantRoles {
		usr, err := uRepo.GetUserByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetUserByEmail(%s) error = %v", email, err)
		}
		if usr.Role != role {
			t.Errorf("%s role = %v, want %v", email, usr.Role, role)
		}
		if !usr.EmailConfirmed {
			t.Errorf("%s not pre-confirmed", email)
		}
	}

	// seeded admin can log in with the documented credentials
	admin, _ := uRepo.GetUserByEmail(ctx, "admin@school.com")
	if err := admin.CheckPassword("Admin123!"); err != nil {
		t.Error("admin password does not match the seeded credentials")
	}

	// academic graph: Class A -> Mathematics -> Algebra
	classA, err := sRepo.GetSchoolClassByName(ctx, "Class A")
	if err != nil {
		t.Fatalf("GetSchoolClassByName(Class A) error = %v", err)
	}
	if classA.CourseID == nil {
		t.Fatal("Class A has no course")
	}
	course, err := sRepo.GetCourseByID(ctx, *classA.CourseID)
	if err != nil {
		t.Fatalf("GetCourseByID() error = %v", err)
	}
	if course.Name != "Mathematics" {
		t.Errorf("Class A course = %s, want Mathematics", course.Name)
	}

	// teacher profile assigned to Class A with both subjects
	teacherUsr, _ := uRepo.GetUserByEmail(ctx, "teacher1@school.com")
	teacher, err := sRepo.GetTeacherByUserID(ctx, teacherUsr.ID)
	if err != nil {
		t.Fatalf("GetTeacherByUserID() error = %v", err)
	}
	classes, err := sRepo.QueryTeacherClasses(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("QueryTeacherClasses() error = %v", err)
	}
	if len(classes) != 1 || classes[0].Name != "Class A" {
		t.Errorf("teacher classes = %+v, want Class A", classes)
	}
	subjects, err := sRepo.QueryTeacherSubjects(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("QueryTeacherSubjects() error = %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("len(teacher subjects) = %d, want 2", len(subjects))
	}
}

func TestSeeder_Run_isIdempotent(t *testing.T) {
	uRepo, sRepo := newSeededRepos(t)
	ctx := context.Background()

	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	seeder := school.NewSeeder(testutil.NewConfig(), uRepo, sRepo, logger)
	if err := seeder.Run(ctx); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	users, err := uRepo.QueryAllUsers(ctx)
	if err != nil {
		t.Fatalf("QueryAllUsers() error = %v", err)
	}
	if len(users) != 5 {
		t.Errorf("len(users) = %d, want 5", len(users))
	}

	teacherUsr, _ := uRepo.GetUserByEmail(ctx, "teacher1@school.com")
	teacher, err := sRepo.GetTeacherByUserID(ctx, teacherUsr.ID)
	if err != nil {
		t.Fatalf("GetTeacherByUserID() error = %v", err)
	}
	subjects, err := sRepo.QueryTeacherSubjects(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("QueryTeacherSubjects() error = %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("len(teacher subjects) = %d, want 2; assignments were re-seeded", len(subjects))
	}
}
