package school

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/shulesys/shule/core/user"
)

const teacherProfileMissing = "teacher profile not provisioned; ask an admin to assign your teacher record"

type (
	ClassCard struct {
		ID            int       `json:"id"`
		ClassName     string    `json:"class_name"`
		CourseName    string    `json:"course_name"`
		StudentsCount int       `json:"students_count"`
		StartDate     time.Time `json:"start_date"`
		EndDate       time.Time `json:"end_date"`
	}

	SubjectItem struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	TeacherDashboard struct {
		TeacherName   string        `json:"teacher_name"`
		TotalClasses  int           `json:"total_classes"`
		TotalSubjects int           `json:"total_subjects"`
		TotalStudents int           `json:"total_students"`
		Classes       []ClassCard   `json:"classes"`
		Subjects      []SubjectItem `json:"subjects"`
	}

	// DashboardView is the role-routed result. Admin/Employee/Student
	// dashboards are pass-through views here; only the teacher
	// dashboard carries an aggregate. Diagnostic marks a degraded but
	// displayable view, never an error.
	DashboardView struct {
		Dashboard  user.Dashboard    `json:"dashboard"`
		Teacher    *TeacherDashboard `json:"teacher,omitempty"`
		Diagnostic string            `json:"diagnostic,omitempty"`
	}

	DashboardService interface {
		GetDashboardFor(ctx context.Context, principal user.Principal) (DashboardView, error)
	}

	dashboardService struct {
		repo Repository
	}
)

var _ DashboardService = (*dashboardService)(nil)

func NewDashboardService(repo Repository) DashboardService {
	return &dashboardService{repo: repo}
}

// GetDashboardFor dispatches purely on the principal's role claim.
// Access control happens before this resolver is invoked.
func (svc *dashboardService) GetDashboardFor(ctx context.Context, principal user.Principal) (DashboardView, error) {
	view := DashboardView{Dashboard: principal.Dashboard()}
	if view.Dashboard != user.TeacherDashboard {
		return view, nil
	}

	agg, diag, err := svc.teacherDashboard(ctx, principal)
	if err != nil {
		return DashboardView{}, err
	}
	view.Teacher = agg
	view.Diagnostic = diag
	return view, nil
}

func (svc *dashboardService) teacherDashboard(ctx context.Context, principal user.Principal) (*TeacherDashboard, string, error) {
	teacher, err := svc.repo.GetTeacherByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Cause(err) == ErrTeacherNotFound {
			// role granted before the profile row was created: a
			// valid, displayable state
			return &TeacherDashboard{
				TeacherName: "Unknown",
				Classes:     []ClassCard{},
				Subjects:    []SubjectItem{},
			}, teacherProfileMissing, nil
		}
		return nil, "", errors.Wrap(err, "finding teacher profile")
	}

	classes, err := svc.repo.QueryTeacherClasses(ctx, teacher.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "querying teacher classes")
	}
	subjects, err := svc.repo.QueryTeacherSubjects(ctx, teacher.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "querying teacher subjects")
	}

	// the join traversal can yield repeats; count distinct-by-ID only
	classes = dedupClasses(classes)
	subjects = dedupSubjects(subjects)

	cards := make([]ClassCard, 0, len(classes))
	totalStudents := 0
	for _, sc := range classes {
		courseName := "-"
		if sc.CourseID != nil {
			course, err := svc.repo.GetCourseByID(ctx, *sc.CourseID)
			if err != nil && errors.Cause(err) != ErrCourseNotFound {
				return nil, "", errors.Wrap(err, "finding course")
			}
			if err == nil {
				courseName = course.Name
			}
		}
		count, err := svc.repo.CountStudentsByClass(ctx, sc.ID)
		if err != nil {
			return nil, "", errors.Wrap(err, "counting class students")
		}
		// students enrolled in several of this teacher's classes are
		// counted once per class
		totalStudents += count
		cards = append(cards, ClassCard{
			ID:            sc.ID,
			ClassName:     sc.Name,
			CourseName:    courseName,
			StudentsCount: count,
			StartDate:     sc.StartDate,
			EndDate:       sc.EndDate,
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ClassName < cards[j].ClassName })

	items := make([]SubjectItem, 0, len(subjects))
	for _, s := range subjects {
		items = append(items, SubjectItem{ID: s.ID, Name: s.Name})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return &TeacherDashboard{
		TeacherName:   teacher.FirstName + " " + teacher.LastName,
		TotalClasses:  len(cards),
		TotalSubjects: len(items),
		TotalStudents: totalStudents,
		Classes:       cards,
		Subjects:      items,
	}, "", nil
}

func dedupClasses(classes []SchoolClass) []SchoolClass {
	seen := make(map[int]bool, len(classes))
	out := classes[:0]
	for _, sc := range classes {
		if !seen[sc.ID] {
			seen[sc.ID] = true
			out = append(out, sc)
		}
	}
	return out
}

func dedupSubjects(subjects []Subject) []Subject {
	seen := make(map[int]bool, len(subjects))
	out := subjects[:0]
	for _, s := range subjects {
		if !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}
