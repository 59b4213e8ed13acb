package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
	testutil "github.com/shulesys/shule/tests"
)

func Test_paymentApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Boss", "admin@test.cd", "LolC@t123", user.RoleAdmin)
	employee := testutil.CreateUser(t, usrRepo, "Emp", "Loyee", "emp@test.cd", "LolC@t123", user.RoleEmployee)
	studentUsr := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "LolC@t123", user.RoleStudent)
	student, err := schlRepo.CreateStudent(context.Background(), school.Student{
		UserID:     studentUsr.ID,
		FirstName:  studentUsr.FirstName,
		LastName:   studentUsr.LastName,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	okPayment := school.NewPayment{StudentID: student.ID, Amount: 150.00, Status: school.PaymentPending, PaymentMethod: "Cash"}
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, body: marchallObj(t, okPayment), wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student role denied", token: getToken(t, studentUsr), wantCode: http.StatusForbidden,
			body: marchallObj(t, okPayment), wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: getToken(t, employee), wantCode: http.StatusBadRequest,
			body: marchallObj(t, school.NewPayment{}),
		},
		{
			name: "amount below minimum", token: getToken(t, employee), wantCode: http.StatusBadRequest,
			body: marchallObj(t, school.NewPayment{StudentID: student.ID, Amount: 0.001, Status: school.PaymentPending, PaymentMethod: "Cash"}),
		},
		{
			name: "amount above maximum", token: getToken(t, employee), wantCode: http.StatusBadRequest,
			body: marchallObj(t, school.NewPayment{StudentID: student.ID, Amount: 10000.01, Status: school.PaymentPending, PaymentMethod: "Cash"}),
		},
		{name: "employee create ok", token: getToken(t, employee), wantCode: http.StatusCreated, body: marchallObj(t, okPayment)},
		{name: "admin create ok", token: getToken(t, admin), wantCode: http.StatusCreated, body: marchallObj(t, okPayment)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/payments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var p school.Payment
				if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if p.ID == 0 {
					t.Error("failed! payment not persisted")
				}
				if p.TransactionID == "" {
					t.Error("failed! missing transaction ID")
				}
				if p.PaymentDate.IsZero() {
					t.Error("failed! missing payment date")
				}
				if p.Amount != okPayment.Amount || p.Status != okPayment.Status {
					t.Errorf("failed! payment = %+v", p)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_paymentApi_queryPending(t *testing.T) {
	app := setup(t)
	reqCtx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Boss", "admin@test.cd", "LolC@t123", user.RoleAdmin)

	mkPayment := func(studentID int, amount float64, status string) school.Payment {
		t.Helper()
		p, err := schlRepo.CreatePayment(reqCtx, school.Payment{
			StudentID:     studentID,
			Amount:        amount,
			PaymentDate:   time.Now().UTC(),
			Status:        status,
			TransactionID: "tx-test",
			PaymentMethod: "Cash",
		})
		if err != nil {
			t.Fatalf("CreatePayment() failed, %v", err)
		}
		return p
	}
	pending1 := mkPayment(1, 100, school.PaymentPending)
	mkPayment(1, 200, "Pago")
	pending2 := mkPayment(2, 300, school.PaymentPending)

	req, rec := newAuthRequest(http.MethodGet, "/v1/payments/pending", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var payments []school.Payment
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("len(payments) = %d; want 2", len(payments))
	}
	got := map[int]bool{payments[0].ID: true, payments[1].ID: true}
	if !got[pending1.ID] || !got[pending2.ID] {
		t.Errorf("pending payments = %+v", payments)
	}
	for _, p := range payments {
		if p.Status != school.PaymentPending {
			t.Errorf("non-pending payment returned: %+v", p)
		}
	}
}

func Test_paymentApi_queryByStudent(t *testing.T) {
	app := setup(t)
	reqCtx := context.Background()

	employee := testutil.CreateUser(t, usrRepo, "Emp", "Loyee", "emp@test.cd", "LolC@t123", user.RoleEmployee)
	token := getToken(t, employee)

	for i, amount := range []float64{100, 250.50} {
		if _, err := schlRepo.CreatePayment(reqCtx, school.Payment{
			StudentID:     7,
			Amount:        amount,
			PaymentDate:   time.Now().UTC().Add(time.Duration(i) * time.Minute),
			Status:        "Pago",
			TransactionID: "tx-test",
			PaymentMethod: "Card",
		}); err != nil {
			t.Fatalf("CreatePayment() failed, %v", err)
		}
	}

	tests := []httpTest{
		{
			name: "invalid student id", path: "/v1/payments/students/lol", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"id": "must be an integer"}),
		},
		{name: "no payments", path: "/v1/payments/students/999", wantCode: http.StatusOK, wantData: []byte("[]")},
		{name: "student history", path: "/v1/payments/students/7", wantCode: http.StatusOK, extra: 2},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = token

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if wantLen, ok := tt.extra.(int); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var payments []school.Payment
				if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if len(payments) != wantLen {
					t.Fatalf("len(payments) = %d; want %d", len(payments), wantLen)
				}
				// most recent first
				if payments[0].PaymentDate.Before(payments[1].PaymentDate) {
					t.Error("payments not sorted by date descending")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
