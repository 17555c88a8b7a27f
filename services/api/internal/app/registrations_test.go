package app

import (
	"errors"
	"testing"
	"time"

	"aspirelink/pkg/domain"
)

func TestSubmitStudentApplication(t *testing.T) {
	a, st := newTestApp(t)
	created, err := a.SubmitStudentApplication(domain.StudentApplication{
		Email:    "  Ada@X.com ",
		FullName: " Ada Lovelace ",
		Program:  "Mathematics",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID == "" || created.Email != "ada@x.com" || created.FullName != "Ada Lovelace" {
		t.Fatalf("unexpected application: %+v", created)
	}
	if created.Status != domain.ApplicationPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if got, ok, _ := st.GetStudentApplication(created.ID); !ok || got.Email != "ada@x.com" {
		t.Fatalf("application not persisted: ok=%v %+v", ok, got)
	}
}

func TestSubmitApplicationValidation(t *testing.T) {
	a, _ := newTestApp(t)
	cases := []struct {
		name string
		app  domain.StudentApplication
	}{
		{"missing email", domain.StudentApplication{FullName: "Ada"}},
		{"malformed email", domain.StudentApplication{Email: "not-an-email", FullName: "Ada"}},
		{"missing full name", domain.StudentApplication{Email: "ada@x.com"}},
	}
	for _, tc := range cases {
		if _, err := a.SubmitStudentApplication(tc.app); !IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSubmitApplicationDuplicatePending(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ada@x.com", FullName: "Ada"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ADA@x.com", FullName: "Ada"}); !errors.Is(err, ErrPendingApplicationExists) {
		t.Fatalf("expected ErrPendingApplicationExists, got %v", err)
	}
}

func TestSubmitApplicationCrossTypeConflict(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ada@x.com", FullName: "Ada"}); err != nil {
		t.Fatalf("student submit: %v", err)
	}
	// A pending student application blocks a mentor one for the same email.
	if _, err := a.SubmitMentorApplication(domain.MentorApplication{Email: "ada@x.com", FullName: "Ada"}); !errors.Is(err, ErrPendingApplicationExists) {
		t.Fatalf("expected ErrPendingApplicationExists, got %v", err)
	}
}

func TestSubmitApplicationAccountWithRoleConflict(t *testing.T) {
	a, st := newTestApp(t)
	now := time.Now().UTC()
	if err := st.SaveAccount(domain.Account{ID: "u1", Email: "ada@x.com", Role: domain.RoleMentor, FullName: "Ada", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ada@x.com", FullName: "Ada"}); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestSubmitApplicationRoleUnsetAccountAllowed(t *testing.T) {
	a, st := newTestApp(t)
	now := time.Now().UTC()
	if err := st.SaveAccount(domain.Account{ID: "u1", Email: "ada@x.com", FullName: "Ada", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ada@x.com", FullName: "Ada"}); err != nil {
		t.Fatalf("role-unset account must not block registration: %v", err)
	}
}

func TestListApplicationsByStatus(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "ada@x.com", FullName: "Ada"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := a.SubmitStudentApplication(domain.StudentApplication{Email: "bob@x.com", FullName: "Bob"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := a.Link(domain.Identity{Subject: "u1", Email: "ada@x.com"}, "ada@x.com", "", ""); err != nil {
		t.Fatalf("link: %v", err)
	}

	pending, err := a.ListStudentApplications(domain.ApplicationPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Email != "bob@x.com" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}
	linked, err := a.ListStudentApplications(domain.ApplicationLinked)
	if err != nil {
		t.Fatalf("list linked: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != created.ID {
		t.Fatalf("unexpected linked list: %+v", linked)
	}
	all, err := a.ListStudentApplications("")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(all))
	}
}
