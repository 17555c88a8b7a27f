package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/app"
	"aspirelink/services/api/internal/store"
)

// fakeVerifier maps bearer tokens to canned identities.
type fakeVerifier struct {
	identities map[string]domain.Identity
}

func (v *fakeVerifier) Verify(token string) (domain.Identity, error) {
	ident, ok := v.identities[token]
	if !ok {
		return domain.Identity{}, errors.New("unknown token")
	}
	return ident, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore, *fakeVerifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := store.NewMemoryStore()
	a, err := app.New(app.Config{Store: st, AdminEmails: []string{"root@aspirelink.org"}})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	verifier := &fakeVerifier{identities: map[string]domain.Identity{}}
	srv, err := New(Config{
		App:           a,
		TokenVerifier: verifier,
		RedisAddr:     mr.Addr(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st, verifier
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	ts, _, verifier := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/me", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", resp.StatusCode)
	}

	verifier.identities["tok"] = domain.Identity{Subject: "u1", Email: "a@x.com"}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/me", "tok", nil)
	// Authenticated but no account yet.
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no account: status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminOnlyForbiddenForStudent(t *testing.T) {
	ts, st, verifier := newTestServer(t)
	now := time.Now().UTC()
	if err := st.SaveAccount(domain.Account{ID: "u1", Email: "a@x.com", Role: domain.RoleStudent, FullName: "Ada", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	verifier.identities["student"] = domain.Identity{Subject: "u1", Email: "a@x.com"}
	verifier.identities["admin"] = domain.Identity{Subject: "u9", Email: "root@aspirelink.org"}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/admin/accounts", "student", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student: status = %d, want 403", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/admin/accounts", "admin", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &body)
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
}

func TestStudentRegistrationFlow(t *testing.T) {
	ts, _, verifier := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/student-registration", "", map[string]any{
		"email":    "ada@x.com",
		"fullName": "Ada Lovelace",
		"program":  "Mathematics",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registration: status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	decodeBody(t, resp, &created)
	if !created.Success || created.ID == "" {
		t.Fatalf("unexpected response: %+v", created)
	}

	// Duplicate pending registration conflicts.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/student-registration", "", map[string]any{
		"email":    "ADA@x.com",
		"fullName": "Ada Lovelace",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", resp.StatusCode)
	}

	// check-email resolves the pending application.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/check-email-registration", "", map[string]string{"email": "ada@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check email: status = %d, want 200", resp.StatusCode)
	}
	var check struct {
		Exists        bool   `json:"exists"`
		HasAccount    bool   `json:"hasAccount"`
		Role          string `json:"role"`
		ApplicationID string `json:"applicationId"`
	}
	decodeBody(t, resp, &check)
	if !check.Exists || check.HasAccount || check.Role != "student" || check.ApplicationID != created.ID {
		t.Fatalf("unexpected check result: %+v", check)
	}

	// Signing in and linking consumes the application.
	verifier.identities["tok"] = domain.Identity{Subject: "u1", Email: "ada@x.com", DisplayName: "Ada"}
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/link-registration", "tok", map[string]string{
		"email":            "ada@x.com",
		"registrationId":   created.ID,
		"registrationType": "student",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("link: status = %d, want 200", resp.StatusCode)
	}
	var link struct {
		Success bool   `json:"success"`
		Role    string `json:"role"`
	}
	decodeBody(t, resp, &link)
	if !link.Success || link.Role != "student" {
		t.Fatalf("unexpected link result: %+v", link)
	}

	// Replay is a miss, not an error.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/link-registration", "tok", map[string]string{"email": "ada@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replay: status = %d, want 200", resp.StatusCode)
	}
	decodeBody(t, resp, &link)
	if link.Success {
		t.Fatalf("replay must be a miss: %+v", link)
	}

	// The linked account is now visible.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/me", "tok", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status = %d, want 200", resp.StatusCode)
	}
	var account domain.Account
	decodeBody(t, resp, &account)
	if account.ID != "u1" || account.Role != domain.RoleStudent || account.FullName != "Ada Lovelace" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestRegistrationRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	st := store.NewMemoryStore()
	a, err := app.New(app.Config{Store: st})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{
		App:                            a,
		TokenVerifier:                  &fakeVerifier{},
		RedisAddr:                      mr.Addr(),
		RegistrationRateLimitPerMinute: 2,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/student-registration", "", map[string]string{
			"email":    fmt.Sprintf("user%d@x.com", i),
			"fullName": "User",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, resp.StatusCode)
		}
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/student-registration", "", map[string]string{
		"email":    "user3@x.com",
		"fullName": "User",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", resp.Header.Get("Retry-After"))
	}
	io.Copy(io.Discard, resp.Body)
}

func TestCohortAdminEndpoints(t *testing.T) {
	ts, st, verifier := newTestServer(t)
	verifier.identities["admin"] = domain.Identity{Subject: "u9", Email: "root@aspirelink.org"}
	now := time.Now().UTC()
	if err := st.SaveAccount(domain.Account{ID: "m1", Email: "m1@x.com", Role: domain.RoleMentor, FullName: "Mel", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed mentor: %v", err)
	}
	if err := st.SaveAccount(domain.Account{ID: "s1", Email: "s1@x.com", Role: domain.RoleStudent, FullName: "Sam", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/cohorts", "admin", map[string]any{
		"name":      "Spring 2026",
		"startDate": "2026-02-01",
		"endDate":   "2026-07-31",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cohort: status = %d, want 201", resp.StatusCode)
	}
	var cohort domain.Cohort
	decodeBody(t, resp, &cohort)
	if cohort.ID == "" || cohort.Name != "Spring 2026" {
		t.Fatalf("unexpected cohort: %+v", cohort)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/cohorts/"+cohort.ID+"/assignments", "admin", map[string]string{
		"mentorUserId":  "m1",
		"studentUserId": "s1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create assignment: status = %d, want 201", resp.StatusCode)
	}
	var assignment domain.Assignment
	decodeBody(t, resp, &assignment)
	if assignment.ID == "" || assignment.CohortID != cohort.ID {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/cohorts/"+cohort.ID+"/assignments", "admin", map[string]string{
		"mentorUserId":  "m1",
		"studentUserId": "s1",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate assignment: status = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/cohorts/"+cohort.ID+"/members", "admin", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("members: status = %d, want 200", resp.StatusCode)
	}
	var members struct {
		Items []domain.CohortMember `json:"items"`
		Count int                   `json:"count"`
	}
	decodeBody(t, resp, &members)
	if members.Count != 2 {
		t.Fatalf("members count = %d, want 2: %+v", members.Count, members.Items)
	}

	// Deleting a cohort with assignments is rejected.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/cohorts/"+cohort.ID, "admin", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete cohort: status = %d, want 409", resp.StatusCode)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts, st, verifier := newTestServer(t)
	now := time.Now().UTC()
	if err := st.SaveAccount(domain.Account{ID: "m1", Email: "m1@x.com", Role: domain.RoleMentor, FullName: "Mel", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed mentor: %v", err)
	}
	if err := st.SaveAccount(domain.Account{ID: "s1", Email: "s1@x.com", Role: domain.RoleStudent, FullName: "Sam", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	if err := st.SaveCohort(domain.Cohort{ID: "c1", Name: "Spring 2026", IsActive: true, CreatedAt: now}); err != nil {
		t.Fatalf("seed cohort: %v", err)
	}
	if err := st.SaveAssignment(domain.Assignment{ID: "a1", CohortID: "c1", MentorUserID: "m1", StudentUserID: "s1", IsActive: true, AssignedAt: now}); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	verifier.identities["mentor"] = domain.Identity{Subject: "m1", Email: "m1@x.com"}
	verifier.identities["student"] = domain.Identity{Subject: "s1", Email: "s1@x.com"}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", "mentor", map[string]any{
		"assignmentId":    "a1",
		"scheduledDate":   "2026-03-01",
		"scheduledTime":   "14:00",
		"durationMinutes": 45,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status = %d, want 201", resp.StatusCode)
	}
	var session domain.MentoringSession
	decodeBody(t, resp, &session)

	// Students cannot schedule.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions", "student", map[string]any{
		"assignmentId":  "a1",
		"scheduledDate": "2026-03-02",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student create: status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/sessions/"+session.ID, "mentor", map[string]string{"status": "COMPLETED"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update session: status = %d, want 200", resp.StatusCode)
	}
	decodeBody(t, resp, &session)
	if session.Status != domain.SessionCompleted {
		t.Fatalf("status = %s, want completed", session.Status)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+session.ID, "mentor", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete session: status = %d, want 204", resp.StatusCode)
	}
}
