package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:            dbURL,
		JWTSecret:              "test-secret",
		Environment:            "test",
		SeedSuperAdminEmail:    "root@test.local",
		SeedSuperAdminPassword: "ChangeMe123!",
		SessionTTL:             time.Hour,
		EmailFrom:              "no-reply@test.local",
		RunMigrations:          true,
		MigrationsDir:          "../../../../migrations",
		RunSeed:                true,
		MaxBodyBytes:           1048576,
		RateLimitPerMinute:     10000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.DB.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) (int, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func mustData(t *testing.T, status int, env envelope, wantStatus int, out any) {
	t.Helper()
	if status != wantStatus {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		t.Fatalf("status %d, want %d (%s)", status, wantStatus, msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "",
		map[string]string{"email": email, "password": password})
	var out struct {
		Token string `json:"token"`
	}
	mustData(t, status, env, http.StatusOK, &out)
	if out.Token == "" {
		t.Fatal("login returned no token")
	}
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/login", "",
		map[string]string{"email": cfg.SeedSuperAdminEmail, "password": "definitely-wrong"})
	if status != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", status)
	}
	if env.Error == nil || env.Error.Message != "Invalid credentials999" {
		t.Fatalf("unexpected error payload: %+v", env.Error)
	}
}

func TestExpenseClaimJourney(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	superToken := login(t, client, ts.URL, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword)

	// Super admin provisions a company and its admin.
	var company struct {
		ID string `json:"id"`
	}
	status, env := doJSON(t, client, http.MethodPost, base+"/companies", superToken, map[string]any{
		"name":  "Journey Co " + suffix,
		"email": "journey-" + suffix + "@example.com",
	})
	mustData(t, status, env, http.StatusCreated, &company)

	adminEmail := "admin-" + suffix + "@example.com"
	status, env = doJSON(t, client, http.MethodPost, base+"/users", superToken, map[string]any{
		"email":     adminEmail,
		"password":  "AdminPass123!",
		"name":      "Journey Admin",
		"role":      "COMPANY_ADMIN",
		"companyId": company.ID,
	})
	mustData(t, status, env, http.StatusCreated, nil)

	adminToken := login(t, client, ts.URL, adminEmail, "AdminPass123!")

	// Company admin sets up a manager, a reporting employee and an expense type.
	managerEmail := "manager-" + suffix + "@example.com"
	var manager struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/employees", adminToken, map[string]any{
		"firstName": "Morgan",
		"lastName":  "Manager",
		"email":     managerEmail,
		"password":  "ManagerPass123!",
	})
	mustData(t, status, env, http.StatusCreated, &manager)

	employeeEmail := "employee-" + suffix + "@example.com"
	var employee struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/employees", adminToken, map[string]any{
		"firstName":          "Evan",
		"lastName":           "Employee",
		"email":              employeeEmail,
		"password":           "EmployeePass123!",
		"reportingManagerId": manager.ID,
	})
	mustData(t, status, env, http.StatusCreated, &employee)

	var expenseType struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-types", adminToken, map[string]any{
		"name":             "Travel " + suffix,
		"approvalRequired": true,
	})
	mustData(t, status, env, http.StatusCreated, &expenseType)

	// Employee drafts a claim and attaches two items.
	employeeToken := login(t, client, ts.URL, employeeEmail, "EmployeePass123!")

	now := time.Now()
	var claim struct {
		ID          string  `json:"id"`
		ClaimNumber string  `json:"claimNumber"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"totalAmount"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims", employeeToken, map[string]any{
		"month": int(now.Month()),
		"year":  now.Year(),
	})
	mustData(t, status, env, http.StatusCreated, &claim)
	if claim.Status != "draft" {
		t.Fatalf("new claim status = %q, want draft", claim.Status)
	}
	if claim.ClaimNumber == "" {
		t.Fatal("expected a claim number")
	}

	for _, amount := range []float64{500, 300} {
		status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/items", employeeToken, map[string]any{
			"expenseTypeId": expenseType.ID,
			"date":          now.Format("2006-01-02"),
			"amount":        amount,
			"description":   "client visit",
		})
		mustData(t, status, env, http.StatusCreated, nil)
	}

	status, env = doJSON(t, client, http.MethodGet, base+"/expense-claims/"+claim.ID, employeeToken, nil)
	mustData(t, status, env, http.StatusOK, &claim)
	if claim.TotalAmount != 800 {
		t.Fatalf("claim total = %v, want 800", claim.TotalAmount)
	}

	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/submit", employeeToken, nil)
	mustData(t, status, env, http.StatusOK, &claim)
	if claim.Status != "pending_approval" {
		t.Fatalf("submitted claim status = %q, want pending_approval", claim.Status)
	}

	// The company admin is not the reporting manager, so approval is refused.
	status, _ = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/approve", adminToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("admin approval: status %d, want 403", status)
	}

	managerToken := login(t, client, ts.URL, managerEmail, "ManagerPass123!")
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/approve", managerToken,
		map[string]string{"remarks": "looks right"})
	mustData(t, status, env, http.StatusOK, &claim)
	if claim.Status != "approved" {
		t.Fatalf("approved claim status = %q, want approved", claim.Status)
	}

	// Disbursement is the admin's step, not the manager's.
	status, _ = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/disburse", managerToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("manager disburse: status %d, want 403", status)
	}

	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/disburse", adminToken, nil)
	mustData(t, status, env, http.StatusOK, &claim)
	if claim.Status != "disbursed" {
		t.Fatalf("disbursed claim status = %q, want disbursed", claim.Status)
	}

	// Items are frozen once the claim leaves draft.
	status, _ = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claim.ID+"/items", employeeToken, map[string]any{
		"expenseTypeId": expenseType.ID,
		"date":          now.Format("2006-01-02"),
		"amount":        50,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("item add after submit: status %d, want 400", status)
	}
}

// tenant is a provisioned company with an admin, a manager and one employee
// reporting to that manager, plus an expense type to claim against.
type tenant struct {
	companyID     string
	adminToken    string
	managerToken  string
	employeeToken string
	employeeID    string
	expenseTypeID string
}

func provisionTenant(t *testing.T, client *http.Client, ts *httptest.Server, cfg config.Config, suffix string) tenant {
	t.Helper()
	base := ts.URL + "/api/v1"
	superToken := login(t, client, ts.URL, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword)

	var company struct {
		ID string `json:"id"`
	}
	status, env := doJSON(t, client, http.MethodPost, base+"/companies", superToken, map[string]any{
		"name":  "Tenant Co " + suffix,
		"email": "tenant-" + suffix + "@example.com",
	})
	mustData(t, status, env, http.StatusCreated, &company)

	adminEmail := "t-admin-" + suffix + "@example.com"
	status, env = doJSON(t, client, http.MethodPost, base+"/users", superToken, map[string]any{
		"email":     adminEmail,
		"password":  "AdminPass123!",
		"name":      "Tenant Admin",
		"role":      "COMPANY_ADMIN",
		"companyId": company.ID,
	})
	mustData(t, status, env, http.StatusCreated, nil)
	adminToken := login(t, client, ts.URL, adminEmail, "AdminPass123!")

	managerEmail := "t-manager-" + suffix + "@example.com"
	var manager struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/employees", adminToken, map[string]any{
		"firstName": "Mika",
		"lastName":  "Manager",
		"email":     managerEmail,
		"password":  "ManagerPass123!",
	})
	mustData(t, status, env, http.StatusCreated, &manager)

	employeeEmail := "t-employee-" + suffix + "@example.com"
	var employee struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/employees", adminToken, map[string]any{
		"firstName":          "Erin",
		"lastName":           "Employee",
		"email":              employeeEmail,
		"password":           "EmployeePass123!",
		"reportingManagerId": manager.ID,
	})
	mustData(t, status, env, http.StatusCreated, &employee)

	var expenseType struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-types", adminToken, map[string]any{
		"name":             "Meals " + suffix,
		"approvalRequired": true,
	})
	mustData(t, status, env, http.StatusCreated, &expenseType)

	return tenant{
		companyID:     company.ID,
		adminToken:    adminToken,
		managerToken:  login(t, client, ts.URL, managerEmail, "ManagerPass123!"),
		employeeToken: login(t, client, ts.URL, employeeEmail, "EmployeePass123!"),
		employeeID:    employee.ID,
		expenseTypeID: expenseType.ID,
	}
}

func (tn tenant) draftClaim(t *testing.T, client *http.Client, base string) string {
	t.Helper()
	now := time.Now()
	var claim struct {
		ID string `json:"id"`
	}
	status, env := doJSON(t, client, http.MethodPost, base+"/expense-claims", tn.employeeToken, map[string]any{
		"month": int(now.Month()),
		"year":  now.Year(),
	})
	mustData(t, status, env, http.StatusCreated, &claim)
	return claim.ID
}

func (tn tenant) addItem(t *testing.T, client *http.Client, base, claimID string, amount float64) (int, envelope) {
	t.Helper()
	return doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/items", tn.employeeToken, map[string]any{
		"expenseTypeId": tn.expenseTypeID,
		"date":          time.Now().Format("2006-01-02"),
		"amount":        amount,
		"description":   "team lunch",
	})
}

func TestSubmitRejectsEmptyClaim(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	tn := provisionTenant(t, client, ts, cfg, fmt.Sprintf("%d", time.Now().UnixNano()))

	claimID := tn.draftClaim(t, client, base)

	status, env := doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.employeeToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty submit: status %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("unexpected error payload: %+v", env.Error)
	}

	// With an item attached the same submit goes through.
	status, env = tn.addItem(t, client, base, claimID, 120)
	mustData(t, status, env, http.StatusCreated, nil)
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.employeeToken, nil)
	mustData(t, status, env, http.StatusOK, nil)
}

func TestClaimDeleteOnlyWhileDraft(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	tn := provisionTenant(t, client, ts, cfg, fmt.Sprintf("%d", time.Now().UnixNano()))

	// A draft with items deletes cleanly, items included.
	claimID := tn.draftClaim(t, client, base)
	status, env := tn.addItem(t, client, base, claimID, 75)
	mustData(t, status, env, http.StatusCreated, nil)
	status, env = tn.addItem(t, client, base, claimID, 25)
	mustData(t, status, env, http.StatusCreated, nil)

	status, env = doJSON(t, client, http.MethodDelete, base+"/expense-claims/"+claimID, tn.employeeToken, nil)
	mustData(t, status, env, http.StatusOK, nil)
	status, _ = doJSON(t, client, http.MethodGet, base+"/expense-claims/"+claimID, tn.employeeToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted claim read: status %d, want 404", status)
	}

	// Once submitted the claim is out of the owner's hands.
	claimID = tn.draftClaim(t, client, base)
	status, env = tn.addItem(t, client, base, claimID, 75)
	mustData(t, status, env, http.StatusCreated, nil)
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.employeeToken, nil)
	mustData(t, status, env, http.StatusOK, nil)
	status, env = doJSON(t, client, http.MethodDelete, base+"/expense-claims/"+claimID, tn.employeeToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("non-draft delete: status %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_state" {
		t.Fatalf("unexpected error payload: %+v", env.Error)
	}
}

func TestAdminCannotActOnEmployeesClaim(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	tn := provisionTenant(t, client, ts, cfg, fmt.Sprintf("%d", time.Now().UnixNano()))

	claimID := tn.draftClaim(t, client, base)
	status, env := tn.addItem(t, client, base, claimID, 60)
	mustData(t, status, env, http.StatusCreated, nil)

	// Submit, delete and item changes belong to the claim owner.
	status, _ = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.adminToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("admin submit: status %d, want 403", status)
	}
	status, _ = doJSON(t, client, http.MethodDelete, base+"/expense-claims/"+claimID, tn.adminToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("admin delete: status %d, want 403", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/items", tn.adminToken, map[string]any{
		"expenseTypeId": tn.expenseTypeID,
		"date":          time.Now().Format("2006-01-02"),
		"amount":        10,
	})
	if status != http.StatusForbidden {
		t.Fatalf("admin item add: status %d, want 403", status)
	}

	// The claim is untouched and the owner can still submit it.
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.employeeToken, nil)
	mustData(t, status, env, http.StatusOK, nil)
}

func TestSuperAdminDisbursesWithCompanyScope(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	tn := provisionTenant(t, client, ts, cfg, fmt.Sprintf("%d", time.Now().UnixNano()))
	superToken := login(t, client, ts.URL, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword)

	claimID := tn.draftClaim(t, client, base)
	status, env := tn.addItem(t, client, base, claimID, 200)
	mustData(t, status, env, http.StatusCreated, nil)
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/submit", tn.employeeToken, nil)
	mustData(t, status, env, http.StatusOK, nil)
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims/"+claimID+"/approve", tn.managerToken, nil)
	mustData(t, status, env, http.StatusOK, nil)

	// The super admin has no company of their own; ?companyId picks the
	// tenant to operate on.
	var claim struct {
		Status string `json:"status"`
	}
	status, env = doJSON(t, client, http.MethodPost,
		base+"/expense-claims/"+claimID+"/disburse?companyId="+tn.companyID, superToken, nil)
	mustData(t, status, env, http.StatusOK, &claim)
	if claim.Status != "disbursed" {
		t.Fatalf("claim status = %q, want disbursed", claim.Status)
	}

	var claims []struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodGet, base+"/expense-claims?companyId="+tn.companyID, superToken, nil)
	mustData(t, status, env, http.StatusOK, &claims)
	found := false
	for _, c := range claims {
		if c.ID == claimID {
			found = true
		}
	}
	if !found {
		t.Fatalf("claim %s missing from super admin company listing", claimID)
	}
}

func TestWorkflowCompletionTimestamp(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	tn := provisionTenant(t, client, ts, cfg, fmt.Sprintf("%d", time.Now().UnixNano()))

	var wf struct {
		ID          string     `json:"id"`
		Status      string     `json:"status"`
		CompletedAt *time.Time `json:"completedAt"`
	}
	status, env := doJSON(t, client, http.MethodPost, base+"/workflows", tn.adminToken, map[string]any{
		"title":      "Quarterly access review",
		"assignedTo": tn.employeeID,
	})
	mustData(t, status, env, http.StatusCreated, &wf)
	if wf.CompletedAt != nil {
		t.Fatal("new workflow should not carry a completion time")
	}

	status, env = doJSON(t, client, http.MethodPatch, base+"/workflows/"+wf.ID, tn.employeeToken,
		map[string]any{"status": "completed", "progress": 100})
	mustData(t, status, env, http.StatusOK, &wf)
	if wf.Status != "completed" || wf.CompletedAt == nil {
		t.Fatalf("completed workflow: status %q, completedAt %v", wf.Status, wf.CompletedAt)
	}

	// Reopening clears the completion time.
	status, env = doJSON(t, client, http.MethodPatch, base+"/workflows/"+wf.ID, tn.employeeToken,
		map[string]any{"status": "in_progress"})
	mustData(t, status, env, http.StatusOK, &wf)
	if wf.Status != "in_progress" || wf.CompletedAt != nil {
		t.Fatalf("reopened workflow: status %q, completedAt %v", wf.Status, wf.CompletedAt)
	}
}

func TestEmployeeCannotReadAnotherEmployeesClaim(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	base := ts.URL + "/api/v1"
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	superToken := login(t, client, ts.URL, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword)

	var company struct {
		ID string `json:"id"`
	}
	status, env := doJSON(t, client, http.MethodPost, base+"/companies", superToken, map[string]any{
		"name":  "Isolation Co " + suffix,
		"email": "isolation-" + suffix + "@example.com",
	})
	mustData(t, status, env, http.StatusCreated, &company)

	adminEmail := "iso-admin-" + suffix + "@example.com"
	status, env = doJSON(t, client, http.MethodPost, base+"/users", superToken, map[string]any{
		"email":     adminEmail,
		"password":  "AdminPass123!",
		"name":      "Iso Admin",
		"role":      "COMPANY_ADMIN",
		"companyId": company.ID,
	})
	mustData(t, status, env, http.StatusCreated, nil)
	adminToken := login(t, client, ts.URL, adminEmail, "AdminPass123!")

	makeEmployee := func(first, email string) {
		status, env := doJSON(t, client, http.MethodPost, base+"/employees", adminToken, map[string]any{
			"firstName": first,
			"lastName":  "Worker",
			"email":     email,
			"password":  "WorkerPass123!",
		})
		mustData(t, status, env, http.StatusCreated, nil)
	}
	ownerEmail := "owner-" + suffix + "@example.com"
	peerEmail := "peer-" + suffix + "@example.com"
	makeEmployee("Olive", ownerEmail)
	makeEmployee("Pat", peerEmail)

	ownerToken := login(t, client, ts.URL, ownerEmail, "WorkerPass123!")
	now := time.Now()
	var claim struct {
		ID string `json:"id"`
	}
	status, env = doJSON(t, client, http.MethodPost, base+"/expense-claims", ownerToken, map[string]any{
		"month": int(now.Month()),
		"year":  now.Year(),
	})
	mustData(t, status, env, http.StatusCreated, &claim)

	peerToken := login(t, client, ts.URL, peerEmail, "WorkerPass123!")
	status, _ = doJSON(t, client, http.MethodGet, base+"/expense-claims/"+claim.ID, peerToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("peer read: status %d, want 403", status)
	}
}
