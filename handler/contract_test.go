package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	contracts *service.ContractStore
	users     *service.UserStore
	workflow  *service.WorkflowService
}

// withTestUser loads identity from the X-User-ID header, standing in for
// the JWT middleware.
func withTestUser(users *service.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			if u, err := users.GetByID(id); err == nil {
				c.Set("user_id", u.ID)
				c.Set("username", u.Username)
				c.Set("role", u.Role)
				c.Set("entity", u.Entity)
			}
		}
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	contracts := service.NewContractStore("TST")
	users := service.NewUserStore()
	seed := []*model.User{
		{ID: "u-sub", Username: "sub", Name: "Submitter", Role: model.RoleSubmitter, Entity: model.EntityBrazil, Active: true},
		{ID: "u-cfo", Username: "cfo", Name: "CFO", Role: model.RoleCFO, Entity: model.EntityUK, Active: true},
		{ID: "u-fh", Username: "fh", Name: "Function Head", Role: model.RoleFunctionHead, Entity: model.EntityBrazil, Active: true},
		{ID: "u-adhoc", Username: "adhoc", Name: "Ad Hoc", Role: model.RoleAdHoc, Entity: model.EntityBrazil, Active: true},
		{ID: "u-admin", Username: "admin", Name: "Admin", Role: model.RoleAdmin, Entity: model.EntityUK, Active: true},
	}
	for _, u := range seed {
		users.Upsert(u)
	}

	workflow := service.NewWorkflowService(contracts, users)
	h := NewContractHandler(contracts, workflow)

	router := gin.New()
	router.Use(withTestUser(users))
	router.GET("/api/contracts", h.List)
	router.POST("/api/contracts", h.Create)
	router.GET("/api/contracts/:id", h.Get)
	router.PUT("/api/contracts/:id", h.Update)
	router.POST("/api/contracts/:id/submit", h.Submit)
	router.POST("/api/contracts/:id/decision", h.Decide)
	router.POST("/api/contracts/:id/comments", h.AddComment)
	router.POST("/api/contracts/:id/comments/read", h.MarkCommentsRead)
	router.POST("/api/contracts/:id/reviewers", h.AddReviewer)
	router.GET("/api/metrics", h.Metrics)

	return &testEnv{router: router, contracts: contracts, users: users, workflow: workflow}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createDraft(t *testing.T, amount float64, contractType string) *model.Contract {
	t.Helper()

	draft := &model.Contract{
		Entity:       model.EntityBrazil,
		Department:   "Drilling",
		Contractor:   "Test Contractor",
		ContractType: contractType,
		Amount:       amount,
		Currency:     "USD",
		ScopeOfWork:  "Test scope",
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(1, 0, 0),
	}
	created, err := e.workflow.CreateDraft("u-sub", draft)
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	return created
}

func TestContractCreateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"entity":        model.EntityBrazil,
		"department":    "Drilling",
		"contractor":    "Oceanica Subsea",
		"contract_type": model.TypeCAPEX,
		"amount":        6_000_000,
		"scope_of_work": "Subsea IMR campaign",
		"start_date":    time.Now().Format(time.RFC3339),
		"end_date":      time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	}

	w := env.do(t, "POST", "/api/contracts", "u-sub", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created model.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.Status != model.StatusDraft {
		t.Errorf("Expected draft status, got %s", created.Status)
	}
	if !created.IsHighRisk {
		t.Error("Expected risk evaluation at creation")
	}
}

func TestContractCreateForbiddenRole(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"contractor": "X", "amount": 100}
	w := env.do(t, "POST", "/api/contracts", "u-cfo", body)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

func TestContractGetWithAllowedActions(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)

	w := env.do(t, "GET", "/api/contracts/"+c.ID, "u-sub", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Contract       model.Contract `json:"contract"`
		AllowedActions []string       `json:"allowed_actions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	hasSubmit := false
	for _, a := range resp.AllowedActions {
		if a == service.ActionSubmit {
			hasSubmit = true
		}
	}
	if !hasSubmit {
		t.Errorf("Expected submit in allowed actions for submitter on draft, got %v", resp.AllowedActions)
	}
}

func TestContractGetNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/contracts/missing", "u-sub", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSubmitAndDecisionFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)

	w := env.do(t, "POST", "/api/contracts/"+c.ID+"/submit", "u-sub", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-cfo",
		map[string]string{"decision": model.DecisionApproved})
	if w.Code != http.StatusOK {
		t.Fatalf("CFO decision: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-fh",
		map[string]string{"decision": model.DecisionApproved})
	if w.Code != http.StatusOK {
		t.Fatalf("FH decision: expected 200, got %d", w.Code)
	}

	var final model.Contract
	json.Unmarshal(w.Body.Bytes(), &final)
	if final.Status != model.StatusApproved {
		t.Errorf("Expected approved, got %s", final.Status)
	}
}

func TestDecisionFromTerminalStateConflicts(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)
	env.do(t, "POST", "/api/contracts/"+c.ID+"/submit", "u-sub", nil)
	env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-cfo",
		map[string]string{"decision": model.DecisionRejected})

	w := env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-fh",
		map[string]string{"decision": model.DecisionApproved})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for decision on rejected contract, got %d", w.Code)
	}
}

func TestDecisionUnauthorizedRole(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)
	env.do(t, "POST", "/api/contracts/"+c.ID+"/submit", "u-sub", nil)

	w := env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-sub",
		map[string]string{"decision": model.DecisionApproved})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

func TestCommentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)

	w := env.do(t, "POST", "/api/contracts/"+c.ID+"/comments", "u-cfo",
		map[string]string{"text": "please clarify the scope"})
	if w.Code != http.StatusOK {
		t.Fatalf("AddComment: expected 200, got %d", w.Code)
	}

	var updated model.Contract
	json.Unmarshal(w.Body.Bytes(), &updated)
	if !updated.HasUnreadComments {
		t.Error("Expected unread flag set")
	}

	w = env.do(t, "POST", "/api/contracts/"+c.ID+"/comments/read", "u-sub", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("MarkCommentsRead: expected 200, got %d", w.Code)
	}

	stored, _ := env.contracts.GetByID(c.ID)
	if stored.HasUnreadComments {
		t.Error("Expected unread flag cleared")
	}
}

func TestAddReviewerEndpoint(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)
	env.do(t, "POST", "/api/contracts/"+c.ID+"/submit", "u-sub", nil)

	w := env.do(t, "POST", "/api/contracts/"+c.ID+"/reviewers", "u-admin",
		map[string]string{"user_id": "u-adhoc"})
	if w.Code != http.StatusOK {
		t.Fatalf("AddReviewer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated model.Contract
	json.Unmarshal(w.Body.Bytes(), &updated)
	if len(updated.AdHocReviewers) != 1 || updated.AdHocReviewers[0] != "u-adhoc" {
		t.Errorf("Expected u-adhoc on the chain, got %v", updated.AdHocReviewers)
	}
}

func TestListEndpointFilters(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		c := env.createDraft(t, float64(100_000*(i+1)), model.TypeOPEX)
		env.do(t, "POST", "/api/contracts/"+c.ID+"/submit", "u-sub", nil)
	}
	env.createDraft(t, 2_000_000, model.TypeOPEX) // high-risk, stays draft

	w := env.do(t, "GET", "/api/contracts?status=under_review", "u-cfo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List: expected 200, got %d", w.Code)
	}

	var result service.ListResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Total != 3 {
		t.Errorf("Expected 3 under review, got %d", result.Total)
	}

	w = env.do(t, "GET", "/api/contracts?high_risk=true", "u-cfo", nil)
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Total != 1 {
		t.Errorf("Expected 1 high-risk contract, got %d", result.Total)
	}
}

func TestListEndpointPageReset(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 30; i++ {
		env.createDraft(t, 100, model.TypeOPEX)
	}

	// Echoed previous params with a filter change force page 1
	path := fmt.Sprintf("/api/contracts?page=2&page_size=25&status=%s&prev_entity=all&prev_status=all&prev_page=2&prev_page_size=25", model.StatusDraft)
	w := env.do(t, "GET", path, "u-cfo", nil)

	var result service.ListResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Page != 1 {
		t.Errorf("Expected page reset to 1 on filter change, got %d", result.Page)
	}

	// Same filters, only paging: the requested page is honored
	path = "/api/contracts?page=2&page_size=25&status=all&entity=all&prev_entity=all&prev_status=all&prev_page=1&prev_page_size=25"
	w = env.do(t, "GET", path, "u-cfo", nil)
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Page != 2 {
		t.Errorf("Expected page 2 honored, got %d", result.Page)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createDraft(t, 1_000_000, model.TypeOPEX)
	env.createDraft(t, 2_000_000, model.TypeOPEX)

	w := env.do(t, "GET", "/api/metrics", "u-cfo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Metrics: expected 200, got %d", w.Code)
	}

	var m service.DashboardMetrics
	json.Unmarshal(w.Body.Bytes(), &m)
	if m.TotalValue != 3_000_000 {
		t.Errorf("Expected total 3,000,000, got %.0f", m.TotalValue)
	}
	if m.StatusCounts[model.StatusDraft] != 2 {
		t.Errorf("Expected 2 drafts in histogram, got %d", m.StatusCounts[model.StatusDraft])
	}
}

func TestUpdateEndpointReevaluatesRisk(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)

	body := map[string]any{
		"entity":        model.EntityBrazil,
		"department":    "Drilling",
		"contractor":    "Test Contractor",
		"contract_type": model.TypeOPEX,
		"amount":        2_000_000,
		"scope_of_work": "Bigger scope",
		"start_date":    time.Now().Format(time.RFC3339),
		"end_date":      time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	}
	w := env.do(t, "PUT", "/api/contracts/"+c.ID, "u-sub", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated model.Contract
	json.Unmarshal(w.Body.Bytes(), &updated)
	if !updated.IsHighRisk {
		t.Error("Expected high risk after amount edit")
	}
}

func TestInvalidRequestBodies(t *testing.T) {
	env := newTestEnv(t)
	c := env.createDraft(t, 500_000, model.TypeOPEX)

	if w := env.do(t, "POST", "/api/contracts/"+c.ID+"/decision", "u-cfo", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Decision without decision field: expected 400, got %d", w.Code)
	}
	if w := env.do(t, "POST", "/api/contracts/"+c.ID+"/comments", "u-cfo", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Comment without text: expected 400, got %d", w.Code)
	}
	if w := env.do(t, "POST", "/api/contracts/"+c.ID+"/reviewers", "u-admin", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("Reviewer without user_id: expected 400, got %d", w.Code)
	}
}
