package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Varun5711/taskapi/internal/analytics"
	"github.com/Varun5711/taskapi/internal/auth"
	"github.com/Varun5711/taskapi/internal/idgen"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
	"github.com/Varun5711/taskapi/internal/service"
	"github.com/Varun5711/taskapi/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Path    string          `json:"path"`
}

type taskJSON struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Priority   string  `json:"priority"`
	Status     string  `json:"status"`
	CreatedBy  string  `json:"createdBy"`
	AssignedTo *string `json:"assignedTo"`
	UpdatedAt  string  `json:"updatedAt"`
}

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T, limiter middleware.Limiter) *harness {
	t.Helper()
	log := logger.Discard()
	users := service.NewUserService(storage.NewUserStorage(), auth.NewJWTManager("test-secret", time.Hour), bcrypt.MinCost, log)
	tasks := service.NewTaskService(storage.NewMemoryStorage(), nil, log)
	ids, _ := idgen.NewGenerator(1, 1)

	return &harness{t: t, handler: New(Deps{
		APIPrefix:   "/api/v1",
		Environment: "test",
		Users:       users,
		Tasks:       tasks,
		Analytics:   analytics.NewService(tasks),
		Limiter:     limiter,
		RequestIDs:  ids,
		Log:         log,
	})}
}

func (h *harness) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (h *harness) register(email string) (token, userID string) {
	h.t.Helper()
	rec, env := h.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Test User",
	})
	if rec.Code != http.StatusCreated {
		h.t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var data struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	json.Unmarshal(env.Data, &data)
	return data.Token, data.UserID
}

func (h *harness) createTask(token string, body map[string]interface{}) taskJSON {
	h.t.Helper()
	rec, env := h.do(http.MethodPost, "/api/v1/tasks", token, body)
	if rec.Code != http.StatusCreated {
		h.t.Fatalf("create task: status %d body %s", rec.Code, rec.Body.String())
	}
	var task taskJSON
	json.Unmarshal(env.Data, &task)
	return task
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	rec, _ := h.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "UP" || body["environment"] != "test" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
	if _, ok := body["uptime"]; !ok {
		t.Error("missing uptime")
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestUnknownRoutes(t *testing.T) {
	h := newHarness(t, nil)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/unknown"},
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/v1"},
		{http.MethodPatch, "/api/v1/tasks"},
		{http.MethodPost, "/health"},
	}

	for _, p := range paths {
		rec, env := h.do(p.method, p.path, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", p.method, p.path, rec.Code)
			continue
		}
		if env.Success || env.Message != "Route not found" || env.Path != p.path {
			t.Errorf("%s %s: unexpected body %s", p.method, p.path, rec.Body.String())
		}
	}
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t, nil)
	token, userID := h.register("test@example.com")

	rec, env := h.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "test@example.com", "password": "another1", "name": "Other",
	})
	if rec.Code != http.StatusConflict || env.Success || env.Message != "User already exists" {
		t.Errorf("duplicate register: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK || env.Message != "Login successful" {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	_, wrongPw := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "wrongpass",
	})
	rec, unknown := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "password123",
	})
	if rec.Code != http.StatusUnauthorized || wrongPw.Message != unknown.Message {
		t.Errorf("login failures differ: %q vs %q", wrongPw.Message, unknown.Message)
	}

	rec, env = h.do(http.MethodGet, "/api/v1/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body.String())
	}
	var profile map[string]interface{}
	json.Unmarshal(env.Data, &profile)
	if profile["userId"] != userID || profile["email"] != "test@example.com" {
		t.Errorf("unexpected profile %v", profile)
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Error("password hash exposed")
	}

	if rec, _ := h.do(http.MethodGet, "/api/v1/auth/profile", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("profile without token: %d", rec.Code)
	}
	if rec, _ := h.do(http.MethodGet, "/api/v1/auth/profile", "invalid-token", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("profile with bad token: %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{"bad email", map[string]string{"email": "invalid-email", "password": "password123", "name": "A"}, "Valid email is required"},
		{"short password", map[string]string{"email": "a@x.com", "password": "123", "name": "A"}, "Password must be at least 6 characters"},
		{"missing name", map[string]string{"email": "a@x.com", "password": "password123"}, "Name is required"},
		{"malformed json", `{"email":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := h.do(http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	alice, aliceID := h.register("alice@example.com")
	bob, bobID := h.register("bob@example.com")
	carol, _ := h.register("carol@example.com")

	rec, _ := h.do(http.MethodPost, "/api/v1/tasks", "", map[string]string{"title": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("create without token: %d", rec.Code)
	}

	task := h.createTask(alice, map[string]interface{}{
		"title": "Write report", "description": "Q3", "priority": "high", "status": "completed",
	})
	if task.Status != "pending" || task.Priority != "high" || task.CreatedBy != aliceID || task.AssignedTo != nil {
		t.Errorf("unexpected created task %+v", task)
	}
	path := "/api/v1/tasks/" + task.ID

	if rec, _ := h.do(http.MethodGet, path, alice, nil); rec.Code != http.StatusOK {
		t.Errorf("creator get: %d", rec.Code)
	}
	if rec, env := h.do(http.MethodGet, path, bob, nil); rec.Code != http.StatusForbidden || env.Message != "Access denied" {
		t.Errorf("third-party get: %d %s", rec.Code, rec.Body.String())
	}

	rec, env := h.do(http.MethodPost, path+"/assign", alice, map[string]string{"assignedTo": bobID})
	if rec.Code != http.StatusOK || env.Message != "Task assigned successfully" {
		t.Fatalf("assign: %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := h.do(http.MethodGet, path, bob, nil); rec.Code != http.StatusOK {
		t.Errorf("assignee get: %d", rec.Code)
	}

	for _, attempt := range []struct {
		method, path string
		body         interface{}
		msg          string
	}{
		{http.MethodPut, path, map[string]string{"title": "mine"}, "Only task creator can update"},
		{http.MethodPost, path + "/assign", map[string]string{"assignedTo": bobID}, "Only task creator can assign"},
		{http.MethodDelete, path, nil, "Only task creator can delete"},
	} {
		for _, token := range []string{bob, carol} {
			rec, env := h.do(attempt.method, attempt.path, token, attempt.body)
			if rec.Code != http.StatusForbidden || env.Message != attempt.msg {
				t.Errorf("%s %s by non-creator: %d %s", attempt.method, attempt.path, rec.Code, rec.Body.String())
			}
		}
	}

	rec, env = h.do(http.MethodPut, path, alice, map[string]interface{}{"status": "in-progress", "unknown": 1, "title": nil})
	if rec.Code != http.StatusOK || env.Message != "Task updated successfully" {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated taskJSON
	json.Unmarshal(env.Data, &updated)
	if updated.Status != "in-progress" || updated.Title != "Write report" {
		t.Errorf("unexpected updated task %+v", updated)
	}

	rec, env = h.do(http.MethodPut, path, alice, map[string]string{"status": "done", "title": "Changed"})
	if rec.Code != http.StatusBadRequest || env.Message != "Invalid status" {
		t.Errorf("invalid status: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = h.do(http.MethodDelete, path, alice, nil)
	if rec.Code != http.StatusOK || env.Message != "Task deleted successfully" {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := h.do(http.MethodGet, path, alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d", rec.Code)
	}
}

func TestTaskValidation(t *testing.T) {
	h := newHarness(t, nil)
	token, _ := h.register("a@x.com")

	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{"missing title", map[string]string{"description": "d"}, "Title is required"},
		{"blank title", map[string]string{"title": "  "}, "Title is required"},
		{"bad priority", map[string]string{"title": "t", "priority": "urgent"}, "Priority must be low, medium, or high"},
		{"bad due date", map[string]string{"title": "t", "dueDate": "tomorrow"}, "Valid date is required"},
		{"non-string title", map[string]int{"title": 5}, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := h.do(http.MethodPost, "/api/v1/tasks", token, tt.body)
			if rec.Code != http.StatusBadRequest || env.Message != tt.wantMsg {
				t.Errorf("got %d %q, want 400 %q", rec.Code, env.Message, tt.wantMsg)
			}
		})
	}

	for _, id := range []string{"not-a-uuid", "12345", strings.Repeat("a", 36)} {
		rec, env := h.do(http.MethodGet, "/api/v1/tasks/"+id, token, nil)
		if rec.Code != http.StatusBadRequest || env.Message != "Valid task ID is required" {
			t.Errorf("id %q: %d %s", id, rec.Code, rec.Body.String())
		}
	}

	rec, _ := h.do(http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-000000000000", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: %d", rec.Code)
	}

	task := h.createTask(token, map[string]interface{}{"title": "t"})
	rec, env := h.do(http.MethodPost, "/api/v1/tasks/"+task.ID+"/assign", token, map[string]string{})
	if rec.Code != http.StatusBadRequest || env.Message != "User ID is required" {
		t.Errorf("assign without assignee: %d %s", rec.Code, rec.Body.String())
	}
}

func TestListAndFilters(t *testing.T) {
	h := newHarness(t, nil)
	token, _ := h.register("a@x.com")
	other, _ := h.register("b@x.com")

	h.createTask(token, map[string]interface{}{"title": "Task 1", "priority": "high"})
	second := h.createTask(token, map[string]interface{}{"title": "Task 2", "priority": "low"})
	h.createTask(other, map[string]interface{}{"title": "Not mine"})
	h.do(http.MethodPut, "/api/v1/tasks/"+second.ID, token, map[string]string{"status": "completed"})

	rec, env := h.do(http.MethodGet, "/api/v1/tasks", token, nil)
	if rec.Code != http.StatusOK || env.Count == nil || *env.Count != 2 {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	var tasks []taskJSON
	_, env = h.do(http.MethodGet, "/api/v1/tasks?status=completed", token, nil)
	json.Unmarshal(env.Data, &tasks)
	if len(tasks) != 1 || tasks[0].Title != "Task 2" {
		t.Errorf("status filter: %+v", tasks)
	}

	_, env = h.do(http.MethodGet, "/api/v1/tasks?priority=high", token, nil)
	json.Unmarshal(env.Data, &tasks)
	if len(tasks) != 1 || tasks[0].Priority != "high" {
		t.Errorf("priority filter: %+v", tasks)
	}

	_, env = h.do(http.MethodGet, "/api/v1/tasks?priority=medium", token, nil)
	if *env.Count != 0 || string(env.Data) != "[]" {
		t.Errorf("empty result should be an empty list, got %s", env.Data)
	}

	for _, query := range []string{"status=done", "priority=urgent", "status=PENDING"} {
		rec, env := h.do(http.MethodGet, "/api/v1/tasks?"+query, token, nil)
		if rec.Code != http.StatusOK || !env.Success || env.Count == nil || *env.Count != 0 {
			t.Errorf("%s: expected 200 with count 0, got %d %s", query, rec.Code, rec.Body.String())
		}
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	token, _ := h.register("a@x.com")

	_, env := h.do(http.MethodGet, "/api/v1/analytics/trends", token, nil)
	var trends struct {
		CompletionRate  string        `json:"completionRate"`
		AveragePriority string        `json:"averagePriority"`
		OverdueTasks    int           `json:"overdueTasks"`
		RecentActivity  []interface{} `json:"recentActivity"`
	}
	json.Unmarshal(env.Data, &trends)
	if trends.CompletionRate != "0%" || trends.AveragePriority != "N/A" {
		t.Errorf("empty trends: %s", env.Data)
	}

	high := h.createTask(token, map[string]interface{}{"title": "A", "priority": "high"})
	h.do(http.MethodPut, "/api/v1/tasks/"+high.ID, token, map[string]string{"status": "completed"})
	h.createTask(token, map[string]interface{}{"title": "B", "priority": "low", "dueDate": "2020-01-01T00:00:00Z"})

	rec, env := h.do(http.MethodGet, "/api/v1/analytics/statistics", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statistics: %d", rec.Code)
	}
	var stats analytics.Statistics
	json.Unmarshal(env.Data, &stats)
	if stats.Total != 2 || stats.ByStatus.Pending != 1 || stats.ByStatus.Completed != 1 ||
		stats.ByPriority.High != 1 || stats.ByPriority.Low != 1 {
		t.Errorf("unexpected statistics %+v", stats)
	}

	_, env = h.do(http.MethodGet, "/api/v1/analytics/trends", token, nil)
	json.Unmarshal(env.Data, &trends)
	if trends.CompletionRate != "50.00%" || trends.OverdueTasks != 1 || len(trends.RecentActivity) != 2 {
		t.Errorf("unexpected trends %s", env.Data)
	}

	if rec, _ := h.do(http.MethodGet, "/api/v1/analytics/statistics", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("statistics without token: %d", rec.Code)
	}
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	h := newHarness(t, middleware.NewLocalLimiter(2, time.Hour, 100))

	for i := 0; i < 2; i++ {
		if rec, _ := h.do(http.MethodGet, "/api/v1/tasks", "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: %d", i+1, rec.Code)
		}
	}

	rec, env := h.do(http.MethodGet, "/api/v1/tasks", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if env.Message != middleware.MsgTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("unexpected 429 response %s", rec.Body.String())
	}

	if rec, _ := h.do(http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health must not be rate limited, got %d", rec.Code)
	}
}
