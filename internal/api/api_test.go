package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/api/middleware"
	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/dto/response"
	"github.com/jobs/dcron/internal/infra/persistence/memrepo"
	"github.com/jobs/dcron/internal/scheduler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingFunc func() error

func (f pingFunc) Ping() error { return f() }

type fixture struct {
	store  *memrepo.Store
	sched  *scheduler.Scheduler
	router *gin.Engine
	task   *task.Task
}

func newFixture(t *testing.T, pinger Pinger) *fixture {
	t.Helper()
	store := memrepo.New()
	reg := scheduler.NewRegistry()
	reg.Register("report", func(context.Context) error { return nil })

	logger := zap.NewNop()
	sched := scheduler.New(scheduler.Options{NodeID: "node-a"}, logger, reg, nil, nil,
		store.Tasks(), store.Details(), store.Nodes())

	ctx := context.Background()
	require.NoError(t, store.Nodes().Register(ctx, &node.Node{
		NodeID:      "node-a",
		Weight:      2,
		HeartbeatAt: time.Now(),
	}))
	tk, err := sched.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	server := NewServer(NewTaskAPI(sched), NewNodeAPI(sched), NewCommonAPI(sched, pinger), logger)
	return &fixture{store: store, sched: sched, router: server.Router(), task: tk}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) taskPath(suffix string) string {
	return "/api/v1/tasks/" + cast.ToString(f.task.ID) + suffix
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[response.HealthResponse](t, w)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "node-a", body.NodeID)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	down := newFixture(t, pingFunc(func() error { return errors.New("connection refused") }))
	w = down.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode[response.ErrorResponse](t, w).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
}

func TestListAndGetTasks(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]response.TaskResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "report", list[0].Name)
	assert.Equal(t, cast.ToString(f.task.ID), list[0].ID)

	w = f.do(t, http.MethodGet, "/api/v1/tasks?status=STOP", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]response.TaskResponse](t, w))

	w = f.do(t, http.MethodGet, "/api/v1/tasks?status=PAUSED", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, f.taskPath(""), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, task.TaskStatusNotStarted, decode[response.TaskResponse](t, w).Status)

	w = f.do(t, http.MethodGet, "/api/v1/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/tasks/999999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[response.ErrorResponse](t, w).Code)
}

func TestEditCron(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPut, f.taskPath("/cron"), `{"cron_expression":"every day"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, f.taskPath("/cron"), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, f.taskPath("/cron"), `{"cron_expression":"0 30 2 * * ?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0 30 2 * * ?", decode[response.TaskResponse](t, w).CronExpression)
}

func TestStartAndStop(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	w := f.do(t, http.MethodPost, f.taskPath("/start"), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, f.taskPath("/stop"), "")
	require.Equal(t, http.StatusOK, w.Code)
	got, err := f.sched.GetTask(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusStop, got.Status)

	// running on node-a: start conflicts, stop goes through the notify slot once
	running := got.Clone()
	running.Claim("node-a")
	running.Start()
	ok, err := f.store.Tasks().UpdateWithVersion(ctx, running, got.Version)
	require.NoError(t, err)
	require.True(t, ok)

	w = f.do(t, http.MethodPost, f.taskPath("/start"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "TASK_RUNNING", decode[response.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, f.taskPath("/stop"), "")
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, f.taskPath("/stop"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOTIFY_BUSY", decode[response.ErrorResponse](t, w).Code)
}

func TestTaskDetails(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, f.taskPath("/details?offset=0&limit=5"), "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[response.PageResponse[response.TaskDetailResponse]](t, w)
	assert.Zero(t, page.Total)
	assert.Equal(t, 5, page.Limit)

	w = f.do(t, http.MethodGet, f.taskPath("/details?limit=1000"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/tasks/999999/details", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNodes(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/v1/nodes", "")
	require.Equal(t, http.StatusOK, w.Code)
	nodes := decode[[]response.NodeResponse](t, w)
	require.Len(t, nodes, 1)
	assert.Equal(t, "node-a", nodes[0].NodeID)
	assert.Equal(t, 2, nodes[0].Weight)
	assert.True(t, nodes[0].Live)
	assert.Equal(t, node.NotifyNone, nodes[0].NotifyCmd)
}
