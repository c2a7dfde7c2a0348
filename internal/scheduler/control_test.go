package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/infra/persistence/memrepo"
)

type controlFixture struct {
	clock *fakeClock
	store *memrepo.Store
	s     *Scheduler
}

func newControlFixture(t *testing.T) *controlFixture {
	clock := newFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memrepo.New(memrepo.WithClock(clock.Now))
	reg := NewRegistry()
	reg.Register("report", noop)

	opts := testOptions("node-a")
	opts.Clock = clock.Now
	opts.FetchDuration = 24 * time.Hour
	s := newTestScheduler(t, store, opts, reg)
	require.NoError(t, s.join(context.Background()))
	return &controlFixture{clock: clock, store: store, s: s}
}

func (f *controlFixture) task(t *testing.T, id uint64) *task.Task {
	t.Helper()
	got, err := f.s.GetTask(context.Background(), id)
	require.NoError(t, err)
	return got
}

func (f *controlFixture) notifyOf(t *testing.T, nodeID string) *node.Node {
	t.Helper()
	n, err := f.store.Nodes().GetByNodeID(context.Background(), nodeID)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func TestRegisterTaskValidation(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()

	_, err := f.s.RegisterTask(ctx, "bad", "not a cron", "report")
	assert.ErrorIs(t, err, task.ErrInvalidCron)

	_, err = f.s.RegisterTask(ctx, "bad", "0 0 * * *", "report")
	assert.ErrorIs(t, err, task.ErrInvalidCron)

	_, err = f.s.RegisterTask(ctx, " ", "0 0 1 * * ?", "report")
	assert.ErrorIs(t, err, task.ErrInvalidName)

	_, err = f.s.RegisterTask(ctx, "unknown", "0 0 1 * * ?", "missing")
	assert.ErrorIs(t, err, ErrJobNotRegistered)
}

func TestRegisterTaskIsIdempotentAndUpdatesCron(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()

	first, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusNotStarted, first.Status)
	assert.True(t, first.NextStartTime.Equal(time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)))
	assert.True(t, first.FirstStartTime.Equal(*first.NextStartTime))

	same, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)
	assert.Equal(t, first.ID, same.ID)
	assert.Equal(t, first.Version, same.Version)

	changed, err := f.s.RegisterTask(ctx, "report", "0 30 2 * * ?", "report")
	require.NoError(t, err)
	assert.Equal(t, first.ID, changed.ID)
	assert.Equal(t, "0 30 2 * * ?", changed.CronExpression)
	assert.True(t, changed.NextStartTime.Equal(time.Date(2024, 3, 2, 2, 30, 0, 0, time.UTC)))
	assert.Greater(t, changed.Version, first.Version)

	all, err := f.s.ListTasks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStartNow(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()
	tk, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	require.NoError(t, f.s.StartNow(ctx, tk.ID))
	got := f.task(t, tk.ID)
	assert.Equal(t, task.TaskStatusNotStarted, got.Status)
	assert.True(t, got.NextStartTime.Equal(f.clock.Now()))

	// claimed and queued: the owner is told to fire its queued copy now
	f.clock.Advance(time.Second)
	require.NoError(t, f.s.loadOnce(ctx))
	require.Equal(t, task.TaskStatusPending, f.task(t, tk.ID).Status)
	require.NoError(t, f.s.StartNow(ctx, tk.ID))

	n := f.notifyOf(t, "node-a")
	assert.Equal(t, node.NotifyStart, n.NotifyCmd)
	assert.Equal(t, tk.ID, cast.ToUint64(n.NotifyValue))

	require.NoError(t, f.s.processNotify(ctx))
	assert.Equal(t, node.NotifyNone, f.notifyOf(t, "node-a").NotifyCmd)
	assert.True(t, f.s.queue.Contains(tk.ID))

	running := f.task(t, tk.ID)
	running.Start()
	ok, err := f.store.Tasks().UpdateWithVersion(ctx, running, running.Version)
	require.NoError(t, err)
	require.True(t, ok)
	assert.ErrorIs(t, f.s.StartNow(ctx, tk.ID), task.ErrTaskRunning)

	assert.ErrorIs(t, f.s.StartNow(ctx, 999999), task.ErrTaskNotFound)
}

func TestEditCronOfQueuedTaskNotifiesOwner(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()
	tk, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	require.NoError(t, f.s.loadOnce(ctx))
	require.True(t, f.s.queue.Contains(tk.ID))

	edited, err := f.s.EditCron(ctx, tk.ID, "0 0 3 * * ?")
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusNotStarted, edited.Status)
	assert.Empty(t, edited.NodeID)
	assert.True(t, edited.NextStartTime.Equal(time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, node.NotifyEdit, f.notifyOf(t, "node-a").NotifyCmd)

	require.NoError(t, f.s.processNotify(ctx))
	assert.False(t, f.s.queue.Contains(tk.ID))

	_, err = f.s.EditCron(ctx, tk.ID, "every day")
	assert.ErrorIs(t, err, task.ErrInvalidCron)
}

func TestEditCronKeepsStoppedTaskStopped(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()
	tk, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)
	require.NoError(t, f.s.RequestStop(ctx, tk.ID))

	edited, err := f.s.EditCron(ctx, tk.ID, "0 0 3 * * ?")
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusStop, edited.Status)
	assert.Equal(t, "0 0 3 * * ?", edited.CronExpression)
}

func TestRequestStop(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()
	tk, err := f.s.RegisterTask(ctx, "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	// queued on this node: stopped directly and dropped from the queue
	require.NoError(t, f.s.loadOnce(ctx))
	require.NoError(t, f.s.RequestStop(ctx, tk.ID))
	assert.Equal(t, task.TaskStatusStop, f.task(t, tk.ID).Status)
	assert.False(t, f.s.queue.Contains(tk.ID))
	require.NoError(t, f.s.RequestStop(ctx, tk.ID))

	// running on this node: goes through the notify slot
	running := f.task(t, tk.ID)
	running.Claim("node-a")
	running.Start()
	ok, err := f.store.Tasks().UpdateWithVersion(ctx, running, running.Version)
	require.NoError(t, err)
	require.True(t, ok)

	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.s.handles.add(tk.ID, cancel)

	require.NoError(t, f.s.RequestStop(ctx, tk.ID))
	assert.Equal(t, node.NotifyStop, f.notifyOf(t, "node-a").NotifyCmd)
	assert.Equal(t, task.TaskStatusDoing, f.task(t, tk.ID).Status)
	assert.ErrorIs(t, f.s.RequestStop(ctx, tk.ID), ErrNotifyBusy)

	require.NoError(t, f.s.processNotify(ctx))
	assert.Error(t, jobCtx.Err())
	assert.Equal(t, task.TaskStatusStop, f.task(t, tk.ID).Status)
	assert.Equal(t, node.NotifyNone, f.notifyOf(t, "node-a").NotifyCmd)
	assert.True(t, f.s.handles.finish(tk.ID))

	assert.ErrorIs(t, f.s.RequestStop(ctx, 999999), task.ErrTaskNotFound)
}

func TestNotifyUnknownNode(t *testing.T) {
	f := newControlFixture(t)
	err := f.s.notify(context.Background(), "ghost", node.NotifyStop, 1)
	assert.ErrorIs(t, err, node.ErrNodeNotFound)
}

func TestQueries(t *testing.T) {
	f := newControlFixture(t)
	ctx := context.Background()

	_, err := f.s.GetTask(ctx, 42)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	_, _, err = f.s.ListTaskDetails(ctx, 42, mo.None[taskdetail.DetailStatus](), 0, 10)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	nodes, err := f.s.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "node-a", nodes[0].NodeID)
	assert.Equal(t, node.NodeStatusEnable, nodes[0].Status)
}
