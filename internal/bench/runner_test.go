package bench

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rezi-ui/bench/todo-bench/internal/settle"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	tasks   []todo.List
	results [][]Sample
}

func (p *recordingPublisher) PublishTasks(tasks todo.List) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, tasks)
}

func (p *recordingPublisher) PublishResults(samples []Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, samples)
}

func (p *recordingPublisher) lastTasks() todo.List {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tasks) == 0 {
		return nil
	}
	return p.tasks[len(p.tasks)-1]
}

type measurerFunc func(ctx context.Context, mutation func() error) (settle.Result, error)

func (f measurerFunc) Measure(ctx context.Context, mutation func() error) (settle.Result, error) {
	return f(ctx, mutation)
}

func setupTestRunner(t *testing.T, opts ...Option) (*Runner, *recordingPublisher) {
	t.Helper()
	mock := clock.NewMock()
	frames := settle.FrameFunc(func(ctx context.Context) error {
		mock.Add(time.Millisecond)
		return nil
	})
	timer := settle.NewTimer(frames, settle.WithClock(mock))
	pub := &recordingPublisher{}
	opts = append([]Option{WithSettleDelay(0), WithFrontend("test")}, opts...)
	return NewRunner(timer, pub, opts...), pub
}

var updatedName = regexp.MustCompile(`^Updated Task \d+$`)

func TestRender(t *testing.T) {
	r, pub := setupTestRunner(t)

	s, err := r.Render(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, "Render 100", s.Operation)
	assert.Equal(t, 2.0, s.Duration)
	assert.False(t, s.Degraded)
	assert.Len(t, r.Tasks(), 100)
	assert.Len(t, pub.lastTasks(), 100)
	assert.Equal(t, []Sample{s}, r.Results())
}

func TestRender_AppendsResults(t *testing.T) {
	r, _ := setupTestRunner(t)

	_, err := r.Render(context.Background(), 100)
	require.NoError(t, err)
	_, err = r.Render(context.Background(), 500)
	require.NoError(t, err)

	results := r.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "Render 100", results[0].Operation)
	assert.Equal(t, "Render 500", results[1].Operation)
}

func TestUpdate50_BuildsBaseline(t *testing.T) {
	r, pub := setupTestRunner(t)

	s, err := r.Update50(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OpUpdate50, s.Operation)
	require.Len(t, r.Results(), 1, "baseline setup is not sampled")
	require.Len(t, pub.tasks, 2, "baseline then update")
	assert.Len(t, pub.tasks[0], BaselineSize)

	tasks := r.Tasks()
	require.Len(t, tasks, BaselineSize)
	for i := 0; i < PartialSize; i++ {
		assert.Regexp(t, updatedName, tasks[i].Name)
		if i%2 == 0 {
			assert.Equal(t, todo.High, tasks[i].Priority, "index %d", i)
		} else {
			assert.Equal(t, todo.Low, tasks[i].Priority, "index %d", i)
		}
	}
}

func TestUpdate50_LeavesTailUntouched(t *testing.T) {
	r, _ := setupTestRunner(t)
	_, err := r.Render(context.Background(), BaselineSize)
	require.NoError(t, err)
	before := r.Tasks()

	_, err = r.Update50(context.Background())
	require.NoError(t, err)
	after := r.Tasks()

	require.Len(t, after, BaselineSize)
	for i := 0; i < PartialSize; i++ {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, "Task "+itoa(i+1), before[i].Name, "previous snapshot not mutated")
	}
	assert.Equal(t, before[PartialSize:], after[PartialSize:])
}

func TestDelete50(t *testing.T) {
	r, _ := setupTestRunner(t)
	_, err := r.Render(context.Background(), BaselineSize)
	require.NoError(t, err)
	before := r.Tasks()

	s, err := r.Delete50(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OpDelete50, s.Operation)
	after := r.Tasks()
	require.Len(t, after, BaselineSize-PartialSize)
	assert.Equal(t, before[PartialSize:], after)
}

func TestDelete50_BuildsBaseline(t *testing.T) {
	r, _ := setupTestRunner(t)
	_, err := r.Render(context.Background(), 10)
	require.NoError(t, err)

	_, err = r.Delete50(context.Background())

	require.NoError(t, err)
	assert.Len(t, r.Tasks(), 950)
	assert.Equal(t, "Task 51", r.Tasks()[0].Name)
}

func TestRunAll(t *testing.T) {
	r, pub := setupTestRunner(t)
	_, err := r.Render(context.Background(), 3)
	require.NoError(t, err)

	rep, err := r.RunAll(context.Background())

	require.NoError(t, err)
	ops := make([]string, 0, len(rep.Samples))
	for _, s := range rep.Samples {
		ops = append(ops, s.Operation)
		assert.GreaterOrEqual(t, s.Duration, 0.0)
	}
	assert.Equal(t, []string{"Render 100", "Render 500", "Render 1000", "Update 50", "Delete 50"}, ops)
	assert.Equal(t, rep.Samples, r.Results(), "results cleared before the battery")
	assert.Len(t, r.Tasks(), 950)
	assert.Len(t, pub.lastTasks(), 950)
	assert.Equal(t, "test", rep.Frontend)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
}

func TestRunAll_UpdateMarksAllHigh(t *testing.T) {
	var snapshots []todo.List
	r, pub := setupTestRunner(t)

	_, err := r.RunAll(context.Background())
	require.NoError(t, err)

	pub.mu.Lock()
	snapshots = append(snapshots, pub.tasks...)
	pub.mu.Unlock()
	require.GreaterOrEqual(t, len(snapshots), 2)
	updated := snapshots[len(snapshots)-2]
	require.Len(t, updated, BaselineSize)
	for i := 0; i < PartialSize; i++ {
		assert.Regexp(t, updatedName, updated[i].Name)
		assert.Equal(t, todo.High, updated[i].Priority, "index %d", i)
	}
	assert.Equal(t, "Task 51", updated[PartialSize].Name)
}

func TestRunAll_SettleDelay(t *testing.T) {
	r, _ := setupTestRunner(t, WithSettleDelay(5*time.Millisecond))
	start := time.Now()

	_, err := r.RunAll(context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond, "pauses after every step including the last")
}

func TestRunAll_AbortsOnFailure(t *testing.T) {
	calls := 0
	boom := errors.New("renderer crashed")
	m := measurerFunc(func(ctx context.Context, mutation func() error) (settle.Result, error) {
		calls++
		if calls == 3 {
			return settle.Result{}, boom
		}
		if err := mutation(); err != nil {
			return settle.Result{}, err
		}
		return settle.Result{Duration: 1.25}, nil
	})
	r := NewRunner(m, nil, WithSettleDelay(0))

	rep, err := r.RunAll(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.ErrorIs(t, err, boom)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Render 1000", stepErr.Operation)

	require.Len(t, rep.Samples, 2, "collected samples are kept")
	assert.Equal(t, 3, calls, "no steps after the failure")
	assert.Len(t, r.Results(), 2)
	assert.Len(t, r.Tasks(), 500)
}

func TestRunAll_MutationFailure(t *testing.T) {
	g := todo.NewGenerator(todo.IDFunc(func(int) (string, error) {
		return "", errors.New("no ids")
	}))
	r, _ := setupTestRunner(t, WithGenerator(g))

	rep, err := r.RunAll(context.Background())

	assert.ErrorIs(t, err, settle.ErrMeasurement)
	assert.ErrorIs(t, err, todo.ErrGeneration)
	assert.Empty(t, rep.Samples)
}

func TestRunner_Busy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	m := measurerFunc(func(ctx context.Context, mutation func() error) (settle.Result, error) {
		close(entered)
		<-release
		return settle.Result{}, mutation()
	})
	r := NewRunner(m, nil, WithSettleDelay(0))

	done := make(chan error, 1)
	go func() {
		_, err := r.Render(context.Background(), 10)
		done <- err
	}()
	<-entered

	_, err := r.Render(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, IsBusy(err))
	_, err = r.RunAll(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, r.Mutate(func(l todo.List) (todo.List, error) { return l, nil }), ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestMutate(t *testing.T) {
	r, pub := setupTestRunner(t)

	err := r.Mutate(func(l todo.List) (todo.List, error) {
		return l.Add(r.Generator(), "write report", todo.Medium)
	})

	require.NoError(t, err)
	require.Len(t, r.Tasks(), 1)
	assert.Equal(t, "write report", pub.lastTasks()[0].Name)

	err = r.Mutate(func(l todo.List) (todo.List, error) {
		return l.Add(r.Generator(), "", todo.Medium)
	})
	assert.ErrorIs(t, err, todo.ErrEmptyName)
	assert.Len(t, r.Tasks(), 1)
}

func TestReportJSON(t *testing.T) {
	rep := Report{Samples: []Sample{
		{Operation: "Render 100", Duration: 3.5},
		{Operation: "Render 500", Duration: 12},
		{Operation: "Delete 50", Duration: 0.25},
	}}

	data, err := json.Marshal(rep)

	require.NoError(t, err)
	assert.Equal(t, `{"Render 100":3.5,"Render 500":12,"Delete 50":0.25}`, string(data))
}

func TestReportJSON_Empty(t *testing.T) {
	data, err := json.Marshal(Report{})

	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
