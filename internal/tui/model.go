package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/report"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
	"github.com/rezi-ui/bench/todo-bench/internal/view"
)

const (
	keyHelp      = "1/2/3 render 100/500/1000  u update 50  d delete 50  a run all  n add  e edit  p priority  x delete  j/k move  q quit"
	chromeRows   = 14
	minTableRows = 5
)

type (
	readyMsg   struct{}
	tasksMsg   struct{ tasks todo.List }
	resultsMsg struct{ samples []bench.Sample }
	// frameMsg asks for one paint; View closes ack once it has rendered.
	frameMsg    struct{ ack chan struct{} }
	stepDoneMsg struct {
		sample bench.Sample
		err    error
	}
	runDoneMsg struct {
		report bench.Report
		err    error
	}
	editDoneMsg struct{ err error }
)

// Model is the Bubble Tea model of the todo list. All snapshots arrive as
// messages, so it is only touched by the program's event loop.
type Model struct {
	tasks   todo.List
	results []bench.Sample
	cursor  int
	height  int
	status  string
	errText string
	busy    bool
	frames  int64
	form    *taskForm

	pendingAcks []chan struct{}
	ready       chan struct{}

	ctx    context.Context
	runner *bench.Runner
	sink   report.Sink
}

func newModel() *Model {
	return &Model{
		ready:  make(chan struct{}),
		ctx:    context.Background(),
		status: "ready",
	}
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return readyMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case readyMsg:
		if m.ready != nil {
			close(m.ready)
			m.ready = nil
		}
	case tea.WindowSizeMsg:
		m.height = v.Height
	case tasksMsg:
		m.tasks = v.tasks
		m.clampCursor()
	case resultsMsg:
		m.results = v.samples
	case frameMsg:
		m.frames++
		m.pendingAcks = append(m.pendingAcks, v.ack)
	case stepDoneMsg:
		m.busy = false
		m.setErr(v.err)
		if v.err == nil {
			m.status = fmt.Sprintf("%s: %.2fms", v.sample.Operation, v.sample.Duration)
		}
	case runDoneMsg:
		m.busy = false
		m.setErr(v.err)
		if v.err == nil {
			m.status = fmt.Sprintf("run all finished: %d samples", len(v.report.Samples))
		}
	case editDoneMsg:
		m.setErr(v.err)
	case tea.KeyMsg:
		if m.form != nil {
			return m, m.handleFormKey(v)
		}
		return m, m.handleKey(v.String())
	}
	return m, nil
}

func (m *Model) View() string {
	for _, ack := range m.pendingAcks {
		close(ack)
	}
	m.pendingAcks = nil

	footer := keyHelp
	if m.form != nil {
		footer = m.form.String()
	}
	return view.Render(view.State{
		Title:   "Todo List (Bubble Tea)",
		Tasks:   m.tasks,
		Results: m.results,
		Cursor:  m.cursor,
		MaxRows: m.tableRows(),
		Status:  m.status,
		Err:     m.errText,
		Busy:    m.busy,
		Footer:  footer + "  frame=" + strconv.FormatInt(m.frames, 10),
	})
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
		return nil
	case "k", "up":
		m.cursor--
		m.clampCursor()
		return nil
	}

	if m.runner == nil {
		return nil
	}
	if m.busy {
		m.errText = bench.ErrBusy.Error()
		return nil
	}

	switch key {
	case "1":
		return m.step(100)
	case "2":
		return m.step(500)
	case "3":
		return m.step(bench.BaselineSize)
	case "u":
		return m.runStep(bench.OpUpdate50, m.runner.Update50)
	case "d":
		return m.runStep(bench.OpDelete50, m.runner.Delete50)
	case "a":
		return m.runAll()
	case "n":
		m.form = newTaskForm()
		m.errText = ""
		return nil
	case "e", "p", "x":
		selected, ok := m.selected()
		if !ok {
			return nil
		}
		if key == "e" {
			m.form = editTaskForm(selected)
			m.errText = ""
			return nil
		}
		return m.edit(selectedEdit(key, selected))
	}
	return nil
}

func selectedEdit(key string, t todo.Task) func(todo.List) (todo.List, error) {
	return func(l todo.List) (todo.List, error) {
		current, ok := l.Find(t.ID)
		if !ok {
			return l, todo.ErrTaskNotFound
		}
		if key == "p" {
			return l.Edit(current.ID, current.Name, current.Priority.Next())
		}
		return l.Remove(current.ID)
	}
}

func (m *Model) step(count int) tea.Cmd {
	runner := m.runner
	return m.runStep(bench.RenderOp(count), func(ctx context.Context) (bench.Sample, error) {
		return runner.Render(ctx, count)
	})
}

func (m *Model) runStep(label string, fn func(context.Context) (bench.Sample, error)) tea.Cmd {
	m.busy = true
	m.errText = ""
	m.status = label
	ctx := m.ctx
	return func() tea.Msg {
		s, err := fn(ctx)
		return stepDoneMsg{sample: s, err: err}
	}
}

func (m *Model) runAll() tea.Cmd {
	m.busy = true
	m.errText = ""
	m.status = "run all"
	ctx, runner, sink := m.ctx, m.runner, m.sink
	return func() tea.Msg {
		rep, err := runner.RunAll(ctx)
		if sink != nil && !bench.IsBusy(err) {
			if emitErr := sink.Emit(ctx, report.NewEnvelope(rep, err)); emitErr != nil {
				err = errors.Join(err, emitErr)
			}
		}
		return runDoneMsg{report: rep, err: err}
	}
}

func (m *Model) edit(fn func(todo.List) (todo.List, error)) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		return editDoneMsg{err: runner.Mutate(fn)}
	}
}

func (m *Model) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) setErr(err error) {
	if err == nil {
		m.errText = ""
		return
	}
	m.errText = err.Error()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) tableRows() int {
	if m.height <= 0 {
		return 20
	}
	if rows := m.height - chromeRows; rows > minTableRows {
		return rows
	}
	return minTableRows
}
