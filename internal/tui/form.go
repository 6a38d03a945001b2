package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
)

const formHelp = "enter save  tab priority  esc cancel"

// taskForm is the inline add/edit prompt. An empty id means a new task.
type taskForm struct {
	id       string
	name     []rune
	priority todo.Priority
}

func newTaskForm() *taskForm {
	return &taskForm{priority: todo.Medium}
}

func editTaskForm(t todo.Task) *taskForm {
	return &taskForm{id: t.ID, name: []rune(t.Name), priority: t.Priority}
}

func (f *taskForm) title() string {
	if f.id == "" {
		return "New task"
	}
	return "Edit task"
}

func (f *taskForm) String() string {
	return f.title() + ": " + string(f.name) + "_  priority: " + f.priority.String() + "  " + formHelp
}

func (f *taskForm) value() string {
	return strings.TrimSpace(string(f.name))
}

// apply returns the edit that saves the form into a list.
func (f *taskForm) apply(gen *todo.Generator) func(todo.List) (todo.List, error) {
	id, name, priority := f.id, f.value(), f.priority
	if id == "" {
		return func(l todo.List) (todo.List, error) {
			return l.Add(gen, name, priority)
		}
	}
	return func(l todo.List) (todo.List, error) {
		return l.Edit(id, name, priority)
	}
}

// handleFormKey edits the open form. Enter saves it through the runner and
// Esc discards it.
func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.form = nil
		m.errText = ""
		return nil
	case tea.KeyEnter:
		if f.value() == "" {
			m.errText = todo.ErrEmptyName.Error()
			return nil
		}
		m.form = nil
		m.errText = ""
		if m.runner == nil {
			return nil
		}
		return m.edit(f.apply(m.runner.Generator()))
	case tea.KeyTab:
		f.priority = f.priority.Next()
	case tea.KeyBackspace:
		if len(f.name) > 0 {
			f.name = f.name[:len(f.name)-1]
		}
	case tea.KeySpace:
		f.name = append(f.name, ' ')
	case tea.KeyRunes:
		f.name = append(f.name, msg.Runes...)
	}
	return nil
}
