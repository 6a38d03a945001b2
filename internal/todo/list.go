package todo

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName    = errors.New("task name is required")
	ErrTaskNotFound = errors.New("task not found")
)

// List is an ordered task collection. Every method returns a new List and
// leaves the receiver untouched, so a published snapshot is never mutated.
type List []Task

func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

func (l List) Find(id string) (Task, bool) {
	for _, t := range l {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Add appends a user-entered task. The name is trimmed and must not be empty.
func (l List) Add(g *Generator, name string, priority Priority) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return l, ErrEmptyName
	}
	t, err := g.NewTask(name, priority)
	if err != nil {
		return l, err
	}
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, t), nil
}

func (l List) Edit(id, name string, priority Priority) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return l, ErrEmptyName
	}
	for i, t := range l {
		if t.ID != id {
			continue
		}
		out := l.Clone()
		out[i] = Task{ID: t.ID, Name: name, Priority: priority}
		return out, nil
	}
	return l, ErrTaskNotFound
}

func (l List) Remove(id string) (List, error) {
	for i, t := range l {
		if t.ID != id {
			continue
		}
		out := make(List, 0, len(l)-1)
		out = append(out, l[:i]...)
		return append(out, l[i+1:]...), nil
	}
	return l, ErrTaskNotFound
}
