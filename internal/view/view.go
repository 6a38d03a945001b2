// Package view renders the todo list and benchmark results as terminal text.
// Both front-ends paint the same view so their samples stay comparable.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rezi-ui/bench/todo-bench/internal/bench"
	"github.com/rezi-ui/bench/todo-bench/internal/todo"
)

const (
	nameWidth     = 40
	priorityWidth = 8
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)

	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		todo.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		todo.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

type State struct {
	Title   string
	Tasks   todo.List
	Results []bench.Sample
	Cursor  int
	// MaxRows limits the visible task rows; zero shows every task.
	MaxRows int
	Status  string
	Err     string
	Busy    bool
	Footer  string
}

func Render(s State) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Title))
	b.WriteByte('\n')
	b.WriteString(headerStyle.Render(clipPad("Name", nameWidth) + " " + clipPad("Priority", priorityWidth)))
	b.WriteByte('\n')

	first, last := window(len(s.Tasks), s.Cursor, s.MaxRows)
	for i := first; i < last; i++ {
		b.WriteString(taskRow(s.Tasks[i], i == s.Cursor))
		b.WriteByte('\n')
	}
	if len(s.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("no tasks"))
		b.WriteByte('\n')
	} else if last-first < len(s.Tasks) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("rows %d-%d of %d", first+1, last, len(s.Tasks))))
		b.WriteByte('\n')
	}

	b.WriteString(panelStyle.Render(resultsPanel(s.Results)))
	b.WriteByte('\n')

	status := s.Status
	if s.Busy {
		status = "running... " + status
	}
	if status != "" {
		b.WriteString(status)
		b.WriteByte('\n')
	}
	if s.Err != "" {
		b.WriteString(errorStyle.Render("error: " + s.Err))
		b.WriteByte('\n')
	}
	if s.Footer != "" {
		b.WriteString(mutedStyle.Render(s.Footer))
	}
	return b.String()
}

func taskRow(t todo.Task, selected bool) string {
	name := clipPad(t.Name, nameWidth)
	priority := priorityStyles[t.Priority].Render(clipPad(t.Priority.String(), priorityWidth))
	if selected {
		name = selectedStyle.Render(name)
	}
	return name + " " + priority
}

func resultsPanel(results []bench.Sample) string {
	if len(results) == 0 {
		return "Benchmarks: none yet"
	}
	lines := make([]string, 0, len(results)+1)
	lines = append(lines, "Benchmarks")
	for _, r := range results {
		line := fmt.Sprintf("%s: %.2fms", r.Operation, r.Duration)
		if r.Degraded {
			line += " (approx)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// window returns the [first,last) rows to show so that cursor stays visible.
func window(total, cursor, maxRows int) (int, int) {
	if maxRows <= 0 || total <= maxRows {
		return 0, total
	}
	first := cursor - maxRows/2
	if first < 0 {
		first = 0
	}
	if first+maxRows > total {
		first = total - maxRows
	}
	return first, first + maxRows
}

func clipPad(s string, cols int) string {
	runes := []rune(s)
	if len(runes) >= cols {
		return string(runes[:cols])
	}
	return s + strings.Repeat(" ", cols-len(runes))
}
