package bench

import (
	"strconv"

	"github.com/rezi-ui/bench/todo-bench/internal/todo"
)

const (
	BaselineSize = 1000
	PartialSize  = 50
)

// UpdateAlternating rewrites the first n tasks as "Updated Task {i+1}",
// high priority at even positions and low at odd ones. Single-step updates
// use this variant.
func UpdateAlternating(tasks todo.List, n int) todo.List {
	out := tasks.Clone()
	for i := 0; i < n && i < len(out); i++ {
		out[i].Name = "Updated Task " + strconv.Itoa(i+1)
		if i%2 == 0 {
			out[i].Priority = todo.High
		} else {
			out[i].Priority = todo.Low
		}
	}
	return out
}

// UpdateAllHigh prefixes the first n names with "Updated " and marks them
// high priority. The run-all battery uses this variant.
func UpdateAllHigh(tasks todo.List, n int) todo.List {
	out := tasks.Clone()
	for i := 0; i < n && i < len(out); i++ {
		out[i].Name = "Updated " + out[i].Name
		out[i].Priority = todo.High
	}
	return out
}

// DropFirst returns the tasks after the first n, in order.
func DropFirst(tasks todo.List, n int) todo.List {
	if n >= len(tasks) {
		return todo.List{}
	}
	out := make(todo.List, len(tasks)-n)
	copy(out, tasks[n:])
	return out
}
