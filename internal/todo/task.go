// Package todo defines the task record used as benchmark workload and the
// helpers that generate and edit ordered task collections.
package todo

import (
	"errors"
	"fmt"
	"strings"
)

type (
	Priority int
	Task     struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Priority Priority `json:"priority"`
	}
)

const (
	Low Priority = iota
	Medium
	High
)

var ErrInvalidPriority = errors.New("invalid priority")

// cycle is the order in which generated tasks receive priorities.
var cycle = [...]Priority{Low, Medium, High}

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Next returns the priority after p in the low, medium, high rotation.
func (p Priority) Next() Priority {
	return cycle[(int(p)+1)%len(cycle)]
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	if p < Low || p > High {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(data []byte) error {
	parsed, err := ParsePriority(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
