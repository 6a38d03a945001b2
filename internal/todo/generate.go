package todo

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	mrand "math/rand"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

var (
	ErrGeneration    = errors.New("workload generation failed")
	ErrNegativeCount = errors.New("count must be >= 0")
)

// GenerationError reports that no identifier could be minted for the task at
// Index, neither by the primary source nor by its fallback.
type GenerationError struct {
	Index int
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate task %d: %v", e.Index, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// IDSource mints task identifiers. index is the ordinal of the task inside
// the workload being generated.
type IDSource interface {
	NewID(index int) (string, error)
}

type IDFunc func(index int) (string, error)

func (f IDFunc) NewID(index int) (string, error) {
	return f(index)
}

// UUIDSource mints random UUIDs and falls back to Fallback when the entropy
// reader fails.
type UUIDSource struct {
	Rand     io.Reader
	Fallback IDSource
}

func (s UUIDSource) NewID(index int) (string, error) {
	r := s.Rand
	if r == nil {
		r = rand.Reader
	}
	id, err := uuid.NewRandomFromReader(r)
	if err == nil {
		return id.String(), nil
	}
	if s.Fallback == nil {
		return "", fmt.Errorf("uuid: %w", err)
	}
	fallbackID, fbErr := s.Fallback.NewID(index)
	if fbErr != nil {
		return "", errors.Join(fmt.Errorf("uuid: %w", err), fmt.Errorf("fallback: %w", fbErr))
	}
	return fallbackID, nil
}

// FallbackSource builds ids from wall-clock millis, a random base36 suffix
// and the ordinal index, so two ids minted in the same millisecond still
// differ by index or suffix.
type FallbackSource struct {
	Clock clock.Clock
}

func (s FallbackSource) NewID(index int) (string, error) {
	c := s.Clock
	if c == nil {
		c = clock.New()
	}
	suffix := strconv.FormatUint(mrand.Uint64(), 36)
	return fmt.Sprintf("%d-%s-%d", c.Now().UnixMilli(), suffix, index), nil
}

type Generator struct {
	ids IDSource
}

func NewGenerator(ids IDSource) *Generator {
	if ids == nil {
		ids = UUIDSource{Fallback: FallbackSource{}}
	}
	return &Generator{ids: ids}
}

var defaultGenerator = NewGenerator(nil)

// Generate returns count tasks named "Task 1".."Task count" whose
// priorities rotate low, medium, high by position.
func Generate(count int) ([]Task, error) {
	return defaultGenerator.Generate(count)
}

func (g *Generator) Generate(count int) ([]Task, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeCount, count)
	}

	tasks := make([]Task, count)
	for i := range tasks {
		id, err := g.ids.NewID(i)
		if err != nil {
			return nil, &GenerationError{Index: i, Err: err}
		}
		tasks[i] = Task{
			ID:       id,
			Name:     "Task " + strconv.Itoa(i+1),
			Priority: cycle[i%len(cycle)],
		}
	}
	return tasks, nil
}

// NewTask builds a user-entered task with a fresh id.
func (g *Generator) NewTask(name string, priority Priority) (Task, error) {
	id, err := g.ids.NewID(0)
	if err != nil {
		return Task{}, &GenerationError{Index: 0, Err: err}
	}
	return Task{ID: id, Name: name, Priority: priority}, nil
}
