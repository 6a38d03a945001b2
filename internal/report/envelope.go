// Package report delivers run-all reports to out-of-band sinks: a JSON
// writer or result file, a Redis list, and a PostgreSQL table.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rezi-ui/bench/todo-bench/internal/bench"
)

// Envelope is the serialized form of one benchmark outcome.
type Envelope struct {
	OK         bool           `json:"ok"`
	Frontend   string         `json:"frontend,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Results    *bench.Report  `json:"results,omitempty"`
	Samples    []bench.Sample `json:"samples,omitempty"`
	Resources  *Resources     `json:"resources,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type Sink interface {
	Emit(ctx context.Context, env Envelope) error
}

// NewEnvelope wraps rep and the error the run ended with, if any.
func NewEnvelope(rep bench.Report, err error) Envelope {
	env := Envelope{
		OK:       err == nil,
		Frontend: rep.Frontend,
		Samples:  rep.Samples,
	}
	if !rep.StartedAt.IsZero() {
		started, finished := rep.StartedAt, rep.FinishedAt
		env.StartedAt, env.FinishedAt = &started, &finished
	}
	if len(rep.Samples) > 0 {
		env.Results = &rep
	}
	if err != nil {
		env.Error = err.Error()
	}
	return env
}

// ErrorEnvelope reports a failure that happened before any sample.
func ErrorEnvelope(err error) Envelope {
	return Envelope{OK: false, Error: err.Error()}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Multi emits to every sink and joins their errors.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, env Envelope) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
