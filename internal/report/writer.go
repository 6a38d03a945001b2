package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterSink writes each envelope as one JSON line.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterSink(out io.Writer) *WriterSink {
	if out == nil {
		out = os.Stdout
	}
	return &WriterSink{out: out}
}

func (s *WriterSink) Emit(_ context.Context, env Envelope) error {
	serialized, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(serialized, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// FileSink replaces the file at Path with the latest envelope.
type FileSink struct {
	Path string
}

func (s FileSink) Emit(_ context.Context, env Envelope) error {
	serialized, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(s.Path, serialized, 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}
