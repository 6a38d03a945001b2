package bench

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

const (
	OpUpdate50 = "Update 50"
	OpDelete50 = "Delete 50"
)

// RenderOp names a render step of count tasks.
func RenderOp(count int) string {
	return "Render " + strconv.Itoa(count)
}

type Sample struct {
	Operation string  `json:"operation"`
	Duration  float64 `json:"duration"`
	Degraded  bool    `json:"degraded,omitempty"`
}

// Report holds the samples of one run-all battery in execution order.
type Report struct {
	Frontend   string
	StartedAt  time.Time
	FinishedAt time.Time
	Samples    []Sample
}

// MarshalJSON encodes the report as one object keyed by operation label,
// keeping battery order rather than sorting keys.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range r.Samples {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Operation)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Duration)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
