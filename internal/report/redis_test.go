package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedisSink(t *testing.T, keep int64) (*RedisSink, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	sink, err := NewRedisSink(context.Background(), mr.Addr(), "", keep)
	require.NoError(t, err)

	return sink, mr
}

func TestNewRedisSink_InvalidAddress(t *testing.T) {
	_, err := NewRedisSink(context.Background(), "invalid:99999", "", 0)

	assert.Error(t, err)
}

func TestRedisSink_Emit(t *testing.T) {
	sink, mr := setupTestRedisSink(t, 0)
	defer mr.Close()
	defer func() { _ = sink.Close() }()

	err := sink.Emit(context.Background(), NewEnvelope(testReport(), nil))
	require.NoError(t, err)

	stored, err := mr.List(DefaultRedisKey)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(stored[0]), &env))
	assert.Equal(t, true, env["ok"])
	assert.Equal(t, "headless", env["frontend"])
}

func TestRedisSink_KeepsNewest(t *testing.T) {
	sink, mr := setupTestRedisSink(t, 2)
	defer mr.Close()
	defer func() { _ = sink.Close() }()

	for _, frontend := range []string{"a", "b", "c"} {
		rep := testReport()
		rep.Frontend = frontend
		require.NoError(t, sink.Emit(context.Background(), NewEnvelope(rep, nil)))
	}

	recent, err := mr.List(DefaultRedisKey)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Contains(t, recent[0], `"frontend":"c"`)
	assert.Contains(t, recent[1], `"frontend":"b"`)
}

func TestRedisSink_ServerGone(t *testing.T) {
	sink, mr := setupTestRedisSink(t, 0)
	defer func() { _ = sink.Close() }()
	mr.Close()

	err := sink.Emit(context.Background(), NewEnvelope(testReport(), nil))

	assert.Error(t, err)
}
