package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls    atomic.Int32
	deadline atomic.Bool
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	_, ok := ctx.Deadline()
	r.deadline.Store(ok)
	r.calls.Add(1)
	return nil
}

func TestScheduler_RunsImmediately(t *testing.T) {
	r := &countingRefresher{}
	s := New(zerolog.Nop(), r, time.Hour, time.Second)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, r.deadline.Load(), "refresh runs with a timeout")
}

func TestScheduler_OnceWithoutInterval(t *testing.T) {
	r := &countingRefresher{}
	s := New(zerolog.Nop(), r, 0, 0)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return r.calls.Load() > 1 }, 200*time.Millisecond, 20*time.Millisecond)
}
