package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls   atomic.Int32
	removed int
}

func (p *countingPurger) PurgeExpiredSessions(context.Context, time.Time) int {
	p.calls.Add(1)
	return p.removed
}

func TestSweepSessionsLogsRemovals(t *testing.T) {
	logger, hook := test.NewNullLogger()

	assert.Equal(t, 0, SweepSessions(context.Background(), &countingPurger{}, logger))
	assert.Nil(t, hook.LastEntry())

	assert.Equal(t, 3, SweepSessions(context.Background(), &countingPurger{removed: 3}, logger))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 3, hook.LastEntry().Data["removed"])
}

func TestStartRejectsBadSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := Start(context.Background(), "not a schedule", &countingPurger{}, logger, nil)
	assert.Error(t, err)
}

func TestStartRunsSweep(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &countingPurger{removed: 1}
	swept := make(chan int, 4)
	_, err := Start(ctx, "@every 1s", p, logger, func(n int) { swept <- n })
	require.NoError(t, err)

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not run")
	}
	assert.GreaterOrEqual(t, p.calls.Load(), int32(1))
}
