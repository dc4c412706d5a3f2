package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacer(t *testing.T) {
	assert.Equal(t, FixedDelay(2*time.Second), NewPacer(2*time.Second, 5, 1))
	assert.IsType(t, &RateLimit{}, NewPacer(0, 5, 1))
	assert.Equal(t, NoDelay{}, NewPacer(0, 0, 0))
}

func TestFixedDelay_Wait(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedDelay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := FixedDelay(time.Hour).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_PacerCalledPerRequest(t *testing.T) {
	api := newFakeAPI(t, map[string]string{"/teams": `{"teams":[]}`})
	pacer := &countingPacer{}
	c := NewClient(api.server.URL, time.Second, WithPacer(pacer))

	for i := 0; i < 3; i++ {
		_, err := c.Teams(context.Background(), false)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, pacer.calls)
}

type countingPacer struct {
	calls int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.calls++
	return ctx.Err()
}
