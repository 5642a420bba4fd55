package messaging

import (
	"testing"
	"time"

	"github.com/nats-io/stan.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionOptionsUseManualAcks(t *testing.T) {
	opts := stan.DefaultSubscriptionOptions
	for _, opt := range subscriptionOptions("events.updated", "workers") {
		require.NoError(t, opt(&opts))
	}

	assert.True(t, opts.ManualAcks)
	assert.Equal(t, "events.updated-workers-durable", opts.DurableName)
	assert.Equal(t, 30*time.Second, opts.AckWait)
	assert.Equal(t, 1, opts.MaxInflight)
}
