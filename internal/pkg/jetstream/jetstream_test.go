package jetstream

import (
	"strconv"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestMessageID(t *testing.T) {
	assert.Equal(t, "seq:42/7", MessageID(nats.SequencePair{Stream: 42, Consumer: 7}))
}

func TestLatencyWithoutMetadata(t *testing.T) {
	msg := nats.NewMsg("CATRANK_SNAPSHOTS.ingest.api")
	assert.Zero(t, Latency(msg, time.Now()))
}

func TestLatency(t *testing.T) {
	published := time.Now().Add(-3 * time.Second).UnixNano()
	msg := &nats.Msg{
		Subject: "CATRANK_SNAPSHOTS.ingest.api",
		Reply:   "$JS.ACK.CATRANK_SNAPSHOTS.catrank-ingest.1.10.4." + strconv.FormatInt(published, 10) + ".0",
		Sub:     &nats.Subscription{},
	}

	latency := Latency(msg, time.Unix(0, published).Add(3*time.Second))
	assert.Equal(t, 3*time.Second, latency)
}
