package jetstream

import (
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

// MessageID identifies a delivery in logs.
func MessageID(pair nats.SequencePair) string {
	return "seq:" + strconv.FormatUint(pair.Stream, 10) + "/" + strconv.FormatUint(pair.Consumer, 10)
}

// Latency returns how long msg waited in the stream, or zero when the
// message carries no JetStream metadata.
func Latency(msg *nats.Msg, now time.Time) time.Duration {
	meta, err := msg.Metadata()
	if err != nil {
		return 0
	}
	return now.Sub(meta.Timestamp)
}
