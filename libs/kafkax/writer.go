package kafkax

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter returns a writer that routes by message topic and hashes on key,
// so events for one booking stay ordered within a partition.
func NewWriter(brokers string) (*kafka.Writer, error) {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(list...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}, nil
}
