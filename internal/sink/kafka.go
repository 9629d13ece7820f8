package sink

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jmehdipour/segment-reports/internal/kafka"
	"github.com/jmehdipour/segment-reports/internal/model"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka emits one JSON event per assignment keyed by customer id, so a
// customer's history stays on one partition.
type Kafka struct {
	pub Publisher
}

func NewKafka(pub Publisher) *Kafka { return &Kafka{pub: pub} }

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Publish(ctx context.Context, events []model.AssignmentEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(e.CustomerID, 10)),
			Value: b,
			Time:  e.CreatedAt,
		})
	}
	return k.pub.Publish(ctx, msgs...)
}
