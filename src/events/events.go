// Package events publishes acquisition outcomes to Kafka so downstream
// consumers (analytics, catalog audits) can follow what the scraper feeds in.
// Publishing is fire-and-forget; the search path never waits on it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const acquisitionsTopic = "catalog.acquisitions"

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a Kafka publisher for the given broker address.
func NewPublisher(broker string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        acquisitionsTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
	}
}

// PublishAcquisition sends one acquisition summary keyed by the search query,
// so events for the same phrase land on the same partition in order.
func (p *Publisher) PublishAcquisition(ctx context.Context, query string, summary any) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(query),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
