// Package kafka publishes enriched organization records to a sink topic for
// downstream consumers. The sink is optional: batches run fine writing only
// CSV, and the producer is constructed only when brokers are configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/config"
	"github.com/couchcryptid/org-hazard-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces enriched-record messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the records in a single
// WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, records []domain.OrgRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(&records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish enriched records: %w", err)
	}
	w.logger.Info("published enriched records", "count", len(records))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// enrichedPayload is the wire shape of one enriched organization record.
type enrichedPayload struct {
	Identity    string               `json:"identity"`
	Name        string               `json:"name"`
	State       string               `json:"state,omitempty"`
	Geocode     domain.GeocodeResult `json:"geocode"`
	Zones       domain.ZoneSet       `json:"zones,omitempty"`
	ProcessedAt time.Time            `json:"processed_at"`
}

// serializeToMessage marshals a record into a Kafka message keyed by its
// identity, so downstream compaction keeps one message per organization.
func serializeToMessage(rec *domain.OrgRecord) (kafkago.Message, error) {
	payload := enrichedPayload{
		Identity:    rec.Identity(),
		Name:        rec.Name,
		State:       rec.State,
		Geocode:     rec.Geocode,
		Zones:       rec.Zones,
		ProcessedAt: rec.ProcessedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(payload.Identity),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "geocoding_status", Value: []byte(rec.Geocode.Status)},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
