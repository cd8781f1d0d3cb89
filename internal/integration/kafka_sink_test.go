//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/couchcryptid/org-hazard-etl/internal/adapter/kafka"
	"github.com/couchcryptid/org-hazard-etl/internal/config"
	"github.com/couchcryptid/org-hazard-etl/internal/domain"
)

const testSinkTopic = "test-org-hazard-enriched"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// enrichedMessage is one deserialized message from the sink topic.
type enrichedMessage struct {
	Payload map[string]any
	Key     string
	Headers map[string]string
}

func readEnriched(ctx context.Context, t *testing.T, consumer *kafkago.Reader) enrichedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload), "unmarshal sink message")

	return enrichedMessage{Payload: payload, Key: string(msg.Key), Headers: headers}
}

// TestPublishEnrichedRecords verifies the sink adapter round-trips enriched
// organization records through real Kafka with identity keys and status
// headers intact.
func TestPublishEnrichedRecords(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	processedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	records := []domain.OrgRecord{
		{
			SourceID: "ORG-1",
			Name:     "Springfield Shelter",
			State:    "IL",
			Geocode: domain.GeocodeResult{
				Point:  domain.Point{Lat: 39.8017, Lon: -89.6437},
				Method: domain.MethodFreeFull,
				Status: domain.StatusSuccess,
			},
			Zones:          domain.ZoneSet{ForecastZone: "ILZ051", CWAOffice: "ILX"},
			ZoneLookupDone: true,
			ProcessedAt:    processedAt,
		},
		{
			SourceID:    "ORG-2",
			Name:        "Closed Site",
			State:       "IL",
			Geocode:     domain.GeocodeResult{Method: domain.MethodFailed, Status: domain.StatusFailed},
			ProcessedAt: processedAt,
		},
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishBatch(ctx, records))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byKey := make(map[string]enrichedMessage, len(records))
	for range records {
		em := readEnriched(ctx, t, consumer)
		byKey[em.Key] = em
	}
	require.Len(t, byKey, 2, "distinct identity per record")

	ok := byKey["ORG-1"]
	require.NotZero(t, ok.Key)
	assert.Equal(t, "Success", ok.Headers["geocoding_status"])
	assert.Equal(t, processedAt.Format(time.RFC3339), ok.Headers["processed_at"])
	assert.Equal(t, "Springfield Shelter", ok.Payload["name"])
	assert.Equal(t, "IL", ok.Payload["state"])

	zones, _ := ok.Payload["zones"].(map[string]any)
	require.NotNil(t, zones)
	assert.Equal(t, "ILZ051", zones["forecast_zone"])

	failed := byKey["ORG-2"]
	assert.Equal(t, "Failed", failed.Headers["geocoding_status"])
}
