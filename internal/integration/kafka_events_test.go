//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/h1b-wage-explorer/internal/config"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dashboard"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/couchcryptid/h1b-wage-explorer/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testEventsTopic = "test-wage-query-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("wage-explorer-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedEvent holds a deserialized message read from the events topic.
type publishedEvent struct {
	Event   domain.QueryEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from events topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.QueryEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal event message")

	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestQueryEventsReachKafka answers dashboard queries over the sample
// dataset and verifies each one is published to the events topic.
func TestQueryEventsReachKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	cfg := &config.Config{
		KafkaEnabled:     true,
		KafkaBrokers:     []string{broker},
		KafkaEventsTopic: testEventsTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	snap, err := dataset.Load("../dataset/testdata/wages.csv", dataset.FormatRecords, dataset.Options{Logger: discardLogger()})
	require.NoError(t, err)

	svc := dashboard.New(snap, discardLogger(), observability.NewMetricsForTesting(), dashboard.Options{Publisher: writer})
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go svc.Run(runCtx) //nolint:errcheck // returns nil on cancel

	wages, err := svc.Wages(ctx, dashboard.WageRequest{
		Criteria: domain.FilterCriteria{WageLevel: domain.LevelII, Region: domain.Region{State: "CA"}},
	})
	require.NoError(t, err)

	classified, err := svc.Classify(ctx, dashboard.ClassifyRequest{
		Salary:   150000,
		Criteria: domain.FilterCriteria{JobRole: "Software Developers"},
	})
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEventsTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readEvent(ctx, t, consumer)
	assert.Equal(t, dashboard.KindWages, first.Key)
	assert.Equal(t, dashboard.KindWages, first.Headers["kind"])
	_, err = time.Parse(time.RFC3339, first.Headers["queried_at"])
	assert.NoError(t, err, "queried_at should be valid RFC3339")
	assert.Equal(t, "Level II", first.Event.WageLevel)
	assert.Equal(t, "CA", first.Event.State)
	assert.Equal(t, wages.Total, first.Event.ResultCount)

	second := readEvent(ctx, t, consumer)
	assert.Equal(t, dashboard.KindClassify, second.Key)
	assert.Equal(t, "Software Developers", second.Event.JobRole)
	assert.Equal(t, 150000.0, second.Event.AnnualSalary)
	assert.Equal(t, classified.Total, second.Event.ResultCount)
}

// TestPublishToMissingTopicIsNotFatal checks that a broken event sink never
// fails the query that produced the event.
func TestPublishToMissingTopicIsNotFatal(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	writer := kafka.NewWriter(&config.Config{
		KafkaBrokers:     []string{broker},
		KafkaEventsTopic: "topic-that-does-not-exist",
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	snap, err := dataset.Load("../dataset/testdata/wages.csv", dataset.FormatRecords, dataset.Options{Logger: discardLogger()})
	require.NoError(t, err)

	svc := dashboard.New(snap, discardLogger(), observability.NewMetricsForTesting(), dashboard.Options{Publisher: writer})
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go svc.Run(runCtx) //nolint:errcheck // returns nil on cancel

	view, err := svc.Wages(ctx, dashboard.WageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 8, view.Total)
}
