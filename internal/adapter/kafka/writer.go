package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/couchcryptid/storm-track-ingest/internal/config"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/zeebo/xxh3"
)

// Writer produces decoded advisory records to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, clock: clockwork.NewRealClock()}
}

// LoadBatch serializes and publishes a storm's decoded records to the sink
// topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, stormID string, records atcf.Table) error {
	if len(records) == 0 {
		return nil
	}
	ingestedAt := w.clock.Now().UTC().Format(time.RFC3339)
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(stormID, records[i], ingestedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one advisory record into a Kafka message keyed
// by the record's identity so re-ingesting a deck lands on the same partition.
func serializeToMessage(stormID string, rec atcf.Record, ingestedAt string) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize advisory record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(recordKey(stormID, rec)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "storm_id", Value: []byte(stormID)},
			{Key: "record_type", Value: []byte(rec.RecordType)},
			{Key: "ingested_at", Value: []byte(ingestedAt)},
		},
	}, nil
}

// recordKey hashes the fields that identify an advisory record within a deck.
func recordKey(stormID string, rec atcf.Record) string {
	identity := stormID + "|" + rec.Datetime.Format(time.RFC3339) + "|" + rec.RecordType + "|" + strconv.Itoa(rec.Isotach)
	return strconv.FormatUint(xxh3.HashString(identity), 16)
}
