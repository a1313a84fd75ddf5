package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces earthquake records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes records to the sink topic in a single
// WriteMessages call, preserving their order.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Earthquake) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		out, err := serializeRecord(records[i])
		if err != nil {
			return err
		}
		msgs[i] = toMessage(out)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d records: %w", len(records), err)
	}
	w.logger.Debug("records published", "topic", w.writer.Topic, "count", len(records))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRecord marshals a record into an OutputEvent keyed by its detail
// URL, so repeated publishes of the same event land on the same partition.
func serializeRecord(rec domain.Earthquake) (domain.OutputEvent, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize earthquake: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(recordKey(rec)),
		Value: data,
		Headers: map[string]string{
			"magnitude_category": strconv.Itoa(rec.MagnitudeCategory),
			"date":               rec.Date,
		},
	}, nil
}

func recordKey(rec domain.Earthquake) string {
	if rec.DetailURL != "" {
		return rec.DetailURL
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", rec.FormattedMagnitude, rec.LocationPrimary, rec.Date, rec.Time)))
	return hex.EncodeToString(sum[:8])
}

// toMessage converts an OutputEvent into a Kafka message. Headers are sorted
// by key so output is stable.
func toMessage(out domain.OutputEvent) kafkago.Message {
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(out.Headers[k])}
	}
	return kafkago.Message{Key: out.Key, Value: out.Value, Headers: headers}
}
