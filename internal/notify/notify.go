// Package notify announces finished runs and degraded submissions.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"showcase_ingest/internal/diagnostics"
	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/models"
)

const (
	EventRunCompleted       = "run.completed"
	EventSubmissionDegraded = "submission.degraded"
	source                  = "showcase-ingest"
)

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type Publisher interface {
	PublishRun(ctx context.Context, report diagnostics.Report) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

// New returns a Kafka publisher, or a no-op one when no brokers are configured.
func New(cfg models.KafkaConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// PublishRun sends one submission.degraded message per diagnostic, keyed by
// submission id, followed by a run.completed summary.
func (p *KafkaPublisher) PublishRun(ctx context.Context, report diagnostics.Report) error {
	const op = "notify.PublishRun"

	msgs := make([]kafka.Message, 0, len(report.Entries)+1)
	for _, e := range report.Entries {
		msg, err := message(EventSubmissionDegraded, e.SubmissionID, report.RunID, map[string]any{
			"submission_id": e.SubmissionID,
			"reason":        e.Reason,
			"detail":        e.Detail,
			"link":          e.Link,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		msgs = append(msgs, msg)
	}

	summary, err := message(EventRunCompleted, report.RunID, report.RunID, map[string]any{
		"submissions": report.Submissions,
		"degraded":    len(report.Entries),
		"started_at":  report.StartedAt,
		"finished_at": report.FinishedAt,
		"by_reason":   byReason(report.Entries),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msgs = append(msgs, summary)

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.WithFields(map[string]interface{}{
		"run_id":   report.RunID,
		"messages": len(msgs),
	}).Info("published run events")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func message(eventType, key, runID string, data map[string]any) (kafka.Message, error) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		RunID:     runID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(source)},
		},
	}, nil
}

func byReason(entries []diagnostics.Entry) map[string]int {
	out := make(map[string]int)
	for _, c := range diagnostics.Counts(entries) {
		out[c.Reason] = c.Total
	}
	return out
}

type NopPublisher struct{}

func (NopPublisher) PublishRun(context.Context, diagnostics.Report) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
