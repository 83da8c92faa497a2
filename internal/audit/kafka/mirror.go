// Package kafka mirrors run outcomes onto a topic so downstream compliance
// consumers see the same record the CSV log does. The mirror is best effort:
// the run controller never blocks or aborts on it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"phonefix/internal/audit"
)

// Config carries broker addresses and the target topic.
type Config struct {
	Brokers []string
	Topic   string
}

// producer is the slice of *kgo.Client the mirror uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Mirror implements audit.Sink by producing one JSON event per outcome.
type Mirror struct {
	client producer
	topic  string
	runID  uuid.UUID
}

// event is the wire payload. Field names are part of the consumer contract.
type event struct {
	RunID         string `json:"RunID"`
	Timestamp     string `json:"Timestamp"`
	Identity      string `json:"Identity,omitempty"`
	DisplayName   string `json:"DisplayName,omitempty"`
	PrincipalName string `json:"PrincipalName,omitempty"`
	OldNumber     string `json:"OldNumber,omitempty"`
	NewNumber     string `json:"NewNumber,omitempty"`
	Result        string `json:"Result"`
	Message       string `json:"Message,omitempty"`
}

// New connects to the brokers and ensures the topic exists before the run
// starts, so a missing topic surfaces at startup rather than mid-iteration.
func New(ctx context.Context, cfg Config, runID uuid.UUID) (*Mirror, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopics(ctx, 1, 1, nil, cfg.Topic); err != nil {
		// Already-exists responses come back as per-topic errors; surface
		// only transport-level failures.
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}

	return &Mirror{client: client, topic: cfg.Topic, runID: runID}, nil
}

func (m *Mirror) Append(ctx context.Context, out audit.Outcome) error {
	return m.produce(ctx, event{
		RunID:         m.runID.String(),
		Timestamp:     time.Now().Format(time.RFC3339Nano),
		Identity:      out.Identity,
		DisplayName:   out.DisplayName,
		PrincipalName: out.PrincipalName,
		OldNumber:     out.OldNumber,
		NewNumber:     out.NewNumber,
		Result:        string(out.Result),
		Message:       out.Message,
	})
}

func (m *Mirror) NoCandidates(ctx context.Context) error {
	return m.produce(ctx, event{
		RunID:     m.runID.String(),
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Result:    "NoCandidates",
	})
}

func (m *Mirror) Close() error {
	m.client.Close()
	return nil
}

func (m *Mirror) produce(ctx context.Context, ev event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic: m.topic,
		Key:   []byte(m.runID.String()),
		Value: payload,
	}
	if err := m.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
