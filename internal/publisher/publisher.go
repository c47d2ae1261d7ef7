// Package publisher emits canonical refdata events to NATS JetStream.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/refdata/internal/metrics"
	"github.com/Checker-Finance/refdata/pkg/logger"
	"github.com/Checker-Finance/refdata/pkg/model"
)

const (
	SubjectInstrumentUpserted = "evt.refdata.instrument.upserted.v1"
	EventInstrumentUpserted   = "refdata.instrument.upserted"
	envelopeVersion           = "1.0.0"
)

// MsgPublisher is the part of nats.JetStreamContext the publisher needs.
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher publishes canonical event envelopes.
type Publisher struct {
	nc      *nats.Conn
	js      MsgPublisher
	service string
	now     func() time.Time
}

// New creates a Publisher on a JetStream context of nc.
func New(nc *nats.Conn, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, js: js, service: service, now: time.Now}, nil
}

// NewWithJetStream creates a Publisher over an existing JetStream publisher.
func NewWithJetStream(js MsgPublisher, service string) *Publisher {
	return &Publisher{js: js, service: service, now: time.Now}
}

// PublishEnvelope serializes and publishes env to subject, or to env.Topic
// when subject is empty.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	if subject == "" {
		subject = env.Topic
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	start := time.Now()
	// Message ID lets JetStream drop duplicates of a retried publish.
	_, err = p.js.PublishMsg(msg, nats.MsgId(env.ID.String()))
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Debugw("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)
	metrics.IncNATSMessage(subject, "ok")
	return nil
}

// PublishInstrumentUpserted emits the instrument.upserted event for one
// persisted instrument. correlationID ties together events of one ingest run.
func (p *Publisher) PublishInstrumentUpserted(ctx context.Context, correlationID uuid.UUID, evt model.InstrumentUpsertedEvent) error {
	now := p.now().UTC()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = now
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		Topic:         SubjectInstrumentUpserted,
		EventType:     EventInstrumentUpserted,
		Version:       envelopeVersion,
		Source:        p.service,
		Timestamp:     now,
		Payload:       payload,
	}
	return p.PublishEnvelope(ctx, SubjectInstrumentUpserted, env)
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
