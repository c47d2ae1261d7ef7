package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// --- mock types ---

type mockJetStream struct {
	published []*nats.Msg
	opts      [][]nats.PubOpt
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	m.opts = append(m.opts, opts)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

func newTestPublisher(js *mockJetStream) *Publisher {
	p := NewWithJetStream(js, "refdata-ingest")
	p.now = func() time.Time { return time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC) }
	return p
}

// --- tests ---

func TestPublishInstrumentUpserted(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)
	corr := uuid.New()
	instID := uuid.New()

	err := p.PublishInstrumentUpserted(context.Background(), corr, model.InstrumentUpsertedEvent{
		InstrumentID: instID,
		ISIN:         "XS0000000001",
		Type:         model.TypeDebt,
		CFICode:      "DBFTFB",
		VenueCount:   2,
		FIGI:         "BBG000000001",
		Enrichment:   "Complete",
		SourceFile:   "FULINS_D_20240105_1of1.xml",
	})
	require.NoError(t, err)
	require.Len(t, js.published, 1)

	msg := js.published[0]
	assert.Equal(t, SubjectInstrumentUpserted, msg.Subject)
	assert.Equal(t, EventInstrumentUpserted, msg.Header.Get("event_type"))
	assert.Equal(t, corr.String(), msg.Header.Get("correlation_id"))
	assert.Equal(t, "refdata-ingest", msg.Header.Get("service"))
	assert.Equal(t, "application/json", msg.Header.Get("content_type"))
	assert.Len(t, js.opts[0], 1, "message id option is set")

	var env model.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, corr, env.CorrelationID)
	assert.Equal(t, SubjectInstrumentUpserted, env.Topic)
	assert.Equal(t, "1.0.0", env.Version)
	assert.Equal(t, "refdata-ingest", env.Source)
	assert.NotEqual(t, uuid.Nil, env.ID)

	var evt model.InstrumentUpsertedEvent
	require.NoError(t, json.Unmarshal(env.Payload, &evt))
	assert.Equal(t, instID, evt.InstrumentID)
	assert.Equal(t, "XS0000000001", evt.ISIN)
	assert.Equal(t, 2, evt.VenueCount)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), evt.Timestamp)
}

func TestPublishEnvelope_DefaultsToTopic(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{ID: uuid.New(), Topic: "evt.refdata.custom.v1", EventType: "refdata.custom", Payload: json.RawMessage(`{}`)}
	require.NoError(t, p.PublishEnvelope(context.Background(), "", env))
	assert.Equal(t, "evt.refdata.custom.v1", js.published[0].Subject)
}

func TestPublishEnvelope_Failure(t *testing.T) {
	p := newTestPublisher(&mockJetStream{fail: true})

	err := p.PublishInstrumentUpserted(context.Background(), uuid.New(), model.InstrumentUpsertedEvent{ISIN: "XS0000000001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock publish error")
}

func TestPublishEnvelope_CancelledContext(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PublishInstrumentUpserted(ctx, uuid.New(), model.InstrumentUpsertedEvent{ISIN: "XS0000000001"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, js.published)
}

func TestClose_NoConnection(t *testing.T) {
	p := newTestPublisher(&mockJetStream{})
	assert.NotPanics(t, p.Close)
}
