package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "signup/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestStore_AppendProducesKeyedRecord(t *testing.T) {
	producer := &recordingProducer{}
	store := New(producer, "signup.audit")

	event := audit.Event{
		ID:        "evt-1",
		Action:    audit.ActionRegistrationSucceeded,
		Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		SessionID: "sess-k",
		Username:  "jdoe",
	}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "signup.audit", rec.Topic)
	assert.Equal(t, []byte("sess-k"), rec.Key)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event, decoded)

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "registration_succeeded", headers["action"])
	assert.Equal(t, "compliance", headers["category"])
}

func TestStore_AppendWrapsProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker not available")}
	store := New(producer, "signup.audit")

	err := store.Append(context.Background(), audit.Event{Action: audit.ActionRegistrationFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker not available")
}
