package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/jobboard/internal/domain"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
	failFor  string
	blockFor string
}

func (p *fakePublisher) Publish(ctx context.Context, body []byte, contentType string) error {
	if contentType != "application/json" {
		return errors.New("unexpected content type")
	}
	if p.blockFor != "" && bytes.Contains(body, []byte(p.blockFor)) {
		<-ctx.Done()
		return ctx.Err()
	}
	if p.failFor != "" && bytes.Contains(body, []byte(p.failFor)) {
		return errors.New("channel closed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, body)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBatch() domain.NotificationBatch {
	return domain.NotificationBatch{
		ID:         "batch-1",
		TemplateID: "deadline-reminder",
		Subject:    "Application deadline approaching: Lab Tech",
		Recipients: []domain.Recipient{
			{UserID: "u1", Address: "a@example.edu", Name: "Ada", Data: map[string]any{"days_remaining": 2}},
			{UserID: "u2", Address: "b@example.edu", Name: "Ben"},
			{UserID: "u3", Address: "c@example.edu", Name: "Cy"},
		},
	}
}

func TestAMQPTransport_Send(t *testing.T) {
	pub := &fakePublisher{}
	tr := NewAMQPTransport(pub, discardLogger(), time.Second)
	tr.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	results, err := tr.Send(context.Background(), testBatch())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Delivered(), r.Address)
	}

	require.Len(t, pub.messages, 3)
	var msg EmailMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, "batch-1", msg.BatchID)
	assert.Equal(t, "deadline-reminder", msg.TemplateID)
	assert.Equal(t, "a@example.edu", msg.To.Address)
	assert.Equal(t, "Ada", msg.To.Name)
	assert.Equal(t, float64(2), msg.Data["days_remaining"])
}

func TestAMQPTransport_PerRecipientFailures(t *testing.T) {
	pub := &fakePublisher{failFor: "b@example.edu", blockFor: "c@example.edu"}
	tr := NewAMQPTransport(pub, discardLogger(), 20*time.Millisecond)

	results, err := tr.Send(context.Background(), testBatch())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Delivered())
	assert.False(t, results[1].Delivered())
	assert.True(t, strings.Contains(results[1].Err.Error(), "channel closed"))
	assert.ErrorIs(t, results[2].Err, context.DeadlineExceeded)
}

func TestAMQPTransport_EmptyBatch(t *testing.T) {
	tr := NewAMQPTransport(&fakePublisher{}, discardLogger(), time.Second)

	_, err := tr.Send(context.Background(), domain.NotificationBatch{TemplateID: "x"})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestAMQPTransport_AssignsBatchID(t *testing.T) {
	pub := &fakePublisher{}
	tr := NewAMQPTransport(pub, discardLogger(), time.Second)

	batch := testBatch()
	batch.ID = ""
	_, err := tr.Send(context.Background(), batch)
	require.NoError(t, err)

	var first, second EmailMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &first))
	require.NoError(t, json.Unmarshal(pub.messages[1], &second))
	assert.NotEmpty(t, first.BatchID)
	assert.Equal(t, first.BatchID, second.BatchID)
}

func TestLogTransport_Send(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTransport(slog.New(slog.NewJSONHandler(&buf, nil)))

	results, err := tr.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, 3, strings.Count(buf.String(), "Dry run notification"))

	_, err = tr.Send(context.Background(), domain.NotificationBatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}
