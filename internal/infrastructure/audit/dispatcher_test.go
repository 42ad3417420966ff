package audit_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	appaudit "github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/audit"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	release chan struct{}
	got     chan appaudit.Event
}

func (s *blockingSink) Publish(_ context.Context, e appaudit.Event) {
	<-s.release
	s.got <- e
}

type panicSink struct{}

func (panicSink) Publish(context.Context, appaudit.Event) { panic("boom") }

func event(id string) appaudit.Event {
	return appaudit.Event{Kind: appaudit.KindEntryRecorded, ActorID: "op-1", EntityID: id, Summary: "entrada", At: time.Now()}
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	rec := appaudit.NewRecorder(16)
	d := audit.NewDispatcher(8, logger.Nop(), rec)

	for _, id := range []string{"a", "b", "c"} {
		d.Publish(context.Background(), event(id))
	}
	require.NoError(t, d.Close(context.Background()))

	got := rec.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].EntityID)
	assert.Equal(t, "c", got[2].EntityID)
	assert.Zero(t, d.Dropped())

	// Después de Close, Publish se ignora sin pánico.
	d.Publish(context.Background(), event("d"))
	assert.Empty(t, rec.Drain())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan appaudit.Event, 16)}
	d := audit.NewDispatcher(1, logger.Nop(), sink)

	// El worker toma el primero y queda bloqueado; el segundo ocupa el buffer.
	d.Publish(context.Background(), event("1"))
	require.Eventually(t, func() bool {
		d.Publish(context.Background(), event("x"))
		return d.Dropped() > 0
	}, time.Second, time.Millisecond)

	start := time.Now()
	d.Publish(context.Background(), event("3"))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "Publish no bloquea")

	close(sink.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Positive(t, d.Dropped())
}

func TestDispatcher_SinkPanicDoesNotStopDelivery(t *testing.T) {
	rec := appaudit.NewRecorder(4)
	d := audit.NewDispatcher(4, logger.Nop(), panicSink{}, rec)
	d.Publish(context.Background(), event("a"))
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, rec.Drain(), 1)
}

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromZerolog(zerolog.New(&buf))
	sink := audit.NewLogSink(log)

	e := event("mov-1")
	e.Fields = map[string]string{"sku_id": "sku-1"}
	sink.Publish(context.Background(), e)

	out := buf.String()
	assert.Contains(t, out, `"kind":"ENTRY_RECORDED"`)
	assert.Contains(t, out, `"entity_id":"mov-1"`)
	assert.Contains(t, out, `"sku_id":"sku-1"`)
	assert.Contains(t, out, `"message":"entrada"`)
}
