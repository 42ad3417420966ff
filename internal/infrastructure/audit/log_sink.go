package audit

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// LogSink escribe cada evento como una línea estructurada.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink sobre el logger dado.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, e audit.Event) {
	ev := s.log.Info().
		Str("kind", string(e.Kind)).
		Str("actor_id", e.ActorID).
		Str("entity_id", e.EntityID).
		Time("at", e.At)
	for k, v := range e.Fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(e.Summary)
}
