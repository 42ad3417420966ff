package audit

import (
	"context"
	"time"
)

// Kind clasifica los eventos de auditoría (uno por cambio de estado confirmado).
type Kind string

const (
	KindEntryRecorded     Kind = "ENTRY_RECORDED"
	KindExitRecorded      Kind = "EXIT_RECORDED"
	KindExitRequested     Kind = "EXIT_REQUESTED"
	KindExitApproved      Kind = "EXIT_APPROVED"
	KindExitRejected      Kind = "EXIT_REJECTED"
	KindReversalRequested Kind = "REVERSAL_REQUESTED"
	KindReversalApproved  Kind = "REVERSAL_APPROVED"
	KindReversalRejected  Kind = "REVERSAL_REJECTED"
	KindPINIssued         Kind = "PIN_ISSUED"
)

// Event evento estructurado emitido después del commit.
type Event struct {
	Kind     Kind              `json:"kind"`
	ActorID  string            `json:"actor_id"`
	EntityID string            `json:"entity_id"`
	Summary  string            `json:"summary"`
	At       time.Time         `json:"at"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Sink recibe eventos de auditoría. Publish no debe bloquear ni fallar hacia quien llama:
// la entrega es best-effort y nunca revierte la transacción principal.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// NopSink descarta todos los eventos.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) {}

// Recorder guarda los eventos en memoria (útil en tests).
type Recorder struct {
	events chan Event
}

// NewRecorder crea un Recorder con capacidad fija.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{events: make(chan Event, capacity)}
}

func (r *Recorder) Publish(_ context.Context, e Event) {
	select {
	case r.events <- e:
	default:
	}
}

// Drain devuelve los eventos acumulados hasta el momento.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-r.events:
			out = append(out, e)
		default:
			return out
		}
	}
}
