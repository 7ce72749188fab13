package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/contract-workflow/internal/model"
)

// Store persists audit entries; satisfied by repository.AuditRepository.
type Store interface {
	InsertAudit(ctx context.Context, entry model.AuditLog) error
}

// Recorder consumes workflow audit events and persists them asynchronously.
// It is strictly fire-and-forget: a full buffer or a failed insert is logged
// and dropped, and never reaches the workflow.
type Recorder struct {
	store  Store
	log    zerolog.Logger
	events chan model.AuditEvent
}

func NewRecorder(store Store, log zerolog.Logger, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		store:  store,
		log:    log,
		events: make(chan model.AuditEvent, buffer),
	}
}

func (r *Recorder) Record(event model.AuditEvent) {
	select {
	case r.events <- event:
	default:
		r.log.Warn().
			Str("action", event.Action).
			Msg("audit buffer full, event dropped")
	}
}

// Run drains the event buffer until ctx is cancelled. Call it on its own
// goroutine.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			insertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := r.store.InsertAudit(insertCtx, model.AuditLog{
				Action:  event.Action,
				ActorID: event.ActorID,
				Detail:  event.Detail,
			})
			cancel()
			if err != nil {
				r.log.Error().Err(err).
					Str("action", event.Action).
					Msg("audit insert failed, event dropped")
			}
		}
	}
}
