package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-workflow/internal/model"
)

// Store persists notification rows; satisfied by
// repository.NotificationRepository.
type Store interface {
	InsertNotification(ctx context.Context, n model.Notification) error
}

// Notifier delivers user notifications best-effort: rows are persisted for
// the in-app list and, when a NATS connection is configured, the same event
// is published for external consumers. All failures are logged and swallowed;
// notification problems never interrupt a workflow transition.
type Notifier struct {
	store         Store
	nc            *nats.Conn
	subjectPrefix string
	log           zerolog.Logger
}

type event struct {
	UserID  string    `json:"user_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// New builds a Notifier. nc may be nil; the publisher is then disabled and
// only rows are written.
func New(store Store, nc *nats.Conn, subjectPrefix string, log zerolog.Logger) *Notifier {
	return &Notifier{
		store:         store,
		nc:            nc,
		subjectPrefix: subjectPrefix,
		log:           log,
	}
}

// Connect dials NATS; a failure is reported to the caller so main can decide
// to run without the publisher.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

func (n *Notifier) Send(ctx context.Context, userID uuid.UUID, message string) {
	if err := n.store.InsertNotification(ctx, model.Notification{
		UserID:  userID,
		Message: message,
	}); err != nil {
		n.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Msg("notification insert failed")
	}

	if n.nc == nil {
		return
	}

	data, err := json.Marshal(event{
		UserID:  userID.String(),
		Message: message,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		n.log.Warn().Err(err).Msg("notification marshal failed")
		return
	}
	subject := n.subjectPrefix + ".sent"
	if err := n.nc.Publish(subject, data); err != nil {
		n.log.Warn().Err(err).
			Str("subject", subject).
			Msg("notification publish failed")
	}
}
