package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/widget"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Publisher is the subset of a NATS connection the journal needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Entry is one journaled action.
type Entry struct {
	ID      uuid.UUID     `json:"id"`
	Action  string        `json:"action"`
	Payload widget.Action `json:"payload"`
	View    widget.View   `json:"view"`
	Epoch   uint64        `json:"epoch"`
	At      time.Time     `json:"at"`
}

// Journal publishes every applied action to a subject.
type Journal struct {
	pub     Publisher
	subject string
	now     func() time.Time
	logger  *logrus.Entry
}

// New creates a journal publishing on subject.
func New(pub Publisher, subject string, logger *logrus.Entry) *Journal {
	return &Journal{
		pub:     pub,
		subject: subject,
		now:     time.Now,
		logger:  logger,
	}
}

// Record implements store.Recorder. It runs on the store goroutine.
func (j *Journal) Record(_ context.Context, action widget.Action, state *widget.State) error {
	entry := Entry{
		ID:      uuid.New(),
		Action:  action.Type(),
		Payload: action,
		View:    state.CurrentView,
		Epoch:   state.LastEpoch,
		At:      j.now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	if err := j.pub.Publish(j.subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", entry.Action, err)
	}
	j.logger.WithFields(logrus.Fields{"action": entry.Action, "id": entry.ID}).Debug("action journaled")
	return nil
}

// Connect opens a NATS connection for the journal.
func Connect(cfg config.NATSConfig, logger *logrus.Entry) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("ftxwidget"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
