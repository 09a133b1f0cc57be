// Package eventbus implements the optional, best-effort lifecycle event
// publisher described in SPEC_FULL §7, modeled on
// go-server/pkg/nats's connection-handling style but scoped down to
// fire-and-forget publishing: it never subscribes, never blocks
// dispatch, and a nil *Publisher is a safe no-op.
package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"odin-tdcore/internal/dispatch"
)

// Config controls the optional NATS connection.
type Config struct {
	URL     string
	Subject string
}

// Publisher fires best-effort client lifecycle events onto a NATS
// subject. The zero value is not usable; use Connect or pass a nil
// *Publisher anywhere a dispatch.Publisher is expected to disable it
// entirely.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

type lifecycleEvent struct {
	Kind      string            `json:"kind"`
	ClientID  dispatch.ClientID `json:"client_id"`
	Timestamp string            `json:"timestamp"`
}

// Connect dials NATS with a short, bounded reconnect policy — if the
// broker is unreachable this returns an error and callers are expected
// to run without an event bus rather than fail startup, per spec §7's
// "never a correctness dependency".
func Connect(cfg Config, logger *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("event bus disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("event bus reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, subject: cfg.Subject, logger: logger}, nil
}

// PublishClientCreated fires a best-effort "created" event. Errors are
// logged, never returned: publishing failures must never affect
// dispatch correctness.
func (p *Publisher) PublishClientCreated(id dispatch.ClientID) {
	p.publish("created", id)
}

// PublishClientTerminated fires a best-effort "terminated" event.
func (p *Publisher) PublishClientTerminated(id dispatch.ClientID) {
	p.publish("terminated", id)
}

// PublishInvalidSend fires a best-effort "invalid_send" event for a Send
// naming a ClientID the Dispatcher never issued or has already torn
// down.
func (p *Publisher) PublishInvalidSend(id dispatch.ClientID) {
	p.publish("invalid_send", id)
}

func (p *Publisher) publish(kind string, id dispatch.ClientID) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(lifecycleEvent{
		Kind:      kind,
		ClientID:  id,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("event bus publish failed", zap.String("kind", kind), zap.Error(err))
	}
}

// Close drains and closes the underlying NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
