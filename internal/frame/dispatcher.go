package frame

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnauthorizedOrigin marks a message dropped before dispatch because
// its origin is not on the allowlist.
var ErrUnauthorizedOrigin = errors.New("origin not in authorized urls")

// Handler processes one inbound message.
type Handler func(msg Message) error

// Dispatcher routes inbound tagged messages to per-type handlers after
// the origin check. Unknown types are dropped with a debug log, not an
// error: the toolbar may be newer than this client.
type Dispatcher struct {
	allowlist *Allowlist
	handlers  map[string]Handler
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher gated by the given allowlist.
func NewDispatcher(allowlist *Allowlist, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		allowlist: allowlist,
		handlers:  make(map[string]Handler),
		logger:    logger,
	}
}

// Handle registers the handler for one message type, replacing any
// previous registration.
func (d *Dispatcher) Handle(msgType string, h Handler) {
	d.handlers[msgType] = h
}

// Dispatch verifies the origin, decodes the envelope and invokes the
// matching handler. The origin check happens before any decoding.
func (d *Dispatcher) Dispatch(origin string, raw []byte) error {
	if !d.allowlist.Allows(origin) {
		d.logger.Warn("dropped message from unauthorized origin", zap.String("origin", origin))
		return fmt.Errorf("%w: %s", ErrUnauthorizedOrigin, origin)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("malformed message from %s: %w", origin, err)
	}
	if msg.Type == "" {
		return fmt.Errorf("message from %s has no type tag", origin)
	}

	handler, ok := d.handlers[msg.Type]
	if !ok {
		d.logger.Debug("no handler for message type", zap.String("type", msg.Type))
		return nil
	}
	return handler(msg)
}
