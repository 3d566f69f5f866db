// Package logging provides structured logging helpers shared across Tessera's
// components. It wraps zap with a small fluent field builder so call sites
// read as a sentence rather than a slice of zap.Field literals.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// Fields is an unordered accumulator of structured log fields. Methods return
// the receiver so calls chain: logging.NewFields().Component("cache").Operation("get").
type Fields map[string]interface{}

// NewFields returns an empty field set.
func NewFields() Fields {
	return Fields{}
}

// Component records which subsystem emitted the log line.
func (f Fields) Component(name string) Fields {
	f["component"] = name
	return f
}

// Operation records the logical operation in progress.
func (f Fields) Operation(op string) Fields {
	f["operation"] = op
	return f
}

// Resource records the kind and, if known, the identifier of the entity
// being acted on. An empty name omits resource_name entirely.
func (f Fields) Resource(kind, name string) Fields {
	f["resource_type"] = kind
	if name != "" {
		f["resource_name"] = name
	}
	return f
}

// Duration records how long an operation took.
func (f Fields) Duration(d time.Duration) Fields {
	f["duration_ms"] = d.Milliseconds()
	return f
}

// Err attaches an error under the conventional "error" key.
func (f Fields) Err(err error) Fields {
	if err != nil {
		f["error"] = err.Error()
	}
	return f
}

// RequestID records the inbound/minted X-Request-ID.
func (f Fields) RequestID(id string) Fields {
	f["request_id"] = id
	return f
}

// Actor records the authenticated team/user acting.
func (f Fields) Actor(teamID, userID string) Fields {
	if teamID != "" {
		f["actor_team_id"] = teamID
	}
	if userID != "" {
		f["actor_user_id"] = userID
	}
	return f
}

// Zap converts the field set into zap.Field values for use with a *zap.Logger.
func (f Fields) Zap() []zap.Field {
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
