// Package events announces project changes to downstream consumers.
package events

import (
	"context"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
)

// Publisher delivers project payloads. Publishing is best effort: callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, payload scheduler.Payload) error
	Close() error
}

// NoopPublisher drops every payload.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, scheduler.Payload) error { return nil }
func (NoopPublisher) Close() error { return nil }

var actionSuffix = map[scheduler.PayloadAction]string{
	scheduler.ActionCreate: "created",
	scheduler.ActionUpdate: "updated",
	scheduler.ActionDelete: "deleted",
}

// Subject returns <prefix>.project.<created|updated|deleted>.
func Subject(prefix string, action scheduler.PayloadAction) string {
	suffix, ok := actionSuffix[action]
	if !ok {
		suffix = strings.ToLower(string(action))
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return "project." + suffix
	}
	return prefix + ".project." + suffix
}
