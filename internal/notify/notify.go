// Package notify delivers user-facing notifications such as fasting stage changes.
package notify

import (
	"context"
	"errors"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// Message is a notification with a short title and a body.
type Message struct {
	Title string
	Body  string
	// Kind groups messages for logging, e.g. "stage_change".
	Kind string
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to a logger.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs every message at info level.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs msg.
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info().
		Str("kind", msg.Kind).
		Str("title", msg.Title).
		Str("body", msg.Body).
		Msg("notification")
	return nil
}

// DesktopNotifier raises an OS notification.
type DesktopNotifier struct {
	appIcon string
	send    func(title, message, appIcon string) error
}

// NewDesktopNotifier creates a desktop notifier. appIcon may be empty.
func NewDesktopNotifier(appIcon string) *DesktopNotifier {
	return &DesktopNotifier{
		appIcon: appIcon,
		send: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// Notify shows msg on the desktop.
func (n *DesktopNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.send(msg.Title, msg.Body, n.appIcon)
}

// Multi fans a message out to several notifiers. Every notifier is tried;
// the returned error joins the individual failures.
type Multi []Notifier

// Notify delivers msg to every notifier.
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
