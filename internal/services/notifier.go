// Package services – Notifier
//
// Status changes emit a best-effort notification to the candidate. Delivery
// is synchronous, unguaranteed, and never fails the triggering operation;
// the production transport (email/SMS) hides behind the Notifier interface,
// with a log-backed implementation standing in for it.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/talenthub/go-hr-backend/internal/domain"
)

// Notifier receives status-change events for candidates. Implementations
// must not block the caller on delivery and must swallow their own failures.
type Notifier interface {
	StatusChanged(ctx context.Context, c *domain.Candidate, status, feedback string)
}

// LogNotifier writes the notification to the application log.
type LogNotifier struct {
	Log *zerolog.Logger // defaults to the global logger
}

// StatusChanged logs the would-be message to the candidate.
func (n LogNotifier) StatusChanged(ctx context.Context, c *domain.Candidate, status, feedback string) {
	lg := n.Log
	if lg == nil {
		lg = &log.Logger
	}
	ev := lg.Info().
		Str("candidate_id", c.ID).
		Str("status", status)
	if feedback != "" {
		ev = ev.Str("feedback", feedback)
	}
	ev.Msgf("NOTIFICATION: Dear %s, your application status has been updated to: %s", c.FullName, status)
}
