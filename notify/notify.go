/*
Package notify delivers workflow events to employees.

PURPOSE:
  Implements vacation.Notifier twice:
  - SMTP: real mail delivery with STARTTLS (or implicit TLS on port 465)
  - Log:  a zap sink for development and tests

  The workflow treats every notifier as best-effort: a failed Send is
  logged by the caller and never rolls back the state mutation it follows.

CONFIGURATION:
  SMTP credentials come from the environment (see config package). They are
  deployment configuration, never literals in code.

SEE ALSO:
  - vacation/workflow.go: The only caller
  - config/config.go: SMTP settings
*/
package notify

import (
	"context"

	"github.com/warp/vacation-tracker/vacation"
	"go.uber.org/zap"
)

// Log is a Notifier that writes the would-be mail to the log. Used in dev
// mode and whenever SMTP is not configured.
type Log struct {
	Logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{Logger: logger}
}

func (l *Log) Send(_ context.Context, recipient vacation.Employee, subject, body string) error {
	l.Logger.Info("notification",
		zap.String("to", recipient.Email),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
