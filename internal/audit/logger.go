package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// Entry records a single admin decision with structured fields.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	AdminID      string    `json:"admin_id"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	Note         string    `json:"note,omitempty"`
	Status       string    `json:"status"` // "success" or "failure"
}

// Logger provides structured audit logging for admin operations. Every
// decision and retraction produces one entry as a side effect of the
// operation itself, not a separate workflow.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.logger.Info().Interface("audit", entry).Msg("audit")
}

// Decision logs an admin status decision on a reviewed resource.
func (l *Logger) Decision(action, adminID, resourceType, resourceID, outcome, note string) {
	l.Log(Entry{
		Action:       action,
		AdminID:      adminID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Note:         note,
		Status:       "success",
	})
}

// Failure logs a rejected or failed admin operation.
func (l *Logger) Failure(action, adminID, resourceType, resourceID string) {
	l.Log(Entry{
		Action:       action,
		AdminID:      adminID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "failure",
	})
}
