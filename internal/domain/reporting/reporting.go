package reporting

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownRange is returned for a trend range outside the supported set.
var ErrUnknownRange = errors.New("unknown trend range")

// TrendRange selects how far back the registration trend looks.
type TrendRange string

const (
	Range1Week   TrendRange = "1w"
	Range1Month  TrendRange = "1m"
	Range3Months TrendRange = "3m"
	Range6Months TrendRange = "6m"
	Range1Year   TrendRange = "1y"
)

// Days reports the window length of the range.
func (r TrendRange) Days() (int, error) {
	switch r {
	case Range1Week:
		return 7, nil
	case Range1Month:
		return 30, nil
	case Range3Months:
		return 90, nil
	case Range6Months:
		return 180, nil
	case Range1Year:
		return 365, nil
	default:
		return 0, ErrUnknownRange
	}
}

// TrendPoint counts new user registrations for one calendar day.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalUsers        int          `json:"total_users"`
	TotalOrganizers   int          `json:"total_organizers"`
	TotalEvents       int          `json:"total_events"`
	PendingOrganizers int          `json:"pending_organizers"`
	PendingEvents     int          `json:"pending_events"`
	PublishedEvents   int          `json:"published_events"`
	RejectedEvents    int          `json:"rejected_events"`
	RegistrationTrend []TrendPoint `json:"registration_trend"`
	TrendRange        TrendRange   `json:"trend_range"`
}

// Repository aggregates counts out of storage.
type Repository interface {
	Counts(ctx context.Context) (*Stats, error)
	// RegistrationsPerDay returns days that had at least one signup
	// between from (inclusive) and until (exclusive). Gap days are
	// filled in by the service.
	RegistrationsPerDay(ctx context.Context, from, until time.Time) (map[string]int, error)
}
