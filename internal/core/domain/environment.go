package domain

import "time"

// EnvironmentState is the lifecycle state of the helper environment lease.
type EnvironmentState string

const (
	// EnvironmentAbsent means no environment has been created yet.
	EnvironmentAbsent EnvironmentState = "absent"
	// EnvironmentLive means the environment exists and can be reused.
	EnvironmentLive EnvironmentState = "live"
	// EnvironmentExpired means the environment existed but has to be recreated.
	EnvironmentExpired EnvironmentState = "expired"
)

// EnvironmentRecord is a helper environment lease.
// A zero ExpiresAt never expires.
type EnvironmentRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// State classifies the record at the given time.
func (r *EnvironmentRecord) State(now time.Time) EnvironmentState {
	switch {
	case r == nil || r.ID == "":
		return EnvironmentAbsent
	case !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt):
		return EnvironmentExpired
	default:
		return EnvironmentLive
	}
}
