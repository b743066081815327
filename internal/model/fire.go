package model

import "time"

// Fire is a transient cooking source owned by an external processing
// subsystem and only consumed here (spec §3): a player-lit fire that
// expires after Duration.
type Fire struct {
	ID        int64
	Location  Location
	Active    bool
	OwnerID   int64
	CreatedAt time.Time
	Duration  time.Duration
}

func (f *Fire) Expired(now time.Time) bool {
	return now.Sub(f.CreatedAt) >= f.Duration
}
