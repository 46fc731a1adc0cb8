package consent

import "time"

// Resolve reduces a history of records for one (subject, channel) pair to the
// current status. The latest record by creation time wins, with ID as the
// tiebreak for equal timestamps; an expiry in the past collapses the result
// to expired regardless of the stored status. No record resolves to none.
func Resolve(records []*Record, now time.Time) Status {
	var latest *Record
	for _, r := range records {
		if latest == nil {
			latest = r
			continue
		}
		if r.CreatedAt().After(latest.CreatedAt()) ||
			(r.CreatedAt().Equal(latest.CreatedAt()) && r.ID() > latest.ID()) {
			latest = r
		}
	}

	if latest == nil {
		return StatusNone
	}
	if latest.IsExpiredAt(now) {
		return StatusExpired
	}
	return latest.Status()
}
