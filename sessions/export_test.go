package sessions

import "time"

// DropIfExpired exposes the expiry delete step to the black-box tests.
func DropIfExpired(r *InMemoryRepo, sessionID string, now time.Time) *Session {
	return r.dropIfExpired(sessionID, now)
}
