package holiday

import "time"

// Holiday is a non-working calendar day. Unique per date.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}
