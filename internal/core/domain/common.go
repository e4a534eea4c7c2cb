package domain

import "time"

// AuditFields holds standard audit timestamps for domain entities.
// CreatedAt is set once at creation and never changes afterwards.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}
