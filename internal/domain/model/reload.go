package model

import "time"

// Reload reasons.
const (
	ReasonStartup = "startup"
	ReasonManual  = "manual"
	ReasonWatch   = "watch"
)

// ReloadRequest asks for the dataset to be rebuilt from its source.
type ReloadRequest struct {
	ID          string
	Path        string
	Reason      string
	Fingerprint string
	RequestedAt time.Time
}
