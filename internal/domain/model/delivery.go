package model

import "time"

// DeliveryJob asks a worker to run the relay call for one form session.
type DeliveryJob struct {
	SessionID  string    `json:"session_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
