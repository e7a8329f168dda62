// Package dispatch drives the chat web client to deliver one rendered
// message per client record.
package dispatch

import (
	"time"
)

// Status is the terminal outcome for one record.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Result records the outcome of one record's dispatch. Created here,
// consumed only by the reporter.
type Result struct {
	Client          string
	Contact         string
	NextHearingDate *time.Time
	Status          Status
	At              time.Time
}
