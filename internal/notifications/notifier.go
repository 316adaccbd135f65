package notifications

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type SpotChangeInput struct {
	Action            Action
	ID                string
	ParkingSpotNumber string
	LicensePlateCar   string
	At                time.Time
}

type Notifier interface {
	NotifySpotChange(ctx context.Context, input SpotChangeInput) error
}
