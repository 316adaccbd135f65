package notifications

import (
	"context"
	"log/slog"
	"time"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifySpotChange(ctx context.Context, in SpotChangeInput) error {
	n.log.InfoContext(ctx, "notification.parking_spot_change",
		"action", string(in.Action),
		"id", in.ID,
		"parking_spot_number", in.ParkingSpotNumber,
		"license_plate_car", in.LicensePlateCar,
		"at", in.At.UTC().Format(time.RFC3339),
	)
	return nil
}
