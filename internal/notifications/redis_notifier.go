package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "parking-spot.changes"

// RedisStreamNotifier appends one entry per change to a capped Redis stream.
type RedisStreamNotifier struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
}

func NewRedisStreamNotifier(rdb redis.Cmdable, stream string, maxLen int64) *RedisStreamNotifier {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &RedisStreamNotifier{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (n *RedisStreamNotifier) NotifySpotChange(ctx context.Context, in SpotChangeInput) error {
	err := n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"action":            string(in.Action),
			"id":                in.ID,
			"parkingSpotNumber": in.ParkingSpotNumber,
			"licensePlateCar":   in.LicensePlateCar,
			"at":                in.At.UTC().Format(time.RFC3339),
		},
	}).Err()

	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}

	return nil
}
