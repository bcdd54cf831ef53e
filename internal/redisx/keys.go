package redisx

import "time"

const (
	// Order status read cache: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%d"

	// Dedup for consumed events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
