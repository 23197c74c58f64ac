package redisx

import "time"

const (
	// Checkout idempotency: idem:order:create:{user_id}:{idempotency_key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%d:%s"

	// Held while a checkout with that key is in flight: idem:order:lock:{user_id}:{idempotency_key}
	KeyIdemOrderLock = "idem:order:lock:%d:%s"

	// Catalog version, bumped on every catalog or stock change.
	KeyCatalogVersion = "catalog:version"

	// Cached product listing: products:list:{catalog_version}:{filter_hash}
	KeyProductList = "products:list:%d:%016x"

	// Cached sales summary.
	KeyReportSummary = "reports:summary"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency     = 24 * time.Hour
	TTLIdempotencyLock = 30 * time.Second
	TTLProductList     = 2 * time.Minute
	TTLReportCache     = time.Minute
	TTLDedup           = 48 * time.Hour
)
