package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Grid freshness
	MetricSnapshotAge   = "grid.snapshot_age_seconds"
	MetricRebuildTime   = "grid.rebuild_duration_seconds"
	MetricViewportTiles = "grid.viewport_tiles_returned"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricCellsServed = "business.cells_enumerated"
	MetricLODChanges  = "business.lod_level_changes"
)
