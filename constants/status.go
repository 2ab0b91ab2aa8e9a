package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusTextOK    JobStatus = "TEXT_OK"   // text acquired
	JobStatusParsed    JobStatus = "PARSED"    // bill extracted
	JobStatusSucceeded JobStatus = "SUCCEEDED" // assets registered
	JobStatusRejected  JobStatus = "REJECTED"  // bill too degraded to accept
	JobStatusFailed    JobStatus = "FAILED"
)

// AssetStatus is the lifecycle state of a stored per-unit asset.
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "active"
	AssetStatusDisposed AssetStatus = "disposed"
	AssetStatusDamaged  AssetStatus = "damaged"
)

// ParseAssetStatus returns the status for s, defaulting to active.
func ParseAssetStatus(s string) AssetStatus {
	switch AssetStatus(s) {
	case AssetStatusDisposed, AssetStatusDamaged:
		return AssetStatus(s)
	default:
		return AssetStatusActive
	}
}

// Valid reports whether s is one of the stored asset states.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusActive, AssetStatusDisposed, AssetStatusDamaged:
		return true
	}
	return false
}
