package constant

import "time"

const (
	// SnapshotTimeLayout is the time layout embedded in history file names.
	SnapshotTimeLayout = "2006-01-02_15-04"

	SnapshotSourceCollector = "collector"
	SnapshotSourceImport    = "import"
	SnapshotSourceAPI       = "api"

	CollectorLockName = "collector:lock"
	ArchiveLockName   = "archive:lock"
	CollectorLockTTL  = 10 * time.Minute

	// HelixPageSize is the largest page size the upstream API accepts.
	HelixPageSize = 100
)
