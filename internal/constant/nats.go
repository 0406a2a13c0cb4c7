package constant

const (
	SnapshotStream        = "CATRANK_SNAPSHOTS"
	SnapshotSubjectPrefix = "CATRANK_SNAPSHOTS.ingest"
	SnapshotConsumerQueue = "catrank-ingest"
)
