package interfaces

// Repository defines the interface for metadata persistence. The relational
// store is authoritative for instance/profile state; the vector index is
// derived data.
type Repository interface {
	Instance() InstanceRepository
	Profile() ProfileRepository
	Segment() SegmentRepository

	Close() error
}
