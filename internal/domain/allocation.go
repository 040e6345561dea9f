package domain

// AllocationEntry records one task delivered to an agent within a batch.
type AllocationEntry struct {
	TaskID int64
	Batch  BatchID
}
