package types

import "fmt"

// SyncStatus represents the cloud synchronization state of a meme
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

// AllSyncStatuses returns all valid sync statuses
func AllSyncStatuses() []SyncStatus {
	return []SyncStatus{
		SyncStatusSynced,
		SyncStatusPending,
		SyncStatusFailed,
	}
}

// IsValid checks if the sync status is valid. The empty value is
// allowed: a meme that was never enqueued has no sync status.
func (s SyncStatus) IsValid() bool {
	switch s {
	case "", SyncStatusSynced, SyncStatusPending, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sync status
func (s SyncStatus) String() string {
	return string(s)
}

// ParseSyncStatus parses a string into a SyncStatus
func ParseSyncStatus(s string) (SyncStatus, error) {
	status := SyncStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid sync status: %s", s)
	}
	return status, nil
}
