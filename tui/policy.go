package tui

import "github.com/room4-2/basslink/messages"

// SnapshotPolicy decides what the panel does with a patch snapshot from the engine.
type SnapshotPolicy int

const (
	// IgnoreSnapshots keeps the panel's own values; snapshots are consumed and counted.
	IgnoreSnapshots SnapshotPolicy = iota
	// ApplySnapshots replaces the displayed patch with each snapshot.
	ApplySnapshots
)

// PolicyFor maps the APPLY_SNAPSHOTS setting to a policy.
func PolicyFor(apply bool) SnapshotPolicy {
	if apply {
		return ApplySnapshots
	}
	return IgnoreSnapshots
}

// Merge returns the patch to display after receiving incoming.
func (p SnapshotPolicy) Merge(displayed, incoming messages.Patch) messages.Patch {
	if p == ApplySnapshots {
		return incoming
	}
	return displayed
}

func (p SnapshotPolicy) String() string {
	if p == ApplySnapshots {
		return "apply"
	}
	return "ignore"
}
