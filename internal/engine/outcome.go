package engine

// ReconcileOutcome reports whether the remote phase of a quiz completion
// reached the authoritative store. Callers may ignore it: the local
// write already succeeded, and the next successful background refresh
// reconciles the cache from whatever the remote's state is. There is no
// durable retry queue for a failed remote merge.
type ReconcileOutcome int

const (
	// ReconcileSynced means the delta and history reached the remote.
	ReconcileSynced ReconcileOutcome = iota

	// ReconcileFailed means the remote phase did not complete; the local
	// snapshot still carries the delta.
	ReconcileFailed
)

func (o ReconcileOutcome) String() string {
	if o == ReconcileSynced {
		return "synced"
	}
	return "failed"
}
