package core

import "sync/atomic"

// Metrics counts hub activity. Counters are safe to read from any goroutine.
type Metrics struct {
	relayed        atomic.Int64
	dropped        atomic.Int64
	joinsAccepted  atomic.Int64
	joinsRejected  atomic.Int64
	commandsDenied atomic.Int64
	roomsStarted   atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Relayed        int64 `json:"relayed"`
	Dropped        int64 `json:"dropped"`
	JoinsAccepted  int64 `json:"joins_accepted"`
	JoinsRejected  int64 `json:"joins_rejected"`
	CommandsDenied int64 `json:"commands_denied"`
	RoomsStarted   int64 `json:"rooms_started"`
}

// Snapshot returns a copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Relayed:        m.relayed.Load(),
		Dropped:        m.dropped.Load(),
		JoinsAccepted:  m.joinsAccepted.Load(),
		JoinsRejected:  m.joinsRejected.Load(),
		CommandsDenied: m.commandsDenied.Load(),
		RoomsStarted:   m.roomsStarted.Load(),
	}
}
