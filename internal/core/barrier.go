package core

// MarkReady records a member's ready signal. Non-members are ignored.
func (r *Room) MarkReady(playerID string) bool {
	if !r.Has(playerID) {
		return false
	}
	r.ready[playerID] = struct{}{}
	return true
}

// AllReady reports whether the room has members and every one of them is ready.
func (r *Room) AllReady() bool {
	if len(r.members) == 0 {
		return false
	}
	for id := range r.members {
		if _, ok := r.ready[id]; !ok {
			return false
		}
	}
	return true
}

// TryStart flips a waiting room to started when every member is ready.
// It returns true only on the transition, so callers announce the start once.
func (r *Room) TryStart() bool {
	if r.started || !r.AllReady() {
		return false
	}
	r.started = true
	return true
}

// ForceStart starts a waiting room regardless of readiness, as long as it has members.
func (r *Room) ForceStart() bool {
	if r.started || len(r.members) == 0 {
		return false
	}
	r.started = true
	return true
}
