package engine

func NewState(word string, maxAttempts int) State {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return State{
		Word:        word,
		Status:      StatusIdle,
		MaxAttempts: maxAttempts,
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// Holder returns the connection seated in role, or "".
func (s State) Holder(role Role) string {
	switch role {
	case RoleGiver:
		return s.GiverID
	case RoleGuesser:
		return s.GuesserID
	default:
		return ""
	}
}

func (s State) Full() bool {
	return s.GiverID != "" && s.GuesserID != ""
}

func (s State) Empty() bool {
	return s.GiverID == "" && s.GuesserID == ""
}

// Claim seats connID in role. A connection re-claiming its own seat is a
// no-op; any other holder makes the claim fail, as does a full room.
func (s State) Claim(role Role, connID string) (State, error) {
	if !role.Valid() || connID == "" {
		return s, ErrBadInput
	}
	if s.Holder(role) == connID {
		return s, nil
	}
	if s.Full() || s.Holder(role) != "" {
		return s, ErrRoleTaken
	}
	if role == RoleGiver {
		s.GiverID = connID
	} else {
		s.GuesserID = connID
	}
	return s, nil
}

// Release frees role only if connID still holds it.
func (s State) Release(role Role, connID string) State {
	if role == RoleGiver && s.GiverID == connID {
		s.GiverID = ""
	}
	if role == RoleGuesser && s.GuesserID == connID {
		s.GuesserID = ""
	}
	return s
}

// PruneGhosts clears seats whose holder is no longer a live member.
func (s State) PruneGhosts(members []string) State {
	live := make(map[string]struct{}, len(members))
	for _, id := range members {
		live[id] = struct{}{}
	}
	if _, ok := live[s.GiverID]; s.GiverID != "" && !ok {
		s.GiverID = ""
	}
	if _, ok := live[s.GuesserID]; s.GuesserID != "" && !ok {
		s.GuesserID = ""
	}
	return s
}

// Missing reports whether the room waits for exactly role: that seat is
// free and the other one is taken.
func (s State) Missing(role Role) bool {
	switch role {
	case RoleGiver:
		return s.GiverID == "" && s.GuesserID != ""
	case RoleGuesser:
		return s.GuesserID == "" && s.GiverID != ""
	default:
		return false
	}
}
