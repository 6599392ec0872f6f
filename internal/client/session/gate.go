package session

// Requirement is what a command needs from the session before it may run.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAnonymous
)

// Decision is the outcome of gating.
type Decision int

const (
	Allow Decision = iota
	// Wait means the session is still Initializing and neither branch may run.
	Wait
	RedirectToAuth
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case RedirectToAuth:
		return "redirect-to-auth"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// Gate decides whether something with requirement r may proceed given s.
func Gate(s Snapshot, r Requirement) Decision {
	if r == RequireNone {
		return Allow
	}
	switch s.Status {
	case Authenticated:
		if r == RequireAnonymous {
			return RedirectToHome
		}
		return Allow
	case Anonymous:
		if r == RequireAuthenticated {
			return RedirectToAuth
		}
		return Allow
	default:
		return Wait
	}
}
