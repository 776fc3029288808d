package domain

// DenyReason says why an authorization Decision denied access.
type DenyReason int

const (
	// DenyNone is the reason of an allowing Decision.
	DenyNone DenyReason = iota
	// DenyUnauthenticated means there is no caller identity; the client should log in.
	DenyUnauthenticated
	// DenyForbidden means the caller is known but lacks rights on the resource.
	DenyForbidden
)

func (r DenyReason) String() string {
	switch r {
	case DenyNone:
		return "none"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the outcome of an authorization check: Allow, or Deny with a reason.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the allowing Decision.
var Allow = Decision{Allowed: true}

// Deny returns a denying Decision with the given reason.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Err returns nil for an allowing decision, ErrUnauthenticated or ErrForbidden otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == DenyUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// Authorize decides whether a caller may manage a resource owned by ownerID
// (update or delete an event, list its registrants).
//
//   - no caller identity: denied, authentication required
//   - ADMIN: allowed
//   - ORGANIZER: allowed only on resources it owns
//   - any other role: forbidden
func Authorize(role Role, callerID, ownerID string) Decision {
	if callerID == "" {
		return Deny(DenyUnauthenticated)
	}
	switch role {
	case RoleAdmin:
		return Allow
	case RoleOrganizer:
		if callerID == ownerID {
			return Allow
		}
		return Deny(DenyForbidden)
	default:
		return Deny(DenyForbidden)
	}
}

// AuthorizeCreate decides whether a caller may create events or list the events it manages.
func AuthorizeCreate(role Role, callerID string) Decision {
	if callerID == "" {
		return Deny(DenyUnauthenticated)
	}
	if role == RoleAdmin || role == RoleOrganizer {
		return Allow
	}
	return Deny(DenyForbidden)
}
