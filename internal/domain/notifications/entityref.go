package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EntityKind enumerates the record types a notification or activity event
// may point at. Consumers switch over the kind exhaustively instead of
// trusting an untyped string pair.
type EntityKind string

const (
	EntityObjective EntityKind = "objective"
	EntityKeyResult EntityKind = "key_result"
	EntityCheckIn   EntityKind = "check_in"
	EntityComment   EntityKind = "comment"
	EntityMeeting   EntityKind = "meeting"
	EntityResource  EntityKind = "resource"
	EntityTeam      EntityKind = "team"
	EntityUser      EntityKind = "user"
	EntityCycle     EntityKind = "cycle"
)

var knownKinds = map[EntityKind]bool{
	EntityObjective: true,
	EntityKeyResult: true,
	EntityCheckIn:   true,
	EntityComment:   true,
	EntityMeeting:   true,
	EntityResource:  true,
	EntityTeam:      true,
	EntityUser:      true,
	EntityCycle:     true,
}

var ErrUnknownEntityKind = errors.New("unknown entity kind")

// EntityRef is the tagged reference stored in notifications and activity
// events. The zero value means "no reference".
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

func NewEntityRef(kind EntityKind, id string) (EntityRef, error) {
	if !knownKinds[kind] {
		return EntityRef{}, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	return EntityRef{Kind: kind, ID: id}, nil
}

func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

// URL returns the client route the reference resolves to, mirroring the
// paths the web app serves.
func (r EntityRef) URL() string {
	switch r.Kind {
	case EntityObjective:
		return "/objectives/" + r.ID
	case EntityKeyResult:
		return "/key-results/" + r.ID
	case EntityCheckIn:
		return "/check-ins/" + r.ID
	case EntityComment:
		return "/comments/" + r.ID
	case EntityMeeting:
		return "/meetings/" + r.ID
	case EntityResource:
		return "/resources/" + r.ID
	case EntityTeam:
		return "/teams/" + r.ID
	case EntityUser:
		return "/users/" + r.ID
	case EntityCycle:
		return "/cycles/" + r.ID
	default:
		return ""
	}
}

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	type alias EntityRef
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Kind != "" && !knownKinds[EntityKind(decoded.Kind)] {
		return fmt.Errorf("%w: %q", ErrUnknownEntityKind, decoded.Kind)
	}
	*r = EntityRef(decoded)
	return nil
}
