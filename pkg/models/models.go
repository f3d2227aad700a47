package models

import "time"

// CharacterSummary is the slice of a linked character the roster cares about.
// Role is the innate role the character is built for, empty when the game or
// the character data cannot determine one.
type CharacterSummary struct {
	Name  string `json:"name"`
	Class string `json:"class,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Candidate is a signup that has not been seated yet.
type Candidate struct {
	SignupID       uint              `json:"signup_id"`
	Character      *CharacterSummary `json:"character,omitempty"`
	PreferredRoles []string          `json:"preferred_roles,omitempty"`
	Status         string            `json:"status,omitempty"`
}

// RoleSlot is one entry of an event's role catalog. The catalog is supplied
// in priority order: earlier entries outrank later ones during allocation.
type RoleSlot struct {
	Role  string `json:"role"`
	Label string `json:"label,omitempty"`
}

// Assignment is a seat, either already filled before an auto-fill run or
// produced by one. An empty Slot means the seat is not tied to a role
// (generic events, or a bench row on role-based events). Position is 1-based
// within its slot.
type Assignment struct {
	SignupID   uint   `json:"signup_id"`
	Slot       string `json:"slot,omitempty"`
	Position   int    `json:"position"`
	IsOverride bool   `json:"is_override"`
}

// CapacityFunc resolves a role identifier to the number of seats the event
// has for it. Zero means no seats of that role exist.
type CapacityFunc func(role string) int

// CapacityFromMap builds a CapacityFunc from a role -> seats map. Roles
// missing from the map resolve to zero.
func CapacityFromMap(capacities map[string]int) CapacityFunc {
	return func(role string) int {
		return capacities[role]
	}
}

// AutoFillInput is the snapshot an auto-fill run computes over.
type AutoFillInput struct {
	Pool       []Candidate
	Existing   []Assignment
	RoleSlots  []RoleSlot
	CapacityOf CapacityFunc
	RoleBased  bool
}

// AutoFillResult is what an auto-fill run produced. TotalFilled always equals
// len(NewAssignments).
type AutoFillResult struct {
	NewAssignments []Assignment `json:"new_assignments"`
	TotalFilled    int          `json:"total_filled"`
}

// AutoFillRequest is the wire shape of the stateless auto-fill endpoint.
type AutoFillRequest struct {
	Pool      []Candidate    `json:"pool"`
	Existing  []Assignment   `json:"existing_assignments"`
	RoleSlots []RoleSlot     `json:"role_slots"`
	Capacity  map[string]int `json:"capacities"`
	RoleBased bool           `json:"role_based"`
}

// AutoFillResponse reports an auto-fill run back to the caller.
type AutoFillResponse struct {
	NewAssignments []Assignment `json:"new_assignments"`
	TotalFilled    int          `json:"total_filled"`
	OpenSeats      int          `json:"open_seats"`
	Message        string       `json:"message"`
}

// CreateEventInput is the request body for event creation.
type CreateEventInput struct {
	Game     string         `json:"game" binding:"required"`
	Title    string         `json:"title" binding:"required"`
	StartsAt time.Time      `json:"starts_at"`
	Slots    []SlotDefInput `json:"slots,omitempty"`
	Capacity int            `json:"capacity,omitempty"`
	Notes    string         `json:"notes,omitempty"`
}

// SlotDefInput defines one role slot at event creation. Slots keep their
// submission order as catalog priority.
type SlotDefInput struct {
	Role     string `json:"role" binding:"required"`
	Label    string `json:"label,omitempty"`
	Capacity int    `json:"capacity"`
}

// CreateSignupInput is the request body for signing a player up.
type CreateSignupInput struct {
	Handle         string            `json:"handle" binding:"required"`
	PreferredRoles []string          `json:"preferred_roles,omitempty"`
	Character      *CharacterSummary `json:"character,omitempty"`
}

// AssignSeatInput is the request body for manually seating a signup.
// Position zero means "lowest free position".
type AssignSeatInput struct {
	SignupID uint   `json:"signup_id" binding:"required"`
	Slot     string `json:"slot,omitempty"`
	Position int    `json:"position,omitempty"`
}

// EventSummary is one row of the event listing.
type EventSummary struct {
	ID          uint      `json:"id"`
	PublicID    string    `json:"public_id"`
	Title       string    `json:"title"`
	Game        string    `json:"game"`
	RoleBased   bool      `json:"role_based"`
	StartsAt    time.Time `json:"starts_at"`
	SignupCount int       `json:"signup_count"`
	SeatedCount int       `json:"seated_count"`
	OpenSeats   int       `json:"open_seats"`
}

// RosterSeatView is one occupied seat on the roster board.
type RosterSeatView struct {
	SignupID   uint   `json:"signup_id"`
	Handle     string `json:"handle"`
	Position   int    `json:"position"`
	IsOverride bool   `json:"is_override"`
	Character  string `json:"character,omitempty"`
}

// RosterSlotView is one role column of the roster board.
type RosterSlotView struct {
	Role     string           `json:"role"`
	Label    string           `json:"label,omitempty"`
	Capacity int              `json:"capacity"`
	Seated   []RosterSeatView `json:"seated"`
}

// SignupView is an unseated signup as shown on the board.
type SignupView struct {
	SignupID       uint              `json:"signup_id"`
	Handle         string            `json:"handle"`
	Status         string            `json:"status"`
	PreferredRoles []string          `json:"preferred_roles,omitempty"`
	Character      *CharacterSummary `json:"character,omitempty"`
}

// RosterBoard is the full roster state of one event, as consumed by the
// roster-editing UI.
type RosterBoard struct {
	EventID   uint             `json:"event_id"`
	PublicID  string           `json:"public_id"`
	Title     string           `json:"title"`
	Game      string           `json:"game"`
	RoleBased bool             `json:"role_based"`
	StartsAt  time.Time        `json:"starts_at"`
	Slots     []RosterSlotView `json:"slots"`
	Bench     []RosterSeatView `json:"bench,omitempty"`
	Unseated  []SignupView     `json:"unseated"`
	OpenSeats int              `json:"open_seats"`
}
