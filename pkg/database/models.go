package database

import (
	"strings"
	"time"
)

// Game represents the games table
type Game struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"unique;not null" json:"slug"`
	Name      string    `gorm:"not null" json:"name"`
	RoleBased bool      `gorm:"not null;default:true" json:"role_based"`
	CreatedAt time.Time `json:"created_at"`
}

// Event represents the events table
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"unique;not null" json:"public_id"`
	GameID    uint      `gorm:"not null;index" json:"game_id"`
	Game      Game      `json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Capacity  int       `gorm:"default:0" json:"capacity"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventRoleSlot represents the event_role_slots table. Rows are kept in
// priority order: lower Priority fills first.
type EventRoleSlot struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	EventID  uint   `gorm:"not null;uniqueIndex:idx_event_role" json:"event_id"`
	Role     string `gorm:"not null;uniqueIndex:idx_event_role" json:"role"`
	Label    string `gorm:"not null" json:"label"`
	Capacity int    `gorm:"not null" json:"capacity"`
	Priority int    `gorm:"not null" json:"priority"`
}

// Signup represents the signups table
type Signup struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        uint      `gorm:"not null;uniqueIndex:idx_event_handle" json:"event_id"`
	Handle         string    `gorm:"not null;uniqueIndex:idx_event_handle" json:"handle"`
	PreferredRoles string    `json:"-"`
	CharacterName  string    `json:"character_name,omitempty"`
	CharacterClass string    `json:"character_class,omitempty"`
	CharacterRole  string    `json:"character_role,omitempty"`
	Status         string    `gorm:"not null;default:'signed_up'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// PreferredRolesList splits the stored comma-separated role identifiers.
func (s *Signup) PreferredRolesList() []string {
	if s.PreferredRoles == "" {
		return nil
	}
	parts := strings.Split(s.PreferredRoles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

// SetPreferredRoles stores the role identifiers as a comma-separated string.
func (s *Signup) SetPreferredRoles(roles []string) {
	s.PreferredRoles = strings.Join(roles, ",")
}

// RosterAssignment represents the roster_assignments table. The two composite
// unique indexes back the engine's guarantees at the storage layer: a signup
// holds at most one seat per event, and a seat holds at most one signup. Slot
// is the empty string for events without role slots.
type RosterAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;uniqueIndex:idx_roster_signup;uniqueIndex:idx_roster_seat" json:"event_id"`
	SignupID   uint      `gorm:"not null;uniqueIndex:idx_roster_signup" json:"signup_id"`
	Slot       string    `gorm:"not null;uniqueIndex:idx_roster_seat" json:"slot"`
	Position   int       `gorm:"not null;uniqueIndex:idx_roster_seat" json:"position"`
	IsOverride bool      `gorm:"not null;default:false" json:"is_override"`
	Source     string    `gorm:"not null;default:'auto'" json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	KeyID           uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date            string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount    int    `gorm:"default:0" json:"request_count"`
	TotalEvents     int    `gorm:"default:0" json:"total_events"`
	TotalCandidates int    `gorm:"default:0" json:"total_candidates"`
	TotalSeats      int    `gorm:"default:0" json:"total_seats"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
