package models

// PreferenceKind discriminates the three shapes a signup's role preference
// can take.
type PreferenceKind int

const (
	// PreferenceNone means the signup stated no roles and none could be
	// derived from a character.
	PreferenceNone PreferenceKind = iota
	// PreferenceSingle means exactly one viable role.
	PreferenceSingle
	// PreferenceMultiple means two or more viable roles.
	PreferenceMultiple
)

// RolePreference is a signup's effective willingness to play roles.
type RolePreference struct {
	Kind  PreferenceKind
	Roles []string
}

// PreferenceFor classifies an explicit preferred-role list. A nil or empty
// list is PreferenceNone; the list is kept as submitted, duplicates included,
// since allocation only ever tests membership.
func PreferenceFor(roles []string) RolePreference {
	switch len(roles) {
	case 0:
		return RolePreference{Kind: PreferenceNone}
	case 1:
		return RolePreference{Kind: PreferenceSingle, Roles: roles}
	default:
		return RolePreference{Kind: PreferenceMultiple, Roles: roles}
	}
}

// EffectivePreference resolves the candidate's preference, letting a linked
// character's innate role stand in for a missing explicit preference.
func (c Candidate) EffectivePreference() RolePreference {
	pref := PreferenceFor(c.PreferredRoles)
	if pref.Kind == PreferenceNone && c.Character != nil && c.Character.Role != "" {
		return RolePreference{Kind: PreferenceSingle, Roles: []string{c.Character.Role}}
	}
	return pref
}

// Contains reports whether role is in the preference set.
func (p RolePreference) Contains(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// InnateRole returns the candidate's character innate role, or empty when no
// character is attached or the character has no determinable role.
func (c Candidate) InnateRole() string {
	if c.Character == nil {
		return ""
	}
	return c.Character.Role
}
