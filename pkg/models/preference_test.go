package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreferenceFor(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  PreferenceKind
	}{
		{"nil list is no preference", nil, PreferenceNone},
		{"empty list is no preference", []string{}, PreferenceNone},
		{"one role is single", []string{"tank"}, PreferenceSingle},
		{"two roles are multiple", []string{"tank", "dps"}, PreferenceMultiple},
		{"duplicates still count by length", []string{"dps", "dps"}, PreferenceMultiple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PreferenceFor(tt.roles).Kind)
		})
	}
}

func TestEffectivePreference(t *testing.T) {
	t.Run("explicit preference wins over the character", func(t *testing.T) {
		c := Candidate{
			SignupID:       1,
			PreferredRoles: []string{"tank"},
			Character:      &CharacterSummary{Name: "Brannor", Role: "dps"},
		}
		pref := c.EffectivePreference()
		require.Equal(t, PreferenceSingle, pref.Kind)
		require.Equal(t, []string{"tank"}, pref.Roles)
	})

	t.Run("innate role stands in when nothing was stated", func(t *testing.T) {
		c := Candidate{
			SignupID:  1,
			Character: &CharacterSummary{Name: "Brannor", Role: "healer"},
		}
		pref := c.EffectivePreference()
		require.Equal(t, PreferenceSingle, pref.Kind)
		require.Equal(t, []string{"healer"}, pref.Roles)
	})

	t.Run("character without a role leaves no preference", func(t *testing.T) {
		c := Candidate{
			SignupID:  1,
			Character: &CharacterSummary{Name: "Brannor"},
		}
		require.Equal(t, PreferenceNone, c.EffectivePreference().Kind)
	})

	t.Run("no character and no roles leaves no preference", func(t *testing.T) {
		require.Equal(t, PreferenceNone, Candidate{SignupID: 1}.EffectivePreference().Kind)
	})
}

func TestRolePreferenceContains(t *testing.T) {
	pref := PreferenceFor([]string{"dps", "healer"})
	require.True(t, pref.Contains("dps"))
	require.True(t, pref.Contains("healer"))
	require.False(t, pref.Contains("tank"))
	require.False(t, RolePreference{}.Contains("tank"))
}

func TestCapacityFromMap(t *testing.T) {
	capacityOf := CapacityFromMap(map[string]int{"tank": 2, "dps": 14})
	require.Equal(t, 2, capacityOf("tank"))
	require.Equal(t, 14, capacityOf("dps"))
	require.Equal(t, 0, capacityOf("healer"), "missing roles resolve to zero")

	var none map[string]int
	require.Equal(t, 0, CapacityFromMap(none)("tank"))
}
