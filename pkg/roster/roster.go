// Package roster implements the auto-fill engine that seats unassigned
// signups into an event's role slots.
//
// The engine is a pure function over a snapshot: it never mutates its
// inputs, performs no I/O, and given identical inputs produces identical
// output. Callers own persistence of the produced assignments and any
// coordination between concurrent runs.
package roster

import (
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/models"
)

// AutoFill seats every candidate in the pool that can still be seated and
// returns the newly created assignments. Existing assignments are never
// reduced, moved, or overridden; the run is strictly additive.
//
// For role-based events, candidates with exactly one viable role (explicit,
// or derived from their character's innate role) are processed before
// candidates willing to play several roles, each group in pool order. Each
// candidate takes the highest-priority open role in the catalog order among
// its preferred roles, regardless of the order it listed them: someone
// preferring dps, healer and tank is seated as tank while tank seats remain.
//
// For generic events (RoleBased false) role composition does not apply:
// candidates are seated in pool order into unkeyed seats while
// CapacityOf("") has room.
func AutoFill(in models.AutoFillInput) models.AutoFillResult {
	a := newAllocator(in)

	if in.RoleBased {
		rigid, flexible := partitionPool(in.Pool)
		for _, c := range rigid {
			a.place(c)
		}
		for _, c := range flexible {
			a.place(c)
		}
	} else {
		for _, c := range in.Pool {
			a.seatGeneric(c)
		}
	}

	return models.AutoFillResult{
		NewAssignments: a.filled,
		TotalFilled:    len(a.filled),
	}
}

// partitionPool splits candidates into rigid (single viable role) and
// flexible (several viable roles), preserving pool order within each group.
// Candidates with no viable role at all are dropped: they stay unseated.
func partitionPool(pool []models.Candidate) (rigid, flexible []models.Candidate) {
	for _, c := range pool {
		switch c.EffectivePreference().Kind {
		case models.PreferenceSingle:
			rigid = append(rigid, c)
		case models.PreferenceMultiple:
			flexible = append(flexible, c)
		case models.PreferenceNone:
			// No explicit roles and no character to derive one from.
		}
	}
	return rigid, flexible
}

// allocator tracks the occupancy state of a single auto-fill pass. All state
// is derived from the input snapshot; nothing survives the run.
type allocator struct {
	catalog    []models.RoleSlot
	capacityOf models.CapacityFunc
	occupancy  map[string]int          // seats taken per slot, existing + new
	positions  map[string]map[int]bool // occupied position numbers per slot
	seated     map[uint]bool           // signups already holding a seat
	filled     []models.Assignment
}

func newAllocator(in models.AutoFillInput) *allocator {
	a := &allocator{
		catalog:    in.RoleSlots,
		capacityOf: in.CapacityOf,
		occupancy:  make(map[string]int, len(in.RoleSlots)),
		positions:  make(map[string]map[int]bool, len(in.RoleSlots)),
		seated:     make(map[uint]bool, len(in.Existing)),
		filled:     make([]models.Assignment, 0),
	}
	if a.capacityOf == nil {
		a.capacityOf = func(string) int { return 0 }
	}
	for _, ex := range in.Existing {
		a.seated[ex.SignupID] = true
		a.occupancy[ex.Slot]++
		a.markPosition(ex.Slot, ex.Position)
	}
	return a
}

// place walks the catalog in priority order and seats the candidate in the
// first preferred role that still has capacity. Roles the candidate did not
// ask for are skipped; roles that are full are skipped too, so a lower
// priority preference can still catch the candidate. With every preferred
// role full the candidate is simply left unseated.
func (a *allocator) place(c models.Candidate) {
	if a.seated[c.SignupID] {
		return
	}
	pref := c.EffectivePreference()
	for _, slot := range a.catalog {
		if !pref.Contains(slot.Role) {
			continue
		}
		pos, ok := a.claim(slot.Role)
		if !ok {
			continue
		}
		innate := c.InnateRole()
		a.filled = append(a.filled, models.Assignment{
			SignupID:   c.SignupID,
			Slot:       slot.Role,
			Position:   pos,
			IsOverride: innate != "" && innate != slot.Role,
		})
		a.seated[c.SignupID] = true
		return
	}
}

// seatGeneric seats a candidate into the unkeyed slot, preferences ignored.
func (a *allocator) seatGeneric(c models.Candidate) {
	if a.seated[c.SignupID] {
		return
	}
	pos, ok := a.claim("")
	if !ok {
		return
	}
	a.filled = append(a.filled, models.Assignment{
		SignupID: c.SignupID,
		Position: pos,
	})
	a.seated[c.SignupID] = true
}

// claim reserves the lowest free position in the slot, if any remains.
// Negative capacities count as zero. When existing positions are contiguous
// this is exactly occupancy+1; when the caller handed us gaps the gap is
// filled first, keeping positions inside 1..capacity.
func (a *allocator) claim(slot string) (int, bool) {
	capacity := a.capacityOf(slot)
	if capacity < 0 {
		capacity = 0
	}
	if a.occupancy[slot] >= capacity {
		return 0, false
	}
	taken := a.positions[slot]
	for pos := 1; pos <= capacity; pos++ {
		if !taken[pos] {
			a.markPosition(slot, pos)
			a.occupancy[slot]++
			return pos, true
		}
	}
	return 0, false
}

func (a *allocator) markPosition(slot string, pos int) {
	taken := a.positions[slot]
	if taken == nil {
		taken = make(map[int]bool)
		a.positions[slot] = taken
	}
	taken[pos] = true
}
