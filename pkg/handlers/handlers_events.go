package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/database"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/models"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/roster"
)

// rosterState is one event's full roster picture, loaded in a single place so
// the board, manual seating and auto-fill all agree on what they see.
type rosterState struct {
	Event       database.Event
	Slots       []database.EventRoleSlot
	Signups     []database.Signup
	Assignments []database.RosterAssignment
}

// findEvent resolves :id as either the numeric event ID or the public UUID.
func findEvent(tx *gorm.DB, id string) (*database.Event, error) {
	var event database.Event
	q := tx.Preload("Game")
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return &event, q.First(&event, "id = ?", n).Error
	}
	return &event, q.First(&event, "public_id = ?", id).Error
}

func loadRosterState(tx *gorm.DB, id string) (*rosterState, error) {
	event, err := findEvent(tx, id)
	if err != nil {
		return nil, err
	}

	st := &rosterState{Event: *event}
	if err := tx.Where("event_id = ?", event.ID).Order("priority").Find(&st.Slots).Error; err != nil {
		return nil, err
	}
	// Signup IDs are monotonic, so id order is arrival order.
	if err := tx.Where("event_id = ?", event.ID).Order("id").Find(&st.Signups).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("event_id = ?", event.ID).Find(&st.Assignments).Error; err != nil {
		return nil, err
	}
	return st, nil
}

func characterOf(s *database.Signup) *models.CharacterSummary {
	if s.CharacterName == "" {
		return nil
	}
	return &models.CharacterSummary{
		Name:  s.CharacterName,
		Class: s.CharacterClass,
		Role:  s.CharacterRole,
	}
}

// snapshot builds the engine input from the stored roster state.
func (st *rosterState) snapshot() models.AutoFillInput {
	seated := lo.SliceToMap(st.Assignments, func(a database.RosterAssignment) (uint, bool) {
		return a.SignupID, true
	})
	unseated := lo.Filter(st.Signups, func(s database.Signup, _ int) bool {
		return !seated[s.ID]
	})

	return models.AutoFillInput{
		Pool: lo.Map(unseated, func(s database.Signup, _ int) models.Candidate {
			return models.Candidate{
				SignupID:       s.ID,
				Character:      characterOf(&s),
				PreferredRoles: s.PreferredRolesList(),
				Status:         s.Status,
			}
		}),
		Existing: lo.Map(st.Assignments, func(a database.RosterAssignment, _ int) models.Assignment {
			return models.Assignment{
				SignupID:   a.SignupID,
				Slot:       a.Slot,
				Position:   a.Position,
				IsOverride: a.IsOverride,
			}
		}),
		RoleSlots: lo.Map(st.Slots, func(s database.EventRoleSlot, _ int) models.RoleSlot {
			return models.RoleSlot{Role: s.Role, Label: s.Label}
		}),
		CapacityOf: st.capacityOf(),
		RoleBased:  st.Event.Game.RoleBased,
	}
}

func (st *rosterState) capacityOf() models.CapacityFunc {
	if !st.Event.Game.RoleBased {
		capacity := st.Event.Capacity
		return func(role string) int {
			if role == "" {
				return capacity
			}
			return 0
		}
	}
	caps := make(map[string]int, len(st.Slots))
	for _, s := range st.Slots {
		caps[s.Role] = s.Capacity
	}
	return models.CapacityFromMap(caps)
}

// CreateEvent creates an event with its role slot catalog. Slot submission
// order becomes allocation priority.
func (h *Handler) CreateEvent(c *gin.Context) {
	var input models.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var game database.Game
	if err := h.DB.First(&game, "slug = ?", normalizeRole(input.Game)).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown game: " + input.Game})
		return
	}

	if game.RoleBased && len(input.Slots) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role-based events need at least one role slot"})
		return
	}
	if !game.RoleBased {
		if len(input.Slots) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": game.Name + " events do not take a role slot catalog"})
			return
		}
		if input.Capacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Events without role slots need a positive capacity"})
			return
		}
	}

	slots := make([]database.EventRoleSlot, 0, len(input.Slots))
	seen := make(map[string]bool, len(input.Slots))
	for i, def := range input.Slots {
		role := normalizeRole(def.Role)
		if role == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot role must not be empty"})
			return
		}
		if seen[role] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate role slot: " + role})
			return
		}
		seen[role] = true
		if def.Capacity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot capacity must not be negative"})
			return
		}
		label := def.Label
		if label == "" {
			label = def.Role
		}
		slots = append(slots, database.EventRoleSlot{
			Role:     role,
			Label:    label,
			Capacity: def.Capacity,
			Priority: i,
		})
	}

	publicID, err := uuid.NewV4()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create event"})
		return
	}

	event := database.Event{
		PublicID: publicID.String(),
		GameID:   game.ID,
		Title:    input.Title,
		StartsAt: input.StartsAt,
		Capacity: input.Capacity,
		Notes:    input.Notes,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for i := range slots {
			slots[i].EventID = event.ID
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": event.ID, "public_id": event.PublicID})
}

// ListEvents returns every event with a fill summary. Roster rows for all
// events come back in three queries and are grouped in memory.
func (h *Handler) ListEvents(c *gin.Context) {
	var events []database.Event
	if err := h.DB.Preload("Game").Order("starts_at").Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list events"})
		return
	}

	summaries := make([]models.EventSummary, 0, len(events))
	if len(events) == 0 {
		c.JSON(http.StatusOK, gin.H{"events": summaries})
		return
	}

	ids := lo.Map(events, func(ev database.Event, _ int) uint { return ev.ID })
	var slots []database.EventRoleSlot
	var signups []database.Signup
	var assignments []database.RosterAssignment
	if err := h.DB.Where("event_id IN ?", ids).Order("priority").Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list events"})
		return
	}
	if err := h.DB.Where("event_id IN ?", ids).Order("id").Find(&signups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list events"})
		return
	}
	if err := h.DB.Where("event_id IN ?", ids).Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list events"})
		return
	}

	slotsByEvent := lo.GroupBy(slots, func(s database.EventRoleSlot) uint { return s.EventID })
	signupsByEvent := lo.GroupBy(signups, func(s database.Signup) uint { return s.EventID })
	assignmentsByEvent := lo.GroupBy(assignments, func(a database.RosterAssignment) uint { return a.EventID })

	for _, ev := range events {
		st := rosterState{
			Event:       ev,
			Slots:       slotsByEvent[ev.ID],
			Signups:     signupsByEvent[ev.ID],
			Assignments: assignmentsByEvent[ev.ID],
		}
		summaries = append(summaries, models.EventSummary{
			ID:          ev.ID,
			PublicID:    ev.PublicID,
			Title:       ev.Title,
			Game:        ev.Game.Name,
			RoleBased:   ev.Game.RoleBased,
			StartsAt:    ev.StartsAt,
			SignupCount: len(st.Signups),
			SeatedCount: len(st.Assignments),
			OpenSeats:   openSeatCount(st.snapshot()),
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": summaries})
}

// GetRosterBoard returns the full roster state of one event.
func (h *Handler) GetRosterBoard(c *gin.Context) {
	st, err := loadRosterState(h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	signupByID := lo.KeyBy(st.Signups, func(s database.Signup) uint { return s.ID })
	seatView := func(a database.RosterAssignment) models.RosterSeatView {
		v := models.RosterSeatView{
			SignupID:   a.SignupID,
			Position:   a.Position,
			IsOverride: a.IsOverride,
		}
		if s, ok := signupByID[a.SignupID]; ok {
			v.Handle = s.Handle
			v.Character = s.CharacterName
		}
		return v
	}
	byPosition := func(seated []models.RosterSeatView) {
		sort.Slice(seated, func(i, j int) bool { return seated[i].Position < seated[j].Position })
	}

	board := models.RosterBoard{
		EventID:   st.Event.ID,
		PublicID:  st.Event.PublicID,
		Title:     st.Event.Title,
		Game:      st.Event.Game.Name,
		RoleBased: st.Event.Game.RoleBased,
		StartsAt:  st.Event.StartsAt,
		Slots:     []models.RosterSlotView{},
		Unseated:  []models.SignupView{},
	}

	if st.Event.Game.RoleBased {
		for _, slot := range st.Slots {
			col := models.RosterSlotView{
				Role:     slot.Role,
				Label:    slot.Label,
				Capacity: slot.Capacity,
				Seated:   []models.RosterSeatView{},
			}
			for _, a := range st.Assignments {
				if a.Slot == slot.Role {
					col.Seated = append(col.Seated, seatView(a))
				}
			}
			byPosition(col.Seated)
			board.Slots = append(board.Slots, col)
		}
		for _, a := range st.Assignments {
			if a.Slot == "" {
				board.Bench = append(board.Bench, seatView(a))
			}
		}
		byPosition(board.Bench)
	} else {
		col := models.RosterSlotView{
			Label:    "Roster",
			Capacity: st.Event.Capacity,
			Seated:   lo.Map(st.Assignments, func(a database.RosterAssignment, _ int) models.RosterSeatView { return seatView(a) }),
		}
		byPosition(col.Seated)
		board.Slots = append(board.Slots, col)
	}

	seated := lo.SliceToMap(st.Assignments, func(a database.RosterAssignment) (uint, bool) {
		return a.SignupID, true
	})
	for _, s := range st.Signups {
		if seated[s.ID] {
			continue
		}
		board.Unseated = append(board.Unseated, models.SignupView{
			SignupID:       s.ID,
			Handle:         s.Handle,
			Status:         s.Status,
			PreferredRoles: s.PreferredRolesList(),
			Character:      characterOf(&s),
		})
	}
	board.OpenSeats = openSeatCount(st.snapshot())

	c.JSON(http.StatusOK, board)
}

// CreateSignup signs a player up for an event.
func (h *Handler) CreateSignup(c *gin.Context) {
	var input models.CreateSignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := findEvent(h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	signup := database.Signup{
		EventID: event.ID,
		Handle:  strings.TrimSpace(input.Handle),
		Status:  "signed_up",
	}
	if signup.Handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}
	signup.SetPreferredRoles(normalizeRoles(input.PreferredRoles))
	if input.Character != nil {
		signup.CharacterName = strings.TrimSpace(input.Character.Name)
		signup.CharacterClass = input.Character.Class
		signup.CharacterRole = normalizeRole(input.Character.Role)
	}

	if err := h.DB.Create(&signup).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Handle already signed up for this event"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create signup"})
		return
	}

	c.JSON(http.StatusCreated, signup)
}

// DeleteSignup withdraws a signup and frees any seat it held.
func (h *Handler) DeleteSignup(c *gin.Context) {
	event, err := findEvent(h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	signupID := c.Param("signupID")
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ? AND signup_id = ?", event.ID, signupID).
			Delete(&database.RosterAssignment{}).Error; err != nil {
			return err
		}
		res := tx.Where("event_id = ? AND id = ?", event.ID, signupID).Delete(&database.Signup{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Signup not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not withdraw signup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signup withdrawn"})
}

// AssignSeat seats a signup manually. Position zero picks the lowest free
// position; an empty slot benches the signup on role-based events.
func (h *Handler) AssignSeat(c *gin.Context) {
	var input models.AssignSeatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := loadRosterState(h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	signup, ok := lo.Find(st.Signups, func(s database.Signup) bool { return s.ID == input.SignupID })
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Signup not found"})
		return
	}
	for _, a := range st.Assignments {
		if a.SignupID == signup.ID {
			c.JSON(http.StatusConflict, gin.H{"error": "Signup already holds a seat"})
			return
		}
	}

	slot := normalizeRole(input.Slot)

	// The bench (empty slot on role-based events) has no capacity bound.
	bench := st.Event.Game.RoleBased && slot == ""
	capacity := 0
	if st.Event.Game.RoleBased {
		if !bench {
			def, ok := lo.Find(st.Slots, func(s database.EventRoleSlot) bool { return s.Role == slot })
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role slot: " + slot})
				return
			}
			capacity = def.Capacity
		}
	} else {
		if slot != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This event has no role slots"})
			return
		}
		capacity = st.Event.Capacity
	}

	occupied := make(map[int]bool)
	for _, a := range st.Assignments {
		if a.Slot == slot {
			occupied[a.Position] = true
		}
	}

	position := input.Position
	if position <= 0 {
		position = 1
		for occupied[position] {
			position++
		}
	} else if occupied[position] {
		c.JSON(http.StatusConflict, gin.H{"error": "Seat already taken"})
		return
	}
	if !bench && position > capacity {
		c.JSON(http.StatusConflict, gin.H{"error": "No free seat in that slot"})
		return
	}

	row := database.RosterAssignment{
		EventID:    st.Event.ID,
		SignupID:   signup.ID,
		Slot:       slot,
		Position:   position,
		IsOverride: slot != "" && signup.CharacterRole != "" && signup.CharacterRole != slot,
		Source:     "manual",
	}
	if err := h.DB.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Seat already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not assign seat"})
		return
	}

	c.JSON(http.StatusCreated, row)
}

// UnseatSignup frees a signup's seat without withdrawing the signup.
func (h *Handler) UnseatSignup(c *gin.Context) {
	event, err := findEvent(h.DB, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	res := h.DB.Where("event_id = ? AND signup_id = ?", event.ID, c.Param("signupID")).
		Delete(&database.RosterAssignment{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not unseat signup"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No seat held by that signup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signup unseated"})
}

// AutoFillRoster runs the engine against the stored roster and persists the
// produced assignments in one transaction. A concurrent writer trips the
// roster unique keys and rolls the whole run back.
func (h *Handler) AutoFillRoster(c *gin.Context) {
	var (
		res       models.AutoFillResult
		open      int
		poolSize  int
		roleBased bool
	)

	start := time.Now()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		st, err := loadRosterState(tx, c.Param("id"))
		if err != nil {
			return err
		}

		in := st.snapshot()
		roleBased = in.RoleBased
		open = openSeatCount(in)
		poolSize = len(in.Pool)
		res = roster.AutoFill(in)

		if len(res.NewAssignments) == 0 {
			return nil
		}
		rows := lo.Map(res.NewAssignments, func(a models.Assignment, _ int) database.RosterAssignment {
			return database.RosterAssignment{
				EventID:    st.Event.ID,
				SignupID:   a.SignupID,
				Slot:       a.Slot,
				Position:   a.Position,
				IsOverride: a.IsOverride,
				Source:     "auto",
			}
		})
		return tx.Create(&rows).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "Roster changed while filling, retry"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fill roster"})
		return
	}

	h.observeRun(roleBased, res.TotalFilled, open, time.Since(start))
	h.RecordUsage(c, 1, poolSize, res.TotalFilled)

	c.JSON(http.StatusOK, models.AutoFillResponse{
		NewAssignments: res.NewAssignments,
		TotalFilled:    res.TotalFilled,
		OpenSeats:      open - res.TotalFilled,
		Message:        fillMessage(res.TotalFilled, open),
	})
}
