package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/models"
)

// ValidateInput checks an auto-fill snapshot for the consistency rules the
// engine itself assumes the caller upholds.
func (h *Handler) ValidateInput(c *gin.Context) {
	var req models.AutoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	in := snapshotFromRequest(&req)

	if len(in.Pool) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one candidate is required",
		})
		return
	}

	if in.RoleBased && len(in.RoleSlots) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one role slot is required for role-based events",
		})
		return
	}

	// Check for duplicate signup IDs
	poolIDs := make(map[uint]bool, len(in.Pool))
	for _, cand := range in.Pool {
		if poolIDs[cand.SignupID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Duplicate candidate: signup %d", cand.SignupID)})
			return
		}
		poolIDs[cand.SignupID] = true
	}

	// A candidate must not already hold a seat
	seatedIDs := make(map[uint]bool, len(in.Existing))
	for _, ex := range in.Existing {
		if seatedIDs[ex.SignupID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Signup %d holds more than one seat", ex.SignupID)})
			return
		}
		seatedIDs[ex.SignupID] = true
	}
	for _, cand := range in.Pool {
		if seatedIDs[cand.SignupID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Signup %d is both in the pool and already seated", cand.SignupID)})
			return
		}
	}

	// Each role appears once in the catalog, each seat holds one signup
	roles := make(map[string]bool, len(in.RoleSlots))
	for _, rs := range in.RoleSlots {
		if roles[rs.Role] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate role slot: " + rs.Role})
			return
		}
		roles[rs.Role] = true
	}

	type seat struct {
		slot string
		pos  int
	}
	seats := make(map[seat]bool, len(in.Existing))
	for _, ex := range in.Existing {
		s := seat{ex.Slot, ex.Position}
		if seats[s] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Seat %s#%d is assigned twice", ex.Slot, ex.Position)})
			return
		}
		seats[s] = true
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"candidate_count": len(in.Pool),
			"role_count":      len(in.RoleSlots),
			"open_seats":      openSeatCount(in),
		},
	})
}
