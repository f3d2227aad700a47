package handlers

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjdodge123/Raid-Ledger-sub004/internal/metrics"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/auth"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/database"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/models"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/roster"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Collector
}

// normalizeRole canonicalizes a role identifier at the API boundary. Roles
// compare case-insensitively everywhere else in the system.
func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func normalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = normalizeRole(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// RequestLogger emits one structured log line per request and feeds the
// request counter.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if h.Metrics != nil {
			h.Metrics.ObserveRequest(c.Request.Method, route, status)
		}
		if h.Log != nil {
			h.Log.Info("request",
				zap.String("method", c.Request.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for service routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Resolve the tracking record and stamp last_used
		apiKey, err := auth.VerifyAPIKey(h.DB, key, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record API key usage"})
			c.Abort()
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// AutoFillJSON runs the auto-fill engine over a caller-supplied snapshot and
// returns the produced assignments without persisting anything.
func (h *Handler) AutoFillJSON(c *gin.Context) {
	var req models.AutoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := snapshotFromRequest(&req)
	open := openSeatCount(in)

	start := time.Now()
	res := roster.AutoFill(in)
	h.observeRun(in.RoleBased, res.TotalFilled, open, time.Since(start))

	h.RecordUsage(c, 1, len(in.Pool), res.TotalFilled)

	c.JSON(http.StatusOK, models.AutoFillResponse{
		NewAssignments: res.NewAssignments,
		TotalFilled:    res.TotalFilled,
		OpenSeats:      open - res.TotalFilled,
		Message:        fillMessage(res.TotalFilled, open),
	})
}

// snapshotFromRequest normalizes role identifiers and builds the engine
// input. Preference order is preserved as submitted.
func snapshotFromRequest(req *models.AutoFillRequest) models.AutoFillInput {
	pool := make([]models.Candidate, len(req.Pool))
	for i, cand := range req.Pool {
		cand.PreferredRoles = normalizeRoles(cand.PreferredRoles)
		if cand.Character != nil {
			ch := *cand.Character
			ch.Role = normalizeRole(ch.Role)
			cand.Character = &ch
		}
		pool[i] = cand
	}

	existing := make([]models.Assignment, len(req.Existing))
	for i, ex := range req.Existing {
		ex.Slot = normalizeRole(ex.Slot)
		existing[i] = ex
	}

	slots := make([]models.RoleSlot, len(req.RoleSlots))
	for i, rs := range req.RoleSlots {
		rs.Role = normalizeRole(rs.Role)
		slots[i] = rs
	}

	caps := make(map[string]int, len(req.Capacity))
	for role, n := range req.Capacity {
		caps[normalizeRole(role)] = n
	}

	return models.AutoFillInput{
		Pool:       pool,
		Existing:   existing,
		RoleSlots:  slots,
		CapacityOf: models.CapacityFromMap(caps),
		RoleBased:  req.RoleBased,
	}
}

// openSeatCount is the number of free seats before a run. Catalog roles are
// counted once each even when the caller duplicated an entry.
func openSeatCount(in models.AutoFillInput) int {
	occupied := make(map[string]int, len(in.Existing))
	for _, ex := range in.Existing {
		occupied[ex.Slot]++
	}

	if !in.RoleBased {
		if open := in.CapacityOf("") - occupied[""]; open > 0 {
			return open
		}
		return 0
	}

	open := 0
	seen := make(map[string]bool, len(in.RoleSlots))
	for _, rs := range in.RoleSlots {
		if seen[rs.Role] {
			continue
		}
		seen[rs.Role] = true
		if free := in.CapacityOf(rs.Role) - occupied[rs.Role]; free > 0 {
			open += free
		}
	}
	return open
}

func fillMessage(filled, open int) string {
	return fmt.Sprintf("filled %d of %d open slots", filled, open)
}

func (h *Handler) observeRun(roleBased bool, filled, open int, elapsed time.Duration) {
	if h.Metrics == nil {
		return
	}
	mode := "generic"
	if roleBased {
		mode = "roles"
	}
	h.Metrics.ObserveAutoFill(mode, filled, open, elapsed.Seconds())
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, eventCount, candidateCount, seatCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":    gorm.Expr("request_count + ?", 1),
			"total_events":     gorm.Expr("total_events + ?", eventCount),
			"total_candidates": gorm.Expr("total_candidates + ?", candidateCount),
			"total_seats":      gorm.Expr("total_seats + ?", seatCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:           apiKey.ID,
		Date:            today,
		RequestCount:    1,
		TotalEvents:     eventCount,
		TotalCandidates: candidateCount,
		TotalSeats:      seatCount,
	})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	// Generate key using HMAC
	key := auth.GenerateHMACKey(req.Name)

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	_ = auth.EnsureAdminExists(h.DB, h.Log)

	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
