package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sjdodge123/Raid-Ledger-sub004/internal/config"
)

// newTestDB opens the migrated schema on an in-memory SQLite database. A
// single connection keeps the in-memory database alive across queries.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := InitDB(&config.Config{DataPath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db.Logger = logger.Discard
	return db
}

func TestRosterUniqueKeys(t *testing.T) {
	db := newTestDB(t)

	seat := RosterAssignment{EventID: 1, SignupID: 10, Slot: "tank", Position: 1, Source: "manual"}
	require.NoError(t, db.Create(&seat).Error)

	t.Run("second seat for the same signup", func(t *testing.T) {
		err := db.Create(&RosterAssignment{EventID: 1, SignupID: 10, Slot: "healer", Position: 1}).Error
		require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("second signup in the same seat", func(t *testing.T) {
		err := db.Create(&RosterAssignment{EventID: 1, SignupID: 11, Slot: "tank", Position: 1}).Error
		require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("both keys are scoped to the event", func(t *testing.T) {
		err := db.Create(&RosterAssignment{EventID: 2, SignupID: 10, Slot: "tank", Position: 1}).Error
		require.NoError(t, err)
	})
}

func TestSignupHandleUniquePerEvent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Signup{EventID: 1, Handle: "Brannor"}).Error)

	err := db.Create(&Signup{EventID: 1, Handle: "Brannor"}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, db.Create(&Signup{EventID: 2, Handle: "Brannor"}).Error)
}

func TestEnsureDefaultGamesIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureDefaultGames(db))
	require.NoError(t, EnsureDefaultGames(db))

	var count int64
	require.NoError(t, db.Model(&Game{}).Count(&count).Error)
	require.EqualValues(t, 3, count)

	var custom Game
	require.NoError(t, db.First(&custom, "slug = ?", "custom").Error)
	require.False(t, custom.RoleBased)
}
