package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/database"
)

// newTestDB opens an in-memory SQLite database with the api_keys table. A
// single connection keeps the in-memory database alive across queries.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&database.APIKey{}))
	return db
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := CreateToken("raidlead")
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "raidlead", claims.Username)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := CreateToken("raidlead")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = VerifyToken(token)
	require.Error(t, err)
}

func TestHMACKeyRoundTrip(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "master")

	key := GenerateHMACKey("guild-bot")
	require.True(t, strings.HasPrefix(key, "guild-bot."))

	userID, err := VerifyHMACKey(key)
	require.NoError(t, err)
	require.Equal(t, "guild-bot", userID)
}

func TestVerifyHMACKeyRejectsTampering(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "master")

	key := GenerateHMACKey("guild-bot")

	_, err := VerifyHMACKey("other-bot." + strings.SplitN(key, ".", 2)[1])
	require.Error(t, err)

	_, err = VerifyHMACKey("no-signature-here")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, CheckPasswordHash("hunter2", hash))
	require.False(t, CheckPasswordHash("hunter3", hash))
}

func TestVerifyAPIKeyStampsLastUsed(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "master")
	db := newTestDB(t)

	key := GenerateHMACKey("guild-bot")

	rec, err := VerifyAPIKey(db, key, "guild-bot")
	require.NoError(t, err)
	require.Equal(t, "guild-bot", rec.Name)
	require.Equal(t, KeyPreview(key), rec.KeyPreview)
	require.Equal(t, 10000, rec.RateLimit)
	require.NotNil(t, rec.LastUsed)

	// A second use resolves the stored record instead of registering another.
	again, err := VerifyAPIKey(db, key, "guild-bot")
	require.NoError(t, err)
	require.Equal(t, rec.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&database.APIKey{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestVerifyAPIKeySurvivesLimitEdit(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "master")
	db := newTestDB(t)

	key := GenerateHMACKey("guild-bot")
	rec, err := VerifyAPIKey(db, key, "guild-bot")
	require.NoError(t, err)

	require.NoError(t, db.Model(&database.APIKey{}).Where("id = ?", rec.ID).Update("rate_limit", 500).Error)

	again, err := VerifyAPIKey(db, key, "guild-bot")
	require.NoError(t, err)
	require.Equal(t, rec.ID, again.ID)
	require.Equal(t, 500, again.RateLimit)
}

func TestKeyPreview(t *testing.T) {
	require.Equal(t, "rai...ccdd", KeyPreview("raid-bot.aabbccdd"))
	require.Equal(t, "****", KeyPreview("tiny.sig"))
}
