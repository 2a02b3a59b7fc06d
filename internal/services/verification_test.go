package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
	"github.com/example/parkbay/internal/utils"
)

// fakeEmailSender records sends and can be told to fail.
type fakeEmailSender struct {
	sent []string
	fail bool
}

func (f *fakeEmailSender) Send(to, subject, html, text string) error {
	if f.fail {
		return ErrEmailSend
	}
	f.sent = append(f.sent, to)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.UserAccountVerification{},
		&models.PasswordResetToken{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := models.User{
		Username: "driver-20241225-0001",
		Email:    "driver@example.com",
		PhoneNo:  "07000000001",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestIssueAccountToken(t *testing.T) {
	t.Run("persists a 64-hex token and sends the email", func(t *testing.T) {
		db := setupTestDB(t)
		email := &fakeEmailSender{}
		svc := NewVerificationService(db, email, 10*time.Minute)
		user := createTestUser(t, db)

		err := svc.IssueAccountToken(user, "https://app.example.com", "verify-account")
		require.NoError(t, err)

		var record models.UserAccountVerification
		require.NoError(t, db.First(&record, "user_id = ?", user.ID).Error)
		assert.Len(t, record.Token, 64)
		assert.False(t, record.IsArchived)
		assert.Equal(t, []string{user.Email}, email.sent)
	})

	t.Run("failed send leaves no token behind", func(t *testing.T) {
		db := setupTestDB(t)
		email := &fakeEmailSender{fail: true}
		svc := NewVerificationService(db, email, 10*time.Minute)
		user := createTestUser(t, db)

		err := svc.IssueAccountToken(user, "https://app.example.com", "verify-account")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmailSend))

		var count int64
		db.Model(&models.UserAccountVerification{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("re-issue archives outstanding tokens", func(t *testing.T) {
		db := setupTestDB(t)
		email := &fakeEmailSender{}
		svc := NewVerificationService(db, email, 10*time.Minute)
		user := createTestUser(t, db)

		require.NoError(t, svc.IssueAccountToken(user, "https://app.example.com", "verify-account"))
		require.NoError(t, svc.IssueAccountToken(user, "https://app.example.com", "verify-account"))

		var active int64
		db.Model(&models.UserAccountVerification{}).
			Where("user_id = ? AND is_archived = ?", user.ID, false).
			Count(&active)
		assert.Equal(t, int64(1), active, "at most one unarchived token per user")
	})
}

func TestConsumeAccountToken(t *testing.T) {
	issue := func(t *testing.T, db *gorm.DB, svc *VerificationService, user *models.User) string {
		t.Helper()
		require.NoError(t, svc.IssueAccountToken(user, "https://app.example.com", "verify-account"))
		var record models.UserAccountVerification
		require.NoError(t, db.First(&record, "user_id = ? AND is_archived = ?", user.ID, false).Error)
		return record.Token
	}

	t.Run("marks the user verified and archives the token", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)
		token := issue(t, db, svc, user)

		require.NoError(t, svc.ConsumeAccountToken(token))

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
		assert.True(t, reloaded.IsEmailVerified)

		var record models.UserAccountVerification
		require.NoError(t, db.First(&record, "user_id = ?", user.ID).Error)
		assert.True(t, record.IsArchived)
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)

		err := svc.ConsumeAccountToken("deadbeef")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("double consume is invalid", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)
		token := issue(t, db, svc, user)

		require.NoError(t, svc.ConsumeAccountToken(token))
		err := svc.ConsumeAccountToken(token)
		assert.True(t, errors.Is(err, ErrInvalidToken), "archived tokens are not found again")
	})

	t.Run("expired token archives and reports expiry", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)
		token := issue(t, db, svc, user)

		backdated := time.Now().Add(-11 * time.Minute)
		require.NoError(t, db.Model(&models.UserAccountVerification{}).
			Where("token = ?", token).
			Update("created_at", backdated).Error)

		err := svc.ConsumeAccountToken(token)
		assert.True(t, errors.Is(err, ErrLinkExpired))

		var record models.UserAccountVerification
		require.NoError(t, db.First(&record, "user_id = ?", user.ID).Error)
		assert.True(t, record.IsArchived, "expiry is terminal")
	})

	t.Run("already verified user archives and reports the state", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)
		token := issue(t, db, svc, user)

		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("is_email_verified", true).Error)

		err := svc.ConsumeAccountToken(token)
		assert.True(t, errors.Is(err, ErrAlreadyVerified))

		var record models.UserAccountVerification
		require.NoError(t, db.First(&record, "user_id = ?", user.ID).Error)
		assert.True(t, record.IsArchived)
	})
}

func TestConsumeResetToken(t *testing.T) {
	t.Run("stores the new password hash", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)

		require.NoError(t, svc.IssueResetToken(user, "https://app.example.com", "reset-password"))

		var record models.PasswordResetToken
		require.NoError(t, db.First(&record, "user_id = ? AND is_archived = ?", user.ID, false).Error)

		hash, err := utils.HashPassword("new-password-1")
		require.NoError(t, err)

		require.NoError(t, svc.ConsumeResetToken(record.Token, hash))

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
		assert.True(t, utils.CheckPassword(reloaded.PasswordHash, "new-password-1"))

		err = svc.ConsumeResetToken(record.Token, hash)
		assert.True(t, errors.Is(err, ErrInvalidToken), "reset tokens are single use")
	})

	t.Run("expired reset token is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewVerificationService(db, &fakeEmailSender{}, 10*time.Minute)
		user := createTestUser(t, db)

		require.NoError(t, svc.IssueResetToken(user, "https://app.example.com", "reset-password"))

		var record models.PasswordResetToken
		require.NoError(t, db.First(&record, "user_id = ?", user.ID).Error)

		require.NoError(t, db.Model(&models.PasswordResetToken{}).
			Where("id = ?", record.ID).
			Update("created_at", time.Now().Add(-time.Hour)).Error)

		err := svc.ConsumeResetToken(record.Token, "hash")
		assert.True(t, errors.Is(err, ErrLinkExpired))
	})
}
