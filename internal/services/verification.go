package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
)

// VerificationService issues and consumes single-use account-verification
// and password-reset tokens. A token moves ISSUED -> {CONSUMED, EXPIRED};
// both terminal states archive the row.
type VerificationService struct {
	db     *gorm.DB
	email  EmailSender
	expiry time.Duration
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(db *gorm.DB, email EmailSender, expiry time.Duration) *VerificationService {
	return &VerificationService{db: db, email: email, expiry: expiry}
}

// WithTx returns a copy of the service bound to the given transaction, so
// token issuance can join a caller-managed transaction.
func (s *VerificationService) WithTx(tx *gorm.DB) *VerificationService {
	return &VerificationService{db: tx, email: s.email, expiry: s.expiry}
}

// IssueAccountToken archives any outstanding verification tokens for the
// user, emails a fresh link, and persists the new token only after the email
// went out. The link format is <origin>/<redirectURL>/<token>.
func (s *VerificationService) IssueAccountToken(user *models.User, origin, redirectURL string) error {
	if err := s.db.Model(&models.UserAccountVerification{}).
		Where("user_id = ? AND is_archived = ?", user.ID, false).
		Update("is_archived", true).Error; err != nil {
		return err
	}

	token, err := generateTokenString()
	if err != nil {
		return err
	}

	link := buildLink(origin, redirectURL, token)
	html := fmt.Sprintf(`<p>Click the link below to verify your account:</p><p><a href="%s">Verify Account</a></p>`, link)
	text := "Verify your account: " + link

	// All-or-nothing: a failed send must not leave a live token behind.
	if err := s.email.Send(user.Email, "Account Verification", html, text); err != nil {
		return err
	}

	record := models.UserAccountVerification{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: time.Now(),
	}
	return s.db.Create(&record).Error
}

// ConsumeAccountToken validates a verification token and marks the owning
// user's email verified. Expired or already-satisfied tokens are archived
// before the error is returned.
func (s *VerificationService) ConsumeAccountToken(token string) error {
	var record models.UserAccountVerification
	err := s.db.Preload("User").
		Where("token = ? AND is_archived = ?", token, false).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if record.User != nil && record.User.IsEmailVerified {
		s.archiveAccountToken(record.ID)
		return ErrAlreadyVerified
	}

	if time.Since(record.CreatedAt) > s.expiry {
		s.archiveAccountToken(record.ID)
		return ErrLinkExpired
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("is_email_verified", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserAccountVerification{}).
			Where("id = ?", record.ID).
			Update("is_archived", true).Error
	})
}

// IssueResetToken mirrors IssueAccountToken for the password-reset flow.
func (s *VerificationService) IssueResetToken(user *models.User, origin, redirectURL string) error {
	if err := s.db.Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND is_archived = ?", user.ID, false).
		Update("is_archived", true).Error; err != nil {
		return err
	}

	token, err := generateTokenString()
	if err != nil {
		return err
	}

	link := buildLink(origin, redirectURL, token)
	html := fmt.Sprintf(`<p>Click the link below to reset your password:</p><p><a href="%s">Reset Password</a></p>`, link)
	text := "Reset your password: " + link

	if err := s.email.Send(user.Email, "Password Reset", html, text); err != nil {
		return err
	}

	record := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: time.Now(),
	}
	return s.db.Create(&record).Error
}

// ConsumeResetToken validates a reset token and stores the new password
// hash for the owning user.
func (s *VerificationService) ConsumeResetToken(token, passwordHash string) error {
	var record models.PasswordResetToken
	err := s.db.
		Where("token = ? AND is_archived = ?", token, false).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if time.Since(record.CreatedAt) > s.expiry {
		s.db.Model(&models.PasswordResetToken{}).
			Where("id = ?", record.ID).
			Update("is_archived", true)
		return ErrLinkExpired
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return tx.Model(&models.PasswordResetToken{}).
			Where("id = ?", record.ID).
			Update("is_archived", true).Error
	})
}

func (s *VerificationService) archiveAccountToken(id uuid.UUID) {
	s.db.Model(&models.UserAccountVerification{}).
		Where("id = ?", id).
		Update("is_archived", true)
}

func generateTokenString() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func buildLink(origin, redirectURL, token string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(origin, "/"),
		strings.Trim(redirectURL, "/"),
		token,
	)
}
