package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"wardrobe/internal/logger"
	"wardrobe/internal/models"
)

func CreateSession(db *sql.DB, userID int, sessionDuration time.Duration) (*models.Session, error) {
	sessionID, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	expiresAt := time.Now().Add(sessionDuration)

	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)
	`

	_, err = db.Exec(query, sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return session, nil
}

func ValidateSession(db *sql.DB, sessionID string, sessionDuration time.Duration) (*models.Account, error) {
	account := &models.Account{}
	var firstName, lastName, dob sql.NullString
	query := `
		SELECT a.user_id, a.email, a.first_name, a.last_name, a.dob
		FROM accounts a
		INNER JOIN sessions s ON a.user_id = s.user_id
		WHERE s.id = ? AND s.expires_at > CURRENT_TIMESTAMP
	`

	err := db.QueryRow(query, sessionID).Scan(
		&account.UserID,
		&account.Email,
		&firstName,
		&lastName,
		&dob,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found or expired")
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if firstName.Valid {
		account.FirstName = firstName.String
	}
	if lastName.Valid {
		account.LastName = lastName.String
	}
	if dob.Valid {
		account.DOB = &dob.String
	}

	err = RenewSession(db, sessionID, sessionDuration)
	if err != nil {
		logger.Warn("Failed to renew session",
			"session_id", sessionID,
			"error", err)
	}

	return account, nil
}

func RenewSession(db *sql.DB, sessionID string, sessionDuration time.Duration) error {
	// Sliding window - always extend on activity
	newExpiresAt := time.Now().Add(sessionDuration)

	updateQuery := `UPDATE sessions SET expires_at = ? WHERE id = ?`
	_, err := db.Exec(updateQuery, newExpiresAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to renew session: %w", err)
	}

	return nil
}

func DeleteSession(db *sql.DB, sessionID string) error {
	query := `DELETE FROM sessions WHERE id = ?`
	_, err := db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func CleanupExpiredSessions(db *sql.DB) error {
	query := `DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return nil
}

func CreateCSRFToken(db *sql.DB, userID int) (*models.CSRFToken, error) {
	token, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF token: %w", err)
	}

	expiresAt := time.Now().Add(1 * time.Hour)

	query := `
		INSERT INTO csrf_tokens (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`

	_, err = db.Exec(query, token, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSRF token: %w", err)
	}

	csrfToken := &models.CSRFToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	return csrfToken, nil
}

func ValidateCSRFToken(db *sql.DB, token string, userID int) error {
	query := `
		SELECT 1
		FROM csrf_tokens
		WHERE token = ? AND user_id = ? AND expires_at > CURRENT_TIMESTAMP
	`

	var exists int
	err := db.QueryRow(query, token, userID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("CSRF token not found or expired")
		}
		return fmt.Errorf("failed to validate CSRF token: %w", err)
	}

	query = `DELETE FROM csrf_tokens WHERE token = ?`
	_, err = db.Exec(query, token)
	if err != nil {
		return fmt.Errorf("failed to delete used CSRF token: %w", err)
	}

	return nil
}

func CleanupExpiredCSRFTokens(db *sql.DB) error {
	query := `DELETE FROM csrf_tokens WHERE expires_at < CURRENT_TIMESTAMP`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired CSRF tokens: %w", err)
	}
	return nil
}

func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
