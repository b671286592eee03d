package store

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm/clause"
)

// UserInfo carries the display fields of a platform user.
type UserInfo struct {
	ID        int64
	UserName  string
	FirstName string
	LastName  string
}

// UpsertUser registers a user, updating display fields on repeated
// registration. Keyed by the platform user id, so the operation is
// idempotent and never creates duplicates.
func (s *Store) UpsertUser(ctx context.Context, info UserInfo) error {
	user := User{
		ID:        info.ID,
		UserName:  nullString(info.UserName),
		FirstName: nullString(info.FirstName),
		LastName:  nullString(info.LastName),
	}

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_name":  user.UserName,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_at": time.Now().Format(time.RFC3339),
		}),
	}).Create(&user).Error
}

// GetUser retrieves a user by platform id. Returns nil when absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// nullString creates a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
