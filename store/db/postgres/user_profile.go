package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UpsertUserProfile) (*store.UserProfile, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO user_profile (user_id, nickname, level, age_group, target_language, native_language, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (user_id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			level = EXCLUDED.level,
			age_group = EXCLUDED.age_group,
			target_language = EXCLUDED.target_language,
			native_language = EXCLUDED.native_language,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, nickname, level, age_group, target_language, native_language, created_ts, updated_ts`

	userProfile := &store.UserProfile{}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID, upsert.Nickname, upsert.Level, upsert.AgeGroup,
		upsert.TargetLanguage, upsert.NativeLanguage, now, now,
	).Scan(
		&userProfile.UserID, &userProfile.Nickname, &userProfile.Level, &userProfile.AgeGroup,
		&userProfile.TargetLanguage, &userProfile.NativeLanguage, &userProfile.CreatedTs, &userProfile.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}

	return userProfile, nil
}

func (d *DB) GetUserProfile(ctx context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT user_id, nickname, level, age_group, target_language, native_language, created_ts, updated_ts
		FROM user_profile WHERE user_id = $1`

	userProfile := &store.UserProfile{}
	if err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&userProfile.UserID, &userProfile.Nickname, &userProfile.Level, &userProfile.AgeGroup,
		&userProfile.TargetLanguage, &userProfile.NativeLanguage, &userProfile.CreatedTs, &userProfile.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return userProfile, nil
}

func (d *DB) DeleteUserProfile(ctx context.Context, delete *store.DeleteUserProfile) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_profile WHERE user_id = $1`, delete.UserID); err != nil {
		return fmt.Errorf("failed to delete user profile: %w", err)
	}
	return nil
}
