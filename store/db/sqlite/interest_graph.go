package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

func (d *DB) GetInterestGraph(ctx context.Context, find *store.FindInterestGraph) (*store.InterestGraphRecord, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT user_id, payload, version, created_ts, updated_ts FROM interest_graph WHERE user_id = ?`

	record := &store.InterestGraphRecord{}
	if err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&record.UserID, &record.Payload, &record.Version, &record.CreatedTs, &record.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interest graph: %w", err)
	}

	return record, nil
}

// UpdateInterestGraph writes the whole graph back with a compare-and-swap on
// the version column. ExpectedVersion 0 inserts a fresh row; losing either
// race yields store.ErrVersionConflict so the caller can re-read and retry.
func (d *DB) UpdateInterestGraph(ctx context.Context, update *store.UpdateInterestGraph) (*store.InterestGraphRecord, error) {
	now := time.Now().Unix()
	record := &store.InterestGraphRecord{}

	if update.ExpectedVersion == 0 {
		stmt := `INSERT INTO interest_graph (user_id, payload, version, created_ts, updated_ts)
			VALUES (` + placeholders(5) + `)
			RETURNING user_id, payload, version, created_ts, updated_ts`
		err := d.db.QueryRowContext(ctx, stmt, update.UserID, update.Payload, 1, now, now).Scan(
			&record.UserID, &record.Payload, &record.Version, &record.CreatedTs, &record.UpdatedTs,
		)
		if err != nil {
			if mapped := mapConstraintError(err, "insert interest graph"); errors.Is(mapped, store.ErrAlreadyExists) {
				return nil, store.ErrVersionConflict
			}
			return nil, fmt.Errorf("failed to insert interest graph: %w", err)
		}
		return record, nil
	}

	stmt := `UPDATE interest_graph
		SET payload = ?, version = version + 1, updated_ts = ?
		WHERE user_id = ? AND version = ?
		RETURNING user_id, payload, version, created_ts, updated_ts`

	err := d.db.QueryRowContext(ctx, stmt, update.Payload, now, update.UserID, update.ExpectedVersion).Scan(
		&record.UserID, &record.Payload, &record.Version, &record.CreatedTs, &record.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update interest graph: %w", err)
	}

	return record, nil
}
