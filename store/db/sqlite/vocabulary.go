package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

func (d *DB) CreateVocabularyMembership(ctx context.Context, create *store.VocabularyMembership) (*store.VocabularyMembership, error) {
	now := time.Now().Unix()
	if create.Familiarity == 0 {
		create.Familiarity = store.MinFamiliarity
	}

	stmt := `INSERT INTO vocabulary_membership (user_id, card_id, familiarity, added_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		RETURNING id, added_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UserID, create.CardID, create.Familiarity, now, now,
	).Scan(&create.ID, &create.AddedTs, &create.UpdatedTs); err != nil {
		return nil, mapConstraintError(err, "create vocabulary membership")
	}

	return create, nil
}

func (d *DB) GetVocabularyMembership(ctx context.Context, find *store.FindVocabularyMembership) (*store.VocabularyMembership, error) {
	list, err := d.listVocabularyMemberships(ctx, find, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) ListVocabularyMemberships(ctx context.Context, find *store.FindVocabularyMembership) ([]*store.VocabularyMembership, error) {
	return d.listVocabularyMemberships(ctx, find, 0)
}

func (d *DB) listVocabularyMemberships(ctx context.Context, find *store.FindVocabularyMembership, limit int) ([]*store.VocabularyMembership, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.CardID; v != nil {
		where, args = append(where, "card_id = ?"), append(args, *v)
	}

	query := `SELECT id, user_id, card_id, familiarity, added_ts, updated_ts
		FROM vocabulary_membership
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY added_ts DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocabulary memberships: %w", err)
	}
	defer rows.Close()

	list := []*store.VocabularyMembership{}
	for rows.Next() {
		membership := &store.VocabularyMembership{}
		if err := rows.Scan(
			&membership.ID, &membership.UserID, &membership.CardID,
			&membership.Familiarity, &membership.AddedTs, &membership.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary membership: %w", err)
		}
		list = append(list, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vocabulary memberships: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateVocabularyMembership(ctx context.Context, update *store.UpdateVocabularyMembership) (*store.VocabularyMembership, error) {
	set, args := []string{}, []any{}
	if v := update.Familiarity; v != nil {
		set, args = append(set, "familiarity = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetVocabularyMembership(ctx, &store.FindVocabularyMembership{ID: &update.ID})
	}
	set, args = append(set, "updated_ts = ?"), append(args, time.Now().Unix())
	args = append(args, update.ID)

	stmt := `UPDATE vocabulary_membership SET ` + strings.Join(set, ", ") + ` WHERE id = ?
		RETURNING id, user_id, card_id, familiarity, added_ts, updated_ts`

	membership := &store.VocabularyMembership{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&membership.ID, &membership.UserID, &membership.CardID,
		&membership.Familiarity, &membership.AddedTs, &membership.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update vocabulary membership: %w", err)
	}

	return membership, nil
}

func (d *DB) DeleteVocabularyMembership(ctx context.Context, delete *store.DeleteVocabularyMembership) error {
	stmt := `DELETE FROM vocabulary_membership WHERE user_id = ? AND card_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.UserID, delete.CardID); err != nil {
		return fmt.Errorf("failed to delete vocabulary membership: %w", err)
	}
	return nil
}
