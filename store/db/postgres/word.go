package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

func (d *DB) CreateWord(ctx context.Context, create *store.Word) (*store.Word, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO word (uid, text, language, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.Text, create.Language, now, now,
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, mapConstraintError(err, "create word")
	}

	return create, nil
}

func (d *DB) GetWord(ctx context.Context, find *store.FindWord) (*store.Word, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		args = append(args, *v)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if v := find.Text; v != nil {
		args = append(args, *v)
		where = append(where, "text = "+placeholder(len(args)))
	}
	if v := find.Language; v != nil {
		args = append(args, *v)
		where = append(where, "language = "+placeholder(len(args)))
	}

	query := `SELECT id, uid, text, language, created_ts, updated_ts FROM word
		WHERE ` + strings.Join(where, " AND ") + ` LIMIT 1`

	word := &store.Word{}
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&word.ID, &word.UID, &word.Text, &word.Language, &word.CreatedTs, &word.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	return word, nil
}

func (d *DB) UpdateWord(ctx context.Context, update *store.UpdateWord) (*store.Word, error) {
	set, args := []string{}, []any{}
	if v := update.Language; v != nil {
		args = append(args, *v)
		set = append(set, "language = "+placeholder(len(args)))
	}
	if len(set) == 0 {
		return d.GetWord(ctx, &store.FindWord{ID: &update.ID})
	}
	args = append(args, time.Now().Unix())
	set = append(set, "updated_ts = "+placeholder(len(args)))
	args = append(args, update.ID)

	stmt := `UPDATE word SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, text, language, created_ts, updated_ts`

	word := &store.Word{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&word.ID, &word.UID, &word.Text, &word.Language, &word.CreatedTs, &word.UpdatedTs,
	); err != nil {
		return nil, mapConstraintError(err, "update word")
	}

	return word, nil
}

func (d *DB) DeleteWord(ctx context.Context, delete *store.DeleteWord) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM word WHERE id = $1`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}
