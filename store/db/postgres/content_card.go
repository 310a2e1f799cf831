package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

func (d *DB) CreateContentCard(ctx context.Context, create *store.ContentCard) (*store.ContentCard, error) {
	now := time.Now().Unix()
	if create.Examples == "" {
		create.Examples = "[]"
	}

	stmt := `INSERT INTO content_card (
			uid, word_id, definition, conversation, examples,
			target_language, target_cefr, interest_context, tone_style, created_ts
		) VALUES (` + placeholders(10) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.WordID, create.Definition, create.Conversation, create.Examples,
		create.TargetLanguage, create.TargetCEFR, create.InterestContext, create.ToneStyle, now,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, mapConstraintError(err, "create content card")
	}

	return create, nil
}

func (d *DB) GetContentCard(ctx context.Context, find *store.FindContentCard) (*store.ContentCard, error) {
	list, err := d.listContentCards(ctx, find, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) ListContentCards(ctx context.Context, find *store.FindContentCard) ([]*store.ContentCard, error) {
	return d.listContentCards(ctx, find, 0)
}

func (d *DB) listContentCards(ctx context.Context, find *store.FindContentCard, limit int) ([]*store.ContentCard, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		args = append(args, *v)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if v := find.WordID; v != nil {
		args = append(args, *v)
		where = append(where, "word_id = "+placeholder(len(args)))
	}
	if k := find.Key; k != nil {
		args = append(args, k.WordID)
		where = append(where, "word_id = "+placeholder(len(args)))
		args = append(args, k.TargetLanguage)
		where = append(where, "target_language = "+placeholder(len(args)))
		args = append(args, k.TargetCEFR)
		where = append(where, "target_cefr = "+placeholder(len(args)))
		args = append(args, k.InterestContext)
		where = append(where, "interest_context = "+placeholder(len(args)))
		args = append(args, k.ToneStyle)
		where = append(where, "tone_style = "+placeholder(len(args)))
	}

	query := `SELECT id, uid, word_id, definition, conversation, examples,
			target_language, target_cefr, interest_context, tone_style, created_ts
		FROM content_card
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content cards: %w", err)
	}
	defer rows.Close()

	list := []*store.ContentCard{}
	for rows.Next() {
		card := &store.ContentCard{}
		if err := rows.Scan(
			&card.ID, &card.UID, &card.WordID, &card.Definition, &card.Conversation, &card.Examples,
			&card.TargetLanguage, &card.TargetCEFR, &card.InterestContext, &card.ToneStyle, &card.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan content card: %w", err)
		}
		list = append(list, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content cards: %w", err)
	}

	return list, nil
}
