package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/store"
)

func (d *DB) CreateStyleExample(ctx context.Context, create *store.StyleExample) (*store.StyleExample, error) {
	stmt := `INSERT INTO style_examples (id, creator_id, fan_message, creator_responses)
		VALUES (` + placeholders(4) + `)
		RETURNING id, creator_id, fan_message, creator_responses, created_ts`

	example := &store.StyleExample{}
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.CreatorID,
		create.FanMessage,
		pq.Array(create.CreatorResponses),
	).Scan(
		&example.ID,
		&example.CreatorID,
		&example.FanMessage,
		pq.Array(&example.CreatorResponses),
		&example.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create style example")
	}

	return example, nil
}

func (d *DB) ListStyleExamples(ctx context.Context, find *store.FindStyleExample) ([]*store.StyleExample, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}

	query := `SELECT id, creator_id, fan_message, creator_responses, created_ts
		FROM style_examples
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC`
	if find.Limit > 0 {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, find.Limit)
		if find.Offset > 0 {
			query += " OFFSET " + placeholder(len(args)+1)
			args = append(args, find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list style examples")
	}
	defer rows.Close()

	list := []*store.StyleExample{}
	for rows.Next() {
		example := &store.StyleExample{}
		if err := rows.Scan(
			&example.ID,
			&example.CreatorID,
			&example.FanMessage,
			pq.Array(&example.CreatorResponses),
			&example.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan style example")
		}
		list = append(list, example)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate style examples")
	}

	return list, nil
}

func (d *DB) DeleteStyleExample(ctx context.Context, delete *store.DeleteStyleExample) error {
	stmt := `DELETE FROM style_examples WHERE id = ` + placeholder(1) + ` AND creator_id = ` + placeholder(2)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.CreatorID)
	if err != nil {
		return errors.Wrap(err, "failed to delete style example")
	}
	if _, err := result.RowsAffected(); err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}

	return nil
}
