package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/store"
)

func (d *DB) CreateCreator(ctx context.Context, create *store.Creator) (*store.Creator, error) {
	stmt := `INSERT INTO creators (id, name, description, avatar_url, active)
		VALUES (` + placeholders(5) + `)
		RETURNING id, name, description, avatar_url, active, created_ts, updated_ts`

	creator := &store.Creator{}
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.Name,
		create.Description,
		create.AvatarURL,
		create.Active,
	).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Description,
		&creator.AvatarURL,
		&creator.Active,
		&creator.CreatedTs,
		&creator.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create creator")
	}

	return creator, nil
}

func (d *DB) GetCreator(ctx context.Context, find *store.FindCreator) (*store.Creator, error) {
	list, err := d.ListCreators(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	return list[0], nil
}

func (d *DB) ListCreators(ctx context.Context, find *store.FindCreator) ([]*store.Creator, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Active != nil {
		where, args = append(where, "active = "+placeholder(len(args)+1)), append(args, *find.Active)
	}

	query := `SELECT id, name, description, avatar_url, active, created_ts, updated_ts
		FROM creators
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY name ASC`
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
		return nil, errors.Wrap(err, "failed to list creators")
	}
	defer rows.Close()

	list := []*store.Creator{}
	for rows.Next() {
		creator := &store.Creator{}
		if err := rows.Scan(
			&creator.ID,
			&creator.Name,
			&creator.Description,
			&creator.AvatarURL,
			&creator.Active,
			&creator.CreatedTs,
			&creator.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan creator")
		}
		list = append(list, creator)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate creators")
	}

	return list, nil
}

func (d *DB) CountCreators(ctx context.Context, find *store.FindCreator) (int64, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.Active != nil {
		where, args = append(where, "active = "+placeholder(len(args)+1)), append(args, *find.Active)
	}

	var count int64
	query := `SELECT COUNT(*) FROM creators WHERE ` + strings.Join(where, " AND ")
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count creators")
	}

	return count, nil
}

func (d *DB) UpdateCreator(ctx context.Context, update *store.UpdateCreator) (*store.Creator, error) {
	set, args := []string{}, []any{}
	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.AvatarURL != nil {
		set, args = append(set, "avatar_url = "+placeholder(len(args)+1)), append(args, *update.AvatarURL)
	}
	if update.Active != nil {
		set, args = append(set, "active = "+placeholder(len(args)+1)), append(args, *update.Active)
	}
	if len(set) == 0 {
		return d.GetCreator(ctx, &store.FindCreator{ID: &update.ID})
	}

	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, time.Now().Unix())

	stmt := `UPDATE creators SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)+1) + `
		RETURNING id, name, description, avatar_url, active, created_ts, updated_ts`
	args = append(args, update.ID)

	creator := &store.Creator{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Description,
		&creator.AvatarURL,
		&creator.Active,
		&creator.CreatedTs,
		&creator.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to update creator")
	}

	return creator, nil
}

func (d *DB) DeleteCreator(ctx context.Context, delete *store.DeleteCreator) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM creators WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete creator")
	}
	if _, err := result.RowsAffected(); err != nil {
		return errors.Wrap(err, "failed to get affected rows")
	}

	return nil
}
