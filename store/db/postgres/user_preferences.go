package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/store"
)

func (d *DB) CreateUserPreferences(ctx context.Context, create *store.UserPreferences) (*store.UserPreferences, error) {
	if create.ModelName == "" {
		create.ModelName = store.DefaultModelName
	}
	if create.NumSuggestions <= 0 {
		create.NumSuggestions = store.DefaultNumSuggestions
	}

	stmt := `INSERT INTO user_preferences (user_id, selected_creator_id, openai_api_key, model_name, num_suggestions)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, selected_creator_id, openai_api_key, model_name, num_suggestions, created_ts, updated_ts`

	preferences := &store.UserPreferences{}
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserID,
		create.SelectedCreatorID,
		create.OpenAIAPIKey,
		create.ModelName,
		create.NumSuggestions,
	).Scan(
		&preferences.UserID,
		&preferences.SelectedCreatorID,
		&preferences.OpenAIAPIKey,
		&preferences.ModelName,
		&preferences.NumSuggestions,
		&preferences.CreatedTs,
		&preferences.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// Row already existed; the conflict clause skipped the insert.
			return d.GetUserPreferences(ctx, &store.FindUserPreferences{UserID: &create.UserID})
		}
		return nil, errors.Wrap(err, "failed to create user preferences")
	}

	return preferences, nil
}

func (d *DB) GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error) {
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}

	query := `SELECT user_id, selected_creator_id, openai_api_key, model_name, num_suggestions, created_ts, updated_ts
		FROM user_preferences
		WHERE user_id = ` + placeholder(1)

	preferences := &store.UserPreferences{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&preferences.UserID,
		&preferences.SelectedCreatorID,
		&preferences.OpenAIAPIKey,
		&preferences.ModelName,
		&preferences.NumSuggestions,
		&preferences.CreatedTs,
		&preferences.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user preferences")
	}

	return preferences, nil
}

func (d *DB) UpdateUserPreferences(ctx context.Context, update *store.UpdateUserPreferences) (*store.UserPreferences, error) {
	set, args := []string{}, []any{}
	if update.SelectedCreatorID != nil {
		value := sql.NullString{String: *update.SelectedCreatorID, Valid: *update.SelectedCreatorID != ""}
		set, args = append(set, "selected_creator_id = "+placeholder(len(args)+1)), append(args, value)
	}
	if update.OpenAIAPIKey != nil {
		set, args = append(set, "openai_api_key = "+placeholder(len(args)+1)), append(args, *update.OpenAIAPIKey)
	}
	if update.ModelName != nil {
		set, args = append(set, "model_name = "+placeholder(len(args)+1)), append(args, *update.ModelName)
	}
	if update.NumSuggestions != nil {
		set, args = append(set, "num_suggestions = "+placeholder(len(args)+1)), append(args, *update.NumSuggestions)
	}
	if len(set) == 0 {
		return d.GetUserPreferences(ctx, &store.FindUserPreferences{UserID: &update.UserID})
	}

	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, time.Now().Unix())

	stmt := `UPDATE user_preferences SET ` + strings.Join(set, ", ") + `
		WHERE user_id = ` + placeholder(len(args)+1) + `
		RETURNING user_id, selected_creator_id, openai_api_key, model_name, num_suggestions, created_ts, updated_ts`
	args = append(args, update.UserID)

	preferences := &store.UserPreferences{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&preferences.UserID,
		&preferences.SelectedCreatorID,
		&preferences.OpenAIAPIKey,
		&preferences.ModelName,
		&preferences.NumSuggestions,
		&preferences.CreatedTs,
		&preferences.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update user preferences")
	}

	return preferences, nil
}
