package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/store"
)

func (d *DB) GetCreatorStyle(ctx context.Context, find *store.FindCreatorStyle) (*store.CreatorStyle, error) {
	query := `SELECT creator_id, approved_emojis, case_style, text_replacements, sentence_separators,
			punctuation_rules, abbreviations, message_length_preference, style_instructions, tone_range, updated_ts
		FROM creator_styles
		WHERE creator_id = ` + placeholder(1)

	style, err := scanCreatorStyle(d.db.QueryRowContext(ctx, query, find.CreatorID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get creator style")
	}

	return style, nil
}

func (d *DB) UpsertCreatorStyle(ctx context.Context, upsert *store.UpsertCreatorStyle) (*store.CreatorStyle, error) {
	columns, args := []string{"creator_id"}, []any{upsert.CreatorID}
	if upsert.ApprovedEmojis != nil {
		columns, args = append(columns, "approved_emojis"), append(args, pq.Array(*upsert.ApprovedEmojis))
	}
	if upsert.CaseStyle != nil {
		columns, args = append(columns, "case_style"), append(args, *upsert.CaseStyle)
	}
	if upsert.TextReplacements != nil {
		value, err := json.Marshal(*upsert.TextReplacements)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal text replacements")
		}
		columns, args = append(columns, "text_replacements"), append(args, value)
	}
	if upsert.SentenceSeparators != nil {
		columns, args = append(columns, "sentence_separators"), append(args, pq.Array(*upsert.SentenceSeparators))
	}
	if upsert.PunctuationRules != nil {
		value, err := json.Marshal(*upsert.PunctuationRules)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal punctuation rules")
		}
		columns, args = append(columns, "punctuation_rules"), append(args, value)
	}
	if upsert.Abbreviations != nil {
		value, err := json.Marshal(*upsert.Abbreviations)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal abbreviations")
		}
		columns, args = append(columns, "abbreviations"), append(args, value)
	}
	if upsert.MessageLengthPreference != nil {
		columns, args = append(columns, "message_length_preference"), append(args, *upsert.MessageLengthPreference)
	}
	if upsert.StyleInstructions != nil {
		columns, args = append(columns, "style_instructions"), append(args, *upsert.StyleInstructions)
	}
	if upsert.ToneRange != nil {
		columns, args = append(columns, "tone_range"), append(args, *upsert.ToneRange)
	}
	columns, args = append(columns, "updated_ts"), append(args, time.Now().Unix())

	// Only the provided columns are written; an existing row keeps the rest.
	set := []string{}
	for _, column := range columns[1:] {
		set = append(set, column+" = EXCLUDED."+column)
	}

	stmt := `INSERT INTO creator_styles (` + strings.Join(columns, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (creator_id) DO UPDATE SET ` + strings.Join(set, ", ") + `
		RETURNING creator_id, approved_emojis, case_style, text_replacements, sentence_separators,
			punctuation_rules, abbreviations, message_length_preference, style_instructions, tone_range, updated_ts`

	style, err := scanCreatorStyle(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert creator style")
	}

	return style, nil
}

func scanCreatorStyle(row *sql.Row) (*store.CreatorStyle, error) {
	style := &store.CreatorStyle{}
	var textReplacements, punctuationRules, abbreviations []byte
	if err := row.Scan(
		&style.CreatorID,
		pq.Array(&style.ApprovedEmojis),
		&style.CaseStyle,
		&textReplacements,
		pq.Array(&style.SentenceSeparators),
		&punctuationRules,
		&abbreviations,
		&style.MessageLengthPreference,
		&style.StyleInstructions,
		&style.ToneRange,
		&style.UpdatedTs,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(textReplacements, &style.TextReplacements); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal text replacements")
	}
	if err := json.Unmarshal(punctuationRules, &style.PunctuationRules); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal punctuation rules")
	}
	if err := json.Unmarshal(abbreviations, &style.Abbreviations); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal abbreviations")
	}

	return style, nil
}
