package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	stmt := `INSERT INTO vector_store (id, creator_id, fan_message, creator_responses, embedding)
		VALUES (` + placeholders(5) + `)
		RETURNING id, creator_id, fan_message, creator_responses, created_ts`

	conversation := &store.Conversation{
		Embedding: create.Embedding,
	}
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.CreatorID,
		create.FanMessage,
		pq.Array(create.CreatorResponses),
		pgvector.NewVector(create.Embedding),
	).Scan(
		&conversation.ID,
		&conversation.CreatorID,
		&conversation.FanMessage,
		pq.Array(&conversation.CreatorResponses),
		&conversation.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}

	return conversation, nil
}

func (d *DB) SearchSimilarConversations(ctx context.Context, opts *store.SearchConversationOptions) ([]*store.Conversation, []float64, error) {
	if len(opts.Embedding) == 0 {
		return nil, nil, errors.New("embedding is required")
	}

	// Cosine distance, so 1 - (a <=> b) is the similarity in [0, 1].
	query := `SELECT id, creator_id, fan_message, creator_responses, created_ts,
			1 - (embedding <=> $1) AS similarity
		FROM vector_store
		WHERE creator_id = $2 AND 1 - (embedding <=> $1) > $3
		ORDER BY similarity DESC
		LIMIT $4`

	rows, err := d.db.QueryContext(ctx, query,
		pgvector.NewVector(opts.Embedding),
		opts.CreatorID,
		opts.MinSimilarity,
		opts.Limit,
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to search conversations")
	}
	defer rows.Close()

	list, similarities := []*store.Conversation{}, []float64{}
	for rows.Next() {
		conversation := &store.Conversation{}
		var similarity float64
		if err := rows.Scan(
			&conversation.ID,
			&conversation.CreatorID,
			&conversation.FanMessage,
			pq.Array(&conversation.CreatorResponses),
			&conversation.CreatedTs,
			&similarity,
		); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan conversation")
		}
		list, similarities = append(list, conversation), append(similarities, similarity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to iterate conversations")
	}

	return list, similarities, nil
}

func (d *DB) GetConversationStats(ctx context.Context, find *store.FindConversation) (*store.ConversationStats, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}

	query := `SELECT COUNT(*), MAX(created_ts) FROM vector_store WHERE ` + strings.Join(where, " AND ")

	stats := &store.ConversationStats{}
	var latest sql.NullInt64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalConversations, &latest); err != nil {
		return nil, errors.Wrap(err, "failed to get conversation stats")
	}
	if latest.Valid {
		stats.LatestTs = &latest.Int64
	}

	return stats, nil
}

func (d *DB) DeleteConversations(ctx context.Context, delete *store.DeleteConversation) (int64, error) {
	where, args := []string{"1 = 1"}, []any{}
	if delete.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *delete.CreatorID)
	}

	result, err := d.db.ExecContext(ctx, `DELETE FROM vector_store WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete conversations")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get affected rows")
	}

	return count, nil
}
