package repository

import (
	"context"
	"encoding/json"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SnapshotRepository persists one row per aggregation cycle so degraded
// periods can be traced back to their sources afterwards.
type SnapshotRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSnapshotRepository(pool PgxPool, tracer trace.Tracer) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, tracer: tracer}
}

func (r *SnapshotRepository) Insert(ctx context.Context, snapshot *domain.MarketSnapshot) error {
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert")
	defer span.End()

	quotes, err := json.Marshal(snapshot.Quotes)
	if err != nil {
		return err
	}
	sentiment, err := json.Marshal(snapshot.Sentiment)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO market_snapshots (fetched_at, is_real_data, sources, quotes, sentiment)
		 VALUES ($1, $2, $3, $4, $5)`,
		snapshot.FetchedAt, snapshot.IsRealData, snapshot.Sources, quotes, sentiment,
	)
	return err
}

// Latest returns the most recent persisted snapshot, or nil when the table
// is empty.
func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.MarketSnapshot, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT fetched_at, is_real_data, sources, quotes, sentiment
		 FROM market_snapshots
		 ORDER BY fetched_at DESC
		 LIMIT 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	snapshot := &domain.MarketSnapshot{}
	var fetchedAt time.Time
	var quotes, sentiment []byte
	if err := rows.Scan(&fetchedAt, &snapshot.IsRealData, &snapshot.Sources, &quotes, &sentiment); err != nil {
		return nil, err
	}
	snapshot.FetchedAt = fetchedAt.UTC()
	if err := json.Unmarshal(quotes, &snapshot.Quotes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sentiment, &snapshot.Sentiment); err != nil {
		return nil, err
	}
	return snapshot, rows.Err()
}

// PruneOlderThan deletes snapshot rows past the retention window.
func (r *SnapshotRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.prune")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM market_snapshots WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
