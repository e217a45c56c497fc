package historyrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshot_history (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	qout        DOUBLE PRECISION NOT NULL,
	qloss       DOUBLE PRECISION NOT NULL,
	efficiency  DOUBLE PRECISION NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshot_history_recorded_at_idx ON snapshot_history (recorded_at DESC);
`

// PostgresRepository implements dashboard.HistoryRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InitSchema creates the history table when missing.
func (r *PostgresRepository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("init snapshot_history schema: %w", err)
	}
	return nil
}

// Append inserts one history row.
func (r *PostgresRepository) Append(ctx context.Context, entry dashboard.HistoryEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO snapshot_history (id, source, qout, qloss, efficiency, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, entry.ID, string(entry.Source), entry.Snapshot.Qout, entry.Snapshot.Qloss, entry.Snapshot.Efficiency, entry.RecordedAt)
	return err
}

// Recent lists the newest rows first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]dashboard.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, source, qout, qloss, efficiency, recorded_at
		FROM snapshot_history
		ORDER BY recorded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryEntry(row rowScanner) (dashboard.HistoryEntry, error) {
	var (
		entry  dashboard.HistoryEntry
		source string
	)
	if err := row.Scan(&entry.ID, &source, &entry.Snapshot.Qout, &entry.Snapshot.Qloss, &entry.Snapshot.Efficiency, &entry.RecordedAt); err != nil {
		return dashboard.HistoryEntry{}, err
	}
	entry.Source = dashboard.Source(source)
	entry.RecordedAt = entry.RecordedAt.UTC()
	return entry, nil
}

var _ dashboard.HistoryRepository = (*PostgresRepository)(nil)
