package historyrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

const clickhouseSchema = `
CREATE TABLE IF NOT EXISTS snapshot_history (
	id          String,
	source      LowCardinality(String),
	qout        Float64,
	qloss       Float64,
	efficiency  Float64,
	recorded_at DateTime64(3, 'UTC')
) ENGINE = MergeTree()
ORDER BY recorded_at
`

// ClickHouseOptions configures the ClickHouse connection.
type ClickHouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseRepository stores snapshot history in a MergeTree table.
type ClickHouseRepository struct {
	conn driver.Conn
}

// OpenClickHouse connects, pings and prepares the history table.
func OpenClickHouse(ctx context.Context, opts ClickHouseOptions) (*ClickHouseRepository, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	repo := NewClickHouseRepository(conn)
	if err := repo.InitSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return repo, nil
}

// NewClickHouseRepository wraps an existing connection.
func NewClickHouseRepository(conn driver.Conn) *ClickHouseRepository {
	return &ClickHouseRepository{conn: conn}
}

// InitSchema creates the history table when missing.
func (r *ClickHouseRepository) InitSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, clickhouseSchema); err != nil {
		return fmt.Errorf("init snapshot_history table: %w", err)
	}
	return nil
}

// Append inserts one history row.
func (r *ClickHouseRepository) Append(ctx context.Context, entry dashboard.HistoryEntry) error {
	err := r.conn.Exec(ctx, `
		INSERT INTO snapshot_history (id, source, qout, qloss, efficiency, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Source), entry.Snapshot.Qout, entry.Snapshot.Qloss, entry.Snapshot.Efficiency, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot history: %w", err)
	}
	return nil
}

// Recent lists the newest rows first.
func (r *ClickHouseRepository) Recent(ctx context.Context, limit int) ([]dashboard.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.conn.Query(ctx, `
		SELECT id, source, qout, qloss, efficiency, recorded_at
		FROM snapshot_history
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
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

// Close releases the connection.
func (r *ClickHouseRepository) Close() error {
	return r.conn.Close()
}

var _ dashboard.HistoryRepository = (*ClickHouseRepository)(nil)
