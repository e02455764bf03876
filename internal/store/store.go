package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

const ddl = `
CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	order_number   TEXT NOT NULL DEFAULT '',
	order_date     TEXT NOT NULL DEFAULT '',
	source_path    TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'QUEUED',
	payload        TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sections (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id  TEXT NOT NULL REFERENCES orders(id),
	seq       INTEGER NOT NULL,
	content   TEXT NOT NULL,
	is_header INTEGER NOT NULL,
	grp       TEXT NOT NULL,
	priority  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sections_order ON sections(order_id, seq);
CREATE INDEX IF NOT EXISTS idx_orders_number ON orders(order_number);
`

// Store persists extracted orders and their analysis sections in sqlite.
type Store struct {
	db     *sql.DB
	schema map[string]any
	logger *slog.Logger
}

// Open opens (creating if needed) the sqlite database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "failed to open database", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, common.NewAppError("STORE_MIGRATE", "failed to apply schema", err)
	}
	logger.Info("store.open", "path", path)
	return &Store{db: db, schema: BuildOrderJSONSchema(), logger: logger}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveOrder writes the order payload as JSON. Schema violations in the
// payload are logged as warnings but do not block the write.
func (s *Store) SaveOrder(ctx context.Context, o *entity.Order) error {
	if o == nil {
		return common.NewAppError("INVALID_ARGUMENT", "order is nil", common.ErrInvalidInput)
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return common.NewAppError("STORE_ENCODE", "failed to encode order", err)
	}
	if err := ValidateJSONAgainstSchema(s.schema, payload); err != nil {
		s.logger.Warn("store.order.schema_mismatch", "order_id", o.ID.String(), "error", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, order_number, order_date, source_path, status, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   order_number = excluded.order_number,
		   order_date   = excluded.order_date,
		   source_path  = excluded.source_path,
		   payload      = excluded.payload`,
		o.ID.String(), o.OrderNumber, o.OrderDate, o.SourcePath, string(constants.JobStatusQueued),
		string(payload), o.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return common.NewAppError("STORE_WRITE", "failed to save order", err)
	}
	s.logger.Info("store.order.saved", "order_id", o.ID.String(), "order_number", o.OrderNumber)
	return nil
}

// SetStatus records where an order's processing job got to.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return common.NewAppError("STORE_WRITE", "failed to update status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("ORDER_NOT_FOUND", "order not found", common.ErrNotFound)
	}
	s.logger.Info("store.order.status", "order_id", id.String(), "status", string(status))
	return nil
}

// GetStatus loads the stored job status of an order.
func (s *Store) GetStatus(ctx context.Context, id uuid.UUID) (constants.JobStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id.String()).Scan(&status)
	if err == sql.ErrNoRows {
		return "", common.NewAppError("ORDER_NOT_FOUND", "order not found", common.ErrNotFound)
	}
	if err != nil {
		return "", common.NewAppError("STORE_READ", "failed to load status", err)
	}
	return constants.JobStatus(status), nil
}

// SaveSections replaces all stored sections for an order.
func (s *Store) SaveSections(ctx context.Context, orderID uuid.UUID, sections []entity.Section) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("STORE_TX", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE order_id = ?`, orderID.String()); err != nil {
		return common.NewAppError("STORE_WRITE", "failed to clear sections", err)
	}
	for i, sec := range sections {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sections (order_id, seq, content, is_header, grp, priority) VALUES (?, ?, ?, ?, ?, ?)`,
			orderID.String(), i, sec.Content, boolToInt(sec.IsHeader), string(sec.Group), sec.Priority)
		if err != nil {
			return common.NewAppError("STORE_WRITE", "failed to save section", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.NewAppError("STORE_TX", "failed to commit sections", err)
	}
	s.logger.Info("store.sections.saved", "order_id", orderID.String(), "count", len(sections))
	return nil
}

// GetOrder loads one order by id.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM orders WHERE id = ?`, id.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, common.NewAppError("ORDER_NOT_FOUND", "order not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("STORE_READ", "failed to load order", err)
	}
	var o entity.Order
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return nil, common.NewAppError("STORE_DECODE", "failed to decode order payload", err)
	}
	return &o, nil
}

// GetSections loads the stored sections of an order in display order.
func (s *Store) GetSections(ctx context.Context, orderID uuid.UUID) ([]entity.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, is_header, grp, priority FROM sections WHERE order_id = ? ORDER BY seq`, orderID.String())
	if err != nil {
		return nil, common.NewAppError("STORE_READ", "failed to load sections", err)
	}
	defer rows.Close()

	var out []entity.Section
	for rows.Next() {
		var sec entity.Section
		var isHeader int
		var group string
		if err := rows.Scan(&sec.Content, &isHeader, &group, &sec.Priority); err != nil {
			return nil, common.NewAppError("STORE_READ", "failed to scan section", err)
		}
		sec.IsHeader = isHeader != 0
		sec.Group = entity.SectionGroup(group)
		out = append(out, sec)
	}
	return out, rows.Err()
}

// ListOrders returns stored orders, newest first.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM orders ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.NewAppError("STORE_READ", "failed to list orders", err)
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, common.NewAppError("STORE_READ", "failed to scan order", err)
		}
		var o entity.Order
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, common.NewAppError("STORE_DECODE", "failed to decode order payload", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
