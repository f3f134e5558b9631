// Package store persists triage decision records in a local SQLite
// database so every decision the engine emits stays auditable.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/utils"
)

// ErrNotFound signals that no record exists for the requested ID.
var ErrNotFound = errors.New("decision not found")

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Repository is the SQLite-backed decision audit log.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the audit database at path.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, utils.NewAppError("store.open", "open sqlite database", err)
	}

	repo := &Repository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, utils.NewAppError("store.init", "initialise schema", err)
	}
	return repo, nil
}

func (r *Repository) initSchema() error {
	createDecisionsTable := `
    CREATE TABLE IF NOT EXISTS triage_decisions (
        id TEXT PRIMARY KEY,
        created_at TEXT NOT NULL,
        priority TEXT NOT NULL,
        score INTEGER NOT NULL,
        red_flags INTEGER NOT NULL,
        snapshot TEXT NOT NULL,
        decision TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_triage_decisions_created_at
        ON triage_decisions (created_at DESC);`
	_, err := r.db.Exec(createDecisionsTable)
	return err
}

// SaveDecision appends one record to the audit log.
func (r *Repository) SaveDecision(ctx context.Context, record models.DecisionRecord) error {
	snapshot, err := json.Marshal(record.Snapshot)
	if err != nil {
		return utils.NewAppError("store.save", "encode snapshot", err)
	}
	decision, err := json.Marshal(record.Decision)
	if err != nil {
		return utils.NewAppError("store.save", "encode decision", err)
	}

	redFlags := 0
	if record.Decision.RedFlagsDetected {
		redFlags = 1
	}

	query := `INSERT INTO triage_decisions (id, created_at, priority, score, red_flags, snapshot, decision)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		utils.FormatAuditTime(record.CreatedAt),
		string(record.Decision.Priority),
		record.Decision.Score,
		redFlags,
		string(snapshot),
		string(decision),
	)
	if err != nil {
		return utils.NewAppError("store.save", "insert decision", err)
	}
	return nil
}

// GetDecision fetches one record by ID, returning ErrNotFound when absent.
func (r *Repository) GetDecision(ctx context.Context, id string) (models.DecisionRecord, error) {
	query := `SELECT id, created_at, snapshot, decision FROM triage_decisions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DecisionRecord{}, ErrNotFound
	}
	if err != nil {
		return models.DecisionRecord{}, utils.NewAppError("store.get", "query decision", err)
	}
	return record, nil
}

// ListDecisions returns one page of records, newest first, optionally
// filtered by priority tier.
func (r *Repository) ListDecisions(ctx context.Context, req models.ListDecisionsRequest) (models.ListDecisionsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if req.Priority != "" {
		where = " WHERE priority = ?"
		args = append(args, string(req.Priority))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM triage_decisions" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return models.ListDecisionsResponse{}, utils.NewAppError("store.list", "count decisions", err)
	}

	query := fmt.Sprintf(
		"SELECT id, created_at, snapshot, decision FROM triage_decisions%s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.ListDecisionsResponse{}, utils.NewAppError("store.list", "query decisions", err)
	}
	defer rows.Close()

	resp := models.ListDecisionsResponse{Total: total}
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return models.ListDecisionsResponse{}, utils.NewAppError("store.list", "scan decision", err)
		}
		resp.Decisions = append(resp.Decisions, record)
	}
	if err := rows.Err(); err != nil {
		return models.ListDecisionsResponse{}, utils.NewAppError("store.list", "iterate decisions", err)
	}
	return resp, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func scanRecord(scan func(dest ...any) error) (models.DecisionRecord, error) {
	var (
		record    models.DecisionRecord
		createdAt string
		snapshot  string
		decision  string
	)
	if err := scan(&record.ID, &createdAt, &snapshot, &decision); err != nil {
		return models.DecisionRecord{}, err
	}

	ts, err := utils.ParseAuditTime(createdAt)
	if err != nil {
		return models.DecisionRecord{}, err
	}
	record.CreatedAt = ts

	if err := json.Unmarshal([]byte(snapshot), &record.Snapshot); err != nil {
		return models.DecisionRecord{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(decision), &record.Decision); err != nil {
		return models.DecisionRecord{}, fmt.Errorf("decode decision: %w", err)
	}
	return record, nil
}
