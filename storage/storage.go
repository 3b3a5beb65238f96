package storage

import (
	"log/slog"
	"time"

	"pngme/models"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

type History interface {
	RecordOperation(op *models.Operation) (*models.Operation, error)
	ListOperations(filePath string, limit int) ([]models.Operation, error)
	Close() error
}

type ProviderSQL struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (p ProviderSQL) RecordOperation(op *models.Operation) (*models.Operation, error) {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO operations (op, file_path, chunk_type, data_length, crc, sealed, created_at)
        VALUES (:op, :file_path, :chunk_type, :data_length, :crc, :sealed, :created_at)
        RETURNING *;`
	stmt, err := p.db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var resp models.Operation
	if err := stmt.Get(&resp, op); err != nil {
		return nil, err
	}
	p.logger.Debug("recorded operation", "id", resp.ID, "op", resp.Op, "file", resp.FilePath)
	return &resp, nil
}

// ListOperations returns newest first; an empty filePath lists every file and
// a limit below 1 means no limit.
func (p ProviderSQL) ListOperations(filePath string, limit int) ([]models.Operation, error) {
	if limit < 1 {
		limit = -1
	}
	resp := []models.Operation{}
	var err error
	if filePath == "" {
		err = p.db.Select(&resp, "SELECT * FROM operations ORDER BY id DESC LIMIT $1;", limit)
	} else {
		err = p.db.Select(&resp, "SELECT * FROM operations WHERE file_path = $1 ORDER BY id DESC LIMIT $2;", filePath, limit)
	}
	return resp, err
}

func (p ProviderSQL) Close() error {
	return p.db.Close()
}

func NewProviderSQL(dbPath string, logger *slog.Logger) (History, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer and :memory: is per connection
	db.SetMaxOpenConns(1)
	var version string
	if err := db.Get(&version, "select sqlite_version()"); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened history db", "path", dbPath, "sqlite", version)
	p := &ProviderSQL{db: db, logger: logger}
	if err := p.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}
