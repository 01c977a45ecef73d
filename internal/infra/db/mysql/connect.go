package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the prompts/runs tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prompts (
  id VARCHAR(36) PRIMARY KEY,
  text TEXT NOT NULL,
  created_at DATETIME NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS runs (
  id VARCHAR(36) PRIMARY KEY,
  prompt_id VARCHAR(36) NOT NULL,
  document_filename VARCHAR(512) NOT NULL,
  model VARCHAR(128) NOT NULL,
  output LONGTEXT NULL,
  status VARCHAR(16) NOT NULL DEFAULT 'pending',
  error_message TEXT NULL,
  duration_ms BIGINT NULL,
  created_at DATETIME NOT NULL,
  KEY idx_runs_document (document_filename),
  CONSTRAINT fk_runs_prompt FOREIGN KEY (prompt_id) REFERENCES prompts(id)
)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
