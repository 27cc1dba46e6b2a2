package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"zenith/internal/game"
	"zenith/internal/logx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLRepo stores compressed snapshots in a table, keeping the newest few,
// and quest claims keyed by claim key.
type SQLRepo struct {
	dialect Dialect
	db      *sql.DB
	keep    int
}

// OpenSQL connects, pings and migrates. For sqlite target is a file path; for
// postgres it is a DSN, falling back to DATABASE_URL.
func OpenSQL(dialect Dialect, target string, keep int, logger *log.Logger) (*SQLRepo, error) {
	var driverName string
	target = strings.TrimSpace(target)
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
		if target == "" {
			target = filepath.Join("data", "zenith.db")
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	case DialectPostgres:
		driverName = "pgx"
		if target == "" {
			target = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if target == "" {
			return nil, errors.New("postgres storage requires a dsn or DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if keep <= 0 {
		keep = 1
	}

	db, err := sql.Open(driverName, target)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	repo := &SQLRepo{dialect: dialect, db: db, keep: keep}
	if err := repo.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logx.Info(logger, "store_open", map[string]any{"dialect": string(dialect), "keep_snapshots": keep})
	return repo, nil
}

func (r *SQLRepo) bind(pos int) string {
	if r.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (r *SQLRepo) insertQuery(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = r.bind(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(ph, ", "),
	)
}

func (r *SQLRepo) applyMigrations(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at BIGINT NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema migrations: %w", err)
	}
	rows.Close()

	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", r.dialect))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		base := filepath.Base(file)
		if applied[base] {
			continue
		}
		sqlBytes, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		q := r.insertQuery("schema_migrations", []string{"version", "applied_at"})
		if _, err := tx.ExecContext(ctx, q, base, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func (r *SQLRepo) Load(ctx context.Context) (game.GameState, bool, error) {
	var (
		blob []byte
		sum  string
	)
	err := r.db.QueryRowContext(ctx, "SELECT blob, checksum FROM snapshots ORDER BY id DESC LIMIT 1").Scan(&blob, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return game.InitialState(), false, nil
	}
	if err != nil {
		return game.GameState{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	s, err := Decode(blob, sum)
	if err != nil {
		return game.GameState{}, false, err
	}
	return s, true, nil
}

// Save appends a snapshot and prunes all but the newest keep rows in the
// same transaction.
func (r *SQLRepo) Save(ctx context.Context, s game.GameState) error {
	blob, sum, err := Encode(s)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if err := r.insertSnapshot(ctx, tx, blob, sum); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// Claim inserts key and, only when the key is new, the granted snapshot. Both
// land in one transaction.
func (r *SQLRepo) Claim(ctx context.Context, key string, granted game.GameState) (bool, error) {
	blob, sum, err := Encode(granted)
	if err != nil {
		return false, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin claim tx: %w", err)
	}
	q := r.insertQuery("quest_claims", []string{"claim_key", "claimed_at"}) + " ON CONFLICT (claim_key) DO NOTHING"
	res, err := tx.ExecContext(ctx, q, key, time.Now().UTC().UnixMilli())
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	if n != 1 {
		_ = tx.Rollback()
		return false, nil
	}
	if err := r.insertSnapshot(ctx, tx, blob, sum); err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit claim %s: %w", key, err)
	}
	return true, nil
}

func (r *SQLRepo) insertSnapshot(ctx context.Context, tx *sql.Tx, blob []byte, sum string) error {
	q := r.insertQuery("snapshots", []string{"saved_at", "checksum", "blob"})
	if _, err := tx.ExecContext(ctx, q, time.Now().UTC().UnixMilli(), sum, blob); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	prune := fmt.Sprintf(
		"DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT %s)",
		r.bind(1),
	)
	if _, err := tx.ExecContext(ctx, prune, r.keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// SnapshotCount reports how many snapshots are retained.
func (r *SQLRepo) SnapshotCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

func (r *SQLRepo) Close() error { return r.db.Close() }
