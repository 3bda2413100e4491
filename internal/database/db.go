package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hbomb79/Marquee/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	sqldblogger "github.com/simukti/sqldb-logger"
)

const (
	SqlDialect          = "postgres"
	SqlConnectionString = "host=%s user=%s password=%s dbname=%s port=%s sslmode=disable"
	migrationsDir       = "migrations"
)

var (
	//go:embed migrations/*.sql
	migrations embed.FS

	dbLogger = logger.Get("DB")

	ErrNotConnected = errors.New("database manager has not yet connected")
)

type (
	SqlLogger struct {
		logger logger.Logger
	}

	// Queryable is the subset of sqlx behaviour shared by
	// both *sqlx.DB and *sqlx.Tx, allowing stores to be
	// agnostic to whether they're running inside a transaction.
	Queryable interface {
		sqlx.QueryerContext
		sqlx.ExecerContext
		SelectContext(ctx context.Context, dest any, query string, args ...any) error
		GetContext(ctx context.Context, dest any, query string, args ...any) error
		Rebind(query string) string
	}

	Manager interface {
		Connect(context.Context, DatabaseConfig) error
		ExecuteMigrations() error
		ResetMigrations() error
		GetSqlxDb() *sqlx.DB
		WrapTx(context.Context, func(*sqlx.Tx) error) error
		Close() error
	}

	manager struct {
		rawDb *sql.DB
		db    *sqlx.DB
	}
)

func New() *manager {
	return &manager{}
}

// Connect opens the connection to the PostgreSQL server described by the config,
// retrying the initial ping a number of times to allow for a server which
// is still starting up. Once connected, all pending migrations are
// executed against the database.
func (db *manager) Connect(ctx context.Context, config DatabaseConfig) error {
	dsn := fmt.Sprintf(SqlConnectionString, config.Host, config.User, config.Password, config.Name, config.Port)
	opened, err := sql.Open(SqlDialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	raw := sqldblogger.OpenDriver(dsn, opened.Driver(), &SqlLogger{dbLogger})
	_ = opened.Close()

	attempts := config.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := raw.PingContext(ctx)
		if err == nil {
			break
		}

		if attempt >= attempts {
			dbLogger.Emit(logger.ERROR, "All attempts FAILED!\n")
			_ = raw.Close()
			return fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}

		dbLogger.Emit(logger.WARNING, "Attempt (%v/%v) failed... Retrying in %s\n", attempt, attempts, config.RetryInterval)
		select {
		case <-ctx.Done():
			_ = raw.Close()
			return ctx.Err()
		case <-time.After(config.RetryInterval):
		}
	}

	db.rawDb = raw
	db.db = sqlx.NewDb(raw, SqlDialect)

	if err := db.ExecuteMigrations(); err != nil {
		return err
	}

	dbLogger.Emit(logger.SUCCESS, "Database connection complete!\n")
	return nil
}

// ExecuteMigrations uses the comp-time embedded SQL migrations (found in the 'migrations'
// dir in this package) and runs them against the current DB instance.
//
// Note that this method must only be called following a successful DB connection.
func (db *manager) ExecuteMigrations() error {
	if db.rawDb == nil {
		return fmt.Errorf("cannot execute migrations: %w", ErrNotConnected)
	}

	if err := configureGoose(); err != nil {
		return err
	}

	dbLogger.Emit(logger.INFO, "Checking for pending DB migrations...\n")
	if err := goose.Up(db.rawDb, migrationsDir); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}

	dbLogger.Emit(logger.SUCCESS, "DB Goose migration complete!\n")
	return nil
}

// ResetMigrations rolls back every migration, leaving an empty
// schema behind. Mainly useful for tests which need to start from
// a clean slate.
func (db *manager) ResetMigrations() error {
	if db.rawDb == nil {
		return fmt.Errorf("cannot reset migrations: %w", ErrNotConnected)
	}

	if err := configureGoose(); err != nil {
		return err
	}

	if err := goose.Reset(db.rawDb, migrationsDir); err != nil {
		return fmt.Errorf("failed to reset DB: %w", err)
	}

	return nil
}

// GetSqlxDb returns the sqlx database connection if
// one has been opened using 'Connect'. Otherwise, nil is returned
func (db *manager) GetSqlxDb() *sqlx.DB {
	return db.db
}

// WrapTx is a convinience method around the top-level WrapTx, which simply
// uses the managers DB instance as the first argument.
func (db *manager) WrapTx(ctx context.Context, f func(tx *sqlx.Tx) error) error {
	if db.db == nil {
		return ErrNotConnected
	}

	return WrapTx(ctx, db.db, f)
}

// Close releases the underlying connection pool. It is safe
// to call Close on a manager which never connected.
func (db *manager) Close() error {
	if db.db == nil {
		return nil
	}

	dbLogger.Emit(logger.STOP, "Closing database connection\n")
	err := db.db.Close()
	db.db = nil
	db.rawDb = nil

	return err
}

func configureGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(dbLogger)
	if err := goose.SetDialect(SqlDialect); err != nil {
		return fmt.Errorf("failed to set dialect for DB migration: %w", err)
	}

	return nil
}

func (l *SqlLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	template := "%s - %v\n"
	switch level {
	case sqldblogger.LevelTrace:
		l.logger.Verbosef(template, msg, data)
	case sqldblogger.LevelDebug, sqldblogger.LevelInfo:
		duration := data["duration"]
		query, ok := data["query"]
		if ok {
			l.logger.Debugf("%s [%.2fms] -- %s\n", msg, duration, query)
		} else {
			l.logger.Debugf("%s [%.2fms]\n", msg, duration)
		}
	case sqldblogger.LevelError:
		l.logger.Errorf(template, msg, data)
	}
}

// WrapTx starts a transaction against the provided DB, and then calls the user
// provided function. If this function errors, the transaction is rolled back - otherwise
// the transaction is committed.
func WrapTx(ctx context.Context, db *sqlx.DB, f func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		dbLogger.Errorf("Transaction failed... rolling back. Error: %s\n", err.Error())
		return err
	}

	return tx.Commit()
}
