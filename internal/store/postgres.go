package store

import (
	"context"
	"embed"
	"fmt"

	"classdraw/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	selectUsers   = `SELECT id, student_id, name, is_admin FROM users ORDER BY position`
	selectPrizes  = `SELECT id, name, description, level, remaining FROM prizes ORDER BY position`
	selectRecords = `SELECT id, user_id, student_id, user_name, prize_id, prize_name, prize_level, drawn_at, won FROM lottery_records ORDER BY position`

	insertUser = `INSERT INTO users (position, id, student_id, name, is_admin)
		VALUES (:position, :id, :student_id, :name, :is_admin)`
	insertPrize = `INSERT INTO prizes (position, id, name, description, level, remaining)
		VALUES (:position, :id, :name, :description, :level, :remaining)`
	insertRecord = `INSERT INTO lottery_records (position, id, user_id, student_id, user_name, prize_id, prize_name, prize_level, drawn_at, won)
		VALUES (:position, :id, :user_id, :student_id, :user_name, :prize_id, :prize_name, :prize_level, :drawn_at, :won)`
)

type userRow struct {
	Position int `db:"position"`
	models.User
}

type prizeRow struct {
	Position int `db:"position"`
	models.Prize
}

type recordRow struct {
	Position int `db:"position"`
	models.LotteryRecord
}

// PostgresStore keeps each collection in its own table. A save replaces the
// table contents inside one transaction; position preserves collection order.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres opens a connection pool. It does not contact the server.
func OpenPostgres(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewMigrator builds a migrate instance over the embedded schema files.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations. An up-to-date schema is not an error.
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *PostgresStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := p.db.SelectContext(ctx, &users, selectUsers); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

func (p *PostgresStore) SaveUsers(ctx context.Context, users []models.User) error {
	rows := make([]interface{}, len(users))
	for i, u := range users {
		rows[i] = userRow{Position: i, User: u}
	}
	return p.replace(ctx, "users", insertUser, rows)
}

func (p *PostgresStore) LoadPrizes(ctx context.Context) ([]models.Prize, error) {
	var prizes []models.Prize
	if err := p.db.SelectContext(ctx, &prizes, selectPrizes); err != nil {
		return nil, fmt.Errorf("failed to load prizes: %w", err)
	}
	return prizes, nil
}

func (p *PostgresStore) SavePrizes(ctx context.Context, prizes []models.Prize) error {
	rows := make([]interface{}, len(prizes))
	for i, pr := range prizes {
		rows[i] = prizeRow{Position: i, Prize: pr}
	}
	return p.replace(ctx, "prizes", insertPrize, rows)
}

func (p *PostgresStore) LoadRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	var records []models.LotteryRecord
	if err := p.db.SelectContext(ctx, &records, selectRecords); err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return records, nil
}

func (p *PostgresStore) SaveRecords(ctx context.Context, records []models.LotteryRecord) error {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		rows[i] = recordRow{Position: i, LotteryRecord: r}
	}
	return p.replace(ctx, "lottery_records", insertRecord, rows)
}

// replace swaps the whole table for rows in a single transaction.
func (p *PostgresStore) replace(ctx context.Context, table, insert string, rows []interface{}) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ EntityStore = (*PostgresStore)(nil)
