// Package postgres persists boards, columns, elements, and cards in
// PostgreSQL. The schema is managed through embedded migrations applied
// on startup.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connection pool sizing for the cardwall server. Board evaluation fans
// several queries out per request, so the pool is kept comfortably above
// the expected handler concurrency.
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// PostgresStore is the production store.Store implementation.
type PostgresStore struct {
	db *sql.DB
}

var _ store.Store = (*PostgresStore)(nil)

// New connects to the database at the given URL and brings the schema up
// to date with the embedded migrations before returning.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateBoard(ctx context.Context, board *model.Board) error {
	return queryCreateBoard(ctx, s.db, board)
}

func (s *PostgresStore) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	return queryGetBoard(ctx, s.db, id)
}

func (s *PostgresStore) ListBoards(ctx context.Context) ([]*model.Board, error) {
	return queryListBoards(ctx, s.db)
}

func (s *PostgresStore) UpdateBoard(ctx context.Context, board *model.Board) error {
	return queryUpdateBoard(ctx, s.db, board)
}

func (s *PostgresStore) DeleteBoard(ctx context.Context, id string) error {
	return queryDeleteBoard(ctx, s.db, id)
}

func (s *PostgresStore) CreateElement(ctx context.Context, element *model.Element) error {
	return queryCreateElement(ctx, s.db, element)
}

func (s *PostgresStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	return queryGetElement(ctx, s.db, id)
}

func (s *PostgresStore) ListElements(ctx context.Context, boardID string) (model.Schema, error) {
	return queryListElements(ctx, s.db, boardID)
}

func (s *PostgresStore) UpdateElement(ctx context.Context, element *model.Element) error {
	return queryUpdateElement(ctx, s.db, element)
}

func (s *PostgresStore) DeleteElement(ctx context.Context, id string) error {
	return queryDeleteElement(ctx, s.db, id)
}

func (s *PostgresStore) CreateCard(ctx context.Context, card *model.Card) error {
	return queryCreateCard(ctx, s.db, card)
}

func (s *PostgresStore) GetCard(ctx context.Context, id string) (*model.Card, error) {
	return queryGetCard(ctx, s.db, id)
}

func (s *PostgresStore) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, int, error) {
	return queryListCards(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateCard(ctx context.Context, card *model.Card) error {
	return queryUpdateCard(ctx, s.db, card)
}

func (s *PostgresStore) UpdateCardFields(ctx context.Context, id string, patch model.FieldValues) (*model.Card, error) {
	return queryUpdateCardFields(ctx, s.db, id, patch)
}

func (s *PostgresStore) DeleteCard(ctx context.Context, id string) error {
	return queryDeleteCard(ctx, s.db, id)
}

func (s *PostgresStore) CreateColumn(ctx context.Context, column *model.Column) error {
	return queryCreateColumn(ctx, s.db, column)
}

func (s *PostgresStore) GetColumn(ctx context.Context, id string) (*model.Column, error) {
	return queryGetColumn(ctx, s.db, id)
}

func (s *PostgresStore) ListColumns(ctx context.Context, boardID string) ([]*model.Column, error) {
	return queryListColumns(ctx, s.db, boardID)
}

func (s *PostgresStore) UpdateColumn(ctx context.Context, column *model.Column) error {
	return queryUpdateColumn(ctx, s.db, column)
}

func (s *PostgresStore) DeleteColumn(ctx context.Context, id string) error {
	return queryDeleteColumn(ctx, s.db, id)
}

// RunInTransaction runs fn against a store view bound to a single
// transaction. The transaction commits when fn returns nil and rolls
// back when it returns an error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore routes every query through a *sql.Tx instead of the pool.
type txStore struct {
	tx *sql.Tx
}

var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateBoard(ctx context.Context, board *model.Board) error {
	return queryCreateBoard(ctx, s.tx, board)
}

func (s *txStore) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	return queryGetBoard(ctx, s.tx, id)
}

func (s *txStore) ListBoards(ctx context.Context) ([]*model.Board, error) {
	return queryListBoards(ctx, s.tx)
}

func (s *txStore) UpdateBoard(ctx context.Context, board *model.Board) error {
	return queryUpdateBoard(ctx, s.tx, board)
}

func (s *txStore) DeleteBoard(ctx context.Context, id string) error {
	return queryDeleteBoard(ctx, s.tx, id)
}

func (s *txStore) CreateElement(ctx context.Context, element *model.Element) error {
	return queryCreateElement(ctx, s.tx, element)
}

func (s *txStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	return queryGetElement(ctx, s.tx, id)
}

func (s *txStore) ListElements(ctx context.Context, boardID string) (model.Schema, error) {
	return queryListElements(ctx, s.tx, boardID)
}

func (s *txStore) UpdateElement(ctx context.Context, element *model.Element) error {
	return queryUpdateElement(ctx, s.tx, element)
}

func (s *txStore) DeleteElement(ctx context.Context, id string) error {
	return queryDeleteElement(ctx, s.tx, id)
}

func (s *txStore) CreateCard(ctx context.Context, card *model.Card) error {
	return queryCreateCard(ctx, s.tx, card)
}

func (s *txStore) GetCard(ctx context.Context, id string) (*model.Card, error) {
	return queryGetCard(ctx, s.tx, id)
}

func (s *txStore) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, int, error) {
	return queryListCards(ctx, s.tx, filter)
}

func (s *txStore) UpdateCard(ctx context.Context, card *model.Card) error {
	return queryUpdateCard(ctx, s.tx, card)
}

func (s *txStore) UpdateCardFields(ctx context.Context, id string, patch model.FieldValues) (*model.Card, error) {
	return queryUpdateCardFields(ctx, s.tx, id, patch)
}

func (s *txStore) DeleteCard(ctx context.Context, id string) error {
	return queryDeleteCard(ctx, s.tx, id)
}

func (s *txStore) CreateColumn(ctx context.Context, column *model.Column) error {
	return queryCreateColumn(ctx, s.tx, column)
}

func (s *txStore) GetColumn(ctx context.Context, id string) (*model.Column, error) {
	return queryGetColumn(ctx, s.tx, id)
}

func (s *txStore) ListColumns(ctx context.Context, boardID string) ([]*model.Column, error) {
	return queryListColumns(ctx, s.tx, boardID)
}

func (s *txStore) UpdateColumn(ctx context.Context, column *model.Column) error {
	return queryUpdateColumn(ctx, s.tx, column)
}

func (s *txStore) DeleteColumn(ctx context.Context, id string) error {
	return queryDeleteColumn(ctx, s.tx, id)
}

// Nested RunInTransaction calls stay on the already-open transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// The parent PostgresStore owns the connection, so Close does nothing here.
func (s *txStore) Close() error {
	return nil
}
