package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// boardColumns is the column list used for SELECT statements on the boards table.
const boardColumns = `id, name, created_at, updated_at`

// elementColumns is the column list used for SELECT statements on the elements table.
const elementColumns = `id, board_id, name, element_type, data_type,
	display_order, read_only, show_in_summary, options, show_condition,
	created_at, updated_at`

// cardColumns is the column list used for SELECT statements on the cards table.
const cardColumns = `id, board_id, field_values, created_at, updated_at`

// viewColumns is the column list used for SELECT statements on the columns table.
const viewColumns = `id, board_id, name, display_order, conditions,
	sort_spec, group_spec, summary_spec, created_at, updated_at`

// executor abstracts *sql.DB and *sql.Tx so the same query helpers serve
// both the connection pool and open transactions.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateBoard(ctx context.Context, db executor, b *model.Board) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO boards (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		b.ID, b.Name, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func queryGetBoard(ctx context.Context, db executor, id string) (*model.Board, error) {
	row := db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id)
	return scanBoard(row)
}

func queryListBoards(ctx context.Context, db executor) ([]*model.Board, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBoards(rows)
}

func queryUpdateBoard(ctx context.Context, db executor, b *model.Board) error {
	return db.QueryRowContext(ctx, `
		UPDATE boards SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.Name,
	).Scan(&b.UpdatedAt)
}

func queryDeleteBoard(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryCreateElement(ctx context.Context, db executor, e *model.Element) error {
	showCond, err := jsonbValue(e.ShowCondition)
	if err != nil {
		return fmt.Errorf("encode show condition: %w", err)
	}
	opts, err := jsonbValue(e.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO elements (
			id, board_id, name, element_type, data_type,
			display_order, read_only, show_in_summary, options, show_condition,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12
		)`,
		e.ID,
		e.BoardID,
		e.Name,
		string(e.ElementType),
		nullString(string(e.DataType)),
		e.DisplayOrder,
		e.ReadOnly,
		e.ShowInSummary,
		opts,
		showCond,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func queryGetElement(ctx context.Context, db executor, id string) (*model.Element, error) {
	row := db.QueryRowContext(ctx, `SELECT `+elementColumns+` FROM elements WHERE id = $1`, id)
	return scanElement(row)
}

func queryListElements(ctx context.Context, db executor, boardID string) (model.Schema, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+elementColumns+` FROM elements
		WHERE board_id = $1
		ORDER BY display_order ASC, created_at ASC`,
		boardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanElements(rows)
}

func queryUpdateElement(ctx context.Context, db executor, e *model.Element) error {
	showCond, err := jsonbValue(e.ShowCondition)
	if err != nil {
		return fmt.Errorf("encode show condition: %w", err)
	}
	opts, err := jsonbValue(e.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	return db.QueryRowContext(ctx, `
		UPDATE elements SET
			name = $2,
			element_type = $3,
			data_type = $4,
			display_order = $5,
			read_only = $6,
			show_in_summary = $7,
			options = $8,
			show_condition = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID,
		e.Name,
		string(e.ElementType),
		nullString(string(e.DataType)),
		e.DisplayOrder,
		e.ReadOnly,
		e.ShowInSummary,
		opts,
		showCond,
	).Scan(&e.UpdatedAt)
}

func queryDeleteElement(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM elements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryCreateCard(ctx context.Context, db executor, c *model.Card) error {
	values, err := fieldValuesBytes(c.FieldValues)
	if err != nil {
		return fmt.Errorf("encode field values: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO cards (id, board_id, field_values, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.BoardID, values, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func queryGetCard(ctx context.Context, db executor, id string) (*model.Card, error) {
	row := db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row)
}

func queryListCards(ctx context.Context, db executor, filter model.CardFilter) ([]*model.Card, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.BoardID != "" {
		where = append(where, "board_id = "+arg(filter.BoardID))
	}

	// COUNT(*) OVER() returns the unpaged total on every row, so one
	// query serves both the page and the count. Created-at order keeps
	// the engine's stable sort deterministic.
	q := "SELECT COUNT(*) OVER() AS total_count, " + cardColumns + " FROM cards"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at ASC, id ASC"
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + arg(filter.Offset)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	var total int
	for rows.Next() {
		c, t, err := scanCardWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cards: %w", err)
		}
		total = t
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan cards: %w", err)
	}

	return cards, total, nil
}

func queryUpdateCard(ctx context.Context, db executor, c *model.Card) error {
	values, err := fieldValuesBytes(c.FieldValues)
	if err != nil {
		return fmt.Errorf("encode field values: %w", err)
	}
	return db.QueryRowContext(ctx, `
		UPDATE cards SET field_values = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, values,
	).Scan(&c.UpdatedAt)
}

func queryUpdateCardFields(ctx context.Context, db executor, id string, patch model.FieldValues) (*model.Card, error) {
	encoded, err := fieldValuesBytes(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	// jsonb concat applies the patch on top of the stored values;
	// strip_nulls makes a nil patch entry clear the field entirely,
	// so null and absent stay interchangeable. Replaying the same
	// patch is a no-op.
	row := db.QueryRowContext(ctx, `
		UPDATE cards
		SET field_values = jsonb_strip_nulls(field_values || $2::jsonb),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+cardColumns,
		id, encoded,
	)
	return scanCard(row)
}

func queryDeleteCard(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryCreateColumn(ctx context.Context, db executor, col *model.Column) error {
	conditions, err := jsonbValue(col.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	sortSpec, err := jsonbValue(col.Sort)
	if err != nil {
		return fmt.Errorf("encode sort spec: %w", err)
	}
	groupSpec, err := jsonbValue(col.Grouping)
	if err != nil {
		return fmt.Errorf("encode group spec: %w", err)
	}
	summarySpec, err := jsonbValue(col.Summary)
	if err != nil {
		return fmt.Errorf("encode summary spec: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO columns (
			id, board_id, name, display_order, conditions,
			sort_spec, group_spec, summary_spec, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)`,
		col.ID,
		col.BoardID,
		col.Name,
		col.DisplayOrder,
		conditions,
		sortSpec,
		groupSpec,
		summarySpec,
		col.CreatedAt,
		col.UpdatedAt,
	)
	return err
}

func queryGetColumn(ctx context.Context, db executor, id string) (*model.Column, error) {
	row := db.QueryRowContext(ctx, `SELECT `+viewColumns+` FROM columns WHERE id = $1`, id)
	return scanColumn(row)
}

func queryListColumns(ctx context.Context, db executor, boardID string) ([]*model.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+viewColumns+` FROM columns
		WHERE board_id = $1
		ORDER BY display_order ASC, created_at ASC`,
		boardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumns(rows)
}

func queryUpdateColumn(ctx context.Context, db executor, col *model.Column) error {
	conditions, err := jsonbValue(col.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	sortSpec, err := jsonbValue(col.Sort)
	if err != nil {
		return fmt.Errorf("encode sort spec: %w", err)
	}
	groupSpec, err := jsonbValue(col.Grouping)
	if err != nil {
		return fmt.Errorf("encode group spec: %w", err)
	}
	summarySpec, err := jsonbValue(col.Summary)
	if err != nil {
		return fmt.Errorf("encode summary spec: %w", err)
	}
	return db.QueryRowContext(ctx, `
		UPDATE columns SET
			name = $2,
			display_order = $3,
			conditions = $4,
			sort_spec = $5,
			group_spec = $6,
			summary_spec = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		col.ID,
		col.Name,
		col.DisplayOrder,
		conditions,
		sortSpec,
		groupSpec,
		summarySpec,
	).Scan(&col.UpdatedAt)
}

func queryDeleteColumn(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow converts a zero-row DELETE into sql.ErrNoRows.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("rows affected: %w", err)
	case n == 0:
		return sql.ErrNoRows
	}
	return nil
}
