package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const selectRecord = `
	SELECT
		order_id,
		discount::text,
		split,
		portions,
		created_at,
		updated_at
	FROM cash_backups
`

func (r *PostgresRepository) Save(ctx context.Context, record *Record) error {
	portions, err := json.Marshal(record.Portions)
	if err != nil {
		return fmt.Errorf("encode portions: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO cash_backups (
			order_id,
			discount,
			split,
			portions,
			created_at,
			updated_at
		)
		VALUES ($1, $2::numeric, $3, $4::jsonb, $5, $6)
		ON CONFLICT (order_id)
		DO UPDATE SET
			discount = EXCLUDED.discount,
			split = EXCLUDED.split,
			portions = EXCLUDED.portions,
			updated_at = EXCLUDED.updated_at
	`,
		record.OrderID,
		record.Discount.String(),
		record.Split,
		string(portions),
		record.CreatedAt,
		record.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, orderID string) (*Record, error) {
	row := r.db.QueryRow(ctx, selectRecord+`WHERE order_id = $1`, orderID)
	return scanRecord(row)
}

func (r *PostgresRepository) Update(
	ctx context.Context,
	orderID string,
	fn func(*Record) error,
) (*Record, error) {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	record, err := scanRecord(tx.QueryRow(ctx, selectRecord+`WHERE order_id = $1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, err
	}

	if err := fn(record); err != nil {
		return nil, err
	}

	portions, err := json.Marshal(record.Portions)
	if err != nil {
		return nil, fmt.Errorf("encode portions: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE cash_backups
		SET portions = $1::jsonb,
			updated_at = $2
		WHERE order_id = $3
	`, string(portions), record.UpdatedAt, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, orderID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cash_backups WHERE order_id = $1`, orderID)
	return err
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cash_backups WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec      Record
		discount string
		portions []byte
	)

	err := row.Scan(
		&rec.OrderID,
		&discount,
		&rec.Split,
		&portions,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if rec.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("decode discount: %w", err)
	}
	if err := json.Unmarshal(portions, &rec.Portions); err != nil {
		return nil, fmt.Errorf("decode portions: %w", err)
	}

	return &rec, nil
}
