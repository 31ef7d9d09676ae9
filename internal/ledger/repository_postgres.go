package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gastropos/internal/cash"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert a settled payment
func (r *PostgresRepository) Record(ctx context.Context, e *Entry) error {
	declared, err := json.Marshal(e.Declared)
	if err != nil {
		return err
	}
	returned, err := json.Marshal(e.Returned)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO cash_payments (
			id,
			order_id,
			split,
			invoice_id,
			cashier_id,
			amount_due,
			received,
			change_amount,
			declared,
			returned,
			created_at
		)
		VALUES ($1::uuid, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9::jsonb, $10::jsonb, $11)
	`,
		e.ID.String(),
		e.OrderID,
		e.Split,
		e.InvoiceID,
		e.CashierID,
		e.AmountDue.String(),
		e.Received.String(),
		int64(e.Change),
		string(declared),
		string(returned),
		e.CreatedAt,
	)

	return err
}

// Payments in [from, to), oldest first
func (r *PostgresRepository) ListBetween(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id::text,
			order_id,
			split,
			invoice_id,
			cashier_id,
			amount_due::text,
			received::text,
			change_amount,
			declared,
			returned,
			created_at
		FROM cash_payments
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                  Entry
			id, due, received  string
			change             int64
			declared, returned []byte
		)

		if err := rows.Scan(
			&id,
			&e.OrderID,
			&e.Split,
			&e.InvoiceID,
			&e.CashierID,
			&due,
			&received,
			&change,
			&declared,
			&returned,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("payment id %q: %w", id, err)
		}
		if e.AmountDue, err = decimal.NewFromString(due); err != nil {
			return nil, err
		}
		if e.Received, err = decimal.NewFromString(received); err != nil {
			return nil, err
		}
		e.Change = cash.Amount(change)
		if err := json.Unmarshal(declared, &e.Declared); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(returned, &e.Returned); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
