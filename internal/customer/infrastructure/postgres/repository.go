package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/shopease/internal/customer/domain"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
	"github.com/dmehra2102/shopease/internal/platform/postgres"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const customerColumns = `id, user_id, phone, birth_date, membership`

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var c domain.Customer
	var membership string
	err := row.Scan(&c.ID, &c.UserID, &c.Phone, &c.BirthDate, &membership)
	c.Membership = domain.Membership(membership)
	return c, err
}

// GetOrCreate returns the customer for userID, inserting a default profile if
// none exists. Concurrent first calls for the same user converge on one row.
// It runs on q so callers can use it inside their own transaction.
func GetOrCreate(ctx context.Context, q postgres.Querier, userID string) (domain.Customer, error) {
	if _, err := q.Exec(ctx, `
		INSERT INTO customers (user_id) VALUES ($1)
		ON CONFLICT ON CONSTRAINT customers_user_id_key DO NOTHING`, userID); err != nil {
		return domain.Customer{}, err
	}
	return scanCustomer(q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id=$1`, userID))
}

func (r *Repository) GetOrCreate(ctx context.Context, userID string) (domain.Customer, error) {
	return GetOrCreate(ctx, r.pool, userID)
}

func (r *Repository) UpdateByUser(ctx context.Context, userID string, p domain.Profile) (domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `
		INSERT INTO customers (user_id, phone, birth_date, membership) VALUES ($1,$2,$3,$4)
		ON CONFLICT ON CONSTRAINT customers_user_id_key
		DO UPDATE SET phone=EXCLUDED.phone, birth_date=EXCLUDED.birth_date, membership=EXCLUDED.membership
		RETURNING `+customerColumns, userID, p.Phone, p.BirthDate, string(p.Membership)))
	if err != nil {
		return domain.Customer{}, err
	}
	r.log.InfoContext(ctx, "customer profile updated", "customer_id", c.ID, "membership", c.Membership)
	return c, nil
}

func (r *Repository) List(ctx context.Context, p pagination.Params) ([]domain.Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id LIMIT $1 OFFSET $2`,
		p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, err
}
