package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/shopease/internal/platform/postgres"
	"github.com/dmehra2102/shopease/internal/review/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var r domain.Review
	err := row.Scan(&r.ID, &r.ProductID, &r.Name, &r.Description, &r.Date)
	return r, err
}

func (r *Repository) Add(ctx context.Context, rv domain.Review) (domain.Review, error) {
	out, err := scanReview(r.pool.QueryRow(ctx, `
		INSERT INTO reviews (product_id, name, description)
		VALUES ($1,$2,$3)
		RETURNING id, product_id, name, description, date`, rv.ProductID, rv.Name, rv.Description))
	if postgres.IsForeignKeyViolation(err, "reviews_product_id_fkey") {
		return domain.Review{}, domain.ErrProductNotFound
	}
	return out, err
}

// List reports NotFound for an unknown product rather than an empty list.
func (r *Repository) List(ctx context.Context, productID int64) ([]domain.Review, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrProductNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, name, description, date
		FROM reviews WHERE product_id=$1 ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, productID, id int64) (domain.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, `
		SELECT id, product_id, name, description, date
		FROM reviews WHERE product_id=$1 AND id=$2`, productID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Review{}, domain.ErrReviewNotFound
	}
	return rv, err
}

func (r *Repository) Delete(ctx context.Context, productID, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE product_id=$1 AND id=$2`, productID, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}
