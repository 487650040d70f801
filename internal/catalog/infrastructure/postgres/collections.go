package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/shopease/internal/catalog/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/postgres"
)

var errCollectionNotFound = apperr.NotFound("collection not found")

type CollectionRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCollectionRepository(log *slog.Logger, pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{log: log, pool: pool}
}

const collectionSelect = `
	SELECT c.id, c.title, c.featured_product_id, count(p.id)
	FROM collections c
	LEFT JOIN products p ON p.collection_id = c.id`

func scanCollection(row pgx.Row) (domain.Collection, error) {
	var c domain.Collection
	err := row.Scan(&c.ID, &c.Title, &c.FeaturedProductID, &c.ProductCount)
	return c, err
}

func (r *CollectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	rows, err := r.pool.Query(ctx, collectionSelect+` GROUP BY c.id ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CollectionRepository) Get(ctx context.Context, id int64) (domain.Collection, error) {
	c, err := scanCollection(r.pool.QueryRow(ctx, collectionSelect+` WHERE c.id=$1 GROUP BY c.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collection{}, errCollectionNotFound
	}
	return c, err
}

func (r *CollectionRepository) Create(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO collections (title, featured_product_id) VALUES ($1,$2) RETURNING id`,
		c.Title, c.FeaturedProductID).Scan(&c.ID)
	if err != nil {
		return domain.Collection{}, err
	}
	c.ProductCount = 0
	return c, nil
}

func (r *CollectionRepository) Update(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE collections SET title=$2, featured_product_id=$3 WHERE id=$1`,
		c.ID, c.Title, c.FeaturedProductID)
	if err != nil {
		return domain.Collection{}, err
	}
	if ct.RowsAffected() == 0 {
		return domain.Collection{}, errCollectionNotFound
	}
	return r.Get(ctx, c.ID)
}

func (r *CollectionRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE id=$1`, id)
	if postgres.IsForeignKeyViolation(err, "products_collection_id_fkey") {
		return apperr.Conflict("collection cannot be deleted because it includes one or more products")
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errCollectionNotFound
	}
	return nil
}
