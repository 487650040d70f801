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

var errProductNotFound = apperr.NotFound("product not found")

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

const productColumns = `id, title, slug, description, unit_price, inventory, collection_id, last_update`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate)
	return p, err
}

var productOrderBy = map[string]string{
	"":             "id",
	"unit_price":   "unit_price, id",
	"-unit_price":  "unit_price DESC, id",
	"last_update":  "last_update, id",
	"-last_update": "last_update DESC, id",
}

const productFilterWhere = `
		WHERE ($1::bigint = 0 OR collection_id = $1)
		  AND ($2::text = '' OR title ILIKE '%' || $2 || '%' ESCAPE '\'
		       OR description ILIKE '%' || $2 || '%' ESCAPE '\')`

func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	orderBy, ok := productOrderBy[f.Ordering]
	if !ok {
		orderBy = productOrderBy[""]
	}
	search := postgres.EscapeLike(f.Search)
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`, count(*) OVER ()
		FROM products`+productFilterWhere+`
		ORDER BY `+orderBy+`
		LIMIT $3 OFFSET $4`, f.CollectionID, search, f.PageSize, f.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		products []domain.Product
		total    int
	)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory,
			&p.CollectionID, &p.LastUpdate, &total); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(products) == 0 && f.Offset() > 0 {
		// past the last page: still report the real total
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+productFilterWhere,
			f.CollectionID, search).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, errProductNotFound
	}
	return p, err
}

func (r *ProductRepository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products (title, slug, description, unit_price, inventory, collection_id, last_update)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		RETURNING `+productColumns,
		p.Title, p.Slug, p.Description, p.UnitPrice, p.Inventory, p.CollectionID))
	if postgres.IsForeignKeyViolation(err, "products_collection_id_fkey") {
		return domain.Product{}, apperr.Validation("no such collection")
	}
	return created, err
}

func (r *ProductRepository) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	updated, err := scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products
		SET title=$2, slug=$3, description=$4, unit_price=$5, inventory=$6, collection_id=$7, last_update=now()
		WHERE id=$1
		RETURNING `+productColumns,
		p.ID, p.Title, p.Slug, p.Description, p.UnitPrice, p.Inventory, p.CollectionID))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Product{}, errProductNotFound
	case postgres.IsForeignKeyViolation(err, "products_collection_id_fkey"):
		return domain.Product{}, apperr.Validation("no such collection")
	}
	return updated, err
}

// Delete refuses to remove a product that an order item still references.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if postgres.IsForeignKeyViolation(err, "order_items_product_id_fkey") {
		return apperr.Conflict("product cannot be deleted because it is associated with an order item")
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errProductNotFound
	}
	return nil
}

func (r *ProductRepository) ClearInventory(ctx context.Context, ids []int64) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE products SET inventory=0, last_update=now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	r.log.InfoContext(ctx, "inventory cleared", "requested", len(ids), "updated", ct.RowsAffected())
	return ct.RowsAffected(), nil
}
