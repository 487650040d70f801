package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/shopease/internal/cart/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/postgres"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const itemSelect = `
	SELECT ci.id, ci.cart_id, ci.quantity, p.id, p.title, p.unit_price
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

func scanItem(row pgx.Row) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.CartID, &it.Quantity, &it.Product.ID, &it.Product.Title, &it.Product.UnitPrice)
	return it, err
}

func (r *Repository) Create(ctx context.Context, c domain.Cart) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO carts (id, created_at) VALUES ($1,$2)`, c.ID, c.CreatedAt)
	return err
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	var c domain.Cart
	err := r.pool.QueryRow(ctx, `SELECT id, created_at FROM carts WHERE id=$1`, id).Scan(&c.ID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, err
	}
	c.Items, err = r.listItems(ctx, r.pool, id)
	if err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

// AddItem holds a share lock on the cart so a concurrent order placement
// cannot delete it mid-upsert, then merges the quantity in one statement on
// the (cart_id, product_id) unique key. xmax = 0 identifies a fresh insert.
func (r *Repository) AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	err := postgres.InTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, `SELECT 1 FROM carts WHERE id=$1 FOR SHARE`, cartID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCartNotFound
		}
		if err != nil {
			return err
		}

		var itemID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1,$2,$3)
			ON CONFLICT ON CONSTRAINT cart_items_cart_product_key
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			RETURNING id, (xmax = 0)`, cartID, productID, quantity).Scan(&itemID, &res.Created)
		switch {
		case postgres.IsForeignKeyViolation(err, "cart_items_product_id_fkey"):
			return domain.ErrNoSuchProduct
		case postgres.IsNumericOutOfRange(err):
			return apperr.Validation("quantity is too large")
		case err != nil:
			return err
		}

		res.Item, err = scanItem(tx.QueryRow(ctx, itemSelect+` WHERE ci.id=$1`, itemID))
		return err
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	r.log.DebugContext(ctx, "cart item upserted", "cart_id", cartID, "product_id", productID,
		"quantity", res.Item.Quantity, "created", res.Created)
	return res, nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) (domain.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `
		UPDATE cart_items ci SET quantity=$3
		FROM products p
		WHERE ci.cart_id=$1 AND ci.id=$2 AND p.id = ci.product_id
		RETURNING ci.id, ci.cart_id, ci.quantity, p.id, p.title, p.unit_price`, cartID, itemID, quantity))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Item{}, domain.ErrItemNotFound
	case postgres.IsCheckViolation(err):
		return domain.Item{}, domain.ErrInvalidQuantity
	case postgres.IsNumericOutOfRange(err):
		return domain.Item{}, apperr.Validation("quantity is too large")
	}
	return it, err
}

func (r *Repository) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1 AND id=$2`, cartID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (domain.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, itemSelect+` WHERE ci.cart_id=$1 AND ci.id=$2`, cartID, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return it, err
}

func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.Item, error) {
	items, err := r.listItems(ctx, r.pool, cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		var exists int
		err := r.pool.QueryRow(ctx, `SELECT 1 FROM carts WHERE id=$1`, cartID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *Repository) listItems(ctx context.Context, q postgres.Querier, cartID uuid.UUID) ([]domain.Item, error) {
	rows, err := q.Query(ctx, itemSelect+` WHERE ci.cart_id=$1 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
