package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	customerpg "github.com/dmehra2102/shopease/internal/customer/infrastructure/postgres"
	"github.com/dmehra2102/shopease/internal/order/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
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

var placeTxOptions = pgx.TxOptions{IsoLevel: pgx.Serializable}

// Place runs the whole cart-to-order conversion in one serializable
// transaction. The cart row is locked first, so a concurrent placement of the
// same cart either waits and then finds it gone, or aborts with a
// serialization failure that is reported the same way.
func (r *Repository) Place(ctx context.Context, req domain.PlaceRequest) (domain.Order, error) {
	var o domain.Order
	err := postgres.InTx(ctx, r.pool, placeTxOptions, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM carts WHERE id=$1 FOR UPDATE`, req.CartID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCartNotFound
		}
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}

		items, err := cartLines(ctx, tx, req.CartID)
		if err != nil {
			return fmt.Errorf("read cart items: %w", err)
		}
		if len(items) == 0 {
			return domain.ErrCartEmpty
		}

		customer, err := customerpg.GetOrCreate(ctx, tx, req.UserID)
		if err != nil {
			return fmt.Errorf("resolve customer: %w", err)
		}

		o = domain.Order{CustomerID: customer.ID, PaymentStatus: domain.PaymentPending}
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (customer_id, payment_status, placed_at)
			VALUES ($1,$2,now())
			RETURNING id, placed_at`, o.CustomerID, string(o.PaymentStatus)).Scan(&o.ID, &o.PlacedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				VALUES ($1,$2,$3,$4) RETURNING id`,
				o.ID, item.ProductID, item.Quantity, item.UnitPrice)
		}
		br := tx.SendBatch(ctx, batch)
		for i := range items {
			items[i].OrderID = o.ID
			if err := br.QueryRow().Scan(&items[i].ID); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert order items: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		o.Items = items

		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id=$1`, req.CartID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}

		ev, err := domain.NewOrderPlacedEvent(o, req.CartID.String(), req.Traceparent)
		if err != nil {
			return err
		}
		return postgres.InsertOutbox(ctx, tx, ev)
	})
	if err != nil {
		return domain.Order{}, r.placeError(ctx, req.CartID, err)
	}

	r.log.InfoContext(ctx, "order placed", "order_id", o.ID, "customer_id", o.CustomerID,
		"cart_id", req.CartID, "items", len(o.Items), "total", o.TotalPrice().StringFixed(2))
	return o, nil
}

// placeError reports a serialization failure against a cart that has since
// been consumed as NotFound; any other serialization failure is a Conflict.
func (r *Repository) placeError(ctx context.Context, cartID uuid.UUID, err error) error {
	if !postgres.IsRetryable(err) {
		return err
	}
	var exists bool
	if qerr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id=$1)`, cartID).Scan(&exists); qerr == nil && !exists {
		return domain.ErrCartNotFound
	}
	r.log.WarnContext(ctx, "order placement aborted by a concurrent update", "cart_id", cartID, "err", err)
	return apperr.Wrap(err, apperr.CodeConflict, "the cart was modified concurrently, retry the request")
}

func cartLines(ctx context.Context, q postgres.Querier, cartID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT ci.product_id, p.title, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id=$1
		ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const orderColumns = `o.id, o.customer_id, o.placed_at, o.payment_status`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerID, &o.PlacedAt, &status)
	o.PaymentStatus = domain.PaymentStatus(status)
	return o, err
}

func (r *Repository) List(ctx context.Context, p pagination.Params) ([]domain.Order, int, error) {
	return r.listOrders(ctx, ``, p)
}

// ListForUser creates the caller's customer profile if needed, then lists
// that customer's orders.
func (r *Repository) ListForUser(ctx context.Context, userID string, p pagination.Params) ([]domain.Order, int, error) {
	c, err := customerpg.GetOrCreate(ctx, r.pool, userID)
	if err != nil {
		return nil, 0, err
	}
	return r.listOrders(ctx, `WHERE o.customer_id=$1`, p, c.ID)
}

func (r *Repository) listOrders(ctx context.Context, where string, p pagination.Params, args ...any) ([]domain.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders o `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM orders o %s ORDER BY o.id LIMIT $%d OFFSET $%d`, orderColumns, where, n+1, n+2),
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, total, nil
}

func (r *Repository) items(ctx context.Context, orderIDs []int64) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.title, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	return r.getOrder(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id=$1`, id)
}

// GetForUser hides other customers' orders behind NotFound.
func (r *Repository) GetForUser(ctx context.Context, id int64, userID string) (domain.Order, error) {
	return r.getOrder(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id=$1 AND c.user_id=$2`, id, userID)
}

func (r *Repository) getOrder(ctx context.Context, sql string, args ...any) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Items, err = r.items(ctx, []int64{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// UpdatePaymentStatus changes the status and records the transition in the
// outbox. Setting the current status again is a no-op without an event.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, traceparent string) (domain.Order, error) {
	err := postgres.InTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var prev string
		err := tx.QueryRow(ctx, `SELECT payment_status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&prev)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if domain.PaymentStatus(prev) == status {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET payment_status=$2 WHERE id=$1`, id, string(status)); err != nil {
			return err
		}
		ev, err := domain.NewPaymentStatusChangedEvent(id, domain.PaymentStatus(prev), status, traceparent)
		if err != nil {
			return err
		}
		return postgres.InsertOutbox(ctx, tx, ev)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	r.log.InfoContext(ctx, "order deleted", "order_id", id)
	return nil
}
