package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	db querier
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

// CompleteCheckout applies the three post-charge persistence actions as one
// durable unit: the order insert, its item inserts and the cart-line deletes.
// orders.charge_id is unique, so retrying a commit for an already-recorded
// charge fails instead of producing a second order.
func (r *orderRepository) CompleteCheckout(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, errors.New("no items in order")
	}
	if order.ChargeID == "" {
		return uuid.Nil, errors.New("charge id is empty")
	}

	orderID, err := withTx(ctx, r.db, func(q querier) (uuid.UUID, error) {
		var orderID uuid.UUID

		err := q.QueryRow(ctx, `
			INSERT INTO orders (owner_id, first_name, last_name, address, city, province, postal_code, phone,
			                    total_amount, total_currency, charge_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`,
			order.OwnerID,
			order.Recipient.FirstName, order.Recipient.LastName,
			order.Recipient.Address, order.Recipient.City, order.Recipient.Province,
			order.Recipient.PostalCode, order.Recipient.Phone,
			order.Total.Amount, order.Total.Currency.String(),
			order.ChargeID, string(order.Status),
		).Scan(&orderID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("q.QueryRow insert order: %w", err)
		}

		// TODO: batch via pgx.Batch once item counts warrant it
		for _, item := range order.Items {
			if _, err := q.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_amount, price_currency)
				VALUES ($1, $2, $3, $4, $5)`,
				orderID, item.ProductID, item.Quantity, item.Price.Amount, item.Price.Currency.String(),
			); err != nil {
				return uuid.Nil, fmt.Errorf("q.Exec insert order item: %w", err)
			}
		}

		if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, order.OwnerID); err != nil {
			return uuid.Nil, fmt.Errorf("q.Exec clear cart: %w", err)
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.db, func(q querier) (domain.Order, error) {
		row := q.QueryRow(ctx, `
			SELECT id, owner_id, first_name, last_name, address, city, province, postal_code, phone,
			       total_amount, total_currency, charge_id, status, created_at, updated_at
			FROM orders
			WHERE id = $1`, orderID)

		order, err := scanOrder(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
		}
		if err != nil {
			return o, fmt.Errorf("scanOrder: %w", err)
		}

		rows, err := q.Query(ctx, `
			SELECT product_id, quantity, price_amount, price_currency, created_at
			FROM order_items
			WHERE order_id = $1`, orderID)
		if err != nil {
			return o, fmt.Errorf("q.Query order items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scanOrderItem(rows)
			if err != nil {
				return o, fmt.Errorf("scanOrderItem: %w", err)
			}
			order.Items = append(order.Items, item)
		}
		if err := rows.Err(); err != nil {
			return o, fmt.Errorf("rows.Err: %w", err)
		}

		return order, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var statuses []string
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}

	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.owner_id, o.first_name, o.last_name, o.address, o.city, o.province, o.postal_code, o.phone,
		       o.total_amount, o.total_currency, o.charge_id, o.status, o.created_at, o.updated_at,
		       i.product_id, i.quantity, i.price_amount, i.price_currency, i.created_at
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE ($1::uuid[] IS NULL OR o.id = ANY ($1))
		  AND ($2::text[] IS NULL OR o.owner_id = ANY ($2))
		  AND ($3::text[] IS NULL OR o.status = ANY ($3))
		  AND ($4::timestamptz IS NULL OR o.created_at >= $4)
		  AND ($5::timestamptz IS NULL OR o.created_at <= $5)
		ORDER BY o.created_at DESC`,
		nilSliceIfEmpty(filter.IDs),
		nilSliceIfEmpty(filter.OwnerIDs),
		nilSliceIfEmpty(statuses),
		createdAfter, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	// group the joined rows by order id
	orderMap := make(map[uuid.UUID]domain.Order)
	for rows.Next() {
		order, item, err := scanOrderJoinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinRow: %w", err)
		}

		if existing, ok := orderMap[order.ID]; ok {
			order = existing
		}
		order.Items = append(order.Items, item)
		orderMap[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lo.Values(orderMap), nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}
	if status == "" {
		return fmt.Errorf("status is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o             domain.Order
		totalAmount   decimal.Decimal
		totalCurrency string
		status        string
	)

	if err := row.Scan(
		&o.ID, &o.OwnerID,
		&o.Recipient.FirstName, &o.Recipient.LastName,
		&o.Recipient.Address, &o.Recipient.City, &o.Recipient.Province,
		&o.Recipient.PostalCode, &o.Recipient.Phone,
		&totalAmount, &totalCurrency, &o.ChargeID, &status,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	parsedCurrency, err := currency.ParseISO(totalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", totalCurrency, err)
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	o.Total = domain.Money{Amount: totalAmount, Currency: parsedCurrency}
	o.Status = parsedStatus

	return o, nil
}

func scanOrderItem(row pgx.Row) (domain.OrderItem, error) {
	var (
		item          domain.OrderItem
		priceAmount   decimal.Decimal
		priceCurrency string
	)

	if err := row.Scan(&item.ProductID, &item.Quantity, &priceAmount, &priceCurrency, &item.CreatedAt); err != nil {
		return domain.OrderItem{}, err
	}

	parsedCurrency, err := currency.ParseISO(priceCurrency)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("currency[%s] is not valid: %w", priceCurrency, err)
	}

	item.Price = domain.Money{Amount: priceAmount, Currency: parsedCurrency}

	return item, nil
}

func scanOrderJoinRow(row pgx.Row) (domain.Order, domain.OrderItem, error) {
	var (
		o             domain.Order
		item          domain.OrderItem
		totalAmount   decimal.Decimal
		totalCurrency string
		status        string
		priceAmount   decimal.Decimal
		priceCurrency string
	)

	if err := row.Scan(
		&o.ID, &o.OwnerID,
		&o.Recipient.FirstName, &o.Recipient.LastName,
		&o.Recipient.Address, &o.Recipient.City, &o.Recipient.Province,
		&o.Recipient.PostalCode, &o.Recipient.Phone,
		&totalAmount, &totalCurrency, &o.ChargeID, &status,
		&o.CreatedAt, &o.UpdatedAt,
		&item.ProductID, &item.Quantity, &priceAmount, &priceCurrency, &item.CreatedAt,
	); err != nil {
		return domain.Order{}, domain.OrderItem{}, err
	}

	parsedTotalCurrency, err := currency.ParseISO(totalCurrency)
	if err != nil {
		return domain.Order{}, domain.OrderItem{}, fmt.Errorf("currency[%s] is not valid: %w", totalCurrency, err)
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return domain.Order{}, domain.OrderItem{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	parsedPriceCurrency, err := currency.ParseISO(priceCurrency)
	if err != nil {
		return domain.Order{}, domain.OrderItem{}, fmt.Errorf("currency[%s] is not valid: %w", priceCurrency, err)
	}

	o.Total = domain.Money{Amount: totalAmount, Currency: parsedTotalCurrency}
	o.Status = parsedStatus
	item.Price = domain.Money{Amount: priceAmount, Currency: parsedPriceCurrency}

	return o, item, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
