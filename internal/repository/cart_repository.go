package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	db querier
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.product_id, p.name, ci.quantity, ci.price_amount, ci.price_currency, ci.created_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.owner_id = $1
		ORDER BY ci.created_at, ci.id`, ownerID)
	if err != nil {
		return c, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return c, fmt.Errorf("scanCartItem: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *cartRepository) AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.CartItem, error) {
	var item domain.CartItem

	if quantity <= 0 {
		return item, fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrInvalidQuantity)
	}

	item, err := withTx(ctx, r.db, func(q querier) (domain.CartItem, error) {
		// price is captured from the catalog on first add and kept on increments
		var (
			productName   string
			priceAmount   decimal.Decimal
			priceCurrency string
		)

		err := q.QueryRow(ctx, `SELECT name, price_amount, price_currency FROM products WHERE id = $1`, productID).
			Scan(&productName, &priceAmount, &priceCurrency)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartItem{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
		}
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("q.QueryRow products: %w", err)
		}

		// the increment happens at the store, not via read-modify-write,
		// so concurrent adds for the same (owner, product) row serialize here
		row := q.QueryRow(ctx, `
			INSERT INTO cart_items (owner_id, product_id, quantity, price_amount, price_currency)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (owner_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + excluded.quantity
			RETURNING id, quantity, price_amount, price_currency, created_at`,
			ownerID, productID, quantity, priceAmount, priceCurrency)

		var (
			it          domain.CartItem
			rowAmount   decimal.Decimal
			rowCurrency string
		)
		if err := row.Scan(&it.ID, &it.Quantity, &rowAmount, &rowCurrency, &it.CreatedAt); err != nil {
			return domain.CartItem{}, fmt.Errorf("row.Scan: %w", err)
		}

		parsedCurrency, err := currency.ParseISO(rowCurrency)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", rowCurrency, err)
		}

		it.ProductID = productID
		it.ProductName = productName
		it.Price = domain.Money{Amount: rowAmount, Currency: parsedCurrency}

		return it, nil
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("withTx: %w", err)
	}

	return item, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, lineID uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID)
	if err != nil {
		return false, fmt.Errorf("db.Exec: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// MergeCart re-parents fromOwnerID's cart lines to toOwnerID as one
// transaction: quantities are added into lines toOwnerID already holds,
// absorbed source lines are deleted, the rest change owner in place.
// A second merge of the same source finds no rows and is a no-op.
func (r *cartRepository) MergeCart(ctx context.Context, fromOwnerID, toOwnerID string) error {
	if fromOwnerID == toOwnerID {
		return nil
	}

	_, err := withTx(ctx, r.db, func(q querier) (struct{}, error) {
		if _, err := q.Exec(ctx, `
			UPDATE cart_items dst
			SET quantity = dst.quantity + src.quantity
			FROM cart_items src
			WHERE dst.owner_id = $2
			  AND src.owner_id = $1
			  AND dst.product_id = src.product_id`, fromOwnerID, toOwnerID); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec absorb: %w", err)
		}

		if _, err := q.Exec(ctx, `
			DELETE FROM cart_items
			WHERE owner_id = $1
			  AND product_id IN (SELECT product_id FROM cart_items WHERE owner_id = $2)`, fromOwnerID, toOwnerID); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec delete absorbed: %w", err)
		}

		if _, err := q.Exec(ctx, `
			UPDATE cart_items SET owner_id = $2 WHERE owner_id = $1`, fromOwnerID, toOwnerID); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec reparent: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func scanCartItem(row pgx.Row) (domain.CartItem, error) {
	var (
		item          domain.CartItem
		priceAmount   decimal.Decimal
		priceCurrency string
	)

	if err := row.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &priceAmount, &priceCurrency, &item.CreatedAt); err != nil {
		return domain.CartItem{}, err
	}

	parsedCurrency, err := currency.ParseISO(priceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", priceCurrency, err)
	}

	item.Price = domain.Money{Amount: priceAmount, Currency: parsedCurrency}

	return item, nil
}
