package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := repository.RunMigrations(connStr); err != nil {
		return nil, "", fmt.Errorf("repository.RunMigrations: %w", err)
	}

	return container, connStr, nil
}

func insertCategory(ctx context.Context, pool *pgxpool.Pool, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID uuid.UUID, p domain.Product) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO products (category_id, name, description, price_amount, price_currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		categoryID, p.Name, p.Description, p.Price.Amount, p.Price.Currency.String()).Scan(&id)
	return id, err
}

// uuid suffix keeps fixture names unique across subtests
func fakeCategoryName() string {
	return fmt.Sprintf("%s %s", gofakeit.ProductCategory(), gofakeit.UUID())
}

func fakeProduct() domain.Product {
	return domain.Product{
		Name:        fmt.Sprintf("%s %s", gofakeit.ProductName(), gofakeit.UUID()),
		Description: gofakeit.Sentence(5),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)),
			Currency: domain.CAD,
		},
	}
}

func fakeProductWithPrice(amount string) domain.Product {
	p := fakeProduct()
	p.Price.Amount = decimal.RequireFromString(amount)
	return p
}

func fakeRecipient() domain.Recipient {
	return domain.Recipient{
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Address:    gofakeit.Street(),
		City:       gofakeit.City(),
		Province:   gofakeit.State(),
		PostalCode: gofakeit.Zip(),
		Phone:      gofakeit.Phone(),
	}
}
