package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/otakumart/checkout-api/internal/domain/user"
	"github.com/otakumart/checkout-api/internal/storage/postgres"
)

type productJSON struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         int              `json:"stock"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedDemoUsers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed demo users")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, category, price, discount_price, stock)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				price = EXCLUDED.price,
				discount_price = EXCLUDED.discount_price,
				stock = EXCLUDED.stock`,
			p.ID, p.Name, p.Category, p.Price, p.DiscountPrice, p.Stock,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDemoUsers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo users")

	users := []user.User{
		{
			ID:    "demo-user",
			Email: "hikari@example.com",
			Name:  "Hikari Tanaka",
			Role:  user.RoleUser,
			Addresses: []user.Address{
				{
					ID:         "home",
					FullName:   "Hikari Tanaka",
					Phone:      "+81-3-5555-0142",
					Line1:      "2-11-3 Akihabara",
					City:       "Tokyo",
					State:      "Tokyo",
					PostalCode: "101-0021",
					Country:    "JP",
				},
			},
		},
		{
			ID:    "demo-admin",
			Email: "ops@otakumart.example",
			Name:  "Store Operator",
			Role:  user.RoleAdmin,
		},
	}

	for _, u := range users {
		addresses, err := json.Marshal(u.Addresses)
		if err != nil {
			return errors.Wrapf(err, "marshal addresses for %s", u.ID)
		}
		if u.Addresses == nil {
			addresses = []byte(`[]`)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, name, role, addresses)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				name = EXCLUDED.name,
				role = EXCLUDED.role,
				addresses = EXCLUDED.addresses`,
			u.ID, u.Email, u.Name, u.Role, addresses,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}

		slog.Info("upserted user", slog.String("id", u.ID), slog.String("role", string(u.Role)))
	}

	return nil
}
