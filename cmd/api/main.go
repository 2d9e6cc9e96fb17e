package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"github.com/merakit/storefront-backend/internal/address"
	"github.com/merakit/storefront-backend/internal/cart"
	"github.com/merakit/storefront-backend/internal/config"
	"github.com/merakit/storefront-backend/internal/order"
	"github.com/merakit/storefront-backend/internal/product"
	"github.com/merakit/storefront-backend/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration failed")
	}

	logger := setupLogger(cfg.Env)

	db := mustOpenDB(cfg.DatabaseURL, logger)
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		logger.WithError(err).Fatal("schema setup failed")
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userService := user.NewService(user.NewPostgresRepository(db), logger.WithField("component", "user"))
	user.NewHandler(userService).RegisterProtectedRoutes(app)

	reconciler := cart.NewReconciler(cart.NewPostgresRepository(db), logger.WithField("component", "cart"))
	cart.NewHandler(reconciler).RegisterProtectedRoutes(app)

	saga := order.NewSaga(
		order.NewPostgresRepository(db),
		order.NewPostgresSagaRepository(db),
		reconciler,
		productService,
		logger.WithField("component", "order-saga"),
	)
	order.NewHandler(saga, reconciler).RegisterProtectedRoutes(app)

	addressService := address.NewService(address.NewPostgresRepository(db))
	address.NewHandler(addressService).RegisterProtectedRoutes(app)

	logger.WithField("addr", cfg.Addr).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func setupLogger(env string) *log.Entry {
	if env == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return log.WithField("service", "storefront-backend")
}

func mustOpenDB(url string, logger *log.Entry) *sql.DB {
	db, err := sql.Open("pgx", url)
	if err != nil {
		logger.WithError(err).Fatal("could not open database")
	}
	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("could not reach database")
	}
	return db
}

// ensureSchema creates the tables this service owns. The products and
// profiles tables belong to the catalog and identity services; they are only
// read here and expected to exist already.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cart_items (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            product_id INT NOT NULL,
            quantity INT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            order_number TEXT NOT NULL UNIQUE,
            user_id INT NOT NULL,
            status TEXT NOT NULL,
            subtotal NUMERIC NOT NULL,
            tax NUMERIC NOT NULL,
            shipping NUMERIC NOT NULL,
            total NUMERIC NOT NULL,
            shipping_address JSONB NOT NULL,
            billing_address JSONB NOT NULL,
            payment_status TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders(id),
            product_id INT,
            vendor_id INT NOT NULL,
            product_name TEXT NOT NULL,
            product_image TEXT,
            quantity INT NOT NULL,
            price NUMERIC NOT NULL,
            subtotal NUMERIC NOT NULL,
            status TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_sagas (
            order_id INT PRIMARY KEY REFERENCES orders(id),
            idempotency_key TEXT UNIQUE,
            state TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS addresses (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            address JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
