package main

import (
	"database/sql"
	"log"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/avisharm-alt/curesite/cache"
	"github.com/avisharm-alt/curesite/controller"
	"github.com/avisharm-alt/curesite/gateway"
	kafkax "github.com/avisharm-alt/curesite/kafka"
	"github.com/avisharm-alt/curesite/middleware"
	"github.com/avisharm-alt/curesite/model"
	"github.com/avisharm-alt/curesite/payment"
	"github.com/avisharm-alt/curesite/routes"
	"github.com/avisharm-alt/curesite/search"
	"github.com/avisharm-alt/curesite/store"
)

var (
	DB    *gorm.DB
	SQLDB *sql.DB
)

// ======================
// INIT DATABASE
// ======================
func initDB() {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASS", "postgres")
	name := getEnv("DB_NAME", "curedb")

	dsn := "host=" + host +
		" user=" + user +
		" password=" + pass +
		" dbname=" + name +
		" port=" + port +
		" sslmode=disable TimeZone=UTC"

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect db:", err)
	}

	if err := DB.AutoMigrate(
		&model.PaymentTransaction{},
		&model.Poster{},
		&model.JournalArticle{},
	); err != nil {
		log.Fatal(err)
	}

	SQLDB, err = DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB from gorm:", err)
	}
}

func main() {
	initDB()

	feeCents, err := strconv.ParseInt(getEnv("PUBLICATION_FEE_CENTS", "1000"), 10, 64)
	if err != nil {
		log.Fatal("invalid PUBLICATION_FEE_CENTS:", err)
	}
	currency := getEnv("PUBLICATION_FEE_CURRENCY", "cad")

	stripeClient := gateway.NewStripeClient(
		getEnv("STRIPE_SECRET_KEY", ""),
		getEnv("STRIPE_WEBHOOK_SECRET", ""),
	)

	rdb := cache.NewClient(getEnv("REDIS_ADDR", "localhost:6379"))
	statusCache := cache.NewStatusCache(rdb)

	producer := kafkax.NewProducer()
	indexer := search.NewIndexer(getEnv("ELASTIC_URL", "http://elasticsearch:9200"))

	transactions := store.NewTransactionStore(SQLDB)
	resolver := payment.NewTargetResolver(
		store.NewPosterStore(SQLDB),
		store.NewArticleStore(SQLDB),
	)

	checkout := payment.NewCheckoutService(stripeClient, transactions, resolver, feeCents, currency)
	reconciler := payment.NewReconciler(stripeClient, transactions, resolver).
		WithEventPublisher(producer).
		WithSearchIndexer(indexer).
		WithStatusCache(statusCache)
	statuses := payment.NewStatusService(transactions, reconciler).
		WithStatusCache(statusCache)

	app := fiber.New()
	app.Use(logger.New())

	routes.RegisterPaymentRoutes(
		app,
		middleware.AuthRequired(getEnv("JWT_SECRET", "secret")),
		controller.NewPaymentController(checkout, statuses),
		controller.NewWebhookController(stripeClient, reconciler),
	)

	port := getEnv("HTTP_PORT", "3001")
	log.Println("HTTP server running on port " + port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("fiber error:", err)
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
