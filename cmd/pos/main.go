package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniPOS/internal/catalog"
	"MiniPOS/internal/ledger"
	"MiniPOS/internal/operator"
	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

func main() {
	service := "pos"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	jwtSecret := getenv("JWT_SECRET", "dev-secret")

	var (
		catalogStore  catalog.Store
		ledgerStore   ledger.Store
		operatorStore operator.Store
	)

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		catalogStore = catalog.NewPostgresStore(db)
		ledgerStore = ledger.NewPostgresLedger(db)
		operatorStore = operator.NewPostgresStore(db)
	} else {
		inventoryPath := getenv("POS_INVENTORY_FILE", "inventory.csv")
		salesPath := getenv("POS_SALES_FILE", "sales_log.csv")

		fs, err := catalog.NewFileStore(inventoryPath)
		if err != nil {
			log.Fatal("load catalog", zap.Error(err), zap.String("path", inventoryPath))
		}
		catalogStore = fs
		ledgerStore = ledger.NewFileLedger(salesPath)

		ops := operator.NewMemStore()
		seedOperator(ops, log)
		operatorStore = ops
	}

	limiter := kit.NewIPRateLimiter(
		getenvInt("LOGIN_RATE_LIMIT", 10, log),
		getenvInt("LOGIN_RATE_WINDOW_SECONDS", 60, log),
	)

	h := pos.NewHandler(pos.Deps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),

		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "true",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		Catalog:   catalogStore,
		Ledger:    ledgerStore,
		Operators: operatorStore,
		JWT:       operator.NewTokenMaker(jwtSecret),

		LoginLimiter: limiter,
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// seedOperator creates the initial account for the in-memory operator
// store, which starts empty on every boot.
func seedOperator(ops *operator.MemStore, log *zap.Logger) {
	email := os.Getenv("OPERATOR_EMAIL")
	password := os.Getenv("OPERATOR_PASSWORD")
	if email == "" || password == "" {
		log.Warn("OPERATOR_EMAIL/OPERATOR_PASSWORD not set; register an operator via /auth/register")
		return
	}

	id := "op_" + uuid.NewString()
	if err := ops.Create(context.Background(), email, password, "admin", id); err != nil {
		log.Fatal("seed operator", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int, log *zap.Logger) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("bad integer env, using default", zap.String("key", k), zap.String("value", v))
		return def
	}
	return n
}
