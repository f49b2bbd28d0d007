package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	_ "olivander/docs"
	"olivander/internal/config"
	httpapi "olivander/internal/http"
	"olivander/internal/logging"
	"olivander/internal/repository"
	"olivander/internal/seed"
	"olivander/internal/service"
)

const connectTimeout = 15 * time.Second

// @title Лавка у Оливандера API
// @version 1.0
// @description Product catalog and order placement.
// @BasePath /
func main() {
	app := &cli.App{
		Name:  "olivander",
		Usage: "storefront backend: product catalog and orders over MongoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "optional YAML config file", EnvVars: []string{"SHOP_CONFIG"}},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API (default)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "memory", Usage: "use the in-memory store instead of MongoDB"},
				},
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "wipe products and orders, then insert the sample catalog",
				Action: seedCatalog,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, logging.Init("olivander", cfg.Log.Level, cfg.Log.File), nil
}

type stores struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	health   repository.Pinger
	close    func()
}

func openStores(ctx context.Context, cfg config.Config, memory bool) (*stores, error) {
	if memory {
		store := repository.NewMemoryStore()
		return &stores{products: store, orders: repository.NewMemoryOrders(store), health: store, close: func() {}}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}
	products := repository.NewMongoProducts(db, cfg.Mongo.OpTimeout)
	return &stores{
		products: products,
		orders:   repository.NewMongoOrders(db, cfg.Mongo.OpTimeout),
		health:   products,
		close: func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logging.Base().Warn("mongodb disconnect", "err", err)
			}
		},
	}, nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.HTTP.Mode)

	st, err := openStores(c.Context, cfg, c.Bool("memory"))
	if err != nil {
		return err
	}
	defer st.close()
	logger.Info("store ready", "memory", c.Bool("memory"), "database", cfg.Mongo.Database)

	productsSvc := service.NewProductService(st.products)
	ordersSvc := service.NewOrderService(st.products, st.orders)

	if err := productsSvc.EnsureSearchIndex(c.Context); err != nil {
		return fmt.Errorf("ensure text index: %w", err)
	}

	srv := httpapi.NewServer(productsSvc, ordersSvc, st.health, logging.New("http"))

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("server exited")
	return nil
}

func seedCatalog(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()
	db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	products := repository.NewMongoProducts(db, cfg.Mongo.OpTimeout)
	orders := repository.NewMongoOrders(db, cfg.Mongo.OpTimeout)

	ctx = logging.WithCtx(c.Context, logger.With("cmd", "seed"))
	_, err = seed.Run(ctx, service.NewProductService(products), products, orders)
	return err
}
