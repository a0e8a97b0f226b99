// cmd/stapi-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stapi/internal/backend/memory"
	"stapi/internal/backend/postgres"
	"stapi/internal/backend/rediscache"
	"stapi/internal/router"
	"stapi/pkg/backend"
	"stapi/pkg/config"
	"stapi/pkg/db"
	"stapi/pkg/logger"
	"stapi/pkg/middleware"
	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

// pgWithRedisRecords keeps orders in postgres while async search records and
// their status histories live in redis.
type pgWithRedisRecords struct {
	*postgres.Store
	records *rediscache.RecordStore
}

func (b pgWithRedisRecords) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	return b.records.GetSearchRecord(ctx, id)
}

func (b pgWithRedisRecords) ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]] {
	return b.records.ListSearchRecords(ctx, pg)
}

func (b pgWithRedisRecords) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	return b.records.ListSearchRecordStatuses(ctx, recordID, pg)
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	catalog, err := memory.SeedFromEnv(os.Getenv("PRODUCT_SEED_JSON"))
	if err != nil {
		log.Fatalw("seed", "err", err)
	}
	windows, err := memory.SeedOpportunitiesFromEnv(os.Getenv("OPPORTUNITY_SEED_JSON"), catalog)
	if err != nil {
		log.Fatalw("seed", "err", err)
	}

	// The in-memory backend always provides synchronous search over the
	// seeded candidate windows; durable state upgrades to postgres/redis
	// when configured.
	mem := memory.New(catalog...)
	for id, opps := range windows {
		mem.SetOpportunities(id, opps)
	}
	var root backend.Root = mem
	var async backend.AsyncOpportunitySearcher = mem
	var results backend.OpportunityCollectionGetter = mem
	var orders backend.OrderCreator = mem

	if pool != nil {
		if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		pg := postgres.New(pool, catalog...)
		root, async, results, orders = pg, pg, pg, pg
		if rdb != nil {
			rds := rediscache.New(rdb, cfg.SearchRecordTTL)
			root = pgWithRedisRecords{Store: pg, records: rds}
			async, results = rds, rds
		}
	}

	products := make([]backend.Product, 0, len(catalog))
	for _, p := range catalog {
		products = append(products, backend.Product{
			Catalog: p,
			Sync:    mem,
			Async:   async,
			Results: results,
			Orders:  orders,
		})
	}

	api, err := router.New(cfg, log, root, products)
	if err != nil {
		log.Fatalw("router", "err", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing(cfg, log))
	r.Use(middleware.BearerAuth(cfg))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Mount("/", api)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("stapi-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("stapi-service stopped")
}
