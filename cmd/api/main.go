package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gqlgateway/internal/catalog"
	"gqlgateway/internal/config"
	"gqlgateway/internal/graph"
	"gqlgateway/internal/httpx"
	"gqlgateway/internal/platform/astronomy"
	"gqlgateway/internal/platform/rest"
	"gqlgateway/internal/platform/satellite"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg.CatalogDSN)
	if err != nil {
		log.Fatalf("cannot build catalog: %v", err)
	}

	gql := graph.NewHTTPHandler(graph.MustSchema(), cat, newSourceFactory(cfg))

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Close()

	httpServer := &http.Server{
		Handler:      newRouter(cfg, gql, rateLimiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("cannot listen on %s: %v", cfg.Addr, err)
	}
	log.Printf("server ready at http://%s/graphql", ln.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

// newSourceFactory shares one rate-limited client per upstream host and
// builds fresh service adapters for every request.
func newSourceFactory(cfg config.Config) graph.SourceFactory {
	satelliteClient := rest.NewClient(rest.Config{
		BaseURL:   cfg.SatelliteBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.UpstreamTimeout,
		RPS:       cfg.UpstreamRPS,
	})
	nasaClient := rest.NewClient(rest.Config{
		BaseURL:   cfg.NASABaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.UpstreamTimeout,
		RPS:       cfg.UpstreamRPS,
	})

	return func(r *http.Request) graph.Sources {
		return graph.Sources{
			Satellites: satellite.NewService(satelliteClient),
			Astronomy:  astronomy.NewService(nasaClient, cfg.NASAAPIKey),
		}
	}
}

func newRouter(cfg config.Config, gql http.Handler, rateLimiter *httpx.RateLimitMiddleware) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/graphql", gql)
	router.Handle("/{$}", gql)

	return httpx.Chain(router,
		httpx.RecoveryMiddleware,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}

// loadCatalog builds the catalog from the built-in fixtures, or from the
// Postgres tables when dsn is set. The pool is closed once the snapshot is read.
func loadCatalog(ctx context.Context, dsn string) (*catalog.Catalog, error) {
	if dsn == "" {
		log.Println("catalog source=fixtures")
		return catalog.New(catalog.Fixtures())
	}

	pool, err := openDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	snapshot, err := catalog.NewPostgresRepo(pool).LoadSnapshot(loadCtx)
	if err != nil {
		return nil, err
	}
	log.Printf("catalog source=postgres dsn=%s libraries=%d books=%d", redactDSN(dsn), len(snapshot.Libraries), len(snapshot.Books))
	return catalog.New(snapshot)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
