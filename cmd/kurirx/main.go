package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"lintang/kurirx/pkg/config"
	"lintang/kurirx/pkg/consumer"
	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/kv"
	"lintang/kurirx/pkg/replan"
	"lintang/kurirx/pkg/server/rest"
	"lintang/kurirx/pkg/server/rest/service"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()

	listenAddr := flag.String("listenaddr", cfg.ListenAddr, "server listen address")
	dbDir := flag.String("db", cfg.DBDir, "pebble database directory")
	streamURL := flag.String("stream", cfg.StreamURL, "scan event stream endpoint, empty disables the poller")
	workers := flag.Int("workers", cfg.Workers, "scan consumer worker count")
	flag.Parse()

	db, err := pebble.Open(*dbDir, &pebble.Options{})
	if err != nil {
		log.Fatal(err)
	}

	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	// ModeRCSP minimizes expense under the promise deadline, ModeSTSP
	// minimizes arrival time and doubles as the re-planning fallback.
	weld := solver.NewWeld(solver.NewPareto(), solver.NewOptimal(true))
	if err := kvDB.LoadNetwork(weld); err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	transitSvc := service.NewTransitService(weld, kvDB)
	rest.TransitRouter(r, transitSvc, m)

	planner := replan.NewPlanner(weld.Solver(solver.ModeRCSP), weld.Solver(solver.ModeSTSP))
	reader := consumer.NewReader(planner, kvDB, rest.ScanObserver(m))
	reader.ObserveReplans(rest.ReplanObserver(m))
	dispatcher := consumer.NewDispatcher(reader, *workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *streamURL != "" {
		poller := consumer.NewPoller(*streamURL, cfg.PollInterval, dispatcher)
		go poller.Run(ctx)
	}

	srv := &http.Server{Addr: *listenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	fmt.Printf("\nserver started at %s\n", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	// drain in-flight scan events before the pebble handle goes away
	dispatcher.Close()
}
