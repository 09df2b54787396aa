package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/opendata-collector/pkg/collector"
)

// envFunctionsPort is set by the Azure Functions host for custom handlers.
const envFunctionsPort = "FUNCTIONS_CUSTOMHANDLER_PORT"

var (
	serveAddr  string
	serveForce bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger that starts a run",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: :$FUNCTIONS_CUSTOMHANDLER_PORT or :8080)")
	cmd.Flags().BoolVar(&serveForce, "force", false, "Ignore update frequencies on every triggered run")
	return cmd
}

// runner is the part of the collector the trigger needs.
type runner interface {
	Run(ctx context.Context) collector.Report
}

// newRouter exposes the trigger. Runs are serialised so overlapping
// triggers do not process the same dataset twice.
func newRouter(r runner, log *zap.Logger) http.Handler {
	var mu sync.Mutex
	trigger := func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		log.Info("HTTP trigger processed a request")
		report := r.Run(req.Context())
		failed := report.Failed()
		if len(failed) == 0 {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Scraper run complete.")
			return
		}

		msgs := make([]string, 0, len(failed))
		for _, res := range failed {
			msgs = append(msgs, fmt.Sprintf("%s: %s", res.Dataset, res.Status))
		}
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Scraper run failed: %s", strings.Join(msgs, "; "))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	router.Get("/api/HttpTriggerScraper", trigger)
	router.Post("/api/HttpTriggerScraper", trigger)
	return router
}

func listenAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if port := os.Getenv(envFunctionsPort); port != "" {
		return ":" + port
	}
	return ":8080"
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              listenAddr(),
		Handler:           newRouter(a.collector(collector.WithForce(serveForce)), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
