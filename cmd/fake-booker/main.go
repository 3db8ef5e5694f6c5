// fake-booker serves an in-memory imitation of the restful-booker API, for running the contract
// tests locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/restfulbooker/booker-contract-tests/internal/fakebooker"
	"github.com/restfulbooker/booker-contract-tests/logging"
)

func main() {
	port := flag.Int("port", 3001, "HTTP listen port")
	missingFieldStatus := flag.Int("missing-field-status", 500, "status for a created booking with missing fields")
	latency := flag.Duration("latency", 0, "delay added to every response")
	empty := flag.Bool("empty", false, "start without sample bookings")
	debug := flag.Bool("debug", false, "log every request")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	handler := fakebooker.New(fakebooker.Options{
		MissingFieldStatus: *missingFieldStatus,
		Latency:            *latency,
		Empty:              *empty,
		Logger:             logger,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("fake booker listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
