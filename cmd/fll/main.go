// Runs fll either as an interactive shell over a single list, or as a server exposing named lists over the Redis
// protocol.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/nobletooth/fll/pkg/config"
	"github.com/nobletooth/fll/pkg/port"
	"github.com/nobletooth/fll/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	modeShell  = "shell"
	modeServer = "server"
)

var (
	printVersion   = flag.Bool("print_version", false, "Print the version and exit.")
	mode           = flag.String("mode", modeShell, "What to run: shell/server")
	metricsAddress = flag.String("metrics_address", "", "The ip:port to serve /metrics on; empty disables it.")
)

// serveMetrics exposes the prometheus registry until `ctx` is done.
func serveMetrics(ctx context.Context, address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			slog.Error("Failed to close metrics server.", "error", err)
		}
	}()
	slog.Info("Metrics are being served.", "address", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server stopped.", "error", err)
	}
}

func run(ctx context.Context) error {
	switch *mode {
	case modeShell:
		return newShell(os.Stdin, os.Stdout).run()
	case modeServer:
		return port.RunRedisServer(ctx, port.NewListStoreFromFlags())
	default:
		return fmt.Errorf("unknown mode '%s', expected %s or %s", *mode, modeShell, modeServer)
	}
}

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("fll build info.", utils.BuildInfo()...)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() { // Listen for OS interrupts in the background.
		select {
		case sig := <-signals:
			slog.Info("Received termination signal, cancelling context.", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if *metricsAddress != "" {
		go serveMetrics(ctx, *metricsAddress)
	}

	if err := run(ctx); err != nil {
		slog.Error("fll stopped.", "mode", *mode, "err", err)
		os.Exit(1)
	}
}
