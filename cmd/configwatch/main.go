package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/delaneyj/mobx-go/pkg/mobxprom"
	"github.com/delaneyj/mobx-go/pkg/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

const (
	fileKey        = "file"
	metricsAddrKey = "metrics-addr"
)

func main() {
	cmd := &cli.Command{
		Name:  "configwatch",
		Usage: "Watch a YAML config file and log what changes in it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     fileKey,
				Aliases:  []string{"f"},
				Usage:    "YAML config file to watch",
				Required: true,
			},
			&cli.StringFlag{
				Name:  metricsAddrKey,
				Usage: "Serve Prometheus metrics on this address, empty to disable",
				Value: ":9090",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	rs := mobx.CreateReactiveSystem(func(reaction string, err error) {
		log.Printf("reaction %s failed: %v", reaction, err)
	})

	reg := prometheus.NewRegistry()
	_, stopMetrics, err := mobxprom.Instrument(rs, mobxprom.WithRegistry(reg))
	if err != nil {
		return err
	}
	defer rs.Do(func() error {
		stopMetrics()
		return nil
	})

	path := cmd.String(fileKey)
	cfg, err := resource.WatchYAML[Config](rs, path, func(err error) {
		log.Printf("reload failed, keeping previous config: %v", err)
	})
	if err != nil {
		return err
	}
	log.Printf("watching %s", path)

	var stopWatching func()
	if err := rs.Do(func() error {
		var err error
		stopWatching, err = watchConfig(rs, cfg, log.Printf)
		return err
	}); err != nil {
		return err
	}
	defer rs.Do(func() error {
		stopWatching()
		return nil
	})

	if addr := cmd.String(metricsAddrKey); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("serving metrics on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	log.Printf("shutting down")
	return nil
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
