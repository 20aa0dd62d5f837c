// Package app assembles the cloud dispatcher binary: it subscribes to a
// fleet's shared MQTT topics, reconciles command responses against a
// pending-command store, and exposes a metrics endpoint.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeroclaw-io/fleetdiag/cmd/fleetdiag-cloud/app/options"
	"github.com/zeroclaw-io/fleetdiag/internal/cloud"
	"github.com/zeroclaw-io/fleetdiag/internal/store"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
	"github.com/zeroclaw-io/fleetdiag/pkg/app"
	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
	"github.com/zeroclaw-io/fleetdiag/pkg/mqtt"
)

const (
	commandName = "fleetdiag-cloud"
	commandDesc = `fleetdiag-cloud is the cloud-side command dispatcher. It subscribes to
a fleet's shared command-response, heartbeat, and telemetry topics,
tracks pending commands against a command store, and serves Prometheus
metrics for every connected replica.`
)

// NewApp builds the cobra-backed application for the cloud dispatcher.
func NewApp() *app.App {
	opts := options.NewCloudOptions()
	return app.NewApp(
		commandName,
		"Run the fleet cloud command dispatcher",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.CloudOptions) app.RunFunc {
	return func(ctx context.Context) error {
		log.Init(opts.Log)

		d, err := build(opts)
		if err != nil {
			return fmt.Errorf("fleetdiag-cloud: %w", err)
		}

		go serveMetrics(opts.HTTP.Addr)

		if err := d.Start(ctx); err != nil {
			return fmt.Errorf("fleetdiag-cloud: start dispatcher: %w", err)
		}

		<-ctx.Done()
		return nil
	}
}

// build wires one Dispatcher from validated options: an MQTT channel and
// either a Redis-backed or in-memory command store.
func build(opts *options.CloudOptions) (*cloud.Dispatcher, error) {
	client, err := mqtt.NewClient(opts.Mqtt.ToClientConfig())
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	channel := transport.NewChannel(client)

	commands, err := buildCommandStore(opts)
	if err != nil {
		return nil, err
	}

	return cloud.New(opts.Identity.FleetID, opts.Identity.Group, channel, commands), nil
}

func buildCommandStore(opts *options.CloudOptions) (store.CommandStore, error) {
	if !opts.Redis.Enabled {
		return store.NewMemoryCommandStore(), nil
	}
	client, err := opts.Redis.Client()
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return store.NewRedisCommandStore(client, opts.Redis.Prefix), nil
}

// serveMetrics runs a Prometheus scrape endpoint on addr until it errors,
// then logs the failure itself; the caller runs it in the background, so
// a failure is not fatal to the dispatcher.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error(err, "metrics server exited")
	}
}
