// Command tdcore-demo wires odin-tdcore's ambient stack around its two
// cores (OMI and CDL) and exercises both against the tdclient mock
// collaborator, following go-server-3/cmd/odin-ws/main.go's
// config→logger→metrics→transport construction order and
// signal.NotifyContext-driven graceful shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"odin-tdcore/internal/config"
	"odin-tdcore/internal/dispatch"
	"odin-tdcore/internal/eventbus"
	"odin-tdcore/internal/logging"
	"odin-tdcore/internal/metrics"
	"odin-tdcore/internal/observability"
	"odin-tdcore/internal/omi"
	"odin-tdcore/internal/tdclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	metricsRegistry := metrics.NewRegistry()

	var publisher *eventbus.Publisher
	if cfg.EventBus.Enabled {
		publisher, err = eventbus.Connect(eventbus.Config{URL: cfg.EventBus.URL, Subject: cfg.EventBus.Subject}, logger)
		if err != nil {
			logger.Warn("event bus unavailable, continuing without it", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	d := dispatch.New(func(cb dispatch.Callback) dispatch.TdClient {
		return tdclient.New(cb, 50*time.Millisecond)
	}).WithOutputQueueSize(cfg.Dispatch.OutputQueueSize)
	if publisher != nil {
		d.WithEventBus(dispatch.Publishers(publisher, metricsRegistry.Publisher()))
	} else {
		d.WithEventBus(metricsRegistry.Publisher())
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obsServer := observability.NewServer(cfg.Metrics.ListenAddr, d, metricsRegistry, logger)
	if cfg.Metrics.Enabled {
		if err := obsServer.Start(ctx); err != nil {
			logger.Fatal("observability server failed to start", zap.Error(err))
		}
	}

	runOMIWalkthrough(logger, metricsRegistry)
	runDispatchWalkthrough(ctx, logger, d, cfg.Dispatch.ReceiveTimeout)

	<-ctx.Done()
	logger.Info("shutdown signal received")
}

// runOMIWalkthrough exercises the Ordered Message Index against a
// pretend dialog's history, logging the kind of operations a real
// caller would perform.
func runOMIWalkthrough(logger *zap.Logger, metricsRegistry *metrics.Registry) {
	var tree omi.Tree
	for _, id := range []omi.MessageID{100, 200, 300, 400} {
		tree.Insert(id)
		metricsRegistry.OMI.Inserts.Inc()
	}
	tree.AttachToPrevious(200)
	metricsRegistry.OMI.Attaches.Inc()
	tree.AttachToPrevious(300)
	metricsRegistry.OMI.Attaches.Inc()

	older := tree.FindOlderMessages(300)
	metricsRegistry.OMI.RangeScans.Inc()
	logger.Info("omi walkthrough", zap.Int("indexed", tree.Len()), zap.Any("older_than_or_equal_300", older))

	tree.Erase(400)
	metricsRegistry.OMI.Erases.Inc()
	logger.Info("omi walkthrough after erase", zap.Int("indexed", tree.Len()))
}

// runDispatchWalkthrough creates a couple of clients, sends a few calls,
// and drains responses for a bounded window, logging each Response.
func runDispatchWalkthrough(ctx context.Context, logger *zap.Logger, d *dispatch.Dispatcher, timeout time.Duration) {
	clientA := d.CreateClient()
	clientB := d.CreateClient()

	d.Send(clientA, 1, dispatch.Request{Function: tdclient.Call{Method: "ping", Args: map[string]any{"from": "a"}}})
	d.Send(clientB, 1, dispatch.Request{Function: tdclient.Call{Method: "ping", Args: map[string]any{"from": "b"}}})
	d.Send(clientA, 2, dispatch.Request{Function: tdclient.Call{Method: "fail"}})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		r := d.Receive(timeout)
		if r.IsEmpty() {
			continue
		}
		logger.Info("dispatch response", zap.Uint32("client_id", uint32(r.ClientID)), zap.Uint64("request_id", uint64(r.RequestID)), zap.Any("object", r.Object))
	}
}
