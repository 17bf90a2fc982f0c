// Loadtest pushes N messages from P producer tasks through a single consumer
// agent and reports throughput.
//
// Configuration via environment:
//
//	N         total messages (default 1_000_000)
//	P         producer tasks (default 8)
//	MAILBOX   mailbox capacity (default 1024)
//	PROM_PORT if set, serve Prometheus metrics on this port
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/petekubiak/post-haste/adapters/prometheus"
	"github.com/petekubiak/post-haste/core/post"
)

var (
	numMessages  = getEnvInt("N", 1_000_000)
	numProducers = getEnvInt("P", 8)
	mailboxSize  = getEnvInt("MAILBOX", 1024)
	promPort     = getEnvInt("PROM_PORT", 0)
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

type addr uint8

const (
	addrSink addr = iota
)

func (a addr) String() string { return "sink" }

// sink counts received payloads and closes done at the target.
type sink struct {
	target int
	seen   int
	done   chan struct{}
}

func (s *sink) Create(a addr, cfg any) error {
	s.done = make(chan struct{})
	return nil
}

func (s *sink) Run(ctx context.Context, inbox *post.Inbox[addr, int]) {
	for {
		if _, err := inbox.Receive(ctx); err != nil {
			return
		}
		s.seen++
		if s.seen == s.target {
			close(s.done)
		}
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	metrics := post.NopMetrics()
	if promPort > 0 {
		reg := prometheus.NewRegistry()
		metrics = promadapter.NewRuntimeMetrics(reg)
		go func() {
			listen := fmt.Sprintf(":%d", promPort)
			log.Info("serving metrics", slog.String("addr", listen))
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(listen, mux); err != nil {
				log.Error("metrics server", slog.Any("error", err))
			}
		}()
	}

	pm, err := post.New(post.Options[addr, int]{
		Addresses:   []addr{addrSink},
		MailboxSize: mailboxSize,
		Logger:      log,
		Metrics:     metrics,
	})
	if err != nil {
		log.Error("create postmaster", slog.Any("error", err))
		os.Exit(1)
	}

	consumer := &sink{target: numMessages}
	if err := pm.Register(addrSink, consumer, nil); err != nil {
		log.Error("register sink", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("starting",
		slog.Int("messages", numMessages),
		slog.Int("producers", numProducers),
		slog.Int("mailbox", mailboxSize),
	)

	ctx := context.Background()
	start := time.Now()

	var wg sync.WaitGroup
	per := numMessages / numProducers
	extra := numMessages % numProducers
	for p := 0; p < numProducers; p++ {
		n := per
		if p == 0 {
			n += extra
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if err := pm.Send(ctx, addrSink, addrSink, i); err != nil {
					log.Error("send", slog.Any("error", err))
					return
				}
			}
		}(n)
	}
	wg.Wait()
	<-consumer.done

	elapsed := time.Since(start)
	log.Info("done",
		slog.Duration("elapsed", elapsed),
		slog.Int("messages", numMessages),
		slog.Float64("msgs_per_sec", float64(numMessages)/elapsed.Seconds()),
	)

	pm.Shutdown()
}
