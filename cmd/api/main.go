package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/config"
	"github.com/cureverse/cureverse/internal/handler"
	"github.com/cureverse/cureverse/internal/handler/channel"
	"github.com/cureverse/cureverse/internal/metrics"
	"github.com/cureverse/cureverse/internal/model/symptom"
	"github.com/cureverse/cureverse/internal/service/assistant"
	"github.com/cureverse/cureverse/internal/service/chat"
	"github.com/cureverse/cureverse/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// run wires the server and blocks until ctx is cancelled. Deferred cleanup
// runs before it returns.
func run(ctx context.Context) error {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	logLevel := "info"
	if cfg != nil {
		logLevel = cfg.LogLevel
	}
	logging.Setup(os.Stderr, logLevel)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	symptomStore := symptom.NewMemoryStore(symptom.Seed())
	chatService := chat.NewService()
	m := metrics.New()

	opts := []assistant.Option{assistant.WithHistoryLimit(cfg.AI.HistoryLimit)}
	if cfg.AI.Enabled() {
		generator, err := assistant.NewChainGenerator(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize AI chain, continuing without free-form answers; check the ARK_* environment variables")
		} else {
			opts = append(opts, assistant.WithGenerator(generator))
			log.Info().Str("model", cfg.AI.Model).Msg("AI chain initialized")
		}
	} else {
		log.Info().Msg("Ark credentials not configured, skipping AI initialization")
	}

	assistantService := assistant.New(symptomStore, chatService, opts...)
	responder := channel.NewResponder(assistantService, m)

	if cfg.NATS.Enabled() {
		bridge, nc, err := startBridge(ctx, cfg.NATS, responder)
		if err != nil {
			log.Warn().Err(err).Msg("NATS bridge unavailable, serving WebSocket only")
		} else {
			defer func() {
				if err := bridge.Close(); err != nil {
					log.Warn().Err(err).Msg("NATS drain incomplete")
					nc.Close()
				}
			}()
		}
	}

	router := handler.NewRouter(symptomStore, chatService, responder, m)

	return startServer(ctx, cfg.Server, router)
}

func startBridge(ctx context.Context, cfg config.NATSConfig, responder *channel.Responder) (*channel.Bridge, *nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("cureverse-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "connect nats %s", cfg.URL)
	}
	bridge, err := channel.NewBridge(ctx, nc, cfg.SubjectPrefix, responder)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return bridge, nc, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("CureVerse backend listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
