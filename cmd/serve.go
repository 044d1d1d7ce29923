package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kodekulture/tokenlink/handler"
	"github.com/kodekulture/tokenlink/handler/token"
	"github.com/kodekulture/tokenlink/internal/config"
	"github.com/kodekulture/tokenlink/repository"
	"github.com/kodekulture/tokenlink/repository/badgr"
	"github.com/kodekulture/tokenlink/repository/postgres"
	"github.com/kodekulture/tokenlink/repository/redis"
	"github.com/kodekulture/tokenlink/repository/temp"
	"github.com/kodekulture/tokenlink/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the issue and validate endpoints",
		RunE:  runServe,
	}
}

// stores bundles the store driver chosen by STORE_DRIVER.
type stores struct {
	profiles repository.Profile
	tokens   repository.Token
	close    func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.AutoMigrate {
			if err := postgres.Migrate(cfg.PostgresURL); err != nil {
				return stores{}, err
			}
		}
		db, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return stores{}, err
		}
		return stores{
			profiles: postgres.NewProfileRepo(db),
			tokens:   postgres.NewTokenRepo(db),
			close:    db.Close,
		}, nil
	case "badger":
		db, err := badgr.Open(cfg.BadgerPath)
		if err != nil {
			return stores{}, err
		}
		s := badgr.New(db)
		return stores{profiles: s, tokens: s, close: func() { db.Close() }}, nil
	case "memory":
		zlog.Warn().Msg("using the in-memory store, tokens are lost on restart")
		s := temp.New()
		return stores{profiles: s, tokens: s, close: func() {}}, nil
	default:
		return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func cooldownOption(ctx context.Context, cfg config.Config) (service.Option, func(), error) {
	if cfg.IssueCooldown <= 0 {
		return service.WithCooldown(nil, 0), func() {}, nil
	}
	if cfg.RedisURL == "" {
		return service.WithCooldown(temp.NewCooldown(), cfg.IssueCooldown), func() {}, nil
	}
	cl, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return service.WithCooldown(redis.NewCooldownRepository(cl), cfg.IssueCooldown), func() { cl.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	appCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	st, err := openStores(appCtx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	cooldown, closeCooldown, err := cooldownOption(appCtx, cfg)
	if err != nil {
		return err
	}
	defer closeCooldown()
	srv := service.New(st.profiles, st.tokens, cooldown)

	var tokener token.Handler
	if cfg.SessionKey != "" {
		p, err := token.New([]byte(cfg.SessionKey), "", cfg.SessionTTL)
		if err != nil {
			return err
		}
		tokener = p
	} else {
		zlog.Info().Msg("SESSION_KEY not set, sessions are disabled")
	}
	if cfg.IssuerKeyHash == "" {
		zlog.Warn().Msg("ISSUER_KEY_HASH not set, the issue endpoint relies on the network boundary")
	}

	h := handler.New(srv, tokener, handler.Config{
		IssuerKeyHash: cfg.IssuerKeyHash,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.IsProd(),
		SessionTTL:    cfg.SessionTTL,
	})

	done := make(chan struct{})
	go shutdown(h, done)
	zlog.Info().Str("driver", cfg.StoreDriver).Msgf("server started on port: %s", cfg.Port)
	if err = h.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func shutdown(s *handler.Handler, done chan<- struct{}) {
	// Wait for interrupt signal to gracefully shutdown the server with
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-sig
	zlog.Info().Msg("shutdown started")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		zlog.Err(err).Msg("shutdown failed")
	}
	zlog.Info().Msg("shutdown complete")
	close(done)
}
