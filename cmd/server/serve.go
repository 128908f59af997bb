package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/ga-dashboard/authflow"
	"github.com/jrsteele09/ga-dashboard/credentials"
	"github.com/jrsteele09/ga-dashboard/internal/config"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/jrsteele09/ga-dashboard/server"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"golang.org/x/oauth2"
)

const janitorInterval = time.Minute

func runServe(ctx context.Context, envFiles []string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	logging.Init(cfg.GetEnv(), cfg.GetLogLevel())
	displayAppname(cfg.GetAppName())
	log := logging.Logger()

	repo, closeRepo, err := newSessionRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	oauthConfig := newOAuthConfig(cfg)
	var verifier *oidc.IDTokenVerifier
	if cfg.GetOIDCIdentity() {
		if verifier, err = authflow.NewGoogleVerifier(ctx, cfg.GetClientID()); err != nil {
			return err
		}
	}
	creds := credentials.NewStore(repo, oauthConfig)

	handler, err := server.New(cfg, server.Deps{
		Sessions: repo,
		Auth: authflow.New(oauthConfig, repo, creds, authflow.Options{
			Verifier:        verifier,
			ExchangeTimeout: cfg.GetExchangeTimeout(),
		}),
		Credentials: creds,
		Reports:     newGateway(cfg),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}
	if err := shutdown(httpServer); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func newOAuthConfig(cfg config.Config) *oauth2.Config {
	return authflow.NewOAuth2Config(cfg.GetClientID(), cfg.GetClientSecret(), cfg.GetRedirectURI(), cfg.GetOIDCIdentity(), oauth2.Endpoint{})
}

func newGateway(cfg config.Config) *reports.Gateway {
	return reports.NewGateway(reports.GatewayConfig{
		PropertyID:     cfg.GetPropertyID(),
		Endpoint:       cfg.GetAnalyticsEndpoint(),
		BreakerEnabled: cfg.GetBreakerEnabled(),
	})
}

// newSessionRepo builds the configured session store and returns its closer.
func newSessionRepo(ctx context.Context, cfg config.Config) (sessions.Repo, func(), error) {
	switch cfg.GetSessionStore() {
	case config.SessionStoreRedis:
		client, err := sessions.ConnectRedis(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		sealer, err := sessions.NewSealer(cfg.GetSessionSecret())
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logging.Logger().Info().Msg("session store: redis")
		return sessions.NewRedisRepo(client, sealer), func() { _ = client.Close() }, nil
	default:
		repo := sessions.NewInMemoryRepo()
		repo.StartJanitor(ctx, janitorInterval)
		logging.Logger().Info().Msg("session store: memory")
		return repo, func() {}, nil
	}
}

func listenAndServe(server *http.Server) error {
	logging.Logger().Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
