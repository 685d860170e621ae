package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/auth"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "STORE"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Name = cfg.Session.CookieName
	sessionManager.Cookie.Secure = cfg.Session.SecureCookie
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	limiter := rate.NewLimiter(cfg.Auth.LoginBurst, cfg.Auth.LoginExpiry, rate.Every(cfg.Auth.LoginInterval))
	defer limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Oauth.DiscoveryTimeout)
	defer cancel()
	google := cfg.Oauth.Google
	oauthProvs, err := auth.MakeProviders(ctx, []auth.ProviderConfig{
		{Name: "google", Client: google.Client, Secret: google.Secret, URL: google.URL, RedirectURL: google.RedirectURL},
	})
	if err != nil {
		return fmt.Errorf("failed to discover oauth providers: %w", err)
	}

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:       cfg.Cors.Origin,
		Log:              logger,
		DB:               db,
		Session:          sessionManager,
		LoginLimiter:     limiter,
		Providers:        oauthProvs,
		LoginRedirectURL: cfg.Oauth.LoginRedirectURL,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
