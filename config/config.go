package config

import (
	"time"

	"github.com/irsalhamdi/storefront/database"
)

type Config struct {
	Web     Web
	DB      database.Config
	Cors    Cors
	Session Session
	Auth    Auth
	Oauth   Oauth
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type Session struct {
	Lifetime     time.Duration `conf:"default:336h"`
	CookieName   string        `conf:"default:sessionid"`
	SecureCookie bool          `conf:"default:false"`
}

type Auth struct {
	LoginBurst    int           `conf:"default:5"`
	LoginInterval time.Duration `conf:"default:12s"`
	LoginExpiry   time.Duration `conf:"default:30m"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:10s"`
	LoginRedirectURL string        `conf:"default:/"`
	Google           Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string
}
