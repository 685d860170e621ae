// Package dbtest starts a disposable postgres for integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/sirupsen/logrus"
)

// New starts a postgres container, applies the migrations and returns a
// connection to it. The test is skipped when no docker daemon is reachable.
func New(t *testing.T, name string) *sqlx.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "14-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=" + name,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})
	_ = res.Expire(300)

	cfg := database.Config{
		User:         "postgres",
		Password:     "postgres",
		Host:         res.GetHostPort("5432/tcp"),
		Name:         name,
		MaxIdleConns: 2,
		MaxOpenConns: 20,
		DisableTLS:   true,
	}

	var db *sqlx.DB
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		var err error
		if db, err = database.Open(cfg); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return database.StatusCheck(ctx, db)
	})
	if err != nil {
		t.Fatalf("waiting for postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return db
}

// Logger returns a logger that only reports through the test log.
func Logger(t *testing.T) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(testWriter{t})
	log.SetLevel(logrus.DebugLevel)
	return log
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
