package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/core/auth"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/core/user/stores/userdb"
	"github.com/irsalhamdi/storefront/database/dbtest"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/jmoiron/sqlx"
)

type TestEnv struct {
	*httptest.Server
	DB *sqlx.DB

	AdminEmail string
	AdminPass  string
	UserEmail  string
	UserPass   string
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	db := dbtest.New(t, name)
	log := dbtest.Logger(t)

	limiter := rate.NewLimiter(5, time.Minute, rate.Every(time.Minute))
	t.Cleanup(limiter.Stop)

	mux := api.APIMux(api.APIConfig{
		Log:              log,
		DB:               db,
		Session:          scs.New(),
		LoginLimiter:     limiter,
		Providers:        map[string]auth.Provider{},
		LoginRedirectURL: "/",
	})

	env := &TestEnv{
		Server:     httptest.NewServer(mux),
		DB:         db,
		AdminEmail: "admin@example.com",
		AdminPass:  "admin-password",
		UserEmail:  "user@example.com",
		UserPass:   "user-password",
	}
	t.Cleanup(env.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	env.Client().Jar = jar

	uc := user.NewCore(log, userdb.NewStore(log, db))
	ctx := context.Background()

	users := []user.UserNew{
		{Name: "Admin", Email: env.AdminEmail, Role: claims.RoleAdmin, Password: env.AdminPass},
		{Name: "Shopper", Email: env.UserEmail, Role: claims.RoleUser, Password: env.UserPass},
	}
	for _, nu := range users {
		if _, err := uc.Create(ctx, nu); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", nu.Email, err)
		}
	}

	return env, nil
}

// Do sends body as JSON and decodes the response into out when it is not
// nil. It fails the test unless the response has the wanted status.
func (env *TestEnv) Do(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != wantStatus {
		msg, _ := io.ReadAll(w.Body)
		t.Fatalf("%s %s: expected status %d, got %s: %s", method, path, wantStatus, w.Status, msg)
	}

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
}

func Login(server *httptest.Server, email, pass string) error {
	b, err := json.Marshal(user.Credentials{Email: email, Password: pass})
	if err != nil {
		return err
	}

	w, err := server.Client().Post(server.URL+"/auth/login", "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("can't login: status code %s", w.Status)
	}
	return nil
}

func Logout(server *httptest.Server) error {
	w, err := server.Client().Post(server.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("can't logout: status code %s", w.Status)
	}
	return nil
}
