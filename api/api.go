package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api/middleware"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/auth"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/cart/stores/cartdb"
	"github.com/irsalhamdi/storefront/core/category"
	"github.com/irsalhamdi/storefront/core/category/stores/categorydb"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/core/product/stores/productdb"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/core/user/stores/userdb"
	"github.com/irsalhamdi/storefront/core/wishlist"
	"github.com/irsalhamdi/storefront/core/wishlist/stores/wishlistdb"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	LoginLimiter     *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	pc := product.NewCore(cfg.Log, productdb.NewStore(cfg.Log, cfg.DB))
	cc := category.NewCore(cfg.Log, categorydb.NewStore(cfg.Log, cfg.DB))
	uc := user.NewCore(cfg.Log, userdb.NewStore(cfg.Log, cfg.DB))
	crt := cart.NewCore(cfg.Log, cartdb.NewStore(cfg.Log, cfg.DB))
	wc := wishlist.NewCore(cfg.Log, wishlistdb.NewStore(cfg.Log, cfg.DB), pc)

	sess := auth.NewSession(cfg.Log, cfg.Session, crt.Merge, wc.Merge)
	sm := cfg.Session

	a.mw = append(a.mw, auth.LoadAndSave(sm))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())
	a.mw = append(a.mw, auth.Identify(sess))

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(sess)
	admin := auth.Admin(sess)

	a.Handle(http.MethodGet, "/readiness", handleReadiness(cfg.DB))

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(uc, sess))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(uc, sess, cfg.LoginLimiter))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(sess))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(sess, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(uc, sess, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(uc), authen)
	a.Handle(http.MethodPut, "/users/current", user.HandleUpdateCurrent(uc), authen)
	a.Handle(http.MethodPut, "/users/current/password", user.HandleChangePassword(uc), authen)

	a.Handle(http.MethodGet, "/categories", category.HandleList(cc))
	a.Handle(http.MethodGet, "/categories/{slug}", category.HandleShow(cc))
	a.Handle(http.MethodPost, "/categories", category.HandleCreate(cc), admin)
	a.Handle(http.MethodPost, "/categories/{slug}/subcategories", category.HandleCreateSub(cc), admin)

	a.Handle(http.MethodGet, "/products", product.HandleList(pc))
	a.Handle(http.MethodGet, "/products/{slug}", product.HandleShow(pc))
	a.Handle(http.MethodGet, "/products/{id}/prices", product.HandleListPrices(pc))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(pc), admin)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(pc), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(crt, sm))
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(crt, sm))
	a.Handle(http.MethodPost, "/cart/items/{product_id}", cart.HandleAddItem(crt, pc, sm))
	a.Handle(http.MethodPut, "/cart/items/{product_id}", cart.HandleUpdateItem(crt, sm))
	a.Handle(http.MethodPost, "/cart/items/{product_id}/decrement", cart.HandleDecrementItem(crt, sm))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(crt, sm))

	a.Handle(http.MethodGet, "/wishlist", wishlist.HandleShow(wc, sm))
	a.Handle(http.MethodGet, "/wishlist/ids", wishlist.HandleListIDs(wc, sm))
	a.Handle(http.MethodDelete, "/wishlist", wishlist.HandleClear(wc, sm))
	a.Handle(http.MethodPost, "/wishlist/items/{product_id}/toggle", wishlist.HandleToggleItem(wc, pc, sm))
	a.Handle(http.MethodPut, "/wishlist/items/{product_id}", wishlist.HandleAddItem(wc, pc, sm))
	a.Handle(http.MethodDelete, "/wishlist/items/{product_id}", wishlist.HandleDeleteItem(wc, sm))

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleReadiness(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return weberr.NewError(err, "database not ready", http.StatusServiceUnavailable)
		}

		return web.Respond(ctx, w, struct {
			Status string `json:"status"`
		}{Status: "ok"}, http.StatusOK)
	}
}
