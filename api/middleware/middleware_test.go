package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

type payload struct {
	Name     string `json:"name" validate:"required,min=3"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=100"`
}

func serve(t *testing.T, h web.Handler, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	h = web.WrapMiddleware([]web.Middleware{RequestID(), Logger(log), Errors(log), Panics()}, h)

	w := httptest.NewRecorder()
	if err := h(r.Context(), w, r); err != nil {
		t.Fatalf("unhandled error: %v", err)
	}
	return w
}

func TestRequestID(t *testing.T) {
	ok := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, ContextRequestID(ctx), http.StatusOK)
	}

	w := serve(t, ok, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated request id")
	}
	var got string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Fatalf("context id %q differs from header %q", got, id)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, strings.Repeat("x", 300))
	w = serve(t, ok, r)
	if n := len(w.Header().Get(RequestIDHeader)); n != maxRequestIDLen {
		t.Fatalf("expected client id truncated to %d, got %d", maxRequestIDLen, n)
	}
}

func TestErrorsRendersValidationFields(t *testing.T) {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return weberr.Invalid(validate.Check(payload{Name: "ab", Quantity: 101}))
	}

	w := serve(t, h, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var er weberr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&er); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"name", "quantity"}, keys(er.Fields)); diff != "" {
		t.Fatalf("invalid fields (-want +got):\n%s", diff)
	}
}

func TestErrorsHidesInternalErrors(t *testing.T) {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: connection refused")
	}

	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	}

	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
