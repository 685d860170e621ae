package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/irsalhamdi/storefront/api/web"
)

const (
	RequestIDHeader = "X-Request-Id"

	// maxRequestIDLen caps ids supplied by clients.
	maxRequestIDLen = 128
)

type reqIDKeyCtx int

const reqIDKey reqIDKeyCtx = 1

// RequestID tags every request with an id, reusing the one sent by the
// client when there is one. The id is echoed back in the response headers.
func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := r.Header.Get(RequestIDHeader)
			switch {
			case id == "":
				id = uuid.NewString()
			case len(id) > maxRequestIDLen:
				id = id[:maxRequestIDLen]
			}

			ctx = context.WithValue(ctx, reqIDKey, id)
			w.Header().Set(RequestIDHeader, id)

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
