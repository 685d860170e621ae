package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			log := log.WithFields(logrus.Fields{
				"req_id":     ContextRequestID(ctx),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remoteaddr": r.RemoteAddr,
			})
			if r.URL.RawQuery != "" {
				log = log.WithField("query", r.URL.RawQuery)
			}

			log.Debug("started")
			startTime := time.Now().UTC()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			log = log.WithFields(logrus.Fields{
				"statuscode": lw.Status(),
				"bytes":      lw.BytesWritten(),
				"since":      time.Since(startTime).String(),
			})
			if lw.Status() >= http.StatusInternalServerError {
				log.Warn("completed")
			} else {
				log.Info("completed")
			}
			return err
		}
		return h
	}
	return m
}
