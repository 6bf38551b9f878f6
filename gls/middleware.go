package gls

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/endpoint"
	log "github.com/go-kit/kit/log"
)

// LoggingMiddleware logs every call: request, result, err and elapsed.
// Envelope and Response are Stringers, so neither the body nor the
// password hash reach the log.
func LoggingMiddleware(l log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (result interface{}, err error) {
			var req, resp string

			defer func(b time.Time) {
				l.Log(
					"request", req,
					"result", resp,
					"err", err,
					"elapsed", time.Since(b),
				)
			}(time.Now())
			if r, ok := request.(fmt.Stringer); ok {
				req = r.String()
			} else {
				req = fmt.Sprintf("%T", request)
			}
			result, err = next(ctx, request)
			if r, ok := result.(fmt.Stringer); ok {
				resp = r.String()
			} else if result != nil {
				resp = fmt.Sprintf("%T", result)
			}
			return
		}
	}
}
