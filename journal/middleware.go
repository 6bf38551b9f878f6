package journal

import (
	"context"
	"errors"
	"time"

	"github.com/egorka-gh/gls/gls"
	"github.com/go-kit/kit/endpoint"
	log "github.com/go-kit/kit/log"
)

// Middleware writes an Entry for every call of a gls client endpoint.
// Journal failures are logged, the call result is returned as is.
func Middleware(rep Repository, logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			start := time.Now()
			response, err := next(ctx, request)

			e := Entry{Success: err == nil, Elapsed: time.Since(start)}
			if env, ok := request.(gls.Envelope); ok {
				e.Operation = env.Operation
				e.Reference = env.Reference
			}
			if err != nil {
				e.Message = err.Error()
				var he *gls.HTTPError
				if errors.As(err, &he) {
					e.HTTPCode = he.StatusCode
				}
			}
			//journal must not depend on caller's cancel
			if jerr := rep.Log(context.Background(), e); jerr != nil && logger != nil {
				logger.Log("journal", e.Operation, "err", jerr.Error())
			}
			return response, err
		}
	}
}

// Options returns client options journaling all operations
func Options(rep Repository, logger log.Logger) []gls.Option {
	var opts []gls.Option
	for _, op := range []string{gls.OpPrintLabels, gls.OpDeleteLabels, gls.OpGetParcelStatuses} {
		opts = append(opts, gls.WithMiddleware(op, Middleware(rep, logger)))
	}
	return opts
}
