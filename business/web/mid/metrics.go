package mid

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/civicledger/civicledger/business/sys/metrics"
	"github.com/civicledger/civicledger/foundation/web"
)

// Metrics updates program counters.
func Metrics(m *metrics.Metrics) web.Middleware {
	var requests atomic.Int64

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			m.AddRequests()

			// Sample the goroutines every 100 requests.
			if requests.Add(1)%100 == 0 {
				m.SampleGoroutines()
			}

			if err != nil {
				m.AddErrors()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
