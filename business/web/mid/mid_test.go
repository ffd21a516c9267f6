package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/civicledger/civicledger/business/sys/metrics"
	"github.com/civicledger/civicledger/business/sys/validate"
	"github.com/civicledger/civicledger/business/web/errs"
	"github.com/civicledger/civicledger/business/web/mid"
	"github.com/civicledger/civicledger/foundation/web"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type newProfile struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone_number" validate:"required"`
}

func newApp(t *testing.T) *web.App {
	t.Helper()

	m, err := metrics.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct metrics: %v", failed, err)
	}

	log := zap.NewNop().Sugar()
	app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Metrics(m), mid.Panics(m), mid.Cors("*"))

	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("shareable address not found"), http.StatusNotFound)
	})
	app.Handle(http.MethodGet, "v1", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return validate.Check(newProfile{})
	})
	app.Handle(http.MethodGet, "v1", "/internal", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("database is locked")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	return app
}

func TestErrors(t *testing.T) {
	type table struct {
		path   string
		status int
		resp   errs.Response
	}

	tt := []table{
		{path: "/v1/trusted", status: http.StatusNotFound, resp: errs.Response{Error: "shareable address not found"}},
		{path: "/v1/fields", status: http.StatusBadRequest, resp: errs.Response{
			Error: "please fill out the required fields",
			Fields: map[string]string{
				"name":         "name is a required field",
				"phone_number": "phone_number is a required field",
			},
		}},
		{path: "/v1/internal", status: http.StatusInternalServerError, resp: errs.Response{Error: http.StatusText(http.StatusInternalServerError)}},
		{path: "/v1/panic", status: http.StatusInternalServerError, resp: errs.Response{Error: http.StatusText(http.StatusInternalServerError)}},
	}

	app := newApp(t)

	t.Log("Given the need to respond to errors in a uniform way.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen calling %s.", testID, tst.path)
			{
				r := httptest.NewRequest(http.MethodGet, tst.path, nil)
				w := httptest.NewRecorder()
				app.ServeHTTP(w, r)

				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)

				var got errs.Response
				if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould decode the response: %v", failed, testID, err)
				}

				if diff := cmp.Diff(tst.resp, got); diff != "" {
					t.Fatalf("\t%s\tTest %d:\tShould receive the expected response. Diff:\n%s", failed, testID, diff)
				}
				t.Logf("\t%s\tTest %d:\tShould receive the expected response.", success, testID)

				if w.Header().Get("Access-Control-Allow-Origin") != "*" {
					t.Fatalf("\t%s\tTest %d:\tShould set the CORS headers.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould set the CORS headers.", success, testID)
			}
		}
	}
}
