package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/civicledger/civicledger/app/services/node/handlers"
	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/business/core/profile/stores/profiledb"
	"github.com/civicledger/civicledger/business/sys/database"
	"github.com/civicledger/civicledger/business/sys/metrics"
	"github.com/civicledger/civicledger/business/web/errs"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/blockchain/storage/sqlite"
	"github.com/civicledger/civicledger/foundation/events"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type node struct {
	public  http.Handler
	debug   http.Handler
	blockDB *sqlx.DB
}

func newNode(t *testing.T) node {
	t.Helper()

	log := zap.NewNop().Sugar()
	dir := t.TempDir()

	open := func(name string, schema database.Schema) *sqlx.DB {
		db, err := database.Open(database.Config{Path: filepath.Join(dir, name)})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open %s: %v", failed, name, err)
		}
		t.Cleanup(func() { db.Close() })

		if err := database.Migrate(db, schema); err != nil {
			t.Fatalf("\t%s\tShould be able to migrate %s: %v", failed, name, err)
		}
		return db
	}

	profileDB := open("profiles.db", database.ProfilesSchema)
	blockDB := open("blocks.db", database.BlocksSchema)

	prfCore := profile.NewCore(log, profiledb.NewStore(log, profileDB))

	strg, err := sqlite.New(blockDB)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct block storage: %v", failed, err)
	}

	st, err := state.New(context.Background(), state.Config{
		Directory: prfCore,
		Storage:   strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}

	m, err := metrics.New(metrics.NewChainCollector(st), metrics.NewProfileCountCollector(profileDB.DB))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct metrics: %v", failed, err)
	}

	evts := events.New()
	t.Cleanup(evts.Shutdown)

	return node{
		public: handlers.PublicMux(handlers.MuxConfig{
			Shutdown: make(chan os.Signal, 1),
			Log:      log,
			Metrics:  m,
			State:    st,
			Profile:  prfCore,
			Evts:     evts,
		}),
		debug: handlers.DebugMux(handlers.DebugConfig{
			Build:     "test",
			Log:       log,
			Metrics:   m,
			ProfileDB: profileDB,
			BlockDB:   blockDB,
		}),
		blockDB: blockDB,
	}
}

func call(h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int, dest any) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("\t%s\tShould receive status %d, got %d: %s", failed, status, w.Code, w.Body.String())
	}

	if dest != nil {
		if err := json.NewDecoder(w.Body).Decode(dest); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %v", failed, err)
		}
	}
}

func TestProfiles(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to work with the profile builder.")
	{
		t.Logf("\tTest 0:\tWhen registering without a phone number.")
		{
			var resp errs.Response
			expect(t, call(n.public, http.MethodPost, "/v1/profiles", map[string]string{"name": "Ada Lovelace"}), http.StatusBadRequest, &resp)

			if resp.Error != "please fill out the required fields" || resp.Fields["phone_number"] == "" {
				t.Fatalf("\t%s\tTest 0:\tShould ask for the required fields: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould ask for the required fields.", success)
		}

		var created struct {
			ID      string `json:"identifier"`
			Address string `json:"shareable_address"`
		}

		t.Logf("\tTest 1:\tWhen registering a person.")
		{
			np := map[string]any{
				"name":           "Ada Lovelace",
				"phone_number":   "5550100",
				"education_info": map[string]string{"degree": "Mathematics"},
			}
			expect(t, call(n.public, http.MethodPost, "/v1/profiles", np), http.StatusCreated, &created)

			if len(created.ID) != profile.IdentifierLength || created.Address != profile.Address("Ada Lovelace", "5550100", created.ID) {
				t.Fatalf("\t%s\tTest 1:\tShould issue an identity: %+v", failed, created)
			}
			t.Logf("\t%s\tTest 1:\tShould issue an identity.", success)
		}

		t.Logf("\tTest 2:\tWhen looking up a profile.")
		{
			var got struct {
				Name      string            `json:"name"`
				Education map[string]string `json:"education_info"`
			}
			expect(t, call(n.public, http.MethodGet, "/v1/profiles/"+created.Address, nil), http.StatusOK, &got)
			if got.Name != "Ada Lovelace" || got.Education["degree"] != "Mathematics" {
				t.Fatalf("\t%s\tTest 2:\tShould return the profile: %+v", failed, got)
			}
			t.Logf("\t%s\tTest 2:\tShould return the profile.", success)

			expect(t, call(n.public, http.MethodGet, "/v1/profiles/unknown", nil), http.StatusNotFound, nil)
			t.Logf("\t%s\tTest 2:\tShould report a missing profile.", success)
		}

		t.Logf("\tTest 3:\tWhen listing profiles.")
		{
			var page struct {
				Total int `json:"total"`
			}
			expect(t, call(n.public, http.MethodGet, "/v1/profiles?page=1&rows=10", nil), http.StatusOK, &page)
			if page.Total != 1 {
				t.Fatalf("\t%s\tTest 3:\tShould count one profile, got %d.", failed, page.Total)
			}
			t.Logf("\t%s\tTest 3:\tShould list the profiles.", success)

			expect(t, call(n.public, http.MethodGet, "/v1/profiles?page=abc", nil), http.StatusBadRequest, nil)
			t.Logf("\t%s\tTest 3:\tShould reject a bad page.", success)
		}
	}
}

func TestLedger(t *testing.T) {
	n := newNode(t)

	var created struct {
		Address string `json:"shareable_address"`
	}
	expect(t, call(n.public, http.MethodPost, "/v1/profiles", map[string]string{"name": "Grace Hopper", "phone_number": "5550199"}), http.StatusCreated, &created)

	t.Log("Given the need to request services and mine blocks.")
	{
		t.Logf("\tTest 0:\tWhen the queue is empty.")
		{
			var services []string
			expect(t, call(n.public, http.MethodGet, "/v1/services", nil), http.StatusOK, &services)
			if len(services) != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould list five services, got %d.", failed, len(services))
			}
			t.Logf("\t%s\tTest 0:\tShould list the services.", success)

			var resp errs.Response
			expect(t, call(n.public, http.MethodPost, "/v1/mining/start", nil), http.StatusBadRequest, &resp)
			if resp.Error != state.ErrNoTransactions.Error() {
				t.Fatalf("\t%s\tTest 0:\tShould report an empty queue: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould report an empty queue.", success)

			expect(t, call(n.public, http.MethodGet, "/v1/blocks/list", nil), http.StatusNoContent, nil)
			t.Logf("\t%s\tTest 0:\tShould have no blocks.", success)
		}

		t.Logf("\tTest 1:\tWhen submitting bad requests.")
		{
			var resp errs.Response
			expect(t, call(n.public, http.MethodPost, "/v1/requests", map[string]string{"shareable_address": strings.Repeat("0", 64), "service": "Passport Renewal"}), http.StatusNotFound, &resp)
			if !strings.Contains(resp.Error, state.ErrUnknownAddress.Error()) {
				t.Fatalf("\t%s\tTest 1:\tShould report the address is not found: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould report the address is not found.", success)

			expect(t, call(n.public, http.MethodPost, "/v1/requests", map[string]string{"shareable_address": created.Address, "service": "Dog Licence"}), http.StatusBadRequest, nil)
			t.Logf("\t%s\tTest 1:\tShould reject an unknown service.", success)

			expect(t, call(n.public, http.MethodPost, "/v1/requests", map[string]string{"service": "Passport Renewal"}), http.StatusBadRequest, nil)
			t.Logf("\t%s\tTest 1:\tShould reject a missing address.", success)
		}

		t.Logf("\tTest 2:\tWhen submitting six requests.")
		{
			for i := range 6 {
				var resp struct {
					Queue []any `json:"queue"`
				}
				expect(t, call(n.public, http.MethodPost, "/v1/requests", map[string]string{"shareable_address": created.Address, "service": "Background Check"}), http.StatusOK, &resp)
				if len(resp.Queue) != i+1 {
					t.Fatalf("\t%s\tTest 2:\tShould return the queue, got %d.", failed, len(resp.Queue))
				}
			}
			t.Logf("\t%s\tTest 2:\tShould queue every request.", success)

			var q struct {
				BlockSize    int   `json:"block_size"`
				Transactions []any `json:"transactions"`
			}
			expect(t, call(n.public, http.MethodGet, "/v1/tx/queue", nil), http.StatusOK, &q)
			if q.BlockSize != 5 || len(q.Transactions) != 6 {
				t.Fatalf("\t%s\tTest 2:\tShould show the queue: %+v", failed, q)
			}
			t.Logf("\t%s\tTest 2:\tShould show the queue.", success)
		}

		t.Logf("\tTest 3:\tWhen mining.")
		{
			var resp struct {
				Blocks []struct {
					Number       uint64 `json:"block_id"`
					PrevHash     string `json:"previous_hash"`
					Transactions []any  `json:"transactions"`
				} `json:"blocks"`
				QueueLength int `json:"queue_length"`
			}
			expect(t, call(n.public, http.MethodPost, "/v1/mining/start", nil), http.StatusOK, &resp)

			if len(resp.Blocks) != 2 || len(resp.Blocks[0].Transactions) != 5 || len(resp.Blocks[1].Transactions) != 1 || resp.QueueLength != 0 {
				t.Fatalf("\t%s\tTest 3:\tShould mine two blocks: %+v", failed, resp)
			}
			if resp.Blocks[0].PrevHash != strings.Repeat("0", 64) {
				t.Fatalf("\t%s\tTest 3:\tShould link the first block to the zero hash.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould mine two blocks.", success)

			var blocks []any
			expect(t, call(n.public, http.MethodGet, "/v1/blocks/list/"+created.Address, nil), http.StatusOK, &blocks)
			if len(blocks) != 2 {
				t.Fatalf("\t%s\tTest 3:\tShould find the blocks for the address, got %d.", failed, len(blocks))
			}
			t.Logf("\t%s\tTest 3:\tShould find the blocks for the address.", success)
		}

		t.Logf("\tTest 4:\tWhen opening the block viewer.")
		{
			w := call(n.public, http.MethodGet, "/", nil)
			expect(t, w, http.StatusOK, nil)
			if !strings.Contains(w.Body.String(), "Block Viewer") {
				t.Fatalf("\t%s\tTest 4:\tShould serve the viewer page.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould serve the viewer page.", success)
		}

		t.Logf("\tTest 5:\tWhen checking the debug endpoints.")
		{
			expect(t, call(n.debug, http.MethodGet, "/debug/readiness", nil), http.StatusOK, nil)
			t.Logf("\t%s\tTest 5:\tShould be ready.", success)

			w := call(n.debug, http.MethodGet, "/metrics", nil)
			expect(t, w, http.StatusOK, nil)
			for _, want := range []string{"civicledger_ledger_chain_height 2", "civicledger_profiles_total_count"} {
				if !strings.Contains(w.Body.String(), want) {
					t.Fatalf("\t%s\tTest 5:\tShould report %q.", failed, want)
				}
			}
			t.Logf("\t%s\tTest 5:\tShould report the ledger metrics.", success)
		}

		t.Logf("\tTest 6:\tWhen the blocks table cannot be written.")
		{
			expect(t, call(n.public, http.MethodPost, "/v1/requests", map[string]string{"shareable_address": created.Address, "service": "Passport Renewal"}), http.StatusOK, nil)

			if _, err := n.blockDB.Exec(`DROP TABLE blocks`); err != nil {
				t.Fatalf("\t%s\tTest 6:\tShould be able to drop the blocks table: %v", failed, err)
			}

			var resp errs.Response
			expect(t, call(n.public, http.MethodPost, "/v1/mining/start", nil), http.StatusInternalServerError, &resp)
			if !strings.Contains(resp.Error, state.ErrSaveBlock.Error()) || !strings.Contains(resp.Error, "no such table: blocks") {
				t.Fatalf("\t%s\tTest 6:\tShould report the database message: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 6:\tShould report the database message.", success)

			var q struct {
				Transactions []any `json:"transactions"`
			}
			expect(t, call(n.public, http.MethodGet, "/v1/tx/queue", nil), http.StatusOK, &q)
			if len(q.Transactions) != 1 {
				t.Fatalf("\t%s\tTest 6:\tShould keep the request queued, got %d.", failed, len(q.Transactions))
			}
			t.Logf("\t%s\tTest 6:\tShould keep the request queued.", success)
		}
	}
}
