package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/civicledger/civicledger/business/web/errs"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var errNoTransactions = errors.New("no transactions in the queue")

func TestTrusted(t *testing.T) {
	t.Log("Given the need to carry an HTTP status with an error.")
	{
		err := fmt.Errorf("mining: %w", errs.NewTrusted(errNoTransactions, http.StatusBadRequest))

		if !errs.IsTrusted(err) {
			t.Fatalf("\t%s\tShould find the trusted error.", failed)
		}
		t.Logf("\t%s\tShould find the trusted error.", success)

		te := errs.GetTrusted(err)
		if te.Status != http.StatusBadRequest || te.Error() != errNoTransactions.Error() {
			t.Fatalf("\t%s\tShould keep the status and message: %d %s", failed, te.Status, te.Error())
		}
		t.Logf("\t%s\tShould keep the status and message.", success)

		if !errors.Is(err, errNoTransactions) {
			t.Fatalf("\t%s\tShould unwrap to the cause.", failed)
		}
		t.Logf("\t%s\tShould unwrap to the cause.", success)

		if errs.GetTrusted(errNoTransactions) != nil {
			t.Fatalf("\t%s\tShould not find a trusted error in a plain error.", failed)
		}
		t.Logf("\t%s\tShould not find a trusted error in a plain error.", success)
	}
}
