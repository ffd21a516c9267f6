// Package viewgrp serves the browser page for the block viewer.
package viewgrp

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/civicledger/civicledger/foundation/web"
)

//go:embed index.html
var index []byte

// Index serves the block viewer page. The page reads the blocks and the
// queue from the v1 API and follows the event stream.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
