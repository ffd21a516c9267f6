// Package profilegrp maintains the group of handlers for the profile builder.
package profilegrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/business/web/errs"
	"github.com/civicledger/civicledger/foundation/web"
)

// Handlers manages the set of profile endpoints.
type Handlers struct {
	Profile *profile.Core
}

// Create registers a new person and returns the identifier and shareable
// address issued to them.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np profile.NewProfile
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	prf, err := h.Profile.Create(ctx, np)
	if err != nil {
		return fmt.Errorf("profile[%+v]: %w", np, err)
	}

	return web.Respond(ctx, w, toAppProfile(prf), http.StatusCreated)
}

// QueryByAddress returns the profile registered under the shareable address.
func (h Handlers) QueryByAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	prf, err := h.Profile.QueryByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("address[%s]: %w", address, err)
	}

	return web.Respond(ctx, w, toAppProfile(prf), http.StatusOK)
}

// Query returns a page of registered profiles.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return err
	}

	rows, err := queryInt(r, "rows", 10)
	if err != nil {
		return err
	}

	prfs, err := h.Profile.Query(ctx, page, rows)
	if err != nil {
		return fmt.Errorf("unable to query for profiles: %w", err)
	}

	total, err := h.Profile.Count(ctx)
	if err != nil {
		return fmt.Errorf("unable to count profiles: %w", err)
	}

	items := make([]AppProfile, len(prfs))
	for i, prf := range prfs {
		items[i] = toAppProfile(prf)
	}

	resp := AppProfilePage{
		Items:       items,
		Total:       total,
		Page:        page,
		RowsPerPage: rows,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errs.NewTrustedf(http.StatusBadRequest, "invalid %s format [%s]", key, v)
	}

	return n, nil
}
