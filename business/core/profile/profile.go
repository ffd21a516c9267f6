// Package profile provides the core business API for registering people and
// resolving their shareable addresses.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicledger/civicledger/business/sys/validate"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"go.uber.org/zap"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound         = errors.New("profile not found")
	ErrUniqueIdentifier = errors.New("identifier is not unique")
)

// createAttempts bounds the retries when a generated identifier collides.
const createAttempts = 3

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Create(ctx context.Context, prf Profile) error
	QueryByID(ctx context.Context, id string) (Profile, error)
	QueryByAddress(ctx context.Context, address string) (Profile, error)
	Query(ctx context.Context, pageNumber int, rowsPerPage int) ([]Profile, error)
	Count(ctx context.Context) (int, error)
}

// Core manages the set of APIs for profile access.
type Core struct {
	storer Storer
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewCore constructs a core for profile api access.
func NewCore(log *zap.SugaredLogger, storer Storer) *Core {
	return &Core{
		storer: storer,
		log:    log,
		now:    time.Now,
	}
}

// Create registers a new person, generating the identifier and shareable
// address for them.
func (c *Core) Create(ctx context.Context, np NewProfile) (Profile, error) {
	if err := validate.Check(np); err != nil {
		return Profile{}, fmt.Errorf("validating data: %w", err)
	}

	for attempt := 1; ; attempt++ {
		id, address, err := GenerateIdentity(np.Name, np.Phone)
		if err != nil {
			return Profile{}, err
		}

		prf := Profile{
			ID:          id,
			Name:        np.Name,
			Phone:       np.Phone,
			Address:     address,
			Family:      np.Family,
			Migration:   np.Migration,
			Education:   np.Education,
			Profession:  np.Profession,
			Medical:     np.Medical,
			Govt:        np.Govt,
			Criminal:    np.Criminal,
			DateCreated: c.now().UTC().Round(0),
		}

		err = c.storer.Create(ctx, prf)
		if err == nil {
			c.log.Infow("profile created", "identifier", prf.ID, "shareable_address", prf.Address)
			return prf, nil
		}

		if !errors.Is(err, ErrUniqueIdentifier) || attempt == createAttempts {
			return Profile{}, fmt.Errorf("create: %w", err)
		}

		c.log.Infow("profile identifier collision", "identifier", id, "attempt", attempt)
	}
}

// QueryByID gets the specified profile from the database.
func (c *Core) QueryByID(ctx context.Context, id string) (Profile, error) {
	prf, err := c.storer.QueryByID(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("query: id[%s]: %w", id, err)
	}

	return prf, nil
}

// QueryByAddress gets the profile registered under the shareable address.
func (c *Core) QueryByAddress(ctx context.Context, address string) (Profile, error) {
	prf, err := c.storer.QueryByAddress(ctx, address)
	if err != nil {
		return Profile{}, fmt.Errorf("query: address[%s]: %w", address, err)
	}

	return prf, nil
}

// Query retrieves a list of existing profiles from the database.
func (c *Core) Query(ctx context.Context, pageNumber int, rowsPerPage int) ([]Profile, error) {
	prfs, err := c.storer.Query(ctx, pageNumber, rowsPerPage)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return prfs, nil
}

// Count returns the number of registered profiles.
func (c *Core) Count(ctx context.Context) (int, error) {
	return c.storer.Count(ctx)
}

// LookupAddress resolves a shareable address for the controller node. This
// implements the state.Directory interface.
func (c *Core) LookupAddress(ctx context.Context, address string) (state.Holder, error) {
	prf, err := c.storer.QueryByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return state.Holder{}, fmt.Errorf("address[%s]: %w", address, state.ErrUnknownAddress)
		}
		return state.Holder{}, fmt.Errorf("lookup: address[%s]: %w", address, err)
	}

	return state.Holder{Name: prf.Name, Phone: prf.Phone}, nil
}
