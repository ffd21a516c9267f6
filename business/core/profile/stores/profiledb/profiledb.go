// Package profiledb contains profile related CRUD functionality.
package profiledb

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/business/sys/database"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store manages the set of APIs for profile database access.
type Store struct {
	log *zap.SugaredLogger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *zap.SugaredLogger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Create inserts a new profile into the database.
func (s *Store) Create(ctx context.Context, prf profile.Profile) error {
	const q = `
	INSERT INTO profiles
		(identifier, name, phone_number, shareable_address, family_info, migration_history,
		 education_info, profession_info, medical_info, govt_info, criminal_info, date_created)
	VALUES
		(:identifier, :name, :phone_number, :shareable_address, :family_info, :migration_history,
		 :education_info, :profession_info, :medical_info, :govt_info, :criminal_info, :date_created)`

	dbPrf, err := toDBProfile(prf)
	if err != nil {
		return err
	}

	if err := database.NamedExecContext(ctx, s.log, s.db, q, dbPrf); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return fmt.Errorf("namedexeccontext: %w", profile.ErrUniqueIdentifier)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified profile from the database.
func (s *Store) QueryByID(ctx context.Context, id string) (profile.Profile, error) {
	data := struct {
		ID string `db:"identifier"`
	}{
		ID: id,
	}

	const q = `
	SELECT
		*
	FROM
		profiles
	WHERE
		identifier = :identifier`

	return s.queryOne(ctx, q, data)
}

// QueryByAddress gets the profile registered under the shareable address.
func (s *Store) QueryByAddress(ctx context.Context, address string) (profile.Profile, error) {
	data := struct {
		Address string `db:"shareable_address"`
	}{
		Address: address,
	}

	const q = `
	SELECT
		*
	FROM
		profiles
	WHERE
		shareable_address = :shareable_address
	ORDER BY
		date_created
	LIMIT 1`

	return s.queryOne(ctx, q, data)
}

// Query retrieves a list of existing profiles from the database.
func (s *Store) Query(ctx context.Context, pageNumber int, rowsPerPage int) ([]profile.Profile, error) {
	data := struct {
		Offset      int `db:"offset"`
		RowsPerPage int `db:"rows_per_page"`
	}{
		Offset:      (pageNumber - 1) * rowsPerPage,
		RowsPerPage: rowsPerPage,
	}

	const q = `
	SELECT
		*
	FROM
		profiles
	ORDER BY
		date_created, identifier
	LIMIT :rows_per_page OFFSET :offset`

	var dbPrfs []dbProfile
	if err := database.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbPrfs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toCoreProfileSlice(dbPrfs)
}

// Count returns the number of profiles in the database.
func (s *Store) Count(ctx context.Context) (int, error) {
	const q = `
	SELECT
		COUNT(*) AS count
	FROM
		profiles`

	var count struct {
		Count int `db:"count"`
	}
	if err := database.NamedQueryStruct(ctx, s.log, s.db, q, struct{}{}, &count); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return count.Count, nil
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (profile.Profile, error) {
	var dbPrf dbProfile
	if err := database.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbPrf); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return profile.Profile{}, fmt.Errorf("namedquerystruct: %w", profile.ErrNotFound)
		}
		return profile.Profile{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toCoreProfile(dbPrf)
}
