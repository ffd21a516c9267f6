package profiledb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicledger/civicledger/business/core/profile"
)

// dbProfile represent the structure we need for moving data
// between the app and the database. The sections are stored as JSON text.
type dbProfile struct {
	ID          string `db:"identifier"`
	Name        string `db:"name"`
	Phone       string `db:"phone_number"`
	Address     string `db:"shareable_address"`
	Family      string `db:"family_info"`
	Migration   string `db:"migration_history"`
	Education   string `db:"education_info"`
	Profession  string `db:"profession_info"`
	Medical     string `db:"medical_info"`
	Govt        string `db:"govt_info"`
	Criminal    string `db:"criminal_info"`
	DateCreated string `db:"date_created"`
}

func toDBProfile(prf profile.Profile) (dbProfile, error) {
	sections := []any{prf.Family, prf.Migration, prf.Education, prf.Profession, prf.Medical, prf.Govt, prf.Criminal}

	text := make([]string, len(sections))
	for i, section := range sections {
		data, err := json.Marshal(section)
		if err != nil {
			return dbProfile{}, fmt.Errorf("encoding section %d: %w", i, err)
		}
		text[i] = string(data)
	}

	dbPrf := dbProfile{
		ID:          prf.ID,
		Name:        prf.Name,
		Phone:       prf.Phone,
		Address:     prf.Address,
		Family:      text[0],
		Migration:   text[1],
		Education:   text[2],
		Profession:  text[3],
		Medical:     text[4],
		Govt:        text[5],
		Criminal:    text[6],
		DateCreated: prf.DateCreated.UTC().Format(dateLayout),
	}

	return dbPrf, nil
}

// dateLayout keeps the fraction at a fixed width so date_created sorts as
// text in time order. RFC3339Nano parsing still reads it.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

func toCoreProfile(dbPrf dbProfile) (profile.Profile, error) {
	created, err := time.Parse(time.RFC3339Nano, dbPrf.DateCreated)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("parsing date_created: %w", err)
	}

	prf := profile.Profile{
		ID:          dbPrf.ID,
		Name:        dbPrf.Name,
		Phone:       dbPrf.Phone,
		Address:     dbPrf.Address,
		DateCreated: created,
	}

	sections := []struct {
		text string
		dest any
	}{
		{dbPrf.Family, &prf.Family},
		{dbPrf.Migration, &prf.Migration},
		{dbPrf.Education, &prf.Education},
		{dbPrf.Profession, &prf.Profession},
		{dbPrf.Medical, &prf.Medical},
		{dbPrf.Govt, &prf.Govt},
		{dbPrf.Criminal, &prf.Criminal},
	}

	for _, section := range sections {
		if section.text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(section.text), section.dest); err != nil {
			return profile.Profile{}, fmt.Errorf("decoding section: %w", err)
		}
	}

	return prf, nil
}

func toCoreProfileSlice(dbPrfs []dbProfile) ([]profile.Profile, error) {
	prfs := make([]profile.Profile, len(dbPrfs))
	for i, dbPrf := range dbPrfs {
		prf, err := toCoreProfile(dbPrf)
		if err != nil {
			return nil, err
		}
		prfs[i] = prf
	}
	return prfs, nil
}
