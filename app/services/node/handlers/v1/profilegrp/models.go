package profilegrp

import (
	"time"

	"github.com/civicledger/civicledger/business/core/profile"
)

// AppProfile represents a registered person in the API.
type AppProfile struct {
	ID          string             `json:"identifier"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone_number"`
	Address     string             `json:"shareable_address"`
	Family      profile.Family     `json:"family_info"`
	Migration   profile.Migration  `json:"migration_history"`
	Education   profile.Education  `json:"education_info"`
	Profession  profile.Profession `json:"profession_info"`
	Medical     profile.Medical    `json:"medical_info"`
	Govt        profile.Govt       `json:"govt_info"`
	Criminal    profile.Criminal   `json:"criminal_info"`
	DateCreated string             `json:"date_created"`
}

func toAppProfile(prf profile.Profile) AppProfile {
	return AppProfile{
		ID:          prf.ID,
		Name:        prf.Name,
		Phone:       prf.Phone,
		Address:     prf.Address,
		Family:      prf.Family,
		Migration:   prf.Migration,
		Education:   prf.Education,
		Profession:  prf.Profession,
		Medical:     prf.Medical,
		Govt:        prf.Govt,
		Criminal:    prf.Criminal,
		DateCreated: prf.DateCreated.Format(time.RFC3339),
	}
}

// AppProfilePage is a page of profiles.
type AppProfilePage struct {
	Items       []AppProfile `json:"items"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	RowsPerPage int          `json:"rows_per_page"`
}
