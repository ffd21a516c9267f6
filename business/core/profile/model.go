package profile

import "time"

// Family represents the family section of a profile.
type Family struct {
	FatherName  string `json:"father_name"`
	MotherName  string `json:"mother_name"`
	FatherPhone string `json:"father_phone"`
	MotherPhone string `json:"mother_phone"`
}

// Migration represents the places a person has lived and worked.
type Migration struct {
	PlaceOfBirth     string `json:"place_of_birth"`
	PermanentAddress string `json:"permanent_address"`
	CurrentAddress   string `json:"current_address"`
	PreviousAddress  string `json:"previous_address"`
	PlaceOfWork      string `json:"place_of_work"`
}

// Education represents the highest education of a person.
type Education struct {
	Degree string `json:"degree"`
	Grade  string `json:"grade"`
}

// Profession represents the current employment of a person.
type Profession struct {
	Company  string `json:"company"`
	Position string `json:"position"`
}

// Medical represents the medical history of a person.
type Medical struct {
	Disease     string `json:"disease"`
	Medications string `json:"medications"`
}

// Govt represents the government issued numbers of a person.
type Govt struct {
	TINNumber      string `json:"tin_number"`
	DriversLicense string `json:"drivers_license"`
	VoterID        string `json:"voter_id"`
}

// Criminal represents the criminal record of a person.
type Criminal struct {
	Crime            string `json:"crime"`
	CaseStatus       string `json:"case_status"`
	ArrestingOfficer string `json:"arresting_officer"`
}

// Profile represents a registered person. The address is the shareable
// address used to request services on the person's behalf.
type Profile struct {
	ID          string
	Name        string
	Phone       string
	Address     string
	Family      Family
	Migration   Migration
	Education   Education
	Profession  Profession
	Medical     Medical
	Govt        Govt
	Criminal    Criminal
	DateCreated time.Time
}

// NewProfile contains the information needed to register a person. Only the
// name and phone number are required.
type NewProfile struct {
	Name       string     `json:"name" validate:"required"`
	Phone      string     `json:"phone_number" validate:"required"`
	Family     Family     `json:"family_info"`
	Migration  Migration  `json:"migration_history"`
	Education  Education  `json:"education_info"`
	Profession Profession `json:"profession_info"`
	Medical    Medical    `json:"medical_info"`
	Govt       Govt       `json:"govt_info"`
	Criminal   Criminal   `json:"criminal_info"`
}
