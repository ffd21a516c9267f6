package commands

import (
	"net/http"

	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/spf13/cobra"
)

var newProfile profile.NewProfile

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Register and look up profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a person and print the issued identifier and shareable address",
	RunE: func(cmd *cobra.Command, args []string) error {
		var prf map[string]any
		if _, err := newClient(nodeURL).call(http.MethodPost, "/v1/profiles", newProfile, &prf); err != nil {
			return err
		}

		log.Infow("profile create", "shareable_address", prf["shareable_address"])

		return printJSON(cmd.OutOrStdout(), prf)
	},
}

var profileGetCmd = &cobra.Command{
	Use:   "get <shareable-address>",
	Short: "Show the profile registered under a shareable address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prf map[string]any
		if _, err := newClient(nodeURL).call(http.MethodGet, "/v1/profiles/"+args[0], nil, &prf); err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), prf)
	},
}

func init() {
	f := profileCreateCmd.Flags()
	f.StringVar(&newProfile.Name, "name", "", "Name of the person.")
	f.StringVar(&newProfile.Phone, "phone", "", "Phone number of the person.")

	f.StringVar(&newProfile.Family.FatherName, "father-name", "", "Father's name.")
	f.StringVar(&newProfile.Family.MotherName, "mother-name", "", "Mother's name.")
	f.StringVar(&newProfile.Family.FatherPhone, "father-phone", "", "Father's phone number.")
	f.StringVar(&newProfile.Family.MotherPhone, "mother-phone", "", "Mother's phone number.")

	f.StringVar(&newProfile.Migration.PlaceOfBirth, "place-of-birth", "", "Place of birth.")
	f.StringVar(&newProfile.Migration.PermanentAddress, "permanent-address", "", "Permanent address.")
	f.StringVar(&newProfile.Migration.CurrentAddress, "current-address", "", "Current address.")
	f.StringVar(&newProfile.Migration.PreviousAddress, "previous-address", "", "Previous address.")
	f.StringVar(&newProfile.Migration.PlaceOfWork, "place-of-work", "", "Place of work.")

	f.StringVar(&newProfile.Education.Degree, "degree", "", "Highest degree.")
	f.StringVar(&newProfile.Education.Grade, "grade", "", "Grade of the degree.")

	f.StringVar(&newProfile.Profession.Company, "company", "", "Current employer.")
	f.StringVar(&newProfile.Profession.Position, "position", "", "Current position.")

	f.StringVar(&newProfile.Medical.Disease, "disease", "", "Known diseases.")
	f.StringVar(&newProfile.Medical.Medications, "medications", "", "Current medications.")

	f.StringVar(&newProfile.Govt.TINNumber, "tin", "", "Tax identification number.")
	f.StringVar(&newProfile.Govt.DriversLicense, "drivers-license", "", "Driver's license number.")
	f.StringVar(&newProfile.Govt.VoterID, "voter-id", "", "Voter id.")

	f.StringVar(&newProfile.Criminal.Crime, "crime", "", "Recorded crime.")
	f.StringVar(&newProfile.Criminal.CaseStatus, "case-status", "", "Status of the case.")
	f.StringVar(&newProfile.Criminal.ArrestingOfficer, "arresting-officer", "", "Arresting officer.")

	profileCmd.AddCommand(profileCreateCmd, profileGetCmd)
	RootCmd.AddCommand(profileCmd)
}
