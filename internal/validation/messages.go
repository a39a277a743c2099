package validation

import (
	"fmt"

	"github.com/poofware/application-service/internal/models"
)

// Inline messages shown next to form inputs.
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgTooYoung          = "Must be at least 16 years old"
	MsgStreetRequired    = "Street is required"
	MsgCityRequired      = "City is required"
	MsgStateRequired     = "State is required"
	MsgZipRequired       = "Zip code is required"
	MsgZipInvalid        = "Zip code is invalid"
	MsgVINRequired       = "VIN is required"
	MsgMakeRequired      = "Make is required"
	MsgModelRequired     = "Model is required"
	MsgYearTooOld        = "Year cannot be before 1985"
	MsgYearTooNew        = "Year cannot be after next year"
	MsgNoVehicles        = "At least one vehicle is required"
	MsgTooManyVehicles   = "No more than 3 vehicles are allowed"
)

// Messages returns one message per failing input, keyed by form path
// (firstName, address.zipCode, vehicles.0.year, ...). An empty map means
// every field Check would look at passes.
func (r *Ruleset) Messages(app models.Application) map[string]string {
	out := make(map[string]string)
	set := func(path string, ok bool, msg string) {
		if !ok {
			out[path] = msg
		}
	}
	year := r.CurrentYear()

	set("firstName", ValidName(app.FirstName), MsgFirstNameRequired)
	set("lastName", ValidName(app.LastName), MsgLastNameRequired)
	set("dateOfBirth", ValidDateOfBirth(app.DateOfBirth, year), MsgTooYoung)

	set("address.street", notBlank(app.Address.Street), MsgStreetRequired)
	set("address.city", notBlank(app.Address.City), MsgCityRequired)
	set("address.state", notBlank(app.Address.State), MsgStateRequired)
	if !notBlank(app.Address.ZipCode) {
		out["address.zipCode"] = MsgZipRequired
	} else {
		set("address.zipCode", ValidZipCode(app.Address.ZipCode), MsgZipInvalid)
	}

	switch {
	case len(app.Vehicles) < MinVehicles:
		out["vehicles"] = MsgNoVehicles
	case len(app.Vehicles) > MaxVehicles:
		out["vehicles"] = MsgTooManyVehicles
	}
	for i, v := range app.Vehicles {
		prefix := fmt.Sprintf("vehicles.%d.", i)
		set(prefix+"vin", notBlank(v.VIN), MsgVINRequired)
		set(prefix+"make", notBlank(v.Make), MsgMakeRequired)
		set(prefix+"model", notBlank(v.Model), MsgModelRequired)
		switch {
		case int(v.Year) < MinVehicleYear:
			out[prefix+"year"] = MsgYearTooOld
		case int(v.Year) > year+1:
			out[prefix+"year"] = MsgYearTooNew
		}
	}
	return out
}
