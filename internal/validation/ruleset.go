// Package validation holds the field rules an application must satisfy before
// it can be quoted. The same rules back the server-side check and the inline
// errors of the form controller.
package validation

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/poofware/application-service/internal/models"
)

const (
	MinVehicles    = 1
	MaxVehicles    = 3
	MinVehicleYear = 1985
	MinDriverAge   = 16
)

// ------------------------------------------------------------------
// Field
// ------------------------------------------------------------------

// Field enumerates the application fields that carry a rule. Any other name
// maps to FieldUnknown, which always validates.
type Field int

const (
	FieldUnknown Field = iota
	FieldFirstName
	FieldLastName
	FieldDateOfBirth
	FieldAddress
	FieldVehicles
)

var knownFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldDateOfBirth,
	FieldAddress,
	FieldVehicles,
}

func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "firstName"
	case FieldLastName:
		return "lastName"
	case FieldDateOfBirth:
		return "dateOfBirth"
	case FieldAddress:
		return "address"
	case FieldVehicles:
		return "vehicles"
	default:
		return "unknown"
	}
}

// ParseField never fails; unrecognized names yield FieldUnknown.
func ParseField(name string) Field {
	for _, f := range knownFields {
		if f.String() == name {
			return f
		}
	}
	return FieldUnknown
}

// KnownFields returns the fields that carry a rule, in form order.
func KnownFields() []Field {
	out := make([]Field, len(knownFields))
	copy(out, knownFields)
	return out
}

// ------------------------------------------------------------------
// Ruleset
// ------------------------------------------------------------------

// Ruleset applies the field rules against an injectable clock.
type Ruleset struct {
	now func() time.Time
}

// NewRuleset returns a ruleset reading the current year from now. A nil now
// uses the wall clock.
func NewRuleset(now func() time.Time) *Ruleset {
	if now == nil {
		now = time.Now
	}
	return &Ruleset{now: now}
}

// CurrentYear is the calendar year the rules are evaluated against.
func (r *Ruleset) CurrentYear() int {
	return r.now().Year()
}

// Validate decodes raw into the type of field and applies its rule. A value
// that does not decode into the expected shape is invalid.
func (r *Ruleset) Validate(field Field, raw json.RawMessage) bool {
	switch field {
	case FieldFirstName, FieldLastName:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return ValidName(s)
	case FieldDateOfBirth:
		var d models.Date
		if err := json.Unmarshal(raw, &d); err != nil {
			return false
		}
		return ValidDateOfBirth(d, r.CurrentYear())
	case FieldAddress:
		var a models.Address
		if err := json.Unmarshal(raw, &a); err != nil {
			return false
		}
		return ValidAddress(a)
	case FieldVehicles:
		var vs []models.Vehicle
		if err := json.Unmarshal(raw, &vs); err != nil {
			return false
		}
		return ValidVehicles(vs, r.CurrentYear())
	default:
		return true
	}
}

// ValidateName is Validate keyed by the wire name of the field.
func (r *Ruleset) ValidateName(name string, raw json.RawMessage) bool {
	return r.Validate(ParseField(name), raw)
}

// Check validates every known field present in doc and returns the sorted
// names of those that fail. Absent fields are not checked.
func (r *Ruleset) Check(doc models.Document) []string {
	var failed []string
	for name, raw := range doc {
		f := ParseField(name)
		if f == FieldUnknown {
			continue
		}
		if !r.Validate(f, raw) {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

// ------------------------------------------------------------------
// Rules
// ------------------------------------------------------------------

func notBlank(s string) bool {
	return len(strings.TrimSpace(s)) > 0
}

func ValidName(s string) bool {
	return notBlank(s)
}

// ValidDateOfBirth compares calendar years only: anyone born in
// currentYear-16 passes regardless of month and day.
func ValidDateOfBirth(dob models.Date, currentYear int) bool {
	if dob.IsZero() {
		return false
	}
	return dob.Year() <= currentYear-MinDriverAge
}

// decimalPattern matches plain decimal and exponent notation. Hex, inf and
// nan spellings are not numbers in form input.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ValidZipCode requires non-blank text that reads as a number. Out of range
// exponents still count, as does the spelled out Infinity.
func ValidZipCode(zip string) bool {
	zip = strings.TrimSpace(zip)
	switch zip {
	case "":
		return false
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}
	return decimalPattern.MatchString(zip)
}

func ValidAddress(a models.Address) bool {
	return notBlank(a.Street) &&
		notBlank(a.City) &&
		notBlank(a.State) &&
		ValidZipCode(a.ZipCode)
}

func ValidVehicleYear(year models.Year, currentYear int) bool {
	return int(year) >= MinVehicleYear && int(year) <= currentYear+1
}

func ValidVehicle(v models.Vehicle, currentYear int) bool {
	return notBlank(v.VIN) &&
		notBlank(v.Make) &&
		notBlank(v.Model) &&
		ValidVehicleYear(v.Year, currentYear)
}

func ValidVehicles(vs []models.Vehicle, currentYear int) bool {
	if len(vs) < MinVehicles || len(vs) > MaxVehicles {
		return false
	}
	for _, v := range vs {
		if !ValidVehicle(v, currentYear) {
			return false
		}
	}
	return true
}
