package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is an application record exactly as it is stored: a JSON object
// whose values are kept raw so unknown or partially filled fields survive a
// round trip untouched.
type Document map[string]json.RawMessage

// Application is the typed view of a Document used by the validation rules
// and by the form controller.
type Application struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth Date      `json:"dateOfBirth"`
	Address     Address   `json:"address"`
	Vehicles    []Vehicle `json:"vehicles"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type Vehicle struct {
	VIN   string `json:"vin"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  Year   `json:"year"`
}

// ------------------------------------------------------------------
// Date
// ------------------------------------------------------------------

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

var ErrInvalidDate = errors.New("invalid date")

// ParseDate accepts the forms clients send for a calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Date is a point in time serialized as an RFC 3339 string. The zero Date
// and JSON null map onto each other.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ------------------------------------------------------------------
// Year
// ------------------------------------------------------------------

// Year is a calendar year. On the wire it may be a number, a numeric string
// or a full date (the browser year picker sends a date); only the year is kept.
type Year int

func (y *Year) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*y = 0
		return nil
	}
	if !strings.HasPrefix(raw, `"`) {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*y = Year(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*y = Year(n)
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	*y = Year(t.Year())
	return nil
}

// ------------------------------------------------------------------
// Document <-> Application
// ------------------------------------------------------------------

// Document converts the typed application into its stored shape.
func (a Application) Document() (Document, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ApplicationFromDocument decodes the known fields of a stored record one by
// one. A field that cannot be decoded is left at its zero value and its name
// is returned so the caller can surface it.
func ApplicationFromDocument(doc Document) (Application, []string) {
	var (
		app Application
		bad []string
	)
	decode := func(name string, dst any) {
		raw, ok := doc[name]
		if !ok {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			bad = append(bad, name)
		}
	}

	decode("firstName", &app.FirstName)
	decode("lastName", &app.LastName)
	decode("dateOfBirth", &app.DateOfBirth)
	decode("address", &app.Address)
	decode("vehicles", &app.Vehicles)
	return app, bad
}
