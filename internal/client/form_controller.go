// Package client drives an application form against the service: it holds
// the values being edited, reports inline errors from the shared ruleset and
// makes the create/fetch/update/validate calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/utils"
	"github.com/poofware/application-service/internal/validation"
)

var ErrVehicleIndex = errors.New("vehicle index out of range")

// SubmitResult is the outcome of Submit. Exactly one of Accepted,
// FieldErrors or ServerErrors is meaningful.
type SubmitResult struct {
	Accepted bool
	Quote    int

	// Inline messages found before calling the service, keyed by form path.
	FieldErrors map[string]string
	// Field names the service rejected.
	ServerErrors []string
}

type FormController struct {
	api   ApplicationAPI
	rules *validation.Ruleset

	values    models.Application
	id        string
	resumeURL string
}

// NewFormController starts with one blank vehicle set to the current year.
// A nil rules uses the wall clock.
func NewFormController(api ApplicationAPI, rules *validation.Ruleset) *FormController {
	if rules == nil {
		rules = validation.NewRuleset(nil)
	}
	f := &FormController{api: api, rules: rules}
	f.values.Vehicles = []models.Vehicle{f.blankVehicle()}
	return f
}

func (f *FormController) blankVehicle() models.Vehicle {
	return models.Vehicle{Year: models.Year(f.rules.CurrentYear())}
}

// ------------------------------------------------------------------
// State
// ------------------------------------------------------------------

// Values returns a copy of the current form values.
func (f *FormController) Values() models.Application {
	out := f.values
	out.Vehicles = append([]models.Vehicle(nil), f.values.Vehicles...)
	return out
}

func (f *FormController) ID() string        { return f.id }
func (f *FormController) ResumeURL() string { return f.resumeURL }

func (f *FormController) SetValues(app models.Application) {
	f.values = app
	f.values.Vehicles = append([]models.Vehicle(nil), app.Vehicles...)
}

// SetID attaches the form to an existing application without fetching it.
func (f *FormController) SetID(id string) {
	f.id = id
	f.resumeURL = ""
}

func (f *FormController) SetFirstName(s string)        { f.values.FirstName = s }
func (f *FormController) SetLastName(s string)         { f.values.LastName = s }
func (f *FormController) SetDateOfBirth(d models.Date) { f.values.DateOfBirth = d }
func (f *FormController) SetAddress(a models.Address)  { f.values.Address = a }

func (f *FormController) SetVehicle(i int, v models.Vehicle) error {
	if i < 0 || i >= len(f.values.Vehicles) {
		return fmt.Errorf("%w: %d", ErrVehicleIndex, i)
	}
	f.values.Vehicles[i] = v
	return nil
}

// AddVehicle appends a blank vehicle. It reports false and does nothing when
// the form already holds the maximum.
func (f *FormController) AddVehicle() bool {
	if len(f.values.Vehicles) >= validation.MaxVehicles {
		return false
	}
	f.values.Vehicles = append(f.values.Vehicles, f.blankVehicle())
	return true
}

// RemoveVehicle drops vehicle i. The last remaining vehicle cannot be removed.
func (f *FormController) RemoveVehicle(i int) bool {
	if i < 0 || i >= len(f.values.Vehicles) || len(f.values.Vehicles) <= validation.MinVehicles {
		return false
	}
	f.values.Vehicles = append(f.values.Vehicles[:i], f.values.Vehicles[i+1:]...)
	return true
}

// Errors returns the inline messages for the current values.
func (f *FormController) Errors() map[string]string {
	return f.rules.Messages(f.values)
}

// ------------------------------------------------------------------
// Service calls
// ------------------------------------------------------------------

// Start creates an application from the current values and adopts it.
func (f *FormController) Start(ctx context.Context) error {
	doc, err := f.values.Document()
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	resumeURL, err := f.api.CreateApplication(ctx, doc)
	if err != nil {
		return err
	}
	id, err := repositories.ResumeIDFromURL(resumeURL)
	if err != nil {
		return err
	}
	f.id, f.resumeURL = id, resumeURL
	return nil
}

// Load resumes the application the link points at.
func (f *FormController) Load(ctx context.Context, resumeURL string) error {
	id, err := repositories.ResumeIDFromURL(resumeURL)
	if err != nil {
		return err
	}
	if err := f.LoadID(ctx, id); err != nil {
		return err
	}
	f.resumeURL = resumeURL
	return nil
}

// LoadID fetches the stored record and replaces the form values with it.
// Stored values that do not fit a field are dropped with a warning so a
// half-filled record still loads.
func (f *FormController) LoadID(ctx context.Context, id string) error {
	if id == "" {
		return utils.ErrNoIDProvided
	}
	doc, err := f.api.GetApplication(ctx, id)
	if err != nil {
		return err
	}

	app, bad := models.ApplicationFromDocument(doc)
	if len(bad) > 0 {
		utils.Logger.WithField("application_id", id).Warnf("Ignoring undecodable fields: %v", bad)
	}
	f.SetValues(app)
	f.id, f.resumeURL = id, ""
	return nil
}

// Save stores the current values as they are, valid or not.
func (f *FormController) Save(ctx context.Context) error {
	if f.id == "" {
		return utils.ErrNoApplication
	}
	doc, err := f.values.Document()
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	return f.api.UpdateApplication(ctx, f.id, doc)
}

// Submit checks the values locally and, when they pass, asks the service for
// a quote. A rejection from either side is a result, not an error.
func (f *FormController) Submit(ctx context.Context) (SubmitResult, error) {
	if errs := f.Errors(); len(errs) > 0 {
		return SubmitResult{FieldErrors: errs}, nil
	}
	if f.id == "" {
		return SubmitResult{}, utils.ErrNoApplication
	}

	doc, err := f.values.Document()
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode application: %w", err)
	}
	quote, err := f.api.ValidateApplication(ctx, f.id, doc)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
			fields := append([]string(nil), apiErr.Errors...)
			sort.Strings(fields)
			return SubmitResult{ServerErrors: fields}, nil
		}
		return SubmitResult{}, err
	}
	return SubmitResult{Accepted: true, Quote: quote}, nil
}
