package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/utils"
)

// DemoApplicationID is the fixed key of the seeded demo application.
const DemoApplicationID = "dddddddd-dddd-4ddd-dddd-ddddddddddd1"

func demoApplication() models.Application {
	return models.Application{
		FirstName:   "Demo",
		LastName:    "Applicant",
		DateOfBirth: models.NewDate(1990, time.April, 2),
		Address: models.Address{
			Street:  "123 Seed St",
			City:    "SeedCity",
			State:   "AL",
			ZipCode: "90000",
		},
		Vehicles: []models.Vehicle{
			{VIN: "1HGCM82633A004352", Make: "Toyota", Model: "Corolla", Year: 2022},
		},
	}
}

/* ------------------------------------------------------------------
   Seed a demo application (test/demo purposes only)
------------------------------------------------------------------ */

// SeedDemoApplication stores a complete, valid application under
// DemoApplicationID unless one is already there.
func SeedDemoApplication(ctx context.Context, store repositories.DocumentStore, resumeBaseURL string) error {
	existing, err := store.Get(ctx, DemoApplicationID)
	if err != nil {
		return fmt.Errorf("look up demo application: %w", err)
	}

	if existing != nil {
		utils.Logger.Infof("Demo application already present (id=%s); skipping.", DemoApplicationID)
		return nil
	}

	resumeURL, err := repositories.BuildResumeURL(resumeBaseURL, DemoApplicationID)
	if err != nil {
		return err
	}

	doc, err := demoApplication().Document()
	if err != nil {
		return fmt.Errorf("encode demo application: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode demo application: %w", err)
	}
	if err := store.Set(ctx, DemoApplicationID, b); err != nil {
		return fmt.Errorf("insert demo application: %w", err)
	}

	utils.Logger.Infof("Seeded demo application id=%s, resume at %s", DemoApplicationID, resumeURL)
	return nil
}
