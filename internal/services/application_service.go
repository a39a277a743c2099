// internal/services/application_service.go

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/utils"
	"github.com/poofware/application-service/internal/validation"
)

// ValidationError lists the fields that failed the ruleset. Nothing is stored
// when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// ------------------------------------------------------------------
// Service
// ------------------------------------------------------------------

type ApplicationService interface {
	Start(ctx context.Context, data models.Document) (resumeURL string, err error)
	Fetch(ctx context.Context, id string) (models.Document, error)
	Update(ctx context.Context, id string, data models.Document) error
	ValidateAndQuote(ctx context.Context, id string, data models.Document) (quote int, err error)
	Ping(ctx context.Context) error // tiny health-probe
}

type applicationService struct {
	repo    repositories.ApplicationRepository
	store   repositories.DocumentStore
	rules   *validation.Ruleset
	quoter  Quoter
	metrics MetricsReporter
}

func NewApplicationService(
	repo repositories.ApplicationRepository,
	store repositories.DocumentStore,
	rules *validation.Ruleset,
	quoter Quoter,
	metrics MetricsReporter,
) ApplicationService {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &applicationService{
		repo:    repo,
		store:   store,
		rules:   rules,
		quoter:  quoter,
		metrics: metrics,
	}
}

// ------------------------------------------------------------------
// Public API
// ------------------------------------------------------------------

func (s *applicationService) Start(ctx context.Context, data models.Document) (string, error) {
	id, resumeURL, err := s.repo.Create(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create application: %w", err)
	}
	s.metrics.RecordApplicationStarted()
	utils.Logger.WithField("application_id", id).Info("Application created")
	return resumeURL, nil
}

func (s *applicationService) Fetch(ctx context.Context, id string) (models.Document, error) {
	if id == "" {
		return nil, utils.ErrNoIDProvided
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch application %q: %w", id, err)
	}
	if doc == nil {
		return nil, utils.ErrApplicationNotFound
	}
	return doc, nil
}

// Update stores data as-is. Partially filled or invalid values are accepted
// so a form can be saved between sessions.
func (s *applicationService) Update(ctx context.Context, id string, data models.Document) error {
	if id == "" {
		return utils.ErrNoIDProvided
	}
	if err := s.repo.Replace(ctx, id, data); err != nil {
		if errors.Is(err, utils.ErrApplicationNotFound) {
			return err
		}
		return fmt.Errorf("update application %q: %w", id, err)
	}
	utils.Logger.WithField("application_id", id).Debug("Application updated")
	return nil
}

// ValidateAndQuote checks every known field present in data. On any failure
// it returns *ValidationError and leaves the stored record untouched;
// otherwise it replaces the record and returns a quote.
func (s *applicationService) ValidateAndQuote(ctx context.Context, id string, data models.Document) (int, error) {
	if id == "" {
		return 0, utils.ErrNoIDProvided
	}

	//-----------------------------------------------------------------
	// 1) Existence check
	//-----------------------------------------------------------------
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("fetch application %q: %w", id, err)
	}
	if existing == nil {
		return 0, utils.ErrApplicationNotFound
	}

	//-----------------------------------------------------------------
	// 2) Ruleset
	//-----------------------------------------------------------------
	if failed := s.rules.Check(data); len(failed) > 0 {
		for _, f := range failed {
			s.metrics.RecordValidationFailure(f)
		}
		utils.Logger.WithField("application_id", id).Infof("Application rejected: %s", strings.Join(failed, ", "))
		return 0, &ValidationError{Fields: failed}
	}

	//-----------------------------------------------------------------
	// 3) Persist, then price
	//-----------------------------------------------------------------
	if err := s.repo.Overwrite(ctx, id, data); err != nil {
		return 0, fmt.Errorf("store validated application %q: %w", id, err)
	}

	quote, err := s.quoter.Quote(ctx, data)
	if err != nil {
		return 0, fmt.Errorf("quote application %q: %w", id, err)
	}
	s.metrics.RecordQuote(quote)
	utils.Logger.WithField("application_id", id).Infof("Application quoted at %d", quote)
	return quote, nil
}

func (s *applicationService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
