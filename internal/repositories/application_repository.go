package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/utils"
)

// ResumeQueryParam carries the application ID on the resume link.
const ResumeQueryParam = "id"

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type ApplicationRepository interface {
	// Create stores doc under a new key without inspecting it and returns the
	// key with the resume link pointing at it.
	Create(ctx context.Context, doc models.Document) (id string, resumeURL string, err error)

	// GetByID returns nil, nil when no record exists for id.
	GetByID(ctx context.Context, id string) (models.Document, error)

	// Replace overwrites the whole record. It returns
	// utils.ErrApplicationNotFound instead of creating a missing record.
	Replace(ctx context.Context, id string, doc models.Document) error

	// Overwrite writes the whole record without looking it up first. Callers
	// that already hold the record use it to save a read.
	Overwrite(ctx context.Context, id string, doc models.Document) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type applicationRepo struct {
	store         DocumentStore
	resumeBaseURL string
}

// NewApplicationRepository wraps store. resumeBaseURL is the absolute URL of
// the form entry point, e.g. https://apply.example.com/resume.
func NewApplicationRepository(store DocumentStore, resumeBaseURL string) ApplicationRepository {
	return &applicationRepo{store: store, resumeBaseURL: resumeBaseURL}
}

/* ---------- Create ---------- */

func (r *applicationRepo) Create(ctx context.Context, doc models.Document) (string, string, error) {
	if doc == nil {
		doc = models.Document{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("encode application: %w", err)
	}

	id, err := r.store.Push(ctx, b)
	if err != nil {
		return "", "", err
	}

	resumeURL, err := BuildResumeURL(r.resumeBaseURL, id)
	if err != nil {
		return "", "", err
	}
	return id, resumeURL, nil
}

/* ---------- Reads ---------- */

func (r *applicationRepo) GetByID(ctx context.Context, id string) (models.Document, error) {
	b, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode application %q: %w", id, err)
	}
	if doc == nil {
		doc = models.Document{}
	}
	return doc, nil
}

/* ---------- Update ---------- */

func (r *applicationRepo) Replace(ctx context.Context, id string, doc models.Document) error {
	existing, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return utils.ErrApplicationNotFound
	}
	return r.Overwrite(ctx, id, doc)
}

func (r *applicationRepo) Overwrite(ctx context.Context, id string, doc models.Document) error {
	if doc == nil {
		doc = models.Document{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	return r.store.Set(ctx, id, b)
}

/* ---------- internals ---------- */

// BuildResumeURL appends the application ID to base as a query parameter,
// keeping any query the base already carries.
func BuildResumeURL(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid resume base url: %w", err)
	}
	q := u.Query()
	q.Set(ResumeQueryParam, id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResumeIDFromURL extracts the application ID from a resume link.
func ResumeIDFromURL(resumeURL string) (string, error) {
	u, err := url.Parse(resumeURL)
	if err != nil {
		return "", fmt.Errorf("invalid resume url: %w", err)
	}
	id := u.Query().Get(ResumeQueryParam)
	if id == "" {
		return "", utils.ErrMissingResumeID
	}
	return id, nil
}
