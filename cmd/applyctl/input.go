package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/repositories"
)

// readApplicationFile loads an application from a YAML or JSON file. Unquoted
// YAML dates stay strings and go through the same date parsing as the API.
func readApplicationFile(path string) (models.Application, error) {
	if strings.TrimSpace(path) == "" {
		return models.Application{}, fmt.Errorf("application file is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return models.Application{}, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return models.Application{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	asJSON, err := json.Marshal(raw)
	if err != nil {
		return models.Application{}, fmt.Errorf("convert %s: %w", path, err)
	}
	var doc models.Document
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return models.Application{}, fmt.Errorf("convert %s: %w", path, err)
	}

	app, bad := models.ApplicationFromDocument(doc)
	if len(bad) > 0 {
		return models.Application{}, fmt.Errorf("%s: invalid values for %s", path, strings.Join(bad, ", "))
	}
	return app, nil
}

// resolveID accepts either a bare application ID or a resume link.
func resolveID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") {
		return repositories.ResumeIDFromURL(arg)
	}
	if arg == "" {
		return "", fmt.Errorf("application id is required")
	}
	return arg, nil
}
