package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/poofware/application-service/internal/models"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

func renderApplication(w io.Writer, app models.Application, asJSON bool) error {
	doc, err := app.Document()
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	// Round-trip through JSON so YAML gets plain values instead of raw bytes.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var plain map[string]any
	if err := json.Unmarshal(b, &plain); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plain); err != nil {
		return err
	}
	return enc.Close()
}

func renderFieldErrors(w io.Writer, errs map[string]string) {
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(w, "  %s %s: %s\n", errColor.Sprint("✗"), p, errs[p])
	}
}
