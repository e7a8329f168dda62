// Package message loads per-category templates and renders them against
// client records.
package message

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"hearingbot/pkg/logx"
)

// ErrTemplate marks a selected category whose template file is missing or
// empty at load time. This is fatal; a category discovered later with no
// template merely skips the record.
var ErrTemplate = errors.New("template error")

// Store holds the loaded template texts by category.
type Store struct {
	templates map[string]string
}

// LoadStore reads every configured template file. A broken template is fatal
// only when its category is in the selected set; others are logged and
// dropped so an unused template file cannot block a run.
func LoadStore(paths map[string]string, selected []string, log logx.Logger) (*Store, error) {
	s := &Store{templates: make(map[string]string, len(paths))}

	for category, path := range paths {
		text, err := readTemplate(path)
		if err != nil {
			if slices.Contains(selected, category) {
				return nil, fmt.Errorf("%w: category %s: %v", ErrTemplate, category, err)
			}
			log.Warn("unselected template skipped",
				logx.String("category", category), logx.Err(err))
			continue
		}
		s.templates[category] = text
		log.Info("template loaded", logx.String("category", category), logx.String("path", path))
	}

	for _, category := range selected {
		if _, ok := s.templates[category]; !ok {
			return nil, fmt.Errorf("%w: no template configured for selected category %s", ErrTemplate, category)
		}
	}
	return s, nil
}

func readTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("template file %s is empty", path)
	}
	return text, nil
}

// Get returns the template text for a category.
func (s *Store) Get(category string) (string, bool) {
	t, ok := s.templates[category]
	return t, ok
}
