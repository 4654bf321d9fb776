package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/bugboard/internal/models"
)

// entry is the on-disk shape of one seed bug.
type entry struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Severity    string `yaml:"severity"`
	Status      string `yaml:"status"`
	Created     string `yaml:"created"`
	Description string `yaml:"description"`
}

// Default returns the built-in demo collection.
func Default() []models.Bug {
	return []models.Bug{
		{
			ID:          1,
			Title:       "Login button not working on mobile",
			Severity:    models.SeverityHigh,
			Status:      models.StatusOpen,
			Created:     date(2024, time.August, 19),
			Description: "Users cannot login on mobile devices",
		},
		{
			ID:          2,
			Title:       "Dashboard loading slowly",
			Severity:    models.SeverityMedium,
			Status:      models.StatusInProgress,
			Created:     date(2024, time.August, 18),
			Description: "Dashboard takes over 5 seconds to load",
		},
		{
			ID:          3,
			Title:       "Email notifications broken",
			Severity:    models.SeverityCritical,
			Status:      models.StatusOpen,
			Created:     date(2024, time.August, 17),
			Description: "Critical system notifications not being sent",
		},
		{
			ID:          4,
			Title:       "Minor UI alignment issue",
			Severity:    models.SeverityLow,
			Status:      models.StatusOpen,
			Created:     date(2024, time.August, 16),
			Description: "Button alignment slightly off in footer",
		},
	}
}

// Load reads seed bugs from a YAML file. An empty path returns Default().
func Load(path string) ([]models.Bug, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of bugs.
// Missing status defaults to open and missing severity to medium.
func Parse(data []byte) ([]models.Bug, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	bugs := make([]models.Bug, 0, len(entries))
	for i, e := range entries {
		b := models.Bug{
			ID:          e.ID,
			Title:       e.Title,
			Severity:    models.SeverityMedium,
			Status:      models.StatusOpen,
			Description: e.Description,
		}
		if b.ID == 0 {
			b.ID = i + 1
		}
		if e.Severity != "" {
			sev, err := models.ParseSeverity(e.Severity)
			if err != nil {
				return nil, fmt.Errorf("seed bug %d: %w", b.ID, err)
			}
			b.Severity = sev
		}
		if e.Status != "" {
			st, err := models.ParseStatus(e.Status)
			if err != nil {
				return nil, fmt.Errorf("seed bug %d: %w", b.ID, err)
			}
			b.Status = st
		}
		if e.Created != "" {
			t, err := time.Parse(models.DateLayout, e.Created)
			if err != nil {
				return nil, fmt.Errorf("seed bug %d: invalid created date %q: %w", b.ID, e.Created, err)
			}
			b.Created = t
		}
		bugs = append(bugs, b)
	}
	return bugs, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
