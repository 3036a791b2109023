package config

import (
	"fmt"
	"os"

	"classdraw/internal/models"

	"gopkg.in/yaml.v3"
)

// CatalogEntry is one prize definition in the catalog file.
type CatalogEntry struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	Remaining   int    `yaml:"remaining"`
}

// Catalog is the YAML document shape:
//
//	prizes:
//	  - {id: 1, name: 一等奖, description: 神秘大奖, level: 1, remaining: 1}
type Catalog struct {
	Prizes []CatalogEntry `yaml:"prizes"`
}

// DefaultCatalog is the seed used when no catalog file is configured.
func DefaultCatalog() []models.Prize {
	return []models.Prize{
		{ID: 1, Name: "一等奖", Description: "神秘大奖", Level: models.LevelFirst, Remaining: 1},
		{ID: 2, Name: "二等奖", Description: "精美礼品", Level: models.LevelSecond, Remaining: 3},
		{ID: 3, Name: "三等奖", Description: "纪念奖品", Level: models.LevelThird, Remaining: 5},
	}
}

// LoadCatalog reads the catalog at path, or returns DefaultCatalog for an empty path.
func LoadCatalog(path string) ([]models.Prize, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) ([]models.Prize, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Prizes) == 0 {
		return nil, fmt.Errorf("catalog has no prizes")
	}

	seen := make(map[int]bool, len(c.Prizes))
	prizes := make([]models.Prize, 0, len(c.Prizes))
	for _, e := range c.Prizes {
		if seen[e.ID] {
			return nil, fmt.Errorf("prize %d: duplicate id", e.ID)
		}
		seen[e.ID] = true
		if e.Name == "" {
			return nil, fmt.Errorf("prize %d: name is required", e.ID)
		}
		if !models.ValidLevel(e.Level) {
			return nil, fmt.Errorf("prize %d: level must be 1, 2 or 3, got %d", e.ID, e.Level)
		}
		if e.Remaining < 0 {
			return nil, fmt.Errorf("prize %d: remaining must not be negative", e.ID)
		}
		prizes = append(prizes, models.Prize{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Level:       e.Level,
			Remaining:   e.Remaining,
		})
	}
	return prizes, nil
}
