package catalog

import (
	"context"
	"fmt"
	"os"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/models"

	"gopkg.in/yaml.v3"
)

type SeedEntry struct {
	Name         string `yaml:"name"`
	Code         string `yaml:"code"`
	Description  string `yaml:"description"`
	SpecialNotes string `yaml:"special_notes"`
	DisplayOrder int    `yaml:"display_order"`
}

// SeedFile is the layout of catalog.yaml.
type SeedFile struct {
	Categories            []SeedEntry `yaml:"categories"`
	PricingTitles         []SeedEntry `yaml:"pricing_titles"`
	SpiceLevels           []SeedEntry `yaml:"spice_levels"`
	DietaryRequirements   []SeedEntry `yaml:"dietary_requirements"`
	ReligiousRestrictions []SeedEntry `yaml:"religious_restrictions"`
	Allergens             []SeedEntry `yaml:"allergens"`
	PortionSizes          []SeedEntry `yaml:"portion_sizes"`
	VenueTypes            []SeedEntry `yaml:"venue_types"`
	CuisineTypes          []SeedEntry `yaml:"cuisine_types"`
	Holidays              []SeedEntry `yaml:"holidays"`

	AmenityCategories []SeedAmenityCategory `yaml:"amenity_categories"`
}

type SeedAmenityCategory struct {
	Name        string      `yaml:"name"`
	Code        string      `yaml:"code"`
	Description string      `yaml:"description"`
	Amenities   []SeedEntry `yaml:"amenities"`
}

// SeedReport counts created and already present rows per kind slug.
type SeedReport map[string][2]int

func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshalling seed file: %w", err)
	}
	return &f, nil
}

// Seed creates every catalog row of f as a default row. Rows whose name or
// code already exists are left untouched, so running it twice is harmless.
func Seed(ctx context.Context, actor access.Identity, f *SeedFile) (SeedReport, error) {
	report := SeedReport{}
	steps := []func() error{
		func() error { return seedKind[models.MenuCategory](ctx, Categories, actor, f.Categories, report) },
		func() error { return seedKind[models.PricingTitle](ctx, PricingTitles, actor, f.PricingTitles, report) },
		func() error { return seedKind[models.SpiceLevel](ctx, SpiceLevels, actor, f.SpiceLevels, report) },
		func() error {
			return seedKind[models.DietaryRequirement](ctx, DietaryRequirements, actor, f.DietaryRequirements, report)
		},
		func() error {
			return seedKind[models.ReligiousRestriction](ctx, ReligiousRestrictions, actor, f.ReligiousRestrictions, report)
		},
		func() error { return seedKind[models.Allergen](ctx, Allergens, actor, f.Allergens, report) },
		func() error { return seedKind[models.PortionSize](ctx, PortionSizes, actor, f.PortionSizes, report) },
		func() error { return seedKind[models.VenueType](ctx, VenueTypes, actor, f.VenueTypes, report) },
		func() error { return seedKind[models.CuisineType](ctx, CuisineTypes, actor, f.CuisineTypes, report) },
		func() error { return seedKind[models.Holiday](ctx, Holidays, actor, f.Holidays, report) },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return report, err
		}
	}
	return report, nil
}

func seedKind[T any, P entry[T]](ctx context.Context, k Kind, actor access.Identity, entries []SeedEntry, report SeedReport) error {
	counts := report[k.Slug]
	for _, e := range entries {
		_, err := Create[T, P](ctx, k, actor, CreateInput{
			Name:         e.Name,
			Code:         e.Code,
			Description:  e.Description,
			SpecialNotes: e.SpecialNotes,
			DisplayOrder: e.DisplayOrder,
			IsDefault:    true,
		})
		switch {
		case err == nil:
			counts[0]++
		case apperr.Is(err, apperr.KindConflict):
			counts[1]++
		default:
			return fmt.Errorf("seeding %s %q: %w", k.Label, e.Name, err)
		}
	}
	report[k.Slug] = counts
	return nil
}
