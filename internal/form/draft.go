package form

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// Draft is a YAML snapshot of the form text
// MealID is omitted for a meal that has not been saved yet. ImageFile names a
// local file to upload after saving.
type Draft struct {
	MealID      *int64          `yaml:"meal_id,omitempty"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	CuisineType string          `yaml:"cuisine_type,omitempty"`
	CookingMode string          `yaml:"cooking_mode,omitempty"`
	CookingEase string          `yaml:"cooking_ease,omitempty"`
	CookingTime string          `yaml:"cooking_time,omitempty"`
	ImagePath   string          `yaml:"image_path,omitempty"`
	SourceURL   string          `yaml:"source_url,omitempty"`
	ImageFile   string          `yaml:"image_file,omitempty"`
	Ingredients []IngredientRow `yaml:"ingredients,omitempty"`
	Directions  []string        `yaml:"directions,omitempty"`
	LogEntries  []LogEntryRow   `yaml:"log_entries,omitempty"`
}

// LoadDraft decodes a draft, rejecting unknown keys
func LoadDraft(r io.Reader) (*Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var d Draft
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return &d, nil
}

// DraftFromMeal snapshots a stored meal as it would appear in the form
func DraftFromMeal(meal models.Meal) Draft {
	return New(&meal).Draft()
}

// Draft snapshots the current form text
func (f *Form) Draft() Draft {
	d := Draft{
		Name:        f.Value(FieldName),
		Description: f.Value(FieldDescription),
		CuisineType: f.Value(FieldCuisineType),
		CookingMode: f.Value(FieldCookingMode),
		CookingEase: f.Value(FieldCookingEase),
		CookingTime: f.Value(FieldCookingTime),
		ImagePath:   f.Value(FieldImagePath),
		SourceURL:   f.Value(FieldSourceURL),
	}
	if !f.IsNew() {
		id := f.ID()
		d.MealID = &id
	}

	for _, row := range f.Ingredients.Rows() {
		d.Ingredients = append(d.Ingredients, row.Values)
	}
	for _, row := range f.Directions.Rows() {
		d.Directions = append(d.Directions, row.Values.Description)
	}
	for _, row := range f.LogEntries.Rows() {
		d.LogEntries = append(d.LogEntries, row.Values)
	}

	return d
}

// Form builds a form holding the draft text; ImageFile is left to the caller
func (d Draft) Form() *Form {
	f := New(nil)
	if d.MealID != nil {
		f.Bind(*d.MealID)
	}

	f.Set(FieldName, d.Name)
	f.Set(FieldDescription, d.Description)
	f.Set(FieldCuisineType, d.CuisineType)
	f.Set(FieldCookingMode, d.CookingMode)
	f.Set(FieldCookingEase, d.CookingEase)
	f.Set(FieldCookingTime, d.CookingTime)
	f.Set(FieldImagePath, d.ImagePath)
	f.Set(FieldSourceURL, d.SourceURL)

	for _, row := range d.Ingredients {
		f.Ingredients.Append(row)
	}
	for _, description := range d.Directions {
		f.Directions.Append(DirectionRow{Description: description})
	}
	for _, row := range d.LogEntries {
		f.LogEntries.Append(row)
	}

	return f
}

// Write encodes the draft as YAML
func (d Draft) Write(w io.Writer) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return nil
}

// Title names the draft in listings, e.g. "#7 Pho" or "new: Pho"
func (d Draft) Title() string {
	if d.MealID == nil {
		return "new: " + d.Name
	}
	return "#" + strconv.FormatInt(*d.MealID, 10) + " " + d.Name
}
