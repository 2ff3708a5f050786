package form

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// Field names a fixed top-level input of the meal form
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldCuisineType Field = "cuisine_type"
	FieldCookingMode Field = "cooking_mode"
	FieldCookingEase Field = "cooking_ease"
	FieldCookingTime Field = "cooking_time"
	FieldImagePath   Field = "image_path"
	FieldSourceURL   Field = "source_url"

	FieldIngredients Field = "ingredients"
	FieldLogEntries  Field = "log_entries"
)

// IngredientRow holds the raw text of one ingredient input group
type IngredientRow struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity,omitempty"`
	Unit     string `yaml:"unit,omitempty"`
}

// DirectionRow holds the raw text of one direction input group
type DirectionRow struct {
	Description string
}

// LogEntryRow holds the raw text of one cook-log input group
type LogEntryRow struct {
	Date   string `yaml:"date"`
	Rating string `yaml:"rating,omitempty"`
	Notes  string `yaml:"notes,omitempty"`
}

// Image is a file picked for upload after the meal is saved
type Image struct {
	Filename string
	Content  io.Reader
}

// Form is the in-memory model of the meal edit form
// Values are kept as typed text; conversion happens in Serialize.
type Form struct {
	id      int64
	values  map[Field]string
	invalid map[Field]bool
	image   *Image

	Ingredients RowList[IngredientRow]
	Directions  RowList[DirectionRow]
	LogEntries  RowList[LogEntryRow]
}

// New creates a form for current, or an empty form for a new meal when current is nil
// Each nested item of current becomes one row, in stored order.
func New(current *models.Meal) *Form {
	f := &Form{
		id:      models.NewMealID,
		values:  make(map[Field]string),
		invalid: make(map[Field]bool),
	}
	if current == nil {
		return f
	}

	f.id = current.ID
	f.values[FieldName] = current.Name
	f.values[FieldDescription] = current.Description
	f.values[FieldCuisineType] = current.CuisineType
	f.values[FieldCookingMode] = current.CookingMode
	f.values[FieldCookingEase] = current.CookingEase
	f.values[FieldImagePath] = current.ImagePath
	f.values[FieldSourceURL] = current.SourceURL
	if current.CookingTime != nil {
		f.values[FieldCookingTime] = strconv.Itoa(*current.CookingTime)
	}

	for _, ing := range current.Ingredients {
		row := IngredientRow{Name: ing.Name}
		if ing.Quantity != nil {
			row.Quantity = strconv.FormatFloat(*ing.Quantity, 'f', -1, 64)
		}
		if ing.Unit != nil {
			row.Unit = *ing.Unit
		}
		key := f.Ingredients.Add()
		_ = f.Ingredients.Set(key, row)
	}

	directions := append([]models.Direction(nil), current.Directions...)
	sort.SliceStable(directions, func(i, j int) bool {
		return directions[i].StepNumber < directions[j].StepNumber
	})
	for _, dir := range directions {
		key := f.Directions.Add()
		_ = f.Directions.Set(key, DirectionRow{Description: dir.Description})
	}

	for _, entry := range current.LogEntries {
		row := LogEntryRow{Date: entry.Date}
		// A stored sentinel means no rating was carried through
		if entry.Rating != nil && *entry.Rating >= 0 {
			row.Rating = strconv.Itoa(*entry.Rating)
		}
		if entry.Notes != nil {
			row.Notes = *entry.Notes
		}
		key := f.LogEntries.Add()
		_ = f.LogEntries.Set(key, row)
	}

	return f
}

// ID returns the bound meal identifier, models.NewMealID for an unsaved meal
func (f *Form) ID() int64 {
	return f.id
}

// IsNew reports whether saving the form creates a meal rather than updating one
func (f *Form) IsNew() bool {
	return f.id < 0
}

// Bind attaches the identifier of the persisted meal to the form
func (f *Form) Bind(id int64) {
	f.id = id
}

// Set updates a field and clears its error indication
func (f *Form) Set(field Field, value string) {
	f.values[field] = value
	delete(f.invalid, field)
}

// Value returns the raw text of a field
func (f *Form) Value(field Field) string {
	return f.values[field]
}

// Invalid reports whether the last validation flagged field and it has not been edited since
func (f *Form) Invalid(field Field) bool {
	return f.invalid[field]
}

// SelectImage picks a file for upload and fills the image path with its name
func (f *Form) SelectImage(filename string, content io.Reader) {
	f.image = &Image{Filename: filename, Content: content}
	f.Set(FieldImagePath, filename)
}

// ClearImage drops the selected file; the image path field is left as is
func (f *Form) ClearImage() {
	f.image = nil
}

// Image returns the selected file, or nil when none was picked
func (f *Form) Image() *Image {
	return f.image
}

func (f *Form) trimmed(field Field) string {
	return strings.TrimSpace(f.values[field])
}
