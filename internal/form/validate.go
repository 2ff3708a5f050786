package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is a human-readable problem with one input
// Row is the key of the offending row, empty for top-level fields.
type FieldError struct {
	Field   Field
	Row     string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

type scalarInput struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	CookingTime string `validate:"omitempty,number"`
}

type ingredientInput struct {
	Quantity string `validate:"omitempty,numeric"`
}

type logEntryInput struct {
	Date   string `validate:"datetime=2006-01-02"`
	Rating string `validate:"omitempty,number"`
}

var scalarMessages = map[string]struct {
	field   Field
	message string
}{
	"Name":        {FieldName, "Name of Meal is required"},
	"Description": {FieldDescription, "Description is required"},
	"CookingTime": {FieldCookingTime, "Cooking time must be a whole number of minutes"},
}

// Validate checks the form before submission and marks the offending fields
// Rows that would be skipped by Serialize are not checked.
func (f *Form) Validate(opts Options) []FieldError {
	var errs []FieldError

	input := scalarInput{
		Name:        f.trimmed(FieldName),
		Description: f.trimmed(FieldDescription),
		CookingTime: f.trimmed(FieldCookingTime),
	}
	flagged := make(map[Field]bool)
	for _, fe := range validationErrors(validate.Struct(input)) {
		m, ok := scalarMessages[fe.Field()]
		if !ok {
			continue
		}
		flagged[m.field] = true
		f.invalid[m.field] = true
		errs = append(errs, FieldError{Field: m.field, Message: m.message})
	}
	// A run of digits can still overflow an int
	if input.CookingTime != "" && !flagged[FieldCookingTime] {
		if _, err := strconv.Atoi(input.CookingTime); err != nil {
			m := scalarMessages["CookingTime"]
			f.invalid[m.field] = true
			errs = append(errs, FieldError{Field: m.field, Message: m.message})
		}
	}

	for _, row := range f.Ingredients.Rows() {
		if strings.TrimSpace(row.Values.Name) == "" {
			continue
		}
		in := ingredientInput{Quantity: strings.TrimSpace(row.Values.Quantity)}
		if len(validationErrors(validate.Struct(in))) > 0 || !parsesAsFloat(in.Quantity) {
			errs = append(errs, FieldError{
				Field:   FieldIngredients,
				Row:     row.Key,
				Message: fmt.Sprintf("Ingredient %d: quantity must be a number", f.Ingredients.Position(row.Key)),
			})
		}
	}

	for _, row := range f.LogEntries.Rows() {
		date := strings.TrimSpace(row.Values.Date)
		if date == "" {
			continue
		}
		pos := f.LogEntries.Position(row.Key)
		in := logEntryInput{Date: date}
		if opts.RatingPolicy == RatingPassthrough {
			in.Rating = strings.TrimSpace(row.Values.Rating)
		}
		ratingFlagged := false
		for _, fe := range validationErrors(validate.Struct(in)) {
			msg := fmt.Sprintf("Log entry %d: date must be in YYYY-MM-DD format", pos)
			if fe.Field() == "Rating" {
				msg = ratingMessage(pos)
				ratingFlagged = true
			}
			errs = append(errs, FieldError{Field: FieldLogEntries, Row: row.Key, Message: msg})
		}
		if in.Rating != "" && !ratingFlagged {
			if n, err := strconv.Atoi(in.Rating); err != nil || validate.Var(n, "min=0,max=10") != nil {
				errs = append(errs, FieldError{Field: FieldLogEntries, Row: row.Key, Message: ratingMessage(pos)})
			}
		}
	}

	return errs
}

func ratingMessage(position int) string {
	return fmt.Sprintf("Log entry %d: rating must be a whole number from 0 to 10", position)
}

func parsesAsFloat(s string) bool {
	if s == "" {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func validationErrors(err error) validator.ValidationErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
