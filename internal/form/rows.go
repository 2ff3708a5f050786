package form

import (
	"errors"

	"github.com/google/uuid"
)

var ErrRowNotFound = errors.New("row not found")

// Row is one input group of a growable collection
// Key is generated when the row is added and never changes, whatever happens to
// the rows around it.
type Row[T any] struct {
	Key    string
	Values T
}

// RowList is an ordered collection of rows; its order is the submission order
type RowList[T any] struct {
	rows []Row[T]
}

// Add appends an empty row and returns its key
func (l *RowList[T]) Add() string {
	key := uuid.NewString()
	l.rows = append(l.rows, Row[T]{Key: key})
	return key
}

// Append adds a row holding values and returns its key
func (l *RowList[T]) Append(values T) string {
	key := l.Add()
	l.rows[len(l.rows)-1].Values = values
	return key
}

// Remove deletes the row with the given key; siblings keep their keys
func (l *RowList[T]) Remove(key string) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	return true
}

// Set replaces the values of a row
func (l *RowList[T]) Set(key string, values T) error {
	i := l.index(key)
	if i < 0 {
		return ErrRowNotFound
	}
	l.rows[i].Values = values
	return nil
}

// Get returns the values of a row and whether it exists
func (l *RowList[T]) Get(key string) (T, bool) {
	i := l.index(key)
	if i < 0 {
		var zero T
		return zero, false
	}
	return l.rows[i].Values, true
}

// Position returns the 1-based display position of a row, or 0 if it is absent
func (l *RowList[T]) Position(key string) int {
	return l.index(key) + 1
}

// Rows returns a copy of the rows in order
func (l *RowList[T]) Rows() []Row[T] {
	return append([]Row[T](nil), l.rows...)
}

// Len returns the number of rows
func (l *RowList[T]) Len() int {
	return len(l.rows)
}

func (l *RowList[T]) index(key string) int {
	for i, row := range l.rows {
		if row.Key == key {
			return i
		}
	}
	return -1
}
