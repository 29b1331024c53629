package recipe

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("recipe not found")
	ErrForbidden  = errors.New("forbidden")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type IngredientInput struct {
	Name     string
	Quantity string
	Unit     string
}

type StepInput struct {
	StepNumber      int
	InstructionText string
}

// Input is the payload for create and update. Photo is optional base64 image
// data, with or without a data URL prefix.
type Input struct {
	Title       string
	Description string
	Category    string
	Photo       string
	Ingredients []IngredientInput
	Steps       []StepInput
}

type ListQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ListFilter is what repositories receive after paging has been normalized.
type ListFilter struct {
	UserID   uuid.UUID
	Category string
	Search   string
	Offset   int
	Limit    int
}

type Page struct {
	Recipes    []*Recipe
	Page       int
	Limit      int
	Total      int
	TotalPages int
}
