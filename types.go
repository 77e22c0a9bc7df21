package main

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrOutOfRange    = errors.New("position out of range")
	ErrInvalidName   = errors.New("person name must not be empty")
)

type Person struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type Meal struct {
	ID       int64     `json:"id" yaml:"id"`
	PersonID int64     `json:"person_id" yaml:"person_id"`
	Date     time.Time `json:"date" yaml:"date"`
}

// Store persists people and their meals. ListMeals returns meals in the
// order they were created.
type Store interface {
	FindPerson(name string) (*Person, error)
	CreatePerson(name string) (*Person, error)
	DeletePerson(id int64) error

	ListMeals(personID int64) ([]Meal, error)
	CreateMeal(personID int64, date time.Time) (*Meal, error)
	DeleteMeal(personID, mealID int64) error

	Close() error
}
