package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetOrCreatePerson returns the person with the given name, creating and
// persisting it on first use.
func GetOrCreatePerson(store Store, name string) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p, err := store.FindPerson(name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up person: %w", err)
	}

	p, err = store.CreatePerson(name)
	if errors.Is(err, ErrAlreadyExists) {
		return store.FindPerson(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return p, nil
}

// MealLog is the ordered list of one person's meals. The in-memory list is
// only changed after the store accepted the change, so it always matches
// what is persisted.
type MealLog struct {
	store  Store
	person *Person
	now    func() time.Time
	meals  []Meal
}

func OpenMealLog(store Store, person *Person, now func() time.Time) (*MealLog, error) {
	if now == nil {
		now = time.Now
	}

	l := &MealLog{store: store, person: person, now: now}
	if err := l.Reload(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *MealLog) Person() *Person {
	return l.person
}

// Reload replaces the in-memory list with what the store holds.
func (l *MealLog) Reload() error {
	meals, err := l.store.ListMeals(l.person.ID)
	if err != nil {
		return fmt.Errorf("failed to load meals: %w", err)
	}
	if meals == nil {
		meals = []Meal{}
	}

	l.meals = meals
	return nil
}

// Count is the real number of meals; an empty log counts 0.
func (l *MealLog) Count() int {
	return len(l.meals)
}

func (l *MealLog) MealAt(position int) (Meal, error) {
	if position < 0 || position >= len(l.meals) {
		return Meal{}, fmt.Errorf("meal %d of %d: %w", position, len(l.meals), ErrOutOfRange)
	}
	return l.meals[position], nil
}

func (l *MealLog) Meals() []Meal {
	out := make([]Meal, len(l.meals))
	copy(out, l.meals)
	return out
}

// Append records a meal stamped with the current time at the end of the log.
func (l *MealLog) Append() (Meal, error) {
	m, err := l.store.CreateMeal(l.person.ID, l.now())
	if err != nil {
		return Meal{}, fmt.Errorf("failed to save meal: %w", err)
	}

	l.meals = append(l.meals, *m)
	return *m, nil
}

// RemoveAt deletes the meal at position, keeping the order of the rest.
func (l *MealLog) RemoveAt(position int) (Meal, error) {
	m, err := l.MealAt(position)
	if err != nil {
		return Meal{}, err
	}

	if err := l.store.DeleteMeal(l.person.ID, m.ID); err != nil {
		return Meal{}, fmt.Errorf("failed to delete meal: %w", err)
	}

	l.meals = append(l.meals[:position], l.meals[position+1:]...)
	return m, nil
}
