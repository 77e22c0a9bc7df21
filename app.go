package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var errNotInitialized = errors.New("app is not initialized")

// View is what the app asks to redraw after a change went through.
type View interface {
	Reload()
	DeleteRow(position int)
}

type App struct {
	cfg   *Config
	store Store
	view  View
	log   logrus.FieldLogger
	now   func() time.Time

	meals *MealLog
}

func NewApp(cfg *Config, store Store, view View, log logrus.FieldLogger) *App {
	return &App{
		cfg:   cfg,
		store: store,
		view:  view,
		log:   log,
		now:   time.Now,
	}
}

// Initialize looks up or creates the configured person and loads its meals.
func (a *App) Initialize() error {
	person, err := GetOrCreatePerson(a.store, a.cfg.Person)
	if err != nil {
		a.log.WithError(err).WithField("person", a.cfg.Person).Error("failed to initialize person")
		return err
	}

	meals, err := OpenMealLog(a.store, person, a.now)
	if err != nil {
		a.log.WithError(err).WithField("person", person.Name).Error("failed to load meals")
		return err
	}

	a.meals = meals
	a.log.WithFields(logrus.Fields{"person": person.Name, "meals": meals.Count()}).Debug("initialized")
	return nil
}

func (a *App) Title() string {
	return a.cfg.Display.Title
}

func (a *App) RowCount() int {
	if a.meals == nil {
		return 0
	}

	n := a.meals.Count()
	if n == 0 && a.cfg.Display.EmptyPlaceholder {
		return 1
	}
	return n
}

// MealCount is the number of meals without the placeholder row.
func (a *App) MealCount() int {
	if a.meals == nil {
		return 0
	}
	return a.meals.Count()
}

func (a *App) RowLabel(position int) string {
	if a.isPlaceholder(position) {
		return a.cfg.Display.PlaceholderText
	}

	m, ok := a.mealAt(position)
	if !ok {
		return ""
	}
	return m.Date.Local().Format(a.cfg.Display.TimeLayout)
}

// RowAge renders how long ago the meal at position was recorded.
func (a *App) RowAge(position int) string {
	m, ok := a.mealAt(position)
	if !ok {
		return ""
	}
	return humanize.RelTime(m.Date, a.now(), "ago", "from now")
}

func (a *App) OnAddTriggered() error {
	if a.meals == nil {
		return errNotInitialized
	}

	m, err := a.meals.Append()
	if err != nil {
		a.log.WithError(err).Error("failed to add meal")
		return err
	}

	a.log.WithFields(logrus.Fields{"meal": m.ID, "date": m.Date}).Info("meal added")
	a.view.Reload()
	return nil
}

func (a *App) OnDeleteTriggered(position int) error {
	if a.meals == nil {
		return errNotInitialized
	}

	m, err := a.meals.RemoveAt(position)
	if err != nil {
		a.log.WithError(err).WithField("position", position).Error("failed to delete meal")
		return err
	}

	a.log.WithFields(logrus.Fields{"meal": m.ID, "position": position}).Info("meal deleted")
	a.view.DeleteRow(position)
	return nil
}

type exportDoc struct {
	Person    string    `json:"person" yaml:"person"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Meals     []Meal    `json:"meals" yaml:"meals"`
}

// Export writes the person and all meals as json or yaml.
func (a *App) Export(w io.Writer, format string) error {
	if a.meals == nil {
		return errNotInitialized
	}

	doc := exportDoc{
		Person:    a.meals.Person().Name,
		CreatedAt: a.meals.Person().CreatedAt,
		Meals:     a.meals.Meals(),
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid export format: %s", format)
	}
}

func (a *App) isPlaceholder(position int) bool {
	return position == 0 && a.meals != nil && a.meals.Count() == 0 && a.cfg.Display.EmptyPlaceholder
}

func (a *App) mealAt(position int) (Meal, bool) {
	if a.meals == nil {
		return Meal{}, false
	}

	m, err := a.meals.MealAt(position)
	if err != nil {
		return Meal{}, false
	}
	return m, true
}
