package main

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

var (
	peopleColumns = []string{"id", "name", "created_at"}
	mealColumns   = []string{"id", "person_id", "date"}
)

type Repo struct {
	db  *sql.DB
	log logrus.FieldLogger
}

var _ Store = (*Repo)(nil)

func NewRepo(dbPath string, log logrus.FieldLogger) (*Repo, error) {
	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// open database, cascading deletes need foreign keys switched on
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// verify connection with database
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repo{db: db, log: log}

	// run migrations
	if err := repo.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// applies the embedded schema on initial start
func (r *Repo) runMigrations() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: r.log})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(r.db, migrationsDir)
}

// +---------------------+
// |                     |
// |   Person Queries    |
// |                     |
// +---------------------+

// finds a person by name
func (r *Repo) FindPerson(name string) (*Person, error) {
	query, args, err := sq.Select(peopleColumns...).
		From("people").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Person
	err = r.db.QueryRow(query, args...).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err, "person "+name)
	}

	return &p, nil
}

// creates new person
func (r *Repo) CreatePerson(name string) (*Person, error) {
	createdAt := time.Now().UTC()

	query, args, err := sq.Insert("people").
		Columns("name", "created_at").
		Values(name, createdAt).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, mapError(err, "person "+name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Person{ID: id, Name: name, CreatedAt: createdAt}, nil
}

// deletes a person, meals go with it
func (r *Repo) DeletePerson(id int64) error {
	query, args, err := sq.Delete("people").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	return r.execOne(fmt.Sprintf("person %d", id), query, args...)
}

// +---------------------+
// |                     |
// |    Meal Queries     |
// |                     |
// +---------------------+

// lists meals of a person in insertion order
func (r *Repo) ListMeals(personID int64) ([]Meal, error) {
	query, args, err := sq.Select(mealColumns...).
		From("meals").
		Where(sq.Eq{"person_id": personID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []Meal{}
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.ID, &m.PersonID, &m.Date); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return meals, nil
}

func (r *Repo) CreateMeal(personID int64, date time.Time) (*Meal, error) {
	query, args, err := sq.Insert("meals").
		Columns("person_id", "date").
		Values(personID, date).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("person %d", personID))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Meal{ID: id, PersonID: personID, Date: date}, nil
}

func (r *Repo) DeleteMeal(personID, mealID int64) error {
	query, args, err := sq.Delete("meals").
		Where(sq.Eq{"id": mealID, "person_id": personID}).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(fmt.Sprintf("meal %d", mealID), query, args...)
}

// runs a statement that must touch exactly one row
func (r *Repo) execOne(entity, query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return mapError(err, entity)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}

	return nil
}

// converts sqlite errors to the package sentinels
func mapError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s: %w", entity, ErrAlreadyExists)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", entity, ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w", entity, err)
}
