package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	peopleBucket = []byte("people")
	mealsBucket  = []byte("meals")
)

// BoltRepo keeps people in a bucket keyed by name and each person's meals
// in a nested bucket keyed by a big-endian sequence, so cursor order is
// insertion order.
type BoltRepo struct {
	db *bolt.DB
}

var _ Store = (*BoltRepo)(nil)

func NewBoltRepo(path string) (*BoltRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{peopleBucket, mealsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRepo{db: db}, nil
}

func (r *BoltRepo) Close() error {
	return r.db.Close()
}

func (r *BoltRepo) FindPerson(name string) (*Person, error) {
	var p Person
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(peopleBucket).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("person %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *BoltRepo) CreatePerson(name string) (*Person, error) {
	var p Person
	err := r.db.Update(func(tx *bolt.Tx) error {
		people := tx.Bucket(peopleBucket)
		if people.Get([]byte(name)) != nil {
			return fmt.Errorf("person %s: %w", name, ErrAlreadyExists)
		}

		id, err := people.NextSequence()
		if err != nil {
			return err
		}
		p = Person{ID: int64(id), Name: name, CreatedAt: time.Now().UTC()}

		if _, err := tx.Bucket(mealsBucket).CreateBucket(itob(p.ID)); err != nil {
			return fmt.Errorf("failed to create meals bucket: %w", err)
		}

		return putJSON(people, []byte(name), p)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *BoltRepo) DeletePerson(id int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		people := tx.Bucket(peopleBucket)

		var key []byte
		err := people.ForEach(func(k, v []byte) error {
			var p Person
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to unmarshal %s: %w", k, err)
			}
			if p.ID == id {
				key = append([]byte(nil), k...)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if key == nil {
			return fmt.Errorf("person %d: %w", id, ErrNotFound)
		}

		if err := people.Delete(key); err != nil {
			return err
		}

		meals := tx.Bucket(mealsBucket)
		if meals.Bucket(itob(id)) == nil {
			return nil
		}
		return meals.DeleteBucket(itob(id))
	})
}

func (r *BoltRepo) ListMeals(personID int64) ([]Meal, error) {
	meals := []Meal{}
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(mealsBucket).Bucket(itob(personID))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var m Meal
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("failed to unmarshal meal %d: %w", btoi(k), err)
			}
			meals = append(meals, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return meals, nil
}

func (r *BoltRepo) CreateMeal(personID int64, date time.Time) (*Meal, error) {
	var m Meal
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := personMeals(tx, personID)
		if err != nil {
			return err
		}

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		m = Meal{ID: int64(id), PersonID: personID, Date: date}

		return putJSON(b, itob(m.ID), m)
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *BoltRepo) DeleteMeal(personID, mealID int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := personMeals(tx, personID)
		if err != nil {
			return err
		}

		key := itob(mealID)
		if b.Get(key) == nil {
			return fmt.Errorf("meal %d: %w", mealID, ErrNotFound)
		}
		return b.Delete(key)
	})
}

func personMeals(tx *bolt.Tx, personID int64) (*bolt.Bucket, error) {
	b := tx.Bucket(mealsBucket).Bucket(itob(personID))
	if b == nil {
		return nil, fmt.Errorf("person %d: %w", personID, ErrNotFound)
	}
	return b, nil
}

func putJSON(b *bolt.Bucket, key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return b.Put(key, data)
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
