// Package inmemdb implements the repositories in memory; it backs the tests and the `memory` database engine.
package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/enrollment"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
)

type (
	DB struct {
		user        *table[user.User]
		student     *table[student.Student]
		curriculum  *table[curriculum.Curriculum]
		food        *table[food.Food]
		menu        *table[menu.Menu]
		enrollment  *table[enrollment.Application]
		certificate *table[medical.Certificate]
		room        *table[room.Room]
		service     *table[tuition.SchoolService]
		tuition     *table[tuition.Tuition]
	}

	// table stores its own copy of every row; clone deep-copies the slices of a row
	// so that callers never share a backing array with the table.
	table[T any] struct {
		sync.RWMutex
		rows  map[string]T
		clone func(T) T
	}
)

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(row T) T { return row }
	}
	return &table[T]{rows: make(map[string]T), clone: clone}
}

// get returns a copy of the row. Callers hold the lock.
func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		return row, false
	}
	return t.clone(row), true
}

// put stores a copy of row. Callers hold the write lock.
func (t *table[T]) put(id string, row T) {
	t.rows[id] = t.clone(row)
}

func Open() (*DB, error) {
	db := &DB{
		user:        newTable(cloneUser),
		student:     newTable[student.Student](nil),
		curriculum:  newTable(cloneCurriculum),
		food:        newTable(cloneFood),
		menu:        newTable(cloneMenu),
		enrollment:  newTable(cloneApplication),
		certificate: newTable[medical.Certificate](nil),
		room:        newTable(cloneRoom),
		service:     newTable[tuition.SchoolService](nil),
		tuition:     newTable(cloneTuition),
	}
	return db, nil
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	return append(make(S, 0, len(s)), s...)
}

func cloneUser(u user.User) user.User {
	u.Roles = cloneSlice(u.Roles)
	u.PasswordHash = cloneSlice(u.PasswordHash)
	return u
}

func cloneCurriculum(c curriculum.Curriculum) curriculum.Curriculum {
	c.Activities = cloneSlice(c.Activities)
	return c
}

func cloneFood(f food.Food) food.Food {
	f.Ingredients = cloneSlice(f.Ingredients)
	return f
}

func cloneMenu(m menu.Menu) menu.Menu {
	m.Days = cloneSlice(m.Days)
	for i := range m.Days {
		m.Days[i].Meals = cloneSlice(m.Days[i].Meals)
		for j := range m.Days[i].Meals {
			m.Days[i].Meals[j].Foods = cloneSlice(m.Days[i].Meals[j].Foods)
		}
	}
	return m
}

func cloneApplication(a enrollment.Application) enrollment.Application {
	a.CertificateIDs = cloneSlice(a.CertificateIDs)
	a.Actions = cloneSlice(a.Actions)
	return a
}

func cloneRoom(r room.Room) room.Room {
	r.Facilities = cloneSlice(r.Facilities)
	r.Actions = cloneSlice(r.Actions)
	return r
}

func cloneTuition(t tuition.Tuition) tuition.Tuition {
	t.Items = cloneSlice(t.Items)
	t.Actions = cloneSlice(t.Actions)
	if t.PaidAt != nil {
		paidAt := *t.PaidAt
		t.PaidAt = &paidAt
	}
	return t
}

func newID() string { return uuid.New().String() }

// selectRows returns the matching rows of t, sorted & paginated, along with the number of matches.
// Callers hold the read lock.
func selectRows[T any](t *table[T], match func(T) bool, ordering []core.DBOrdering, paging core.Paging, field func(T, string) interface{}) ([]T, int) {
	rows := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if match(row) {
			rows = append(rows, t.clone(row))
		}
	}

	// rows are returned oldest first by default; the id settles ties for a stable order
	ordering = append(append([]core.DBOrdering(nil), ordering...),
		core.DBOrdering{Field: "created_at", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(field(rows[i], ord.Field), field(rows[j], ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	lo, hi := paging.Paginate(len(rows))
	return rows[lo:hi], len(rows)
}

// compare orders two values of the same kind; unknown kinds are equal.
func compare(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(strings.ToLower(x), strings.ToLower(b.(string)))
	case int:
		return compareNum(float64(x), float64(b.(int)))
	case int64:
		return compareNum(float64(x), float64(b.(int64)))
	case float64:
		return compareNum(x, b.(float64))
	case time.Time:
		return compareTime(x, b.(time.Time))
	case core.Date:
		return compareTime(x.Time, b.(core.Date).Time)
	case *time.Time:
		y := b.(*time.Time)
		switch {
		case x == nil && y == nil:
			return 0
		case x == nil:
			return -1
		case y == nil:
			return 1
		}
		return compareTime(*x, *y)
	}
	return 0
}

func compareNum(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
