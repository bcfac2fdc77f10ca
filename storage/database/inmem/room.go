package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/room"
)

type roomRepository struct {
	db *table[room.Room]
}

var _ room.Repository = (*roomRepository)(nil)

func NewRoomRepository(db *DB) room.Repository {
	return &roomRepository{db: db.room}
}

func roomField(r room.Room, field string) interface{} {
	switch field {
	case "id":
		return r.ID
	case "name":
		return r.Name
	case "type":
		return r.Type
	case "capacity":
		return r.Capacity
	case "status":
		return r.Status
	case "created_at":
		return r.CreatedAt
	}
	return nil
}

func (repo *roomRepository) CreateRoom(_ context.Context, r room.Room) (room.Room, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = newID()
	repo.db.put(r.ID, r)
	return r, nil
}

func (repo *roomRepository) QueryRooms(_ context.Context, filter *room.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]room.Room, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows, total := selectRows(repo.db, filter.Match, ordering, paging, roomField)
	return rows, total, nil
}

func (repo *roomRepository) GetRoom(_ context.Context, id string) (room.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.get(id); ok {
		return r, nil
	}
	return room.Room{}, room.ErrNotFound
}

func (repo *roomRepository) UpdateRoom(_ context.Context, r room.Room) (room.Room, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[r.ID]; !ok {
		return room.Room{}, room.ErrNotFound
	}
	r.Actions = nil
	repo.db.put(r.ID, r)
	return r, nil
}

func (repo *roomRepository) DeleteRoom(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return room.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
