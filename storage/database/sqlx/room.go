package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/room"
)

const roomColumns = "id, name, type, capacity, facilities, status, note, created_at, updated_at"

type roomRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Type       string         `db:"type"`
	Capacity   int            `db:"capacity"`
	Facilities types.JSONText `db:"facilities"`
	Status     string         `db:"status"`
	Note       string         `db:"note"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func toRoomRow(r room.Room) (roomRow, error) {
	if r.Facilities == nil {
		r.Facilities = []room.Facility{}
	}
	facilities, err := toJSON(r.Facilities)
	if err != nil {
		return roomRow{}, err
	}
	return roomRow{
		ID:         r.ID,
		Name:       r.Name,
		Type:       r.Type,
		Capacity:   r.Capacity,
		Facilities: facilities,
		Status:     r.Status,
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func (row roomRow) room() (room.Room, error) {
	r := room.Room{
		ID:         row.ID,
		Name:       row.Name,
		Type:       row.Type,
		Capacity:   row.Capacity,
		Facilities: []room.Facility{},
		Status:     row.Status,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	err := fromJSON(row.Facilities, &r.Facilities)
	return r, err
}

type roomRepository struct {
	exec core.DBExecutor
}

var _ room.Repository = (*roomRepository)(nil)

func NewRoomRepository(exec core.DBExecutor) room.Repository {
	return &roomRepository{exec: exec}
}

func (repo *roomRepository) CreateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	r.ID = uuid.New().String()
	row, err := toRoomRow(r)
	if err != nil {
		return room.Room{}, err
	}
	stmt := `INSERT INTO room (` + roomColumns + `) VALUES (:id, :name, :type, :capacity, :facilities, :status, :note, :created_at, :updated_at)`
	if _, err = repo.exec.NamedExecContext(ctx, stmt, row); err != nil {
		return room.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *roomRepository) QueryRooms(ctx context.Context, filter *room.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]room.Room, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "name")
		if len(filter.Types) > 0 {
			q.and("type = ANY(?)", pq.Array(filter.Types))
		}
		if len(filter.Statuses) > 0 {
			q.and("status = ANY(?)", pq.Array(filter.Statuses))
		}
	}

	var rows []roomRow
	total, err := selectPage(ctx, repo.exec, &rows, "room", roomColumns, q, ordering, room.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	rooms := make([]room.Room, 0, len(rows))
	for _, row := range rows {
		r, err := row.room()
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, r)
	}
	return rooms, total, nil
}

func (repo *roomRepository) GetRoom(ctx context.Context, id string) (room.Room, error) {
	if !validID(id) {
		return room.Room{}, room.ErrNotFound
	}
	var row roomRow
	if err := get(ctx, repo.exec, &row, room.ErrNotFound, "SELECT "+roomColumns+" FROM room WHERE id = $1", id); err != nil {
		return room.Room{}, err
	}
	return row.room()
}

func (repo *roomRepository) UpdateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	row, err := toRoomRow(r)
	if err != nil {
		return room.Room{}, err
	}
	stmt := `UPDATE room SET name = :name, type = :type, capacity = :capacity, facilities = :facilities, status = :status,
		note = :note, updated_at = :updated_at WHERE id = :id`
	if err = affectsOne(room.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, row)); err != nil {
		return room.Room{}, errors.Wrap(err, "updating room")
	}
	return r, nil
}

func (repo *roomRepository) DeleteRoom(ctx context.Context, id string) error {
	if !validID(id) {
		return room.ErrNotFound
	}
	return affectsOne(room.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM room WHERE id = $1", id))
}
