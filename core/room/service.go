package room

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

var ErrNotFound = errors.New("room not found")

type (
	Repository interface {
		CreateRoom(ctx context.Context, r Room) (Room, error)
		QueryRooms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Room, int, error)
		GetRoom(ctx context.Context, id string) (Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)
		DeleteRoom(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nr NewRoom) (Room, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Room, int, error)
		GetByID(ctx context.Context, id string) (Room, error)
		Update(ctx context.Context, r Room, nr NewRoom) (Room, error)
		Approve(ctx context.Context, r Room, d Decision) (Room, error)
		Reject(ctx context.Context, r Room, d Decision) (Room, error)
		Delete(ctx context.Context, r Room) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nr NewRoom) (Room, error) {
	now := core.NowFunc().UTC()
	r := Room{Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	apply(&r, nr)
	r, err := svc.repo.CreateRoom(ctx, r)
	if err != nil {
		return Room{}, err
	}
	return r.WithActions(), nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Room, int, error) {
	rooms, total, err := svc.repo.QueryRooms(ctx, filter, ordering, paging)
	if err != nil {
		return nil, 0, err
	}
	for i := range rooms {
		rooms[i] = rooms[i].WithActions()
	}
	return rooms, total, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Room, error) {
	r, err := svc.repo.GetRoom(ctx, id)
	if err != nil {
		return Room{}, err
	}
	return r.WithActions(), nil
}

// Update edits a pending or rejected Room; it goes back to pending.
func (svc *service) Update(ctx context.Context, r Room, nr NewRoom) (Room, error) {
	if err := Gates.Check(ActionUpdate, r.Status); err != nil {
		return Room{}, err
	}
	apply(&r, nr)
	r.Status = StatusPending
	return svc.save(ctx, r)
}

func (svc *service) Approve(ctx context.Context, r Room, d Decision) (Room, error) {
	if err := Gates.Check(ActionApprove, r.Status); err != nil {
		return Room{}, err
	}
	r.Status = StatusApproved
	if note := core.CleanString(d.Note); note != "" {
		r.Note = note
	}
	return svc.save(ctx, r)
}

func (svc *service) Reject(ctx context.Context, r Room, d Decision) (Room, error) {
	if err := Gates.Check(ActionReject, r.Status); err != nil {
		return Room{}, err
	}
	note := core.CleanString(d.Note)
	if note == "" {
		return Room{}, core.NewValidationError(nil, core.FieldError{Field: "note", Error: "a reason is required"})
	}
	r.Status = StatusRejected
	r.Note = note
	return svc.save(ctx, r)
}

func (svc *service) Delete(ctx context.Context, r Room) error {
	if err := Gates.Check(ActionDelete, r.Status); err != nil {
		return err
	}
	return svc.repo.DeleteRoom(ctx, r.ID)
}

func (svc *service) save(ctx context.Context, r Room) (Room, error) {
	r.UpdatedAt = core.NowFunc().UTC()
	r, err := svc.repo.UpdateRoom(ctx, r)
	if err != nil {
		return Room{}, errors.Wrap(err, "updating room")
	}
	return r.WithActions(), nil
}

func apply(r *Room, data NewRoom) {
	r.Name = data.Name
	r.Type = data.Type
	r.Capacity = data.Capacity
	r.Facilities = data.Facilities
	if r.Facilities == nil {
		r.Facilities = []Facility{}
	}
	r.Note = data.Note
}
