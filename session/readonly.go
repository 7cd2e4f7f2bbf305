package session

import (
	"context"
	"slices"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

type readOnly struct {
	store Store
	ids   []string
}

// ReadOnly freezes the set of sessions in a pre-seeded store. Known sessions
// still accept appends; unknown ids are refused with *UnknownSessionError
// instead of being created. Delete is refused for every id.
func ReadOnly(store Store) Store {
	return &readOnly{store: store, ids: store.IDs()}
}

func (r *readOnly) known(id string) bool {
	_, ok := slices.BinarySearch(r.ids, id)
	return ok
}

func (r *readOnly) GetOrCreate(id string) (*Session, error) {
	if !r.known(id) {
		return nil, &UnknownSessionError{ID: id}
	}
	return r.store.GetOrCreate(id)
}

func (r *readOnly) Append(id string, msgs ...protocol.Message) error {
	if !r.known(id) {
		return &UnknownSessionError{ID: id}
	}
	return r.store.Append(id, msgs...)
}

func (r *readOnly) Snapshot(id string) ([]protocol.Message, error) {
	if !r.known(id) {
		return nil, &UnknownSessionError{ID: id}
	}
	return r.store.Snapshot(id)
}

func (r *readOnly) IDs() []string {
	return slices.Clone(r.ids)
}

func (r *readOnly) Delete(id string) error {
	return ErrReadOnly
}

func (r *readOnly) Lock(ctx context.Context, id string) (func(), error) {
	return r.store.Lock(ctx, id)
}
