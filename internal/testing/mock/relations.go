package mock

import (
	"context"
	"sync"
)

// Published is the data this unit published over a relation.
type Published struct {
	Relation string
	Data     map[string]string
}

// Relations is an in-memory relation store.
type Relations struct {
	mu        sync.Mutex
	remote    map[string][]map[string]string
	published map[string]Published
	readErr   error
	writeErr  error
}

// NewRelations creates an empty store.
func NewRelations() *Relations {
	return &Relations{
		remote:    map[string][]map[string]string{},
		published: map[string]Published{},
	}
}

// Join adds the data of one remote unit to relation.
func (r *Relations) Join(relation string, data map[string]string) *Relations {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remote[relation] = append(r.remote[relation], data)
	return r
}

// Break removes every remote unit of relation.
func (r *Relations) Break(relation string) *Relations {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.remote, relation)
	return r
}

// FailReads makes Relations return err.
func (r *Relations) FailReads(err error) *Relations {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readErr = err
	return r
}

// FailWrites makes Publish and Retract return err.
func (r *Relations) FailWrites(err error) *Relations {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
	return r
}

func (r *Relations) Relations(ctx context.Context, relation string) ([]map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	return append([]map[string]string(nil), r.remote[relation]...), nil
}

func (r *Relations) Publish(ctx context.Context, relation, name string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	r.published[name] = Published{Relation: relation, Data: copied}
	return nil
}

func (r *Relations) Retract(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	delete(r.published, name)
	return nil
}

// PublishedAs returns what was published under name.
func (r *Relations) PublishedAs(name string) (Published, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.published[name]
	return p, ok
}
