package todo

import "context"
import "time"

import "github.com/gocql/gocql"
import "github.com/google/uuid"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"

// NewID returns a fresh random (version 4) todo id.
func NewID() uuid.UUID {
	return uuid.New()
}

// Store loads and saves todos in the todos table of a keyspace.
type Store struct {
	table *cassandra.Table
	now   func() time.Time
	newID func() uuid.UUID
}

// An Option configures a Store.
type Option func(*Store)

// WithClock makes the store stamp records with times given by now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator makes the store assign ids given by newID to records inserted without one.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore returns a store that issues its statements on cluster, a session on a keyspace that
// has the todos table.
func NewStore(cluster cassandra.Cluster, opts ...Option) (*Store, error) {
	if cluster == nil {
		return nil, cassandra.ErrNoSession
	}
	s := &Store{
		table: Table().Bind(cluster),
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// timestamps are kept with millisecond precision
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Load returns the todo with the given id. If there is none, found is false and err is nil.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Todo, bool, error) {
	todos, err := s.scanAll(cassandra.Select().From(s.table).Where("id = ?", gocql.UUID(id)).Query(ctx))
	if err != nil {
		return nil, false, err
	}
	if len(todos) == 0 {
		return nil, false, nil
	}
	return todos[0], true, nil
}

// LoadAll returns the todos with the given ids, or every todo if no ids are given. Ids that match
// nothing are skipped, repeated ids yield their todo once, and the order of the result is up to
// the cluster.
func (s *Store) LoadAll(ctx context.Context, ids ...uuid.UUID) ([]*Todo, error) {
	sel := cassandra.Select().From(s.table)
	if len(ids) > 0 {
		// The ids are bound as one list value, never spliced into the statement. Repeats are
		// dropped so that each row comes back once.
		list := make([]gocql.UUID, 0, len(ids))
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				list = append(list, gocql.UUID(id))
			}
		}
		sel.Where("id IN ?", list)
	}
	return s.scanAll(sel.Query(ctx))
}

// LoadByUser returns the todos owned by the given user.
func (s *Store) LoadByUser(ctx context.Context, userID int64) ([]*Todo, error) {
	return s.scanAll(cassandra.Select().From(s.table).Where("user_id = ?", userID).Query(ctx))
}

// LoadByCompleted returns the todos whose completion flag equals completed.
func (s *Store) LoadByCompleted(ctx context.Context, completed bool) ([]*Todo, error) {
	return s.scanAll(cassandra.Select().From(s.table).Where("completed = ?", completed).Query(ctx))
}

// Exists reports whether a todo with the given id is stored.
func (s *Store) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := cassandra.Select("COUNT(*)").From(s.table).Where("id = ?", gocql.UUID(id)).Query(ctx)
	var count int64
	q.Scan(&count)
	if err := q.Close(); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert stores t. A record with a zero id is given a fresh one, and zero timestamps are set to
// the current time. An existing row with the same id is overwritten.
func (s *Store) Insert(ctx context.Context, t *Todo) error {
	if t.ID == uuid.Nil {
		t.ID = s.newID()
	}
	now := s.timestamp()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return cassandra.InsertInto(s.table).
		Keys("id", "task", "completed", "user_id", "created_at", "updated_at").
		Values(gocql.UUID(t.ID), t.Task, t.Completed, t.UserID, t.CreatedAt, t.UpdatedAt).
		Query(ctx).Exec()
}

// Update rewrites the task, completion flag and owner of a stored todo, and refreshes its
// UpdatedAt. It returns ErrNotFound if there is no todo with t's id.
func (s *Store) Update(ctx context.Context, t *Todo) error {
	if err := s.mustExist(ctx, t.ID); err != nil {
		return err
	}
	updatedAt := s.timestamp()
	err := cassandra.Update(s.table).
		Set("task", t.Task).
		Set("completed", t.Completed).
		Set("user_id", t.UserID).
		Set("updated_at", updatedAt).
		Where("id = ?", gocql.UUID(t.ID)).
		Query(ctx).Exec()
	if err != nil {
		return err
	}
	t.UpdatedAt = updatedAt
	return nil
}

// UpdateTask replaces the task of the todo with the given id. It returns ErrNotFound if there is
// no such todo.
func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, task string) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	return cassandra.Update(s.table).
		Set("task", task).
		Set("updated_at", s.timestamp()).
		Where("id = ?", gocql.UUID(id)).
		Query(ctx).Exec()
}

// Delete removes the todo with the given id. Deleting a todo that doesn't exist is not an error.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return cassandra.DeleteFrom(s.table).Where("id = ?", gocql.UUID(id)).Query(ctx).Exec()
}

func (s *Store) mustExist(ctx context.Context, id uuid.UUID) error {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return cassandra.ErrNotFound
	}
	return nil
}

func (s *Store) scanAll(q cassandra.Query) ([]*Todo, error) {
	todos := make([]*Todo, 0)
	for {
		var (
			id gocql.UUID
			t  Todo
		)
		if !q.Scan(&id, &t.Task, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt) {
			break
		}
		t.ID = uuid.UUID(id)
		todos = append(todos, &t)
	}
	if err := q.Close(); err != nil {
		return nil, err
	}
	return todos, nil
}
