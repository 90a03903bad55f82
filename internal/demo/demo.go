// Package demo provisions a todos keyspace and walks a Store through a create, read, update and
// delete cycle, reporting each step on an output stream.
package demo

import "context"
import "fmt"
import "io"
import "log/slog"
import "math/rand"
import "os"

import "github.com/google/uuid"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/logger"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/todo"

// ReplicationFactor is the replication factor of the keyspace the demo creates.
const ReplicationFactor = 1

// UpdatedTask is the task given to the todo picked for updating.
const UpdatedTask = "Keep positive mind"

// Samples returns the todos the demo seeds the table with.
func Samples() []*todo.Todo {
	return []*todo.Todo{
		{Task: "Do something nice for someone I care about", Completed: true, UserID: 26},
		{Task: "Memorize the fifty states and their capitals", Completed: false, UserID: 48},
		{Task: "Watch a classic movie", Completed: false, UserID: 4},
	}
}

// Options tune a demo run. The zero value reports on stdout, logs through the process-wide logger
// and picks todos at random.
type Options struct {
	Out    io.Writer
	Logger *slog.Logger

	// Pick returns an index in [0, n). It chooses the todos to update and delete.
	Pick func(n int) int

	// KeepKeyspace skips dropping the keyspace before provisioning it.
	KeepKeyspace bool

	StoreOptions []todo.Option
}

func (opts *Options) setDefaults() {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.Pick == nil {
		opts.Pick = rand.Intn
	}
}

// Run resets the keyspace named in config, creates the todos schema in it and exercises a Store
// on it. A failure to drop the keyspace is reported and the run goes on; any other failure ends
// the run and is returned.
func Run(ctx context.Context, dial cassandra.Dialer, config cassandra.CassandraConfig, opts Options) error {
	opts.setDefaults()
	log := opts.Logger.With("keyspace", config.Keyspace)
	log.Info("starting demo", "contact_points", config.Node)

	if err := prepareKeyspace(ctx, dial, config, opts, log); err != nil {
		return err
	}

	conn, err := dial(config)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := todo.Schema().Apply(ctx, conn); err != nil {
		return err
	}
	store, err := todo.NewStore(conn, opts.StoreOptions...)
	if err != nil {
		return err
	}
	return exercise(ctx, store, opts, log)
}

// prepareKeyspace drops and recreates the keyspace through a session that isn't bound to any
// keyspace.
func prepareKeyspace(ctx context.Context, dial cassandra.Dialer, config cassandra.CassandraConfig,
	opts Options, log *slog.Logger) error {
	keyspace := config.Keyspace
	config.Keyspace = ""
	admin, err := dial(config)
	if err != nil {
		return err
	}
	defer admin.Close()

	if !opts.KeepKeyspace {
		if err := cassandra.DropKeyspace(ctx, admin, keyspace); err != nil {
			log.Warn("keyspace drop failed", "err", err)
			fmt.Fprintf(opts.Out, "An error occurred: %v\n", err)
		} else {
			fmt.Fprintf(opts.Out, "Keyspace %s dropped successfully.\n", keyspace)
		}
	}
	return cassandra.CreateKeyspace(ctx, admin, keyspace, ReplicationFactor)
}

func exercise(ctx context.Context, store *todo.Store, opts Options, log *slog.Logger) error {
	ids := make([]uuid.UUID, 0, 3)
	for _, t := range Samples() {
		if err := store.Insert(ctx, t); err != nil {
			return err
		}
		ids = append(ids, t.ID)
	}
	log.Info("seeded todos", "count", len(ids))

	todos, err := store.LoadAll(ctx, ids...)
	if err != nil {
		return err
	}
	printTodos(opts.Out, todos)

	i := opts.Pick(len(ids))
	updated := ids[i]
	ids = append(ids[:i:i], ids[i+1:]...)
	if err := store.UpdateTask(ctx, updated, UpdatedTask); err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, "Updated task for UUID: %s\n", updated)

	t, found, err := store.Load(ctx, updated)
	if err != nil {
		return err
	}
	if found {
		printTodos(opts.Out, []*todo.Todo{t})
	}

	deleted := ids[opts.Pick(len(ids))]
	if err := store.Delete(ctx, deleted); err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, "Deleted task for UUID: %s\n", deleted)

	todos, err = store.LoadAll(ctx)
	if err != nil {
		return err
	}
	printTodos(opts.Out, todos)
	return nil
}

func printTodos(w io.Writer, todos []*todo.Todo) {
	for _, t := range todos {
		fmt.Fprintln(w, t)
	}
}
