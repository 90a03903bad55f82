package demo

import "bytes"
import "context"
import "errors"
import "io"
import "log/slog"
import "strings"
import "testing"
import "time"

import "github.com/google/uuid"
import "github.com/sebdah/goldie/v2"
import "github.com/stretchr/testify/require"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/todo"

// sequentialIDs yields 00000000-0000-0000-0000-000000000001, ...02 and so on.
func sequentialIDs() func() uuid.UUID {
	var n byte
	return func() uuid.UUID {
		n++
		return uuid.UUID{15: n}
	}
}

func testOptions(out io.Writer) Options {
	return Options{
		Out:    out,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Pick:   func(n int) int { return 1 },
		StoreOptions: []todo.Option{
			todo.WithIDGenerator(sequentialIDs()),
			todo.WithClock(func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }),
		},
	}
}

func testConfig() cassandra.CassandraConfig {
	return cassandra.CassandraConfig{Node: []string{"127.0.0.1"}, Keyspace: "todo_demo"}
}

func TestRunGolden(t *testing.T) {
	fake := cassandra.FakeCassandra()
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), testOptions(&out)))

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "run", out.Bytes())

	require.True(t, fake.HasKeyspace("todo_demo"))
	require.Zero(t, fake.OpenSessions())
}

func TestRunTwice(t *testing.T) {
	fake := cassandra.FakeCassandra()
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), testOptions(io.Discard)))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), testOptions(&out)))
	first, _, _ := strings.Cut(out.String(), "\n")
	require.Equal(t, "Keyspace todo_demo dropped successfully.", first)

	// The second run starts from an empty table, so only its own rows remain.
	conn, err := fake.Session("todo_demo")
	require.NoError(t, err)
	defer conn.Close()
	store, err := todo.NewStore(conn)
	require.NoError(t, err)
	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestRunKeepKeyspace(t *testing.T) {
	fake := cassandra.FakeCassandra()
	opts := testOptions(io.Discard)
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), opts))

	var out bytes.Buffer
	opts = testOptions(&out)
	opts.KeepKeyspace = true
	opts.StoreOptions = nil
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), opts))
	require.NotContains(t, out.String(), "dropped")
	require.NotContains(t, out.String(), "An error occurred")

	conn, err := fake.Session("todo_demo")
	require.NoError(t, err)
	defer conn.Close()
	store, err := todo.NewStore(conn)
	require.NoError(t, err)
	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestRunRandomPicks(t *testing.T) {
	fake := cassandra.FakeCassandra()
	var out bytes.Buffer
	opts := testOptions(&out)
	opts.Pick = nil
	opts.StoreOptions = nil
	require.NoError(t, Run(context.Background(), fake.Dial, testConfig(), opts))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 9)
	require.True(t, strings.HasPrefix(lines[4], "Updated task for UUID: "))
	updated := strings.TrimPrefix(lines[4], "Updated task for UUID: ")
	require.Equal(t, updated+". "+UpdatedTask, strings.SplitN(lines[5], " (", 2)[0])
	deleted := strings.TrimPrefix(lines[6], "Deleted task for UUID: ")
	require.NotEqual(t, updated, deleted)
	require.NotContains(t, strings.Join(lines[7:], "\n"), deleted)
	require.Contains(t, strings.Join(lines[7:], "\n"), updated)
}

func TestRunFailures(t *testing.T) {
	boom := errors.New("boom")

	for _, tc := range []struct {
		prefix string
		want   string
	}{
		{"CREATE KEYSPACE", "keyspace creation failed: boom"},
		{"CREATE TABLE", "table creation failed: boom"},
		{"CREATE INDEX", "index creation failed: boom"},
		{"INSERT", "boom"},
		{"DELETE", "boom"},
	} {
		t.Run(tc.prefix, func(t *testing.T) {
			fake := cassandra.FakeCassandra()
			fake.FailOn(tc.prefix, boom)
			err := Run(context.Background(), fake.Dial, testConfig(), testOptions(io.Discard))
			require.ErrorIs(t, err, boom)
			require.EqualError(t, err, tc.want)
			require.Zero(t, fake.OpenSessions())
		})
	}
}

func TestRunNoContactPoints(t *testing.T) {
	fake := cassandra.FakeCassandra()
	config := testConfig()
	config.Node = nil
	require.Error(t, Run(context.Background(), fake.Dial, config, testOptions(io.Discard)))
	require.Zero(t, fake.OpenSessions())
}

func TestRunMixedCaseKeyspace(t *testing.T) {
	fake := cassandra.FakeCassandra()
	config := testConfig()
	config.Keyspace = "Todo"
	err := Run(context.Background(), fake.Dial, config, testOptions(io.Discard))
	require.ErrorIs(t, err, cassandra.ErrInvalidIdentifier)
	require.False(t, fake.HasKeyspace("todo"))
	require.Zero(t, fake.OpenSessions())
}

func TestRunInvalidKeyspace(t *testing.T) {
	fake := cassandra.FakeCassandra()
	config := testConfig()
	config.Keyspace = "todo; DROP"
	var out bytes.Buffer
	err := Run(context.Background(), fake.Dial, config, testOptions(&out))
	require.ErrorIs(t, err, cassandra.ErrInvalidIdentifier)
	require.Zero(t, fake.OpenSessions())
}
