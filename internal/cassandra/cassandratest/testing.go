// Package cassandratest opens throwaway keyspaces for tests, on a live cluster when the -cluster
// flag is given and on a fake one otherwise.
package cassandratest

import "context"
import "flag"
import "strings"
import "testing"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"

var (
	flagCluster  = flag.String("cluster", "", "cassandra nodes given as comma-separated host:port pairs")
	flagKeyspace = flag.String("keyspace", "todos_test", "name of throwaway keyspace for testing")
)

// Keyspace returns the name of the throwaway keyspace.
func Keyspace() string {
	return *flagKeyspace
}

// Dialer returns the dialer tests should use: DialCassandra when -cluster is given, otherwise the
// Dial method of a new fake cluster.
func Dialer() cassandra.Dialer {
	if *flagCluster == "" {
		return cassandra.FakeCassandra().Dial
	}
	return cassandra.DialCassandra
}

// Config returns the connection settings for the throwaway keyspace.
func Config() cassandra.CassandraConfig {
	return cassandra.CassandraConfig{
		Node:        strings.Split(*flagCluster, ","),
		Keyspace:    *flagKeyspace,
		Consistency: "one",
	}
}

// NewTestConn establishes an empty keyspace and returns a session on it. The keyspace is dropped
// and the session closed when the test finishes.
func NewTestConn(t testing.TB) cassandra.Cluster {
	t.Helper()
	dial := Dialer()
	config := Config()
	if err := initKeyspace(dial, config); err != nil {
		t.Fatal(err)
	}
	c, err := dial(config)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		defer c.Close()
		var b cassandra.CQLBuilder
		cql := b.Append("DROP KEYSPACE IF EXISTS ").Append(config.Keyspace).CQL()
		cql.Cluster(c)
		if err := cql.Query(context.Background()).Exec(); err != nil {
			t.Error(err)
		}
	})
	return c
}

func initKeyspace(dial cassandra.Dialer, config cassandra.CassandraConfig) error {
	keyspace := config.Keyspace
	config.Keyspace = ""
	c, err := dial(config)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	var b cassandra.CQLBuilder
	cql := b.Append("DROP KEYSPACE IF EXISTS ").Append(keyspace).CQL()
	cql.Cluster(c)
	if err := cql.Query(ctx).Exec(); err != nil {
		return err
	}
	return cassandra.CreateKeyspace(ctx, c, keyspace, 1)
}
