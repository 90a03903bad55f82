package cassandra

import "context"

// Cluster is a session on a Cassandra cluster, live or fake.
type Cluster interface {
	GetKeyspace() string
	Query(context.Context, CQL) Query
	Close()
}

// Query is the result of issuing a CQL statement. Exec and Close report the statement's error;
// Scan copies the next row into dest and returns false once the rows are exhausted.
type Query interface {
	Exec() error
	Scan(dest ...interface{}) bool
	Close() error
}

// A Dialer opens a session as specified by the given config.
type Dialer func(CassandraConfig) (Cluster, error)
