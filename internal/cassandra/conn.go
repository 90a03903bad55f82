package cassandra

import "context"
import "errors"
import "strings"
import "time"

import "github.com/gocql/gocql"

// CassandraConfig specifies a Cassandra cluster and keyspace to connect to.
type CassandraConfig struct {
	// The keyspace to use throughout the connection. Leave empty to open a session that isn't
	// bound to any keyspace, e.g. for creating or dropping one.
	Keyspace string
	Node     []string // Required. The contact points of the cluster, as host or host:port strings.
	Port     int      // Optional. The port for contact points given without one; 9042 if zero.

	// Optional. The default consistency level for the connection. Valid values are one of:
	//
	//	any, one, two, three, quorum, all, localquorum, eachquorum, localone
	//
	// If no value or an invalid value is given, then "quorum" will be used. Matching is case
	// insensitive.
	Consistency string

	Timeout time.Duration // Optional. Connect and query timeout; the driver's default if zero.
}

// cassandraConn is an open session on a Cassandra cluster.
type cassandraConn struct {
	*gocql.Session                 // The underlying gocql Session, for querying the cluster.
	Config         CassandraConfig // The settings used to establish the session.
}

// DialCassandra connects to a Cassandra cluster as specified by the given config.
func DialCassandra(config CassandraConfig) (Cluster, error) {
	if len(config.Node) == 0 {
		return nil, errors.New("no contact points given")
	}
	session, err := makeCluster(config).CreateSession()
	if err != nil {
		return nil, WrapError("connecting to "+strings.Join(config.Node, ","), err)
	}
	return &cassandraConn{Config: config, Session: session}, nil
}

func makeCluster(config CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Node...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency, _ = ParseConsistency(config.Consistency)
	if config.Port != 0 {
		cluster.Port = config.Port
	}
	if config.Timeout != 0 {
		cluster.Timeout = config.Timeout
		cluster.ConnectTimeout = config.Timeout
	}
	return cluster
}

// ParseConsistency maps a consistency level name to its gocql value. An empty name means quorum.
// An unrecognized name also yields quorum, along with an error.
func ParseConsistency(value string) (gocql.Consistency, error) {
	switch strings.ToLower(value) {
	case "", "quorum":
		return gocql.Quorum, nil
	case "any":
		return gocql.Any, nil
	case "one":
		return gocql.One, nil
	case "two":
		return gocql.Two, nil
	case "three":
		return gocql.Three, nil
	case "all":
		return gocql.All, nil
	case "localquorum":
		return gocql.LocalQuorum, nil
	case "eachquorum":
		return gocql.EachQuorum, nil
	case "localone":
		return gocql.LocalOne, nil
	}
	return gocql.Quorum, errors.New("unknown consistency level: " + value)
}

func (conn *cassandraConn) GetKeyspace() string {
	return conn.Config.Keyspace
}

func (conn *cassandraConn) Query(ctx context.Context, stmt CQL) Query {
	q := conn.Session.Query(stmt.String(), stmt.params...).WithContext(ctx)
	return (*cassQuery)(q.Iter())
}

type cassQuery gocql.Iter

func (iter *cassQuery) Close() error {
	return (*gocql.Iter)(iter).Close()
}

func (iter *cassQuery) Exec() error {
	return iter.Close()
}

func (iter *cassQuery) Scan(dest ...interface{}) bool {
	return (*gocql.Iter)(iter).Scan(dest...)
}
