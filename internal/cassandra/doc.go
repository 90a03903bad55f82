// Package cassandra is a thin layer over github.com/gocql/gocql for issuing CQL against one table
// at a time.
//
// # Sessions
//
// A Cluster is an open session. DialCassandra opens one on a live cluster; FakeCassandra provides an
// in-memory imitation whose Dial method opens sessions on it:
//
//	cluster, err := cassandra.DialCassandra(cassandra.CassandraConfig{
//	    Node:     []string{"localhost"},
//	    Keyspace: "todo_demo",
//	})
//	if err != nil { return err }
//	defer cluster.Close()
//
// Both have the signature of a Dialer, so code that opens sessions can be handed either. Observe
// wraps a Dialer to log statements and count them with prometheus.
//
// # Tables and CQL
//
// A Table names its columns, primary key and secondary indexes. Bound to a Cluster, it is the target
// of declarative statement builders:
//
//	todos := cassandra.NewTable("todos",
//	    cassandra.Column{Name: "id", Type: "uuid"},
//	    cassandra.Column{Name: "task", Type: "text"},
//	).Key("id").Bind(cluster)
//
//	q := cassandra.Select().From(todos).Where("id = ?", id).Query(ctx)
//	err := cassandra.Update(todos).Set("task", "Keep positive mind").Where("id = ?", id).
//	    Query(ctx).Exec()
//
// Values are always bound to placeholders. Only identifiers (keyspace, table and column names) are
// written into statement text, and keyspace names are checked with ValidIdentifier first.
package cassandra
