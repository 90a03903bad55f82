package todo

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"

// TableName is the name of the table todos are kept in.
const TableName = "todos"

// Table returns the definition of the todos table, keyed by id, with secondary indexes on the
// completion flag and the owning user.
func Table() *cassandra.Table {
	return cassandra.NewTable(TableName,
		cassandra.Column{Name: "id", Type: "uuid"},
		cassandra.Column{Name: "task", Type: "text"},
		cassandra.Column{Name: "completed", Type: "boolean"},
		cassandra.Column{Name: "user_id", Type: "bigint"},
		cassandra.Column{Name: "created_at", Type: "timestamp"},
		cassandra.Column{Name: "updated_at", Type: "timestamp"},
	).Key("id").Index("completed", "user_id")
}

// Schema returns everything the todos keyspace needs.
func Schema() *cassandra.Schema {
	return cassandra.NewSchema(Table())
}
