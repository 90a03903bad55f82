package cassandra

import "strings"

// A Column gives the name and data type of a Cassandra column. The value of type should be a CQL
// data type (e.g. uuid, bigint, text).
type Column struct {
	Name string
	Type string
}

// A Table describes how rows of a table are stored in Cassandra, and which secondary indexes are
// kept on it. A Table bound to a Cluster can compile statements that are ready to query.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []string

	cluster Cluster
}

// NewTable returns an unbound table definition with the given columns.
func NewTable(name string, cols ...Column) *Table {
	return &Table{Name: name, Columns: cols}
}

// Key sets the primary key of the table. Primary key columns are moved to the front, in order.
func (t *Table) Key(keys ...string) *Table {
	t.PrimaryKey = keys

	rearranged := make([]Column, 0, len(t.Columns))
	keymap := make(map[string]bool)
	for _, k := range keys {
		for _, col := range t.Columns {
			if k == col.Name {
				keymap[k] = true
				rearranged = append(rearranged, col)
				break
			}
		}
	}
	for _, col := range t.Columns {
		if !keymap[col.Name] {
			rearranged = append(rearranged, col)
		}
	}
	t.Columns = rearranged
	return t
}

// Index declares secondary indexes on the given columns.
func (t *Table) Index(cols ...string) *Table {
	t.Indexes = append(t.Indexes, cols...)
	return t
}

// Bind returns a copy of the table definition that issues its statements on the given cluster.
func (t *Table) Bind(cluster Cluster) *Table {
	bound := *t
	bound.cluster = cluster
	return &bound
}

// Cluster returns the cluster the table is bound to, or nil.
func (t *Table) Cluster() Cluster {
	return t.cluster
}

// IsBound returns true if the table is bound to a Cluster.
func (t *Table) IsBound() bool {
	return t.cluster != nil
}

// ColumnNames returns the names of the table's columns, in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// CreateStatement returns the CQL statement that would create this table, if it doesn't exist.
func (t *Table) CreateStatement() CQL {
	var b CQLBuilder
	b.Append("CREATE TABLE IF NOT EXISTS " + t.Name + " (")
	for _, col := range t.Columns {
		b.Append(col.Name + " " + col.Type + ", ")
	}
	b.Append("PRIMARY KEY (" + strings.Join(t.PrimaryKey, ", ") + "))")
	cql := b.CQL()
	cql.Cluster(t.cluster)
	return cql
}

// IndexStatements returns the CQL statements that would create the table's secondary indexes.
func (t *Table) IndexStatements() []CQL {
	stmts := make([]CQL, len(t.Indexes))
	for i, col := range t.Indexes {
		var b CQLBuilder
		b.Append("CREATE INDEX IF NOT EXISTS ON ").Append(t.Name).Append(" (" + col + ")")
		stmts[i] = b.CQL()
		stmts[i].Cluster(t.cluster)
	}
	return stmts
}
