package cassandra

import "context"
import "fmt"
import "regexp"
import "strings"

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

// ValidIdentifier reports whether name can be used unquoted as a keyspace or table name. Only
// lowercase names qualify: Cassandra folds unquoted names to lowercase, while gocql quotes the
// session keyspace, so a mixed-case name would be created under one name and used under another.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// CreateKeyspaceStatement returns the CQL statement that creates a keyspace using SimpleStrategy
// replication, if it doesn't exist. The name must be a valid identifier.
func CreateKeyspaceStatement(name string, replicationFactor int) CQL {
	var b CQLBuilder
	b.Append("CREATE KEYSPACE IF NOT EXISTS ").Append(name)
	b.Append(fmt.Sprintf(" WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		replicationFactor))
	return b.CQL()
}

// DropKeyspaceStatement returns the CQL statement that drops a keyspace. It fails on the server if
// the keyspace doesn't exist.
func DropKeyspaceStatement(name string) CQL {
	var b CQLBuilder
	return b.Append("DROP KEYSPACE ").Append(name).CQL()
}

// CreateKeyspace creates the named keyspace on the cluster, if it doesn't already exist.
func CreateKeyspace(ctx context.Context, cluster Cluster, name string, replicationFactor int) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("keyspace %q: %w", name, ErrInvalidIdentifier)
	}
	cql := CreateKeyspaceStatement(name, replicationFactor)
	cql.Cluster(cluster)
	if err := cql.Query(ctx).Exec(); err != nil {
		return WrapError("keyspace creation failed", err)
	}
	return nil
}

// DropKeyspace drops the named keyspace and everything in it. The server's error is returned as
// is, so that callers can report it.
func DropKeyspace(ctx context.Context, cluster Cluster, name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("keyspace %q: %w", name, ErrInvalidIdentifier)
	}
	cql := DropKeyspaceStatement(name)
	cql.Cluster(cluster)
	return cql.Query(ctx).Exec()
}

// Schema is the set of tables, and their indexes, that an application keeps in its keyspace.
type Schema struct {
	Tables []*Table
}

// NewSchema returns a schema made of the given tables.
func NewSchema(tables ...*Table) *Schema {
	return &Schema{Tables: tables}
}

// Statements returns the CQL statements that create every table of the schema, each followed by
// its indexes.
func (s *Schema) Statements() []CQL {
	stmts := make([]CQL, 0, 3*len(s.Tables))
	for _, t := range s.Tables {
		stmts = append(stmts, t.CreateStatement())
		stmts = append(stmts, t.IndexStatements()...)
	}
	return stmts
}

// String renders the schema's statements, one per line.
func (s *Schema) String() string {
	stmts := s.Statements()
	lines := make([]string, len(stmts))
	for i, cql := range stmts {
		lines[i] = cql.String()
	}
	return strings.Join(lines, "\n")
}

// Apply issues the schema's statements on the given cluster, stopping at the first failure.
func (s *Schema) Apply(ctx context.Context, cluster Cluster) error {
	for _, t := range s.Tables {
		cql := t.CreateStatement()
		cql.Cluster(cluster)
		if err := cql.Query(ctx).Exec(); err != nil {
			return WrapError("table creation failed", err)
		}
		for _, cql := range t.IndexStatements() {
			cql.Cluster(cluster)
			if err := cql.Query(ctx).Exec(); err != nil {
				return WrapError("index creation failed", err)
			}
		}
	}
	return nil
}
