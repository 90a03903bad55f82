package cassandra

import "context"
import "strings"

var placeholderListString string

func init() {
	p := make([]string, 100)
	for i := 0; i < len(p); i++ {
		p[i] = "?"
	}
	placeholderListString = strings.Join(p, ", ")
}

func placeholderList(n int) string {
	return placeholderListString[:3*(n-1)+1]
}

// PreparedCQL is a string containing a CQL statement that may contain placeholders ('?').
type PreparedCQL string

// Bind returns a CQL value, associating a prepared CQL statement with values for its placeholders.
func (pcql PreparedCQL) Bind(params ...interface{}) CQL {
	return CQL{PreparedCQL: pcql, params: params}
}

// CQL is a PreparedCQL value associated with values for its placeholders. CQL values can be passed
// to the Query method of a Cluster. A CQL value can be bound to a cluster with the Cluster method,
// after which it can be executed by calling the Query method.
type CQL struct {
	PreparedCQL
	params  []interface{}
	cluster Cluster
}

// String returns the prepared CQL string.
func (cql CQL) String() string {
	return string(cql.PreparedCQL)
}

// Params returns the values bound to the statement's placeholders.
func (cql CQL) Params() []interface{} {
	return cql.params
}

// Cluster binds a CQL value to a cluster. If cluster is non-nil, the Query method can then be used.
func (cql *CQL) Cluster(cluster Cluster) {
	cql.cluster = cluster
}

// Query issues a CQL statement on its bound cluster. An unbound statement yields a Query that
// fails with ErrNoSession.
func (cql CQL) Query(ctx context.Context) Query {
	if cql.cluster == nil {
		return failedQuery{ErrNoSession}
	}
	return cql.cluster.Query(ctx, cql)
}

// failedQuery is a Query that was never issued.
type failedQuery struct{ error }

func (q failedQuery) Close() error                  { return q.error }
func (q failedQuery) Exec() error                   { return q.error }
func (q failedQuery) Scan(dest ...interface{}) bool { return false }

// CQLBuilder is a sequence of CQL values, which may be fragments of proper CQL bound with values
// for placeholders. This is for convenience of constructing CQL programmatically in a declarative
// fashion.
type CQLBuilder []CQL

func (b CQLBuilder) join(prefix, conn string) (result CQL) {
	if len(b) == 0 {
		return
	}
	terms := make([]string, len(b))
	np := 0
	for i, p := range b {
		terms[i] = string(p.PreparedCQL)
		np += len(p.params)
	}
	result.PreparedCQL = PreparedCQL(prefix + strings.Join(terms, conn))
	result.params = make([]interface{}, 0, np)
	for _, p := range b {
		result.params = append(result.params, p.params...)
	}
	return
}

// CQL combines all of the fragments of the builder into a single CQL value.
func (b CQLBuilder) CQL() CQL {
	return b.join("", "")
}

// Clear reinitializes the builder to an empty state.
func (b *CQLBuilder) Clear() *CQLBuilder {
	*b = make(CQLBuilder, 0)
	return b
}

// Append adds a CQL fragment to the end. Values for placeholders in the fragment may be given as
// additional arguments.
func (b *CQLBuilder) Append(term string, params ...interface{}) *CQLBuilder {
	*b = append(*b, CQL{PreparedCQL: PreparedCQL(term), params: params})
	return b
}

// AppendCQL adds a CQL value as a fragment to the end of the builder. If the given CQL has bound
// values for placeholders, they are included.
func (b *CQLBuilder) AppendCQL(cql CQL) *CQLBuilder {
	return b.Append(string(cql.PreparedCQL), cql.params...)
}

// SelectBuilder provides a declarative interface for building CQL SELECT statements.
type SelectBuilder struct {
	table *Table
	cols  []string
	where CQLBuilder
}

// Select initializes and returns a SelectBuilder. If no arguments are given, the table's columns
// are selected, in their declared order. Otherwise, the given arguments will be used to declare
// the columns to select.
//
//	Select().From(todos).Where("id = ?", id)
//	Select("COUNT(*)").From(todos).Where("user_id = ?", 26)
func Select(keys ...string) *SelectBuilder {
	sel := &SelectBuilder{cols: keys}
	if len(keys) == 0 || (len(keys) == 1 && keys[0] == "*") {
		sel.cols = nil
	}
	return sel
}

// From gives the table to select from.
func (sel *SelectBuilder) From(table *Table) *SelectBuilder {
	sel.table = table
	return sel
}

// Where specifies a term for the WHERE clause of the statement. If Where is called multiple times
// on a builder, the given terms will be combined with the AND operator.
func (sel *SelectBuilder) Where(term string, params ...interface{}) *SelectBuilder {
	sel.where.Append(term, params...)
	return sel
}

// CQL compiles the built select statement.
func (sel *SelectBuilder) CQL() CQL {
	var b CQLBuilder
	b.Append("SELECT ")
	cols := sel.cols
	if cols == nil {
		cols = sel.table.ColumnNames()
	}
	b.Append(strings.Join(cols, ", "))
	b.Append(" FROM ")
	b.Append(sel.table.Name)
	if sel.where != nil {
		b.AppendCQL(sel.where.join(" WHERE ", " AND "))
	}
	cql := b.CQL()
	cql.Cluster(sel.table.Cluster())
	return cql
}

func (sel *SelectBuilder) Query(ctx context.Context) Query {
	return sel.CQL().Query(ctx)
}

// InsertBuilder provides a declarative interface for building CQL INSERT statements.
type InsertBuilder struct {
	table  *Table
	keys   []string
	values []interface{}
}

// InsertInto initializes and returns an InsertBuilder for declaring an insert statement on the
// given table.
//
//	InsertInto(todos).Keys("id", "task").Values(id, "Watch a classic movie")
func InsertInto(table *Table) *InsertBuilder {
	return &InsertBuilder{table: table, keys: make([]string, 0), values: make([]interface{}, 0)}
}

// Keys specifies the names of columns to insert.
func (ins *InsertBuilder) Keys(keys ...string) *InsertBuilder {
	ins.keys = append(ins.keys, keys...)
	return ins
}

// Values specifies the values of the inserted columns.
func (ins *InsertBuilder) Values(values ...interface{}) *InsertBuilder {
	ins.values = append(ins.values, values...)
	return ins
}

// CQL compiles the built insert statement.
func (ins *InsertBuilder) CQL() CQL {
	var b CQLBuilder
	b.Append("INSERT INTO ")
	b.Append(ins.table.Name)
	b.Append(" (")
	b.Append(strings.Join(ins.keys, ", "))
	b.Append(") VALUES (")
	b.Append(placeholderList(len(ins.values)), ins.values...)
	b.Append(")")
	cql := b.CQL()
	cql.Cluster(ins.table.Cluster())
	return cql
}

func (ins *InsertBuilder) Query(ctx context.Context) Query {
	return ins.CQL().Query(ctx)
}

// UpdateBuilder provides a declarative interface for building CQL UPDATE statements.
type UpdateBuilder struct {
	table *Table
	set   CQLBuilder
	where CQLBuilder
}

// Update initializes and returns an UpdateBuilder for declaring an update statement on the given
// table.
//
//	Update(todos).Set("task", "Keep positive mind").Where("id = ?", id)
func Update(table *Table) *UpdateBuilder {
	return &UpdateBuilder{table: table, set: make(CQLBuilder, 0), where: make(CQLBuilder, 0)}
}

// Set provides a key and value to assign. Call this method for each key-value pair to update.
func (upd *UpdateBuilder) Set(key string, value interface{}) *UpdateBuilder {
	upd.set.Append(key+" = ?", value)
	return upd
}

// Where specifies a term for the WHERE clause of the statement. If Where is called multiple times
// on a builder, the given terms will be combined with the AND operator.
func (upd *UpdateBuilder) Where(term string, params ...interface{}) *UpdateBuilder {
	upd.where.Append(term, params...)
	return upd
}

// CQL compiles the built update statement.
func (upd *UpdateBuilder) CQL() CQL {
	var b CQLBuilder
	b.Append("UPDATE " + upd.table.Name)
	b.AppendCQL(upd.set.join(" SET ", ", "))
	b.AppendCQL(upd.where.join(" WHERE ", " AND "))
	cql := b.CQL()
	cql.Cluster(upd.table.Cluster())
	return cql
}

func (upd *UpdateBuilder) Query(ctx context.Context) Query {
	return upd.CQL().Query(ctx)
}

// DeleteBuilder provides a declarative interface for building CQL DELETE statements.
type DeleteBuilder struct {
	table *Table
	where CQLBuilder
}

// DeleteFrom initializes and returns a DeleteBuilder for declaring a delete statement on the given
// table.
//
//	DeleteFrom(todos).Where("id = ?", id)
func DeleteFrom(table *Table) *DeleteBuilder {
	return &DeleteBuilder{table: table, where: make(CQLBuilder, 0)}
}

// Where specifies a term for the WHERE clause of the statement. If Where is called multiple times
// on a builder, the given terms will be combined with the AND operator.
func (del *DeleteBuilder) Where(term string, params ...interface{}) *DeleteBuilder {
	del.where.Append(term, params...)
	return del
}

// CQL compiles the built delete statement.
func (del *DeleteBuilder) CQL() CQL {
	cql := del.where.join("DELETE FROM "+del.table.Name+" WHERE ", " AND ")
	cql.Cluster(del.table.Cluster())
	return cql
}

func (del *DeleteBuilder) Query(ctx context.Context) Query {
	return del.CQL().Query(ctx)
}
