package cassandra

import "context"
import "errors"
import "fmt"
import "strings"
import "sync"

import "github.com/gocql/gocql"

const fakeProtoVersion = 4

var fakeColumnTypes = map[string]gocql.Type{
	"ascii":     gocql.TypeAscii,
	"bigint":    gocql.TypeBigInt,
	"blob":      gocql.TypeBlob,
	"boolean":   gocql.TypeBoolean,
	"double":    gocql.TypeDouble,
	"int":       gocql.TypeInt,
	"text":      gocql.TypeText,
	"timestamp": gocql.TypeTimestamp,
	"timeuuid":  gocql.TypeTimeUUID,
	"uuid":      gocql.TypeUUID,
	"varchar":   gocql.TypeVarchar,
}

func fakeTypeInfo(name string) (gocql.TypeInfo, bool) {
	t, ok := fakeColumnTypes[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return gocql.NewNativeType(fakeProtoVersion, t, ""), true
}

// Fake is an in-memory imitation of a Cassandra cluster. Values are kept in their gocql wire
// encoding, so reads and writes go through the same marshalling a live cluster would apply. This
// is great for unit testing, but beware that the fake understands only the handful of CQL
// statement shapes this module issues, and is probably inaccurate in others.
type Fake struct {
	mu        sync.Mutex
	keyspaces map[string]*fakeKeyspace
	failures  map[string]error
	sessions  int
}

// FakeCassandra returns an empty fake cluster.
func FakeCassandra() *Fake {
	return &Fake{
		keyspaces: make(map[string]*fakeKeyspace),
		failures:  make(map[string]error),
	}
}

// Dial opens a session on the fake. Like a live cluster, it fails when no contact point is given
// or when the requested keyspace doesn't exist. The keyspace name is matched exactly, since gocql
// quotes it. Dial has the signature of a Dialer.
func (f *Fake) Dial(config CassandraConfig) (Cluster, error) {
	if len(config.Node) == 0 {
		return nil, errors.New("no contact points given")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	keyspace := config.Keyspace
	if keyspace != "" {
		if _, ok := f.keyspaces[keyspace]; !ok {
			return nil, fmt.Errorf("keyspace '%s' does not exist", config.Keyspace)
		}
	}
	f.sessions++
	return &fakeSession{fake: f, keyspace: keyspace}, nil
}

// Session dials the fake on the given keyspace, without caring about contact points.
func (f *Fake) Session(keyspace string) (Cluster, error) {
	return f.Dial(CassandraConfig{Node: []string{"fake"}, Keyspace: keyspace})
}

// OpenSessions returns the number of sessions that were dialed and not yet closed.
func (f *Fake) OpenSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

// HasKeyspace reports whether the named keyspace exists.
func (f *Fake) HasKeyspace(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keyspaces[strings.ToLower(name)]
	return ok
}

// FailOn makes every statement that starts with the given words (e.g. "CREATE TABLE") fail with
// err, without being executed. Passing a nil err removes the failure.
func (f *Fake) FailOn(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix = normalizeStatement(prefix)
	if err == nil {
		delete(f.failures, prefix)
	} else {
		f.failures[prefix] = err
	}
}

func (f *Fake) failure(text string) error {
	text = normalizeStatement(text)
	for prefix, err := range f.failures {
		if strings.HasPrefix(text, prefix) {
			return err
		}
	}
	return nil
}

func normalizeStatement(text string) string {
	return strings.ToUpper(strings.Join(strings.Fields(text), " "))
}

type fakeSession struct {
	fake     *Fake
	keyspace string
	closed   bool
}

func (s *fakeSession) GetKeyspace() string {
	return s.keyspace
}

func (s *fakeSession) Close() {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.fake.sessions--
	}
}

func (s *fakeSession) Query(ctx context.Context, stmt CQL) Query {
	if err := ctx.Err(); err != nil {
		return &fakeQuery{err: err}
	}
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()
	if s.closed {
		return &fakeQuery{err: ErrSessionClosed}
	}
	if err := s.fake.failure(stmt.String()); err != nil {
		return &fakeQuery{err: err}
	}
	results, err := s.fake.execute(s.keyspace, stmt.String(), stmt.params)
	if err != nil {
		return &fakeQuery{err: err}
	}
	return &fakeQuery{results: results}
}

type fakeQuery struct {
	results *resultSet
	err     error
}

func (q *fakeQuery) Close() error {
	return q.err
}

func (q *fakeQuery) Exec() error {
	return q.err
}

func (q *fakeQuery) Scan(dests ...interface{}) bool {
	if q.err != nil || q.results == nil || len(q.results.rows) == 0 {
		return false
	}
	if len(dests) != len(q.results.columns) {
		q.err = fmt.Errorf("number of destinations (%d) and number of result columns (%d) do not match",
			len(dests), len(q.results.columns))
		return false
	}
	row := q.results.rows[0]
	q.results.rows = q.results.rows[1:]
	for i, dest := range dests {
		if err := gocql.Unmarshal(q.results.types[i], row[i], dest); err != nil {
			q.err = err
			return false
		}
	}
	return true
}

type resultSet struct {
	columns []string
	types   []gocql.TypeInfo
	rows    [][][]byte
}

type fakeKeyspace struct {
	tables map[string]*fakeTable
}

// fakeRow maps column names to marshalled values. A missing column is null.
type fakeRow map[string][]byte

type fakeTable struct {
	columns []string
	types   map[string]gocql.TypeInfo
	key     string
	indexes map[string]bool
	rows    []fakeRow
}

func (t *fakeTable) find(key []byte) int {
	for i, row := range t.rows {
		if string(row[t.key]) == string(key) {
			return i
		}
	}
	return -1
}

// upsert returns the row with the given key, adding an empty one if there is none.
func (t *fakeTable) upsert(key []byte) fakeRow {
	if i := t.find(key); i >= 0 {
		return t.rows[i]
	}
	row := fakeRow{t.key: key}
	t.rows = append(t.rows, row)
	return row
}

func (t *fakeTable) remove(key []byte) {
	if i := t.find(key); i >= 0 {
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
	}
}

// fakeCond matches rows whose column equals any of the given values.
type fakeCond struct {
	col    string
	values [][]byte
}

func (c fakeCond) match(row fakeRow) bool {
	v, ok := row[c.col]
	if !ok {
		return false
	}
	for _, w := range c.values {
		if string(v) == string(w) {
			return true
		}
	}
	return false
}

func (t *fakeTable) query(cols []string, where []fakeCond) *resultSet {
	rs := &resultSet{columns: cols, types: make([]gocql.TypeInfo, len(cols))}
	for i, col := range cols {
		rs.types[i] = t.types[col]
	}
	for _, row := range t.rows {
		ok := true
		for _, cond := range where {
			if !cond.match(row) {
				ok = false
				break
			}
		}
		if ok {
			values := make([][]byte, len(cols))
			for i, col := range cols {
				values[i] = row[col]
			}
			rs.rows = append(rs.rows, values)
		}
	}
	return rs
}
