package cassandra

import "context"
import "errors"
import "testing"
import "time"

import "github.com/gocql/gocql"
import . "github.com/smartystreets/goconvey/convey"

func TestFakeCassandra(t *testing.T) {
	ctx := context.Background()

	exec := func(c Cluster, stmt string, params ...interface{}) error {
		return c.Query(ctx, PreparedCQL(stmt).Bind(params...)).Exec()
	}

	Convey("Given a fake cluster with a keyspace and table", t, func() {
		fake := FakeCassandra()
		admin, err := fake.Session("")
		So(err, ShouldBeNil)
		So(exec(admin, "CREATE KEYSPACE ks WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};"), ShouldBeNil)
		admin.Close()

		c, err := fake.Session("ks")
		So(err, ShouldBeNil)
		So(exec(c, "CREATE TABLE t (id uuid PRIMARY KEY, name text, n bigint, ok boolean, at timestamp)"), ShouldBeNil)
		So(exec(c, "CREATE INDEX ON t (n)"), ShouldBeNil)

		id1, id2 := gocql.TimeUUID(), gocql.TimeUUID()
		at := time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.UTC)
		So(exec(c, "INSERT INTO t (id, name, n, ok, at) VALUES (?, ?, ?, ?, ?)", id1, "one", int64(1), true, at), ShouldBeNil)
		So(exec(c, "INSERT INTO t (id, name, n) VALUES (?, ?, ?)", id2, "two", int64(2)), ShouldBeNil)

		Convey("Rows read back with their types", func() {
			var id gocql.UUID
			var name string
			var n int64
			var ok bool
			var when time.Time
			q := c.Query(ctx, PreparedCQL("SELECT id, name, n, ok, at FROM t WHERE id = ?").Bind(id1))
			So(q.Scan(&id, &name, &n, &ok, &when), ShouldBeTrue)
			So(q.Scan(&id, &name, &n, &ok, &when), ShouldBeFalse)
			So(q.Close(), ShouldBeNil)
			So(id, ShouldResemble, id1)
			So(name, ShouldEqual, "one")
			So(n, ShouldEqual, int64(1))
			So(ok, ShouldBeTrue)
			So(when.Equal(at), ShouldBeTrue)
		})

		Convey("Null columns read back as zero values", func() {
			var ok bool
			var when time.Time
			q := c.Query(ctx, PreparedCQL("SELECT ok, at FROM t WHERE id = ?").Bind(id2))
			So(q.Scan(&ok, &when), ShouldBeTrue)
			So(ok, ShouldBeFalse)
			So(when.IsZero(), ShouldBeTrue)
		})

		Convey("IN accepts a bound list and a literal list", func() {
			count := func(stmt string, params ...interface{}) int {
				var n int
				q := c.Query(ctx, PreparedCQL(stmt).Bind(params...))
				So(q.Scan(&n), ShouldBeTrue)
				So(q.Close(), ShouldBeNil)
				return n
			}
			So(count("SELECT COUNT(*) FROM t"), ShouldEqual, 2)
			So(count("SELECT COUNT(*) FROM t WHERE id IN ?", []gocql.UUID{id1, id2}), ShouldEqual, 2)
			So(count("SELECT COUNT(*) FROM t WHERE id IN (?)", id2), ShouldEqual, 1)
			So(count("SELECT COUNT(*) FROM t WHERE n = 2"), ShouldEqual, 1)
			So(count("SELECT COUNT(*) FROM ks.t WHERE id IN ?", []gocql.UUID{}), ShouldEqual, 0)
		})

		Convey("UPDATE writes columns and creates missing rows", func() {
			So(exec(c, "UPDATE t SET name = ?, n = ? WHERE id = ?", "uno", int64(11), id1), ShouldBeNil)
			id3 := gocql.TimeUUID()
			So(exec(c, "UPDATE t SET name = ? WHERE id = ?", "three", id3), ShouldBeNil)

			var name string
			q := c.Query(ctx, PreparedCQL("SELECT name FROM t WHERE id IN ?").Bind([]gocql.UUID{id1, id3}))
			names := []string{}
			for q.Scan(&name) {
				names = append(names, name)
			}
			So(q.Close(), ShouldBeNil)
			So(names, ShouldResemble, []string{"uno", "three"})
		})

		Convey("DELETE removes the row", func() {
			So(exec(c, "DELETE FROM t WHERE id = ?", id1), ShouldBeNil)
			So(exec(c, "DELETE FROM t WHERE id = ?", id1), ShouldBeNil)
			var n int64
			q := c.Query(ctx, PreparedCQL("SELECT COUNT(*) FROM t").Bind())
			So(q.Scan(&n), ShouldBeTrue)
			So(n, ShouldEqual, int64(1))
		})

		Convey("Filtering on columns without an index is refused", func() {
			err := exec(c, "SELECT id FROM t WHERE name = ?", "one")
			So(err, ShouldEqual, errAllowFiltering)
		})

		Convey("Malformed statements fail", func() {
			So(exec(c, "SELECT FROM t"), ShouldNotBeNil)
			So(exec(c, "SELECT id FROM nope"), ShouldNotBeNil)
			So(exec(c, "SELECT id FROM t WHERE id = ?"), ShouldNotBeNil)
			So(exec(c, "SELECT id FROM t", id1), ShouldNotBeNil)
			So(exec(c, "INSERT INTO t (name) VALUES (?)", "x"), ShouldNotBeNil)
			So(exec(c, "UPDATE t SET name = ? WHERE n = ?", "x", int64(1)), ShouldNotBeNil)
			So(exec(c, "CREATE TABLE t (id uuid PRIMARY KEY)"), ShouldNotBeNil)
			So(exec(c, "CREATE TABLE IF NOT EXISTS t (id uuid PRIMARY KEY)"), ShouldBeNil)
		})

		Convey("Injected failures apply to matching statements", func() {
			boom := errors.New("boom")
			fake.FailOn("select", boom)
			So(exec(c, "SELECT id FROM t"), ShouldEqual, boom)
			So(exec(c, "DELETE FROM t WHERE id = ?", id1), ShouldBeNil)
			fake.FailOn("SELECT", nil)
			So(exec(c, "SELECT id FROM t"), ShouldBeNil)
		})

		Convey("Sessions are counted until closed", func() {
			So(fake.OpenSessions(), ShouldEqual, 1)
			c.Close()
			c.Close()
			So(fake.OpenSessions(), ShouldEqual, 0)
			So(exec(c, "SELECT id FROM t"), ShouldEqual, ErrSessionClosed)
		})

		Convey("Canceled contexts fail queries", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			So(c.Query(canceled, PreparedCQL("SELECT id FROM t").Bind()).Exec(), ShouldEqual, context.Canceled)
		})

		Convey("Keyspaces can be dropped once", func() {
			So(exec(c, "DROP KEYSPACE ks"), ShouldBeNil)
			So(fake.HasKeyspace("ks"), ShouldBeFalse)
			So(exec(c, "DROP KEYSPACE IF EXISTS ks"), ShouldBeNil)
			So(exec(c, "DROP KEYSPACE ks"), ShouldNotBeNil)
		})
	})

	Convey("Unquoted keyspace names fold to lowercase but sessions match them exactly", t, func() {
		fake := FakeCassandra()
		admin, err := fake.Session("")
		So(err, ShouldBeNil)
		defer admin.Close()
		So(exec(admin, "CREATE KEYSPACE Todo WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}"), ShouldBeNil)
		So(fake.HasKeyspace("todo"), ShouldBeTrue)

		_, err = fake.Session("Todo")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldEqual, "keyspace 'Todo' does not exist")

		c, err := fake.Session("todo")
		So(err, ShouldBeNil)
		c.Close()
	})

	Convey("Dialing fails without contact points or on a missing keyspace", t, func() {
		fake := FakeCassandra()
		_, err := fake.Dial(CassandraConfig{})
		So(err, ShouldNotBeNil)
		_, err = fake.Dial(CassandraConfig{Node: []string{"fake"}, Keyspace: "missing"})
		So(err, ShouldNotBeNil)
		So(fake.OpenSessions(), ShouldEqual, 0)
	})
}
