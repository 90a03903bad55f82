package cassandra

import "context"
import "errors"
import "testing"

import . "github.com/smartystreets/goconvey/convey"

func TestTableKeyAndCreateStatement(t *testing.T) {
	Convey("Key moves primary key columns to the front", t, func() {
		table := NewTable("test",
			Column{Name: "a", Type: "text"},
			Column{Name: "b", Type: "bigint"},
			Column{Name: "c", Type: "uuid"},
		).Key("c")
		So(table.ColumnNames(), ShouldResemble, []string{"c", "a", "b"})
		So(table.CreateStatement().String(), ShouldEqual,
			"CREATE TABLE IF NOT EXISTS test (c uuid, a text, b bigint, PRIMARY KEY (c))")
	})

	Convey("Index statements are generated per indexed column", t, func() {
		table := testTable().Index("y", "z")
		stmts := table.IndexStatements()
		So(len(stmts), ShouldEqual, 2)
		So(stmts[0].String(), ShouldEqual, "CREATE INDEX IF NOT EXISTS ON test (y)")
		So(stmts[1].String(), ShouldEqual, "CREATE INDEX IF NOT EXISTS ON test (z)")
	})

	Convey("Bind leaves the definition unbound", t, func() {
		table := testTable()
		cluster, err := FakeCassandra().Session("")
		So(err, ShouldBeNil)
		bound := table.Bind(cluster)
		So(bound.IsBound(), ShouldBeTrue)
		So(table.IsBound(), ShouldBeFalse)
		So(bound.Name, ShouldEqual, table.Name)
	})
}

func TestSchema(t *testing.T) {
	Convey("Given a schema of one indexed table", t, func() {
		schema := NewSchema(testTable().Index("z"))

		Convey("String lists the table and index statements", func() {
			So(schema.String(), ShouldEqual,
				"CREATE TABLE IF NOT EXISTS test (x text, y text, z bigint, PRIMARY KEY (x))\n"+
					"CREATE INDEX IF NOT EXISTS ON test (z)")
		})

		Convey("Apply creates the table in the session's keyspace", func() {
			ctx := context.Background()
			fake := FakeCassandra()
			admin, err := fake.Session("")
			So(err, ShouldBeNil)
			defer admin.Close()
			So(CreateKeyspace(ctx, admin, "ks", 1), ShouldBeNil)

			cluster, err := fake.Session("ks")
			So(err, ShouldBeNil)
			defer cluster.Close()
			So(schema.Apply(ctx, cluster), ShouldBeNil)
			So(schema.Apply(ctx, cluster), ShouldBeNil)

			q := Select().From(testTable().Bind(cluster)).Where("z = ?", int64(1)).Query(ctx)
			So(q.Scan(new(string), new(string), new(int64)), ShouldBeFalse)
			So(q.Close(), ShouldBeNil)
		})

		Convey("Apply reports a failed index creation", func() {
			ctx := context.Background()
			fake := FakeCassandra()
			admin, _ := fake.Session("")
			So(CreateKeyspace(ctx, admin, "ks", 1), ShouldBeNil)
			boom := errors.New("boom")
			fake.FailOn("CREATE INDEX", boom)

			cluster, _ := fake.Session("ks")
			err := schema.Apply(ctx, cluster)
			So(errors.Is(err, boom), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "index creation failed: boom")
		})
	})
}

func TestKeyspaceStatements(t *testing.T) {
	Convey("Keyspace statements", t, func() {
		So(CreateKeyspaceStatement("todo_demo", 1).String(), ShouldEqual,
			"CREATE KEYSPACE IF NOT EXISTS todo_demo WITH REPLICATION = "+
				"{'class': 'SimpleStrategy', 'replication_factor': 1}")
		So(DropKeyspaceStatement("todo_demo").String(), ShouldEqual, "DROP KEYSPACE todo_demo")
	})

	Convey("Keyspace names must be identifiers", t, func() {
		So(ValidIdentifier("todo_demo"), ShouldBeTrue)
		So(ValidIdentifier(""), ShouldBeFalse)
		So(ValidIdentifier("1abc"), ShouldBeFalse)
		So(ValidIdentifier("Todo"), ShouldBeFalse)
		So(ValidIdentifier("todoDemo"), ShouldBeFalse)
		So(ValidIdentifier("demo; DROP TABLE x"), ShouldBeFalse)

		cluster, _ := FakeCassandra().Session("")
		err := CreateKeyspace(context.Background(), cluster, "bad-name", 1)
		So(errors.Is(err, ErrInvalidIdentifier), ShouldBeTrue)
		err = DropKeyspace(context.Background(), cluster, "")
		So(errors.Is(err, ErrInvalidIdentifier), ShouldBeTrue)
	})

	Convey("Dropping a missing keyspace reports the server error", t, func() {
		cluster, _ := FakeCassandra().Session("")
		err := DropKeyspace(context.Background(), cluster, "todo_demo")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldEqual, "Cannot drop non existing keyspace 'todo_demo'.")
	})
}
