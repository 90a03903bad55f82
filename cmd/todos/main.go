// Command todos provisions a todos keyspace on a Cassandra cluster and demonstrates inserting,
// loading, updating and deleting todos in it.
package main

import "context"
import "fmt"
import "os"
import "os/signal"
import "syscall"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cli"

func main() {
	fail := func(err error) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cassandra.DialCassandra).ExecuteContext(ctx); err != nil {
		stop()
		fail(err)
	}
}
