package cli

import "fmt"

import "github.com/spf13/cobra"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/demo"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/todo"

// NewSchemaCommand creates the schema command, which prints the CQL that provisioning runs,
// without connecting to a cluster.
func NewSchemaCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the CQL that provisions the keyspace",
		Long: `Print the statements that create the todos keyspace, table and indexes,
in a form cqlsh accepts. Nothing is sent to a cluster.

Example:
  todos schema --keyspace todo | cqlsh`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			if err := cfg.ValidateKeyspace(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			keyspace := cfg.Cassandra.KeyspaceName
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s;\n", cassandra.CreateKeyspaceStatement(keyspace, demo.ReplicationFactor))
			fmt.Fprintf(out, "USE %s;\n", keyspace)
			for _, stmt := range todo.Schema().Statements() {
				fmt.Fprintf(out, "%s;\n", stmt)
			}
			return nil
		},
	}
}
