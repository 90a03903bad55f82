// Package cli implements the todos command line.
package cli

import "fmt"

import "github.com/prometheus/client_golang/prometheus"
import "github.com/spf13/cobra"

import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/cassandra"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/config"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/demo"
import "github.com/reza-mandala/latihan-CassandraCRUDExample/internal/logger"

// RootOptions holds the flags shared by all commands. Flags that are set override the settings
// file and the environment.
type RootOptions struct {
	ConfigPath string
	Keyspace   string
	LogLevel   string
	LogFormat  string
}

type runOptions struct {
	*RootOptions
	ContactPoint string
	Consistency  string
	Keep         bool
	Metrics      bool
}

// NewRootCommand creates the todos command. Sessions are opened with dial.
func NewRootCommand(dial cassandra.Dialer) *cobra.Command {
	root := &RootOptions{}
	opts := &runOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Cassandra todos demo",
		Long: `Provision a todos keyspace on a Cassandra cluster and run a store through
insert, select, update and delete, printing each step.

Settings come from appsettings.json (or --config), then CASSANDRA_* and LOG_*
environment variables and a .env file, then flags.

Example:
  todos --contact-point 127.0.0.1 --keyspace todo
  todos --keep --metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, dial, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&root.ConfigPath, "config", "", "settings file, JSON or YAML (default appsettings.json)")
	cmd.PersistentFlags().StringVar(&root.Keyspace, "keyspace", "", "keyspace to provision")
	cmd.PersistentFlags().StringVar(&root.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&root.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.Flags().StringVar(&opts.ContactPoint, "contact-point", "", "comma-separated cassandra hosts")
	cmd.Flags().StringVar(&opts.Consistency, "consistency", "", "default consistency level")
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "don't drop the keyspace before provisioning it")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print a summary of the queries issued")

	cmd.AddCommand(NewSchemaCommand(root))

	return cmd
}

// loadConfig reads the settings and applies the flags that were given on the command line.
func loadConfig(cmd *cobra.Command, root *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("keyspace") {
		cfg.Cassandra.KeyspaceName = root.Keyspace
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = root.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = root.LogFormat
	}
	return cfg, nil
}

func runDemo(cmd *cobra.Command, dial cassandra.Dialer, opts *runOptions) error {
	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("contact-point") {
		cfg.Cassandra.ContactPoint = opts.ContactPoint
	}
	if cmd.Flags().Changed("consistency") {
		cfg.Cassandra.Consistency = opts.Consistency
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.Init(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	reg := prometheus.NewRegistry()
	var metrics *cassandra.Metrics
	if opts.Metrics {
		metrics = cassandra.NewMetrics(reg)
	}

	err = demo.Run(cmd.Context(), cassandra.Observe(dial, metrics, log), cfg.CassandraConfig(), demo.Options{
		Out:          cmd.OutOrStdout(),
		Logger:       log,
		KeepKeyspace: opts.Keep,
	})
	if err != nil {
		return err
	}
	if opts.Metrics {
		return cassandra.WriteSummary(cmd.OutOrStdout(), reg)
	}
	return nil
}
