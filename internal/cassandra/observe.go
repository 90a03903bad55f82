package cassandra

import "context"
import "fmt"
import "io"
import "log/slog"
import "sort"
import "strings"
import "time"

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the statements issued through an observed Cluster, by verb and outcome, and
// records how long they took.
type Metrics struct {
	Queries *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// NewMetrics creates the query metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cassandra_queries_total",
				Help: "CQL statements issued, by verb and outcome",
			},
			[]string{"verb", "outcome"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cassandra_query_duration_seconds",
				Help:    "Time from issuing a CQL statement until its result was consumed",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"verb"},
		),
	}
	reg.MustRegister(m.Queries, m.Latency)
	return m
}

// Observe wraps a Dialer so that every session it opens logs its statements at debug level and,
// if metrics is non-nil, records them.
func Observe(dial Dialer, metrics *Metrics, log *slog.Logger) Dialer {
	return func(config CassandraConfig) (Cluster, error) {
		log.Debug("dialing cassandra", "nodes", config.Node, "keyspace", config.Keyspace)
		cluster, err := dial(config)
		if err != nil {
			return nil, err
		}
		return &observedCluster{Cluster: cluster, metrics: metrics, log: log}, nil
	}
}

type observedCluster struct {
	Cluster
	metrics *Metrics
	log     *slog.Logger
}

func (c *observedCluster) Query(ctx context.Context, stmt CQL) Query {
	c.log.Debug("cql", "stmt", stmt.String(), "params", len(stmt.params))
	return &observedQuery{
		Query:   c.Cluster.Query(ctx, stmt),
		cluster: c,
		verb:    statementVerb(stmt),
		start:   time.Now(),
	}
}

func (c *observedCluster) Close() {
	c.log.Debug("closing cassandra session", "keyspace", c.GetKeyspace())
	c.Cluster.Close()
}

// statementVerb returns the first word of the statement, e.g. SELECT.
func statementVerb(stmt CQL) string {
	fields := strings.Fields(stmt.String())
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

type observedQuery struct {
	Query
	cluster  *observedCluster
	verb     string
	start    time.Time
	recorded bool
}

func (q *observedQuery) Exec() error {
	return q.record(q.Query.Exec())
}

func (q *observedQuery) Close() error {
	return q.record(q.Query.Close())
}

func (q *observedQuery) record(err error) error {
	if q.recorded {
		return err
	}
	q.recorded = true
	outcome := "ok"
	if err != nil {
		outcome = "error"
		q.cluster.log.Debug("cql failed", "verb", q.verb, "err", err)
	}
	if m := q.cluster.metrics; m != nil {
		m.Queries.WithLabelValues(q.verb, outcome).Inc()
		m.Latency.WithLabelValues(q.verb).Observe(time.Since(q.start).Seconds())
	}
	return err
}

// WriteSummary writes the query counters gathered from g, one "verb outcome count" line each,
// sorted by verb and outcome.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		if mf.GetName() != "cassandra_queries_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%-8s %-6s %d",
				labels["verb"], labels["outcome"], int64(m.GetCounter().GetValue())))
		}
	}
	sort.Strings(lines)
	if _, err := fmt.Fprintln(w, "Queries issued:"); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, "  "+line); err != nil {
			return err
		}
	}
	return nil
}
