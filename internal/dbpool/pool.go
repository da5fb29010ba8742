// Package dbpool manages the PostgreSQL connection pool shared by the graph
// store, the migration runner and the change-notification bridge.
package dbpool

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxConns applies when NewPool is given a non-positive limit. One
// connection is reserved for the LISTEN loop of the notify bridge.
const DefaultMaxConns = 21

// Pool tuning.
const (
	statementTimeout  = 30 * time.Second
	minConns          = 2
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
)

// Pool is the subset of *pgxpool.Pool the stores use.
type Pool struct {
	pool *pgxpool.Pool
}

// parseConfig builds the pgxpool configuration for databaseURL.
func parseConfig(databaseURL string, maxConns int32) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	if maxConns < 1 {
		maxConns = DefaultMaxConns
	}

	cfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(statementTimeout.Milliseconds())
	cfg.ConnConfig.RuntimeParams["application_name"] = "namedgraph"
	cfg.MaxConns = maxConns
	cfg.MinConns = min(minConns, maxConns)
	cfg.MaxConnLifetime = maxConnLifetime
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.HealthCheckPeriod = healthCheckPeriod

	return cfg, nil
}

// NewPool connects to databaseURL and verifies the server answers.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := parseConfig(databaseURL, maxConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Acquire reserves a dedicated connection. The caller must Release it.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	return p.pool.Acquire(ctx)
}

func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.pool.Begin(ctx)
}

func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) { //nolint:gocritic // mirrors pgxpool.Pool
	return p.pool.BeginTx(ctx, opts)
}

// Ping checks that a connection can be obtained and used.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// HealthCheck runs a trivial query so readiness reflects a working server,
// not just an open socket.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var one int
	if err := p.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}

	return nil
}

// ConnString returns the URL the pool was created from. The migration
// runner opens its own database/sql handle with it.
func (p *Pool) ConnString() string {
	return p.pool.Config().ConnString()
}

func (p *Pool) Close() {
	p.pool.Close()
}

// Collector exposes pool usage as Prometheus gauges.
func (p *Pool) Collector() prometheus.Collector {
	return &statsCollector{pool: p.pool}
}

var (
	descAcquired = prometheus.NewDesc("namedgraph_db_pool_acquired_conns", "Connections currently in use.", nil, nil)
	descIdle     = prometheus.NewDesc("namedgraph_db_pool_idle_conns", "Idle connections.", nil, nil)
	descTotal    = prometheus.NewDesc("namedgraph_db_pool_total_conns", "Open connections.", nil, nil)
	descMax      = prometheus.NewDesc("namedgraph_db_pool_max_conns", "Configured connection limit.", nil, nil)
)

type statsCollector struct {
	pool *pgxpool.Pool
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descAcquired
	ch <- descIdle
	ch <- descTotal
	ch <- descMax
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(descAcquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(descIdle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(descTotal, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(descMax, prometheus.GaugeValue, float64(s.MaxConns()))
}
