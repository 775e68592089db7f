package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/demark/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createSignalTableSQL  = "CREATE TABLE IF NOT EXISTS signal (id TEXT PRIMARY KEY, market TEXT, timeframe TEXT, indicator TEXT, barindex INTEGER, date INTEGER, value REAL, stoploss REAL, createdon INTEGER)"
	createSummaryTableSQL = "CREATE TABLE IF NOT EXISTS summary (id TEXT PRIMARY KEY, market TEXT, total INTEGER, createdon INTEGER)"
	persistSignalSQL      = "INSERT INTO signal(id, market, timeframe, indicator, barindex, date, value, stoploss, createdon) VALUES(?,?,?,?,?,?,?,?,?)"
	upsertSummarySQL      = "INSERT INTO summary(id, market, total, createdon) VALUES(?,?,?,?) ON CONFLICT(id) DO UPDATE SET total = total + excluded.total"
)

// SignalStorer defines the requirements for storing signals.
type SignalStorer interface {
	// PersistSignals stores the provided signals to the database.
	PersistSignals(ctx context.Context, signals []shared.Signal) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SignalStorer interface.
var _ SignalStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	cfg.Logger = shared.LoggerOrNop(cfg.Logger)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// execute runs the provided statements in a transaction, surfacing statement errors.
func (db *Database) execute(ctx context.Context, statements rqlitehttp.SQLStatements) error {
	resp, err := db.client.Execute(ctx, statements, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("executing statement %d: %s", idx, errStr)
	}

	return nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	return db.execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createSignalTableSQL},
		{SQL: createSummaryTableSQL},
	})
}

// generateSummaryID generates deterministic ids for signal summaries using the month and
// week of the provided time and the market.
func generateSummaryID(currentTime time.Time, market string) string {
	month := currentTime.Month().String()
	week := currentTime.Day() / 7

	id := fmt.Sprintf("%d-%s-Week-%d-%s", currentTime.Year(), month, week, market)
	return id
}

// PersistSignals stores the provided signals and updates the weekly summary of every market
// signalled, all in one transaction.
func (db *Database) PersistSignals(ctx context.Context, signals []shared.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return err
	}

	statements := make(rqlitehttp.SQLStatements, 0, len(signals)+1)
	totals := make(map[string]int)
	var markets []string
	for _, sig := range signals {
		if sig.ID == "" || sig.Market == "" {
			db.cfg.Logger.Error().Msgf("unexpected signal state for persistence: %s", spew.Sdump(sig))
			return fmt.Errorf("signal at index %d of %s is missing its id or market", sig.Index,
				sig.Column.String())
		}

		statements = append(statements, rqlitehttp.SQLStatements{{
			SQL: persistSignalSQL,
			PositionalParams: []any{sig.ID, sig.Market, sig.Timeframe.String(), sig.Column.String(),
				sig.Index, sig.Date.Unix(), sig.Value, sig.StopLoss, now.Unix()},
		}}...)

		if _, ok := totals[sig.Market]; !ok {
			markets = append(markets, sig.Market)
		}
		totals[sig.Market]++
	}

	for _, market := range markets {
		statements = append(statements, rqlitehttp.SQLStatements{{
			SQL:              upsertSummarySQL,
			PositionalParams: []any{generateSummaryID(now, market), market, totals[market], now.Unix()},
		}}...)
	}

	err = db.execute(ctx, statements)
	if err != nil {
		return fmt.Errorf("persisting %d signals: %w", len(signals), err)
	}

	db.cfg.Logger.Debug().Msgf("persisted %d signals", len(signals))

	return nil
}
