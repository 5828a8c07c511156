package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/acmecorp/campaign-pulse/internal/database"
	"github.com/acmecorp/campaign-pulse/internal/models"
)

// PostgresArchiver stores the dimension tables (advertisers, campaigns,
// creatives) in PostgreSQL.  The high-volume event tables go to
// ClickHouse instead.
type PostgresArchiver struct {
	db     *database.PostgresDB
	logger *zap.Logger
}

func NewPostgresArchiver(db *database.PostgresDB, logger *zap.Logger) *PostgresArchiver {
	return &PostgresArchiver{db: db, logger: logger}
}

func (a *PostgresArchiver) Name() string { return "postgres" }

const postgresSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	dataset_id   TEXT PRIMARY KEY,
	seed         BIGINT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	horizon_start DATE NOT NULL,
	horizon_end   DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS advertisers (
	dataset_id      TEXT NOT NULL REFERENCES datasets(dataset_id) ON DELETE CASCADE,
	advertiser_id   TEXT NOT NULL,
	name            TEXT NOT NULL,
	industry        TEXT NOT NULL,
	account_manager TEXT NOT NULL,
	PRIMARY KEY (dataset_id, advertiser_id)
);

CREATE TABLE IF NOT EXISTS campaigns (
	dataset_id    TEXT NOT NULL REFERENCES datasets(dataset_id) ON DELETE CASCADE,
	campaign_id   TEXT NOT NULL,
	advertiser_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	budget_total  DOUBLE PRECISION NOT NULL,
	budget_daily  DOUBLE PRECISION NOT NULL,
	objective     TEXT NOT NULL,
	status        TEXT NOT NULL,
	PRIMARY KEY (dataset_id, campaign_id)
);

CREATE TABLE IF NOT EXISTS creatives (
	dataset_id    TEXT NOT NULL REFERENCES datasets(dataset_id) ON DELETE CASCADE,
	creative_id   TEXT NOT NULL,
	campaign_id   TEXT NOT NULL,
	creative_type TEXT NOT NULL,
	dimensions    TEXT NOT NULL,
	file_size_kb  INT NOT NULL,
	click_url     TEXT NOT NULL,
	PRIMARY KEY (dataset_id, creative_id)
);
`

// EnsureSchema creates the archive tables if they do not exist.
func (a *PostgresArchiver) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// Archive replaces the stored dimension rows for the dataset inside a
// single transaction.
func (a *PostgresArchiver) Archive(ctx context.Context, ds *models.Dataset) error {
	tx, err := a.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM datasets WHERE dataset_id = $1`, ds.ID); err != nil {
		return fmt.Errorf("clear previous archive: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO datasets (dataset_id, seed, generated_at, horizon_start, horizon_end)
		 VALUES ($1, $2, $3, $4, $5)`,
		ds.ID, ds.Seed, ds.GeneratedAt, ds.HorizonStart, ds.HorizonEnd,
	); err != nil {
		return fmt.Errorf("insert dataset row: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range ds.Advertisers {
		adv := &ds.Advertisers[i]
		batch.Queue(
			`INSERT INTO advertisers (dataset_id, advertiser_id, name, industry, account_manager)
			 VALUES ($1, $2, $3, $4, $5)`,
			ds.ID, adv.ID, adv.Name, adv.Industry, adv.AccountManager,
		)
	}
	for i := range ds.Campaigns {
		c := &ds.Campaigns[i]
		batch.Queue(
			`INSERT INTO campaigns (dataset_id, campaign_id, advertiser_id, name, start_date, end_date,
			                        budget_total, budget_daily, objective, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			ds.ID, c.ID, c.AdvertiserID, c.Name, c.StartDate, c.EndDate,
			c.BudgetTotal, c.BudgetDaily, c.Objective, c.Status,
		)
	}
	for i := range ds.Creatives {
		cr := &ds.Creatives[i]
		batch.Queue(
			`INSERT INTO creatives (dataset_id, creative_id, campaign_id, creative_type, dimensions,
			                        file_size_kb, click_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ds.ID, cr.ID, cr.CampaignID, cr.Type, cr.Dimensions, cr.FileSizeKB, cr.ClickURL,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("archive dimension rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}

	a.logger.Info("dataset dimensions archived",
		zap.String("dataset_id", ds.ID),
		zap.Int("advertisers", len(ds.Advertisers)),
		zap.Int("campaigns", len(ds.Campaigns)),
		zap.Int("creatives", len(ds.Creatives)),
	)
	return nil
}
