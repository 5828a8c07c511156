package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acmecorp/campaign-pulse/internal/database"
	"github.com/acmecorp/campaign-pulse/internal/models"
)

// ClickHouseArchiver stores the event fact tables (impressions,
// clicks, conversions) in ClickHouse for ad-hoc SQL over large
// datasets.
type ClickHouseArchiver struct {
	db     *database.ClickHouseDB
	logger *zap.Logger
}

func NewClickHouseArchiver(db *database.ClickHouseDB, logger *zap.Logger) *ClickHouseArchiver {
	return &ClickHouseArchiver{db: db, logger: logger}
}

func (a *ClickHouseArchiver) Name() string { return "clickhouse" }

var clickhouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS impressions (
		dataset_id         String,
		impression_id      String,
		ts                 DateTime64(3, 'UTC'),
		campaign_id        String,
		creative_id        String,
		publisher_id       String,
		placement_id       String,
		device_type        LowCardinality(String),
		geo_country        LowCardinality(String),
		auction_type       LowCardinality(String),
		bid_request_id     String,
		bid_price          Float64,
		win_price          Float64,
		impression_outcome LowCardinality(String)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (dataset_id, campaign_id, ts)`,

	`CREATE TABLE IF NOT EXISTS clicks (
		dataset_id    String,
		click_id      String,
		impression_id String,
		ts            DateTime64(3, 'UTC'),
		campaign_id   String,
		creative_id   String,
		publisher_id  String,
		device_type   LowCardinality(String),
		geo_country   LowCardinality(String),
		click_cost    Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (dataset_id, campaign_id, ts)`,

	`CREATE TABLE IF NOT EXISTS conversions (
		dataset_id        String,
		conversion_id     String,
		click_id          String,
		impression_id     String,
		ts                DateTime64(3, 'UTC'),
		campaign_id       String,
		conversion_type   LowCardinality(String),
		conversion_value  Float64,
		attribution_model LowCardinality(String)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (dataset_id, campaign_id, ts)`,
}

// EnsureSchema creates the fact tables if they do not exist.
func (a *ClickHouseArchiver) EnsureSchema(ctx context.Context) error {
	for _, ddl := range clickhouseSchema {
		if err := a.db.Conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create clickhouse schema: %w", err)
		}
	}
	return nil
}

// Archive replaces the stored fact rows for the dataset.  ClickHouse
// has no cheap transactional delete, so previous rows for the dataset
// are dropped with a lightweight delete before the batch insert.
func (a *ClickHouseArchiver) Archive(ctx context.Context, ds *models.Dataset) error {
	for _, table := range []string{"impressions", "clicks", "conversions"} {
		query := fmt.Sprintf("DELETE FROM %s WHERE dataset_id = ?", table)
		if err := a.db.Conn.Exec(ctx, query, ds.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := a.archiveImpressions(ctx, ds); err != nil {
		return err
	}
	if err := a.archiveClicks(ctx, ds); err != nil {
		return err
	}
	if err := a.archiveConversions(ctx, ds); err != nil {
		return err
	}

	a.logger.Info("dataset events archived",
		zap.String("dataset_id", ds.ID),
		zap.Int("impressions", len(ds.Impressions)),
		zap.Int("clicks", len(ds.Clicks)),
		zap.Int("conversions", len(ds.Conversions)),
	)
	return nil
}

func (a *ClickHouseArchiver) archiveImpressions(ctx context.Context, ds *models.Dataset) error {
	batch, err := a.db.Conn.PrepareBatch(ctx, `INSERT INTO impressions`)
	if err != nil {
		return fmt.Errorf("prepare impressions batch: %w", err)
	}
	for i := range ds.Impressions {
		imp := &ds.Impressions[i]
		if err := batch.Append(
			ds.ID, imp.ID, imp.Timestamp, imp.CampaignID, imp.CreativeID,
			imp.PublisherID, imp.PlacementID, string(imp.DeviceType), imp.GeoCountry,
			string(imp.AuctionType), imp.BidRequestID, imp.BidPrice, imp.WinPrice,
			string(imp.Outcome),
		); err != nil {
			return fmt.Errorf("append impression %s: %w", imp.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send impressions batch: %w", err)
	}
	return nil
}

func (a *ClickHouseArchiver) archiveClicks(ctx context.Context, ds *models.Dataset) error {
	batch, err := a.db.Conn.PrepareBatch(ctx, `INSERT INTO clicks`)
	if err != nil {
		return fmt.Errorf("prepare clicks batch: %w", err)
	}
	for i := range ds.Clicks {
		clk := &ds.Clicks[i]
		if err := batch.Append(
			ds.ID, clk.ID, clk.ImpressionID, clk.Timestamp, clk.CampaignID,
			clk.CreativeID, clk.PublisherID, string(clk.DeviceType), clk.GeoCountry,
			clk.ClickCost,
		); err != nil {
			return fmt.Errorf("append click %s: %w", clk.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send clicks batch: %w", err)
	}
	return nil
}

func (a *ClickHouseArchiver) archiveConversions(ctx context.Context, ds *models.Dataset) error {
	batch, err := a.db.Conn.PrepareBatch(ctx, `INSERT INTO conversions`)
	if err != nil {
		return fmt.Errorf("prepare conversions batch: %w", err)
	}
	for i := range ds.Conversions {
		conv := &ds.Conversions[i]
		if err := batch.Append(
			ds.ID, conv.ID, conv.ClickID, conv.ImpressionID, conv.Timestamp,
			conv.CampaignID, string(conv.Type), conv.Value, string(conv.Attribution),
		); err != nil {
			return fmt.Errorf("append conversion %s: %w", conv.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send conversions batch: %w", err)
	}
	return nil
}
