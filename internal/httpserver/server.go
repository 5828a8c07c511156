package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acmecorp/campaign-pulse/internal/analytics"
	"github.com/acmecorp/campaign-pulse/internal/config"
	"github.com/acmecorp/campaign-pulse/internal/database"
	"github.com/acmecorp/campaign-pulse/internal/generator"
	"github.com/acmecorp/campaign-pulse/internal/metrics"
	"github.com/acmecorp/campaign-pulse/internal/models"
	"github.com/acmecorp/campaign-pulse/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server serves the current dataset snapshot and its reports.
type Server struct {
	engine    *analytics.Engine
	archivers []storage.Archiver
	logger    *zap.Logger
	config    *config.Config
	metrics   *metrics.Metrics

	mu      sync.RWMutex
	dataset *models.Dataset
}

// NewServer constructs the server and returns it with all routes
// registered.  The initial dataset must be installed with SetDataset
// before serving.
func NewServer(deps *Dependencies) (*Server, http.Handler) {
	var cache analytics.ReportCache
	if deps.Redis != nil {
		cache = analytics.NewRedisReportCache(deps.Redis.Client, deps.Config.Redis.CacheTTL, deps.Logger)
	} else {
		cache = analytics.NewInMemoryReportCache()
	}

	engineCfg := analytics.Config{
		PacingTolerancePct:  deps.Config.Analytics.PacingTolerancePct,
		PublisherCostRate:   deps.Config.Analytics.PublisherCostRate,
		ReceivableTermsDays: deps.Config.Analytics.ReceivableTermsDays,
		PayableTermsDays:    deps.Config.Analytics.PayableTermsDays,
	}

	var archivers []storage.Archiver
	if deps.DB != nil {
		archivers = append(archivers, storage.NewPostgresArchiver(deps.DB, deps.Logger))
	}
	if deps.ClickHouse != nil {
		archivers = append(archivers, storage.NewClickHouseArchiver(deps.ClickHouse, deps.Logger))
	}

	s := &Server{
		engine:    analytics.NewEngine(engineCfg, cache, deps.Metrics),
		archivers: archivers,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Dataset
	mux.HandleFunc("/api/dataset", s.handleDataset)
	mux.HandleFunc("/api/advertisers", s.handleAdvertisers)
	mux.HandleFunc("/api/campaigns", s.handleCampaigns)
	mux.HandleFunc("/api/creatives", s.handleCreatives)

	// Reports
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/report/", s.handleReportSection)

	return s, mux
}

// SetDataset installs a freshly generated snapshot and drops cached
// reports of the previous one.
func (s *Server) SetDataset(ctx context.Context, ds *models.Dataset) {
	s.mu.Lock()
	prev := s.dataset
	s.dataset = ds
	s.mu.Unlock()

	if prev != nil {
		s.engine.Invalidate(ctx, prev.ID)
	}

	if s.metrics != nil {
		counts := ds.Counts()
		s.metrics.RecordDatasetRows(map[string]int{
			"advertisers": counts.Advertisers,
			"campaigns":   counts.Campaigns,
			"creatives":   counts.Creatives,
			"impressions": counts.Impressions,
			"clicks":      counts.Clicks,
			"conversions": counts.Conversions,
		})
	}
}

// Archive pushes the snapshot to every configured backend.  Failures
// are logged, not fatal: the in-memory snapshot stays authoritative.
func (s *Server) Archive(ctx context.Context, ds *models.Dataset) {
	for _, a := range s.archivers {
		start := time.Now()
		err := a.Archive(ctx, ds)
		if s.metrics != nil {
			s.metrics.RecordArchive(a.Name(), time.Since(start), err)
		}
		if err != nil {
			s.logger.Error("dataset archive failed",
				zap.String("backend", a.Name()),
				zap.String("dataset_id", ds.ID),
				zap.Error(err),
			)
		}
	}
}

// EnsureSchemas prepares every configured archive backend.
func (s *Server) EnsureSchemas(ctx context.Context) error {
	for _, a := range s.archivers {
		type schemaEnsurer interface {
			EnsureSchema(ctx context.Context) error
		}
		if se, ok := a.(schemaEnsurer); ok {
			if err := se.EnsureSchema(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) currentDataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Dataset ----

type datasetInfo struct {
	DatasetID    string             `json:"dataset_id"`
	Seed         int64              `json:"seed"`
	GeneratedAt  time.Time          `json:"generated_at"`
	HorizonStart time.Time          `json:"horizon_start"`
	HorizonEnd   time.Time          `json:"horizon_end"`
	Counts       models.TableCounts `json:"counts"`
}

// generateRequest overrides the configured defaults for one
// regeneration.  Omitted fields keep their defaults.
type generateRequest struct {
	Seed         *int64  `json:"seed"`
	HorizonStart *string `json:"horizon_start"`
	HorizonEnd   *string `json:"horizon_end"`
	Advertisers  *int    `json:"advertisers"`
	Campaigns    *int    `json:"campaigns"`
	Impressions  *int    `json:"impressions"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ds := s.currentDataset()
		if ds == nil {
			s.errorResponse(w, "no dataset generated yet", http.StatusServiceUnavailable)
			return
		}
		s.jsonResponse(w, datasetInfo{
			DatasetID:    ds.ID,
			Seed:         ds.Seed,
			GeneratedAt:  ds.GeneratedAt,
			HorizonStart: ds.HorizonStart,
			HorizonEnd:   ds.HorizonEnd,
			Counts:       ds.Counts(),
		})

	case http.MethodPost:
		s.handleRegenerate(w, r)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// BaseParams maps the configured generator defaults to run parameters.
func BaseParams(cfg config.GeneratorConfig) generator.Params {
	p := generator.DefaultParams()
	p.Seed = cfg.Seed
	if t, err := time.Parse("2006-01-02", cfg.HorizonStart); err == nil {
		p.HorizonStart = t
	}
	if t, err := time.Parse("2006-01-02", cfg.HorizonEnd); err == nil {
		p.HorizonEnd = t
	}
	p.Advertisers = cfg.Advertisers
	p.Campaigns = cfg.Campaigns
	p.Impressions = cfg.Impressions
	return p
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	params := BaseParams(s.config.Generator)

	if r.Body != nil && r.ContentLength != 0 {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Seed != nil {
			params.Seed = *req.Seed
		}
		if req.HorizonStart != nil {
			t, err := time.Parse("2006-01-02", *req.HorizonStart)
			if err != nil {
				s.errorResponse(w, "horizon_start must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			params.HorizonStart = t
		}
		if req.HorizonEnd != nil {
			t, err := time.Parse("2006-01-02", *req.HorizonEnd)
			if err != nil {
				s.errorResponse(w, "horizon_end must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			params.HorizonEnd = t
		}
		if req.Advertisers != nil {
			params.Advertisers = *req.Advertisers
		}
		if req.Campaigns != nil {
			params.Campaigns = *req.Campaigns
		}
		if req.Impressions != nil {
			params.Impressions = *req.Impressions
		}
	}

	start := time.Now()
	ds, err := generator.Generate(params)
	if s.metrics != nil {
		s.metrics.RecordGeneration(time.Since(start), err)
	}
	if err != nil {
		var cfgErr *generator.ConfigError
		if errors.As(err, &cfgErr) {
			s.errorResponse(w, cfgErr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("dataset generation failed", zap.Error(err))
		s.errorResponse(w, "generation failed", http.StatusInternalServerError)
		return
	}

	s.SetDataset(r.Context(), ds)
	s.logger.Info("dataset regenerated",
		zap.String("dataset_id", ds.ID),
		zap.Int64("seed", ds.Seed),
		zap.Duration("duration", time.Since(start)),
	)

	// Archive in the background so the response stays fast.
	go s.Archive(context.WithoutCancel(r.Context()), ds)

	s.jsonResponse(w, datasetInfo{
		DatasetID:    ds.ID,
		Seed:         ds.Seed,
		GeneratedAt:  ds.GeneratedAt,
		HorizonStart: ds.HorizonStart,
		HorizonEnd:   ds.HorizonEnd,
		Counts:       ds.Counts(),
	})
}

// ---- Dimension tables ----

func (s *Server) handleAdvertisers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ds := s.currentDataset()
	if ds == nil {
		s.errorResponse(w, "no dataset generated yet", http.StatusServiceUnavailable)
		return
	}
	s.jsonResponse(w, ds.Advertisers)
}

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ds := s.currentDataset()
	if ds == nil {
		s.errorResponse(w, "no dataset generated yet", http.StatusServiceUnavailable)
		return
	}
	s.jsonResponse(w, ds.Campaigns)
}

func (s *Server) handleCreatives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ds := s.currentDataset()
	if ds == nil {
		s.errorResponse(w, "no dataset generated yet", http.StatusServiceUnavailable)
		return
	}
	s.jsonResponse(w, ds.Creatives)
}

// ---- Reports ----

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rep, ok := s.computeReport(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, rep)
}

func (s *Server) handleReportSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	section := strings.TrimPrefix(r.URL.Path, "/api/report/")
	rep, ok := s.computeReport(w, r)
	if !ok {
		return
	}

	switch section {
	case "summary":
		s.jsonResponse(w, map[string]any{
			"summary":   rep.Summary,
			"campaigns": rep.Campaigns,
		})
	case "timeseries":
		s.jsonResponse(w, map[string]any{
			"daily":   rep.Daily,
			"weekly":  rep.Weekly,
			"monthly": rep.Monthly,
		})
	case "breakdown":
		dim := r.URL.Query().Get("dimension")
		if dim == "" {
			s.jsonResponse(w, rep.Breakdowns)
			return
		}
		rows, ok := rep.Breakdowns[dim]
		if !ok {
			s.errorResponse(w, "unknown dimension: "+dim, http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, rows)
	case "pacing":
		s.jsonResponse(w, map[string]any{
			"pacing": rep.Pacing,
			"margin": rep.Margin,
		})
	case "cashflow":
		s.jsonResponse(w, rep.CashFlow)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) computeReport(w http.ResponseWriter, r *http.Request) (*analytics.Report, bool) {
	ds := s.currentDataset()
	if ds == nil {
		s.errorResponse(w, "no dataset generated yet", http.StatusServiceUnavailable)
		return nil, false
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	rep, err := s.engine.Compute(r.Context(), ds, filter)
	if err != nil {
		s.logger.Error("report computation failed", zap.Error(err))
		s.errorResponse(w, "report computation failed", http.StatusInternalServerError)
		return nil, false
	}
	return rep, true
}

// parseFilter reads the filter from query parameters: date_start,
// date_end (YYYY-MM-DD), and comma-separated advertiser_ids,
// device_types and statuses.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	var f analytics.Filter

	if v := q.Get("date_start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("date_start must be YYYY-MM-DD")
		}
		f.DateStart = t
	}
	if v := q.Get("date_end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("date_end must be YYYY-MM-DD")
		}
		f.DateEnd = t
	}
	if !f.DateStart.IsZero() && !f.DateEnd.IsZero() && f.DateEnd.Before(f.DateStart) {
		return f, errors.New("date_end precedes date_start")
	}

	f.AdvertiserIDs = splitParam(q.Get("advertiser_ids"))

	for _, v := range splitParam(q.Get("device_types")) {
		dt := models.DeviceType(v)
		if !validDevice(dt) {
			return f, errors.New("unknown device_type: " + v)
		}
		f.DeviceTypes = append(f.DeviceTypes, dt)
	}

	for _, v := range splitParam(q.Get("statuses")) {
		st := models.CampaignStatus(v)
		if !validStatus(st) {
			return f, errors.New("unknown status: " + v)
		}
		f.Statuses = append(f.Statuses, st)
	}

	return f, nil
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validDevice(d models.DeviceType) bool {
	for _, want := range models.DeviceTypes {
		if want == d {
			return true
		}
	}
	return false
}

func validStatus(s models.CampaignStatus) bool {
	for _, want := range models.CampaignStatuses {
		if want == s {
			return true
		}
	}
	return false
}

// ---- Helpers ----

func (s *Server) jsonResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  strconv.Itoa(code),
	})
}
