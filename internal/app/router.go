package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/accounting/reports"
	"github.com/daftarhq/daftar/internal/accounting/vouchers"
	"github.com/daftarhq/daftar/internal/backup"
	"github.com/daftarhq/daftar/internal/masterdata/accounts"
	"github.com/daftarhq/daftar/internal/masterdata/dimensions"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	"github.com/daftarhq/daftar/internal/masterdata/settings"
	"github.com/daftarhq/daftar/internal/masterdata/taxes"
	"github.com/daftarhq/daftar/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Pool              *pgxpool.Pool
	VoucherHandler    *vouchers.Handler
	ReportHandler     *reports.Handler
	BackupHandler     *backup.Handler
	AccountsHandler   *accounts.Handler
	ItemsHandler      *items.Handler
	SettingsHandler   *settings.Handler
	TaxesHandler      *taxes.Handler
	DimensionsHandler *dimensions.Handler
	MappingsHandler   *mappings.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/vouchers", func(sub chi.Router) {
			vouchers.MountRoutes(sub, params.VoucherHandler)
		})
		api.Route("/reports", func(sub chi.Router) {
			reports.MountRoutes(sub, params.ReportHandler)
		})
		api.Route("/backup", func(sub chi.Router) {
			backup.MountRoutes(sub, params.BackupHandler)
		})

		api.Get("/accounts", params.AccountsHandler.List)
		api.Get("/items", params.ItemsHandler.List)
		api.Get("/item-prices", params.ItemsHandler.Prices)
		api.Get("/item-mapping", params.MappingsHandler.List)
		api.Get("/settings", params.SettingsHandler.Get)
		api.Get("/taxes", params.TaxesHandler.List)
		api.Get("/branches", params.DimensionsHandler.Branches)
		api.Get("/cost-centers", params.DimensionsHandler.CostCenters)
		api.Get("/currencies", params.DimensionsHandler.Currencies)
	})

	return r
}
