// Package settings reads the single application configuration row.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/daftarhq/daftar/internal/platform/db"
)

// Defaults applied when the config row is missing.
const (
	DefaultCurrency = "SAR"
	DefaultVATRate  = 0.15
	DefaultCosting  = "FIFO"
)

// Settings holds the functional currency, the configured VAT rate, and the
// costing method label.
type Settings struct {
	FunctionalCurrency string  `json:"functionalCurrency"`
	VATRate            float64 `json:"vatRate"`
	Costing            string  `json:"costing"`
}

// Repository reads settings.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
}

type repository struct {
	db db.Querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.QueryRow(ctx, `SELECT functional_currency, vat_rate, costing FROM app_settings LIMIT 1`).
		Scan(&s.FunctionalCurrency, &s.VATRate, &s.Costing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{FunctionalCurrency: DefaultCurrency, VATRate: DefaultVATRate, Costing: DefaultCosting}, nil
		}
		return Settings{}, fmt.Errorf("settings: get: %w", err)
	}
	return s, nil
}

// Service exposes settings to handlers and the voucher engine.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	return s.repo.Get(ctx)
}

// VATRate returns the configured VAT rate; it satisfies the voucher engine's
// rate source.
func (s *Service) VATRate(ctx context.Context) (float64, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.VATRate, nil
}
