package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentImbalance is a posted document whose lines do not sum to zero.
type DocumentImbalance struct {
	DocNo      string
	Difference float64
}

// BadLayer is a cost layer with a non-positive remaining quantity. FIFO
// consumption deletes exhausted layers, so any such row is corruption.
type BadLayer struct {
	ID  int64
	SKU string
	Qty float64
}

// IntegritySource reads the ledger facts the scan inspects.
type IntegritySource interface {
	UnbalancedDocuments(ctx context.Context) ([]DocumentImbalance, error)
	NonPositiveLayers(ctx context.Context) ([]BadLayer, error)
}

// PgIntegritySource queries the live tables.
type PgIntegritySource struct {
	pool *pgxpool.Pool
}

// NewPgIntegritySource builds the Postgres-backed source.
func NewPgIntegritySource(pool *pgxpool.Pool) *PgIntegritySource {
	return &PgIntegritySource{pool: pool}
}

// UnbalancedDocuments finds documents whose debit/credit difference exceeds
// half a cent, past which it cannot be rounding noise.
func (s *PgIntegritySource) UnbalancedDocuments(ctx context.Context) ([]DocumentImbalance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doc_no, SUM(debit - credit)
		FROM ledger_lines
		GROUP BY doc_no
		HAVING ABS(SUM(debit - credit)) >= 0.005
		ORDER BY doc_no`)
	if err != nil {
		return nil, fmt.Errorf("jobs: query unbalanced documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentImbalance
	for rows.Next() {
		var d DocumentImbalance
		if err := rows.Scan(&d.DocNo, &d.Difference); err != nil {
			return nil, fmt.Errorf("jobs: scan imbalance: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// NonPositiveLayers finds cost layers that should have been deleted.
func (s *PgIntegritySource) NonPositiveLayers(ctx context.Context) ([]BadLayer, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, sku, qty FROM cost_layers WHERE qty <= 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("jobs: query bad layers: %w", err)
	}
	defer rows.Close()

	var out []BadLayer
	for rows.Next() {
		var l BadLayer
		if err := rows.Scan(&l.ID, &l.SKU, &l.Qty); err != nil {
			return nil, fmt.Errorf("jobs: scan bad layer: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// IntegrityReport summarises one scan.
type IntegrityReport struct {
	RunID               string
	UnbalancedDocuments int
	BadLayers           int
}

// Clean reports whether the scan found nothing.
func (r IntegrityReport) Clean() bool {
	return r.UnbalancedDocuments == 0 && r.BadLayers == 0
}

// IntegrityChecker runs the ledger integrity scan. Findings are logged, never
// repaired: the ledger is append-only and any imbalance needs a human.
type IntegrityChecker struct {
	src    IntegritySource
	logger *slog.Logger
}

// NewIntegrityChecker builds the checker.
func NewIntegrityChecker(src IntegritySource, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{src: src, logger: logger}
}

// Run performs one scan and logs every finding under the run id.
func (c *IntegrityChecker) Run(ctx context.Context, runID string) (IntegrityReport, error) {
	report := IntegrityReport{RunID: runID}

	imbalances, err := c.src.UnbalancedDocuments(ctx)
	if err != nil {
		return report, err
	}
	for _, d := range imbalances {
		c.logger.WarnContext(ctx, "unbalanced document",
			"run_id", runID, "doc_no", d.DocNo, "difference", d.Difference)
	}
	report.UnbalancedDocuments = len(imbalances)

	layers, err := c.src.NonPositiveLayers(ctx)
	if err != nil {
		return report, err
	}
	for _, l := range layers {
		c.logger.WarnContext(ctx, "non-positive cost layer",
			"run_id", runID, "layer_id", l.ID, "sku", l.SKU, "qty", l.Qty)
	}
	report.BadLayers = len(layers)

	if report.Clean() {
		c.logger.InfoContext(ctx, "ledger integrity scan clean", "run_id", runID)
	}
	return report, nil
}

// HandleLedgerIntegrityTask adapts the checker into an Asynq handler.
func HandleLedgerIntegrityTask(checker *IntegrityChecker) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerIntegrityPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RunID == "" {
			payload.RunID = uuid.NewString()
		}
		_, err := checker.Run(ctx, payload.RunID)
		return err
	}
}
