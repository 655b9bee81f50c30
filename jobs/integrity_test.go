package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	imbalances []DocumentImbalance
	layers     []BadLayer
}

func (s stubSource) UnbalancedDocuments(context.Context) ([]DocumentImbalance, error) {
	return s.imbalances, nil
}

func (s stubSource) NonPositiveLayers(context.Context) ([]BadLayer, error) {
	return s.layers, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntegrityCheckerClean(t *testing.T) {
	checker := NewIntegrityChecker(stubSource{}, testLogger())

	report, err := checker.Run(context.Background(), "run-1")
	require.NoError(t, err)
	require.True(t, report.Clean())
	require.Equal(t, "run-1", report.RunID)
}

func TestIntegrityCheckerReportsFindings(t *testing.T) {
	checker := NewIntegrityChecker(stubSource{
		imbalances: []DocumentImbalance{{DocNo: "JV-000007", Difference: 0.5}},
		layers:     []BadLayer{{ID: 3, SKU: "SKU1", Qty: -1}, {ID: 9, SKU: "SKU2", Qty: 0}},
	}, testLogger())

	report, err := checker.Run(context.Background(), "run-2")
	require.NoError(t, err)
	require.False(t, report.Clean())
	require.Equal(t, 1, report.UnbalancedDocuments)
	require.Equal(t, 2, report.BadLayers)
}
