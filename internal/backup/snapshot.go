// Package backup exports and restores the full bookkeeping state as one JSON
// snapshot, and performs the full transactional reset.
package backup

import (
	"time"

	"github.com/daftarhq/daftar/internal/accounting/ledger"
	"github.com/daftarhq/daftar/internal/accounting/mappings"
	"github.com/daftarhq/daftar/internal/masterdata/accounts"
	"github.com/daftarhq/daftar/internal/masterdata/dimensions"
	"github.com/daftarhq/daftar/internal/masterdata/items"
	"github.com/daftarhq/daftar/internal/masterdata/settings"
	"github.com/daftarhq/daftar/internal/masterdata/taxes"
)

// StockBatch is the portable form of a cost layer: remaining quantity at a
// unit cost. Layer ids and timestamps are not exported; import rebuilds them
// in array order, which preserves FIFO order.
type StockBatch struct {
	Qty      float64 `json:"qty"`
	UnitCost float64 `json:"unit_cost"`
}

// Snapshot is the complete exportable state.
type Snapshot struct {
	ExportedAt  time.Time                      `json:"exported_at"`
	Config      settings.Settings              `json:"config"`
	Branches    []dimensions.Branch            `json:"branches"`
	CostCenters []dimensions.CostCenter        `json:"costCenters"`
	Currencies  []dimensions.Currency          `json:"currencies"`
	Items       []items.Item                   `json:"items"`
	Prices      map[string]float64             `json:"prices"`
	ItemMap     map[string]mappings.AccountSet `json:"itemMap"`
	COA         []accounts.Account             `json:"coa"`
	Taxes       []taxes.TaxCode                `json:"taxes"`
	Journal     []ledger.Line                  `json:"journal"`
	Stock       map[string][]StockBatch        `json:"stockBatches"`
}
