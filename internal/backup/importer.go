package backup

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

// importer runs the destructive half of import and reset inside one
// transaction.
type importer struct {
	tx pgx.Tx
}

// clearTables lists everything a reset empties. document_sequences is
// included so numbering restarts at 1.
var clearTables = []string{
	"ledger_lines",
	"cost_layers",
	"document_lines",
	"documents",
	"document_sequences",
	"item_gl_mappings",
	"item_prices",
	"items",
	"tax_codes",
	"chart_of_accounts",
	"currencies",
	"cost_centers",
	"branches",
	"app_settings",
	"audit_logs",
}

func (i importer) clearAll(ctx context.Context) error {
	for _, table := range clearTables {
		if _, err := i.tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (i importer) load(ctx context.Context, snap Snapshot) error {
	if _, err := i.tx.Exec(ctx,
		`INSERT INTO app_settings (functional_currency, vat_rate, costing) VALUES ($1, $2, $3)`,
		snap.Config.FunctionalCurrency, snap.Config.VATRate, snap.Config.Costing); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	for _, b := range snap.Branches {
		if _, err := i.tx.Exec(ctx, `INSERT INTO branches (id, name) VALUES ($1, $2)`, b.ID, b.Name); err != nil {
			return fmt.Errorf("load branch %d: %w", b.ID, err)
		}
	}
	for _, c := range snap.CostCenters {
		if _, err := i.tx.Exec(ctx, `INSERT INTO cost_centers (id, name) VALUES ($1, $2)`, c.ID, c.Name); err != nil {
			return fmt.Errorf("load cost center %s: %w", c.ID, err)
		}
	}
	for _, c := range snap.Currencies {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO currencies (code, name, functional) VALUES ($1, $2, $3)`,
			c.Code, c.Name, c.Functional); err != nil {
			return fmt.Errorf("load currency %s: %w", c.Code, err)
		}
	}
	for _, a := range snap.COA {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO chart_of_accounts (code, name, side) VALUES ($1, $2, $3)`,
			a.Code, a.Name, a.Side); err != nil {
			return fmt.Errorf("load account %s: %w", a.Code, err)
		}
	}
	for _, t := range snap.Taxes {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO tax_codes (code, type, rate, gl, gl_out, gl_in) VALUES ($1, $2, $3, $4, $5, $6)`,
			t.Code, t.Type, t.Rate, t.GL, t.GLOutput, t.GLInput); err != nil {
			return fmt.Errorf("load tax code %s: %w", t.Code, err)
		}
	}
	for _, it := range snap.Items {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO items (sku, name, uom, cat4, cat5) VALUES ($1, $2, $3, $4, $5)`,
			it.SKU, it.Name, it.UOM, it.Cat4, it.Cat5); err != nil {
			return fmt.Errorf("load item %s: %w", it.SKU, err)
		}
	}
	for sku, price := range snap.Prices {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO item_prices (sku, price) VALUES ($1, $2)`, sku, price); err != nil {
			return fmt.Errorf("load price %s: %w", sku, err)
		}
	}
	for category, set := range snap.ItemMap {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO item_gl_mappings (category, inv_account, sales_account, cogs_account) VALUES ($1, $2, $3, $4)`,
			category, set.Inventory, set.Sales, set.COGS); err != nil {
			return fmt.Errorf("load mapping %s: %w", category, err)
		}
	}
	for _, line := range snap.Journal {
		if _, err := i.tx.Exec(ctx, `
			INSERT INTO ledger_lines (doc_date, doc_no, account_code, debit, credit, branch, cost_center)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			line.DocDate, line.DocNo, line.Account, line.Debit, line.Credit, line.Branch, line.CostCenter); err != nil {
			return fmt.Errorf("load ledger line %s: %w", line.DocNo, err)
		}
	}

	// Deterministic SKU order so layer ids reproduce across imports.
	skus := make([]string, 0, len(snap.Stock))
	for sku := range snap.Stock {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	for _, sku := range skus {
		for _, batch := range snap.Stock[sku] {
			if _, err := i.tx.Exec(ctx,
				`INSERT INTO cost_layers (sku, qty, unit_cost) VALUES ($1, $2, $3)`,
				sku, batch.Qty, batch.UnitCost); err != nil {
				return fmt.Errorf("load stock batch %s: %w", sku, err)
			}
		}
	}

	if err := i.restoreSequences(ctx, snap); err != nil {
		return err
	}
	return nil
}

// restoreSequences seeds each prefix's counter past the highest imported
// document number, so post-import postings never collide.
func (i importer) restoreSequences(ctx context.Context, snap Snapshot) error {
	highest := map[string]int64{}
	for _, line := range snap.Journal {
		prefix, number, ok := splitDocNo(line.DocNo)
		if !ok {
			continue
		}
		if number > highest[prefix] {
			highest[prefix] = number
		}
	}
	for prefix, number := range highest {
		if _, err := i.tx.Exec(ctx,
			`INSERT INTO document_sequences (prefix, next_number) VALUES ($1, $2)`,
			prefix, number); err != nil {
			return fmt.Errorf("restore sequence %s: %w", prefix, err)
		}
	}
	return nil
}

func splitDocNo(docNo string) (string, int64, bool) {
	for idx := len(docNo) - 1; idx >= 0; idx-- {
		if docNo[idx] == '-' {
			var number int64
			if _, err := fmt.Sscanf(docNo[idx+1:], "%d", &number); err != nil {
				return "", 0, false
			}
			return docNo[:idx], number, true
		}
	}
	return "", 0, false
}
