package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TrialBalanceCSV renders the trial balance as CSV with grouped number
// formatting, for download into spreadsheets.
func (s *Service) TrialBalanceCSV(ctx context.Context, period Period) ([]byte, error) {
	tb, err := s.TrialBalance(ctx, period)
	if err != nil {
		return nil, err
	}

	p := message.NewPrinter(language.English)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Account", "Name", "Debit", "Credit", "Balance"}); err != nil {
		return nil, fmt.Errorf("reports: write csv: %w", err)
	}
	for _, row := range tb.Rows {
		record := []string{row.Account, row.Name, p.Sprintf("%.2f", row.Debit), p.Sprintf("%.2f", row.Credit), p.Sprintf("%.2f", row.Balance)}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("reports: write csv: %w", err)
		}
	}
	totals := []string{"", "Total", p.Sprintf("%.2f", tb.TotalDebit), p.Sprintf("%.2f", tb.TotalCredit), ""}
	if err := w.Write(totals); err != nil {
		return nil, fmt.Errorf("reports: write csv: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("reports: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
