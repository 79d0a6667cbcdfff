// Package sheets stores transactions in a Google Sheets worksheet. The
// worksheet carries a header row (Date, Amount, Category, Description);
// data rows follow. Rows have no stable ids, so update and delete
// locate their target by structural match.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

var headerRow = []any{"Date", "Amount", "Category", "Description"}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
	now           nowFunc
}

// Config selects the spreadsheet and worksheet. Credentials come from
// the environment, see newSheetsService.
type Config struct {
	SpreadsheetID string
	SheetName     string
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
		now:           timeNow,
	}, nil
}

// newSheetsService initializes a Sheets service from service account
// credentials. Uses GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	txns := make([]core.Transaction, 0, len(rows))
	for i, row := range rows {
		t, err := transactionFromRow(row, s.now())
		if err != nil {
			s.logger.Warn("skipping malformed sheet row",
				slog.Int("row", i+2),
				slog.String("error", err.Error()))
			continue
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func (s *Store) AddTransaction(ctx context.Context, txn core.Transaction) error {
	if err := s.ensureHeader(ctx); err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A:D", s.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(txn)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", s.sheetName, err)
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, old, updated core.Transaction) error {
	rowIdx, err := s.findRow(ctx, old)
	if err != nil {
		return err
	}
	// Sheet rows are 1-based and the header occupies row 1.
	rng := fmt.Sprintf("%s!A%d:D%d", s.sheetName, rowIdx+2, rowIdx+2)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(updated)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row in sheet %s: %w", s.sheetName, err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, txn core.Transaction) error {
	rowIdx, err := s.findRow(ctx, txn)
	if err != nil {
		return err
	}
	sheetID, err := s.sheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIdx + 1), // 0-based, +1 for header
					EndIndex:   int64(rowIdx + 2),
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row in sheet %s: %w", s.sheetName, err)
	}
	return nil
}

func (s *Store) TestConnection(ctx context.Context) store.ConnectionStatus {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return store.ConnectionStatus{Success: false, Message: fmt.Sprintf("spreadsheet unreachable: %v", err)}
	}
	names := make([]string, 0, len(meta.Sheets))
	found := false
	for _, sh := range meta.Sheets {
		names = append(names, sh.Properties.Title)
		if sh.Properties.Title == s.sheetName {
			found = true
		}
	}
	if !found {
		return store.ConnectionStatus{
			Success: false,
			Message: fmt.Sprintf("worksheet %q not found in spreadsheet", s.sheetName),
			Details: map[string]string{"worksheets": strings.Join(names, ", ")},
		}
	}
	return store.ConnectionStatus{
		Success: true,
		Message: "google sheets backend reachable",
		Details: map[string]string{
			"title":     meta.Properties.Title,
			"worksheet": s.sheetName,
		},
	}
}

func (s *Store) Export(ctx context.Context, format store.ExportFormat, path string) (string, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return "", err
	}
	return store.WriteExport(txns, format, path)
}

func (s *Store) Close() error { return nil }

// readRows returns the data rows below the header.
func (s *Store) readRows(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:D", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}
	return resp.Values[1:], nil
}

// findRow returns the 0-based data row index of the first row
// structurally matching want.
func (s *Store) findRow(ctx context.Context, want core.Transaction) (int, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		t, err := transactionFromRow(row, s.now())
		if err != nil {
			continue
		}
		if t.SameRecord(want) {
			return i, nil
		}
	}
	return 0, store.ErrNotFound
}

// ensureHeader writes the header row when the worksheet is empty.
func (s *Store) ensureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:D1", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{headerRow}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (s *Store) sheetID(ctx context.Context) (int64, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found", s.sheetName)
}

func rowValues(t core.Transaction) []any {
	return []any{t.Date.String(), t.Amount.Float(), t.Category, t.Description}
}
