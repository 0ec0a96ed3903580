package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ports "financas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Options struct {
	SpreadsheetID   string
	LedgerSheet     string
	AuditSheet      string
	CredentialsJSON []byte
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	auditSheet    string

	mu         sync.Mutex
	headersSet map[string]bool
}

var _ ports.LedgerMirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, o Options) (*Client, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if len(o.CredentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(o.CredentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(o.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newWithService(svc, o), nil
}

func newWithService(svc *gsheet.Service, o Options) *Client {
	ledger := strings.TrimSpace(o.LedgerSheet)
	if ledger == "" {
		ledger = "Lancamentos"
	}
	audit := strings.TrimSpace(o.AuditSheet)
	if audit == "" {
		audit = "Exclusoes"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: o.SpreadsheetID,
		ledgerSheet:   ledger,
		auditSheet:    audit,
		headersSet:    map[string]bool{},
	}
}

func (c *Client) AppendTransaction(ctx context.Context, row ports.TransactionRow) (string, error) {
	return c.appendRow(ctx, c.ledgerSheet, ports.TransactionHeader, row.Values())
}

func (c *Client) AppendDeletion(ctx context.Context, row ports.DeletionRow) (string, error) {
	return c.appendRow(ctx, c.auditSheet, ports.DeletionHeader, row.Values())
}

func (c *Client) appendRow(ctx context.Context, sheet string, header, values []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := c.ensureHeader(ctx, sheet, header); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{values}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(sheet, columns(len(header))), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := a1(sheet, columns(len(header)))
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ensureHeader writes header to row 1 when the sheet is empty. It checks once
// per sheet for the lifetime of the client.
func (c *Client) ensureHeader(ctx context.Context, sheet string, header []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headersSet[sheet] {
		return nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(sheet, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sheet, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		vr := &gsheet.ValueRange{Values: [][]any{header}}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(sheet, "A1"), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}
		slog.InfoContext(ctx, "Wrote sheet header", "sheet", sheet, "columns", len(header))
	}
	c.headersSet[sheet] = true
	return nil
}

// a1 builds an A1 range, quoting the sheet name.
func a1(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

// columns returns "A:<last>" for n columns, n <= 26.
func columns(n int) string {
	if n < 1 {
		n = 1
	}
	if n > 26 {
		n = 26
	}
	return fmt.Sprintf("A:%c", 'A'+n-1)
}
