// Package google mirrors transactions into a Google Sheets tab, one row
// per transaction keyed by its id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
	htransport "google.golang.org/api/transport/http"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

// Options configures the mirror. Service account credentials are tried
// first (CredentialsJSON, then CredentialsFile); without them an OAuth
// client plus OAuthTokenFile is used.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	OAuthClientFile string
	OAuthClientJSON string
	OAuthTokenFile  string
	Timeout         time.Duration
	RetryMax        int
}

type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string

	// serializes lookups and writes so two upserts of a new id cannot both append
	mu      sync.Mutex
	sheetID *int64
}

var _ ports.TransactionMirror = (*Mirror)(nil)

// New builds an authenticated Sheets service on top of a retrying HTTP client.
func New(ctx context.Context, opts Options) (*Mirror, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	var cred goption.ClientOption
	switch {
	case opts.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		cred = goption.WithCredentialsJSON([]byte(opts.CredentialsJSON))
	case opts.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
		cred = goption.WithCredentialsFile(opts.CredentialsFile)
	case opts.OAuthTokenFile != "":
		slog.InfoContext(ctx, "Using OAuth user credentials", "token_file", opts.OAuthTokenFile)
		ts, err := oauthTokenSource(ctx, opts)
		if err != nil {
			return nil, err
		}
		cred = goption.WithTokenSource(ts)
	default:
		return nil, errors.New("missing credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	base := newRetryingTransport(opts.RetryMax)
	rt, err := htransport.NewTransport(ctx, base, cred, goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("authenticated transport: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Transport: rt, Timeout: timeout}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Mirror {
	return &Mirror{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
}

// newRetryingTransport retries 429s and 5xx with backoff. Auth is layered
// on top, so each retry carries a fresh token.
func newRetryingTransport(retryMax int) http.RoundTripper {
	rc := retryablehttp.NewClient()
	if retryMax > 0 {
		rc.RetryMax = retryMax
	}
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = slog.Default()
	return &retryablehttp.RoundTripper{Client: rc}
}

// Upsert writes t into its row, appending a new row the first time an id is seen.
func (m *Mirror) Upsert(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.readIDs(ctx)
	if err != nil {
		return "", err
	}
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(t)}}

	if row := findRow(ids, t.ID); row > 0 {
		rng := rowRange(m.sheet, row)
		_, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update %s: %w", rng, err)
		}
		return rng, nil
	}

	if len(ids) == 0 {
		hdr := &gsheet.ValueRange{Values: [][]any{header}}
		if _, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rowRange(m.sheet, 1), hdr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	resp, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, fmt.Sprintf("%s!A:G", m.sheet), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", m.sheet, err)
	}
	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// Remove deletes the row of id. A missing row is not an error.
func (m *Mirror) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row < 0 {
		slog.DebugContext(ctx, "Row already absent from sheet", "id", id)
		return nil
	}
	sheetID, err := m.lookupSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := m.svc.Spreadsheets.BatchUpdate(m.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	return nil
}

func (m *Mirror) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", m.sheet)
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (m *Mirror) lookupSheetID(ctx context.Context) (int64, error) {
	if m.sheetID != nil {
		return *m.sheetID, nil
	}
	ss, err := m.svc.Spreadsheets.Get(m.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == m.sheet {
			id := s.Properties.SheetId
			m.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", m.sheet)
}
