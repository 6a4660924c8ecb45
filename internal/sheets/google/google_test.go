package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fincontrol/internal/core"
)

// fakeSheets emulates the few Sheets endpoints the mirror calls, backed by
// an in-memory grid for a single tab.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	deletes int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if d := rq.DeleteDimension; d != nil {
				start, end := int(d.Range.StartIndex), int(d.Range.EndIndex)
				f.rows = append(f.rows[:start], f.rows[end:]...)
				f.deletes++
			}
		}
		writeJSON(w, map[string]any{})
	case strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows)
		writeJSON(w, map[string]any{"updates": map[string]any{"updatedRange": "Transacoes!A" + strconv.Itoa(n) + ":G" + strconv.Itoa(n)}})
	case strings.Contains(path, "/values/") && r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		row := rowFromRange(rng)
		for len(f.rows) < row {
			f.rows = append(f.rows, []any{})
		}
		f.rows[row-1] = vr.Values[0]
		writeJSON(w, map[string]any{"updatedRange": rng})
	case strings.Contains(path, "/values/"):
		col := make([][]any, 0, len(f.rows))
		for _, r := range f.rows {
			if len(r) == 0 {
				col = append(col, []any{})
				continue
			}
			col = append(col, []any{r[0]})
		}
		writeJSON(w, map[string]any{"values": col})
	default:
		writeJSON(w, map[string]any{"sheets": []any{
			map[string]any{"properties": map[string]any{"sheetId": 0, "title": "Outra"}},
			map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Transacoes"}},
		}})
	}
}

// rowFromRange extracts 5 from "Transacoes!A5:G5".
func rowFromRange(rng string) int {
	_, cells, _ := strings.Cut(rng, "!")
	first, _, _ := strings.Cut(cells, ":")
	n, _ := strconv.Atoi(strings.TrimLeft(first, "ABCDEFG"))
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeSheets) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r[0].(string))
	}
	return out
}

func newTestMirror(t *testing.T) (*Mirror, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-123", "Transacoes"), fake
}

func sampleTx(id, amount string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        core.Saida,
		Category:    "Moradia",
		Subcategory: "Aluguel",
		Amount:      decimal.RequireFromString(amount),
		Description: "Aluguel de março",
		Date:        core.NewDate(2024, 3, 5),
	}
}

func TestMirrorUpsertAppendsThenUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	m, fake := newTestMirror(t)

	ref, err := m.Upsert(ctx, sampleTx("tx-1", "1500"))
	require.NoError(t, err)
	assert.Equal(t, "Transacoes!A2:G2", ref)

	_, err = m.Upsert(ctx, sampleTx("tx-2", "80.5"))
	require.NoError(t, err)

	ref, err = m.Upsert(ctx, sampleTx("tx-1", "1600"))
	require.NoError(t, err)
	assert.Equal(t, "Transacoes!A2:G2", ref)

	assert.Equal(t, []string{"ID", "tx-1", "tx-2"}, fake.ids())
	assert.Equal(t, "R$ 1.600,00", fake.rows[1][6])
}

func TestMirrorRemove(t *testing.T) {
	ctx := context.Background()
	m, fake := newTestMirror(t)

	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		_, err := m.Upsert(ctx, sampleTx(id, "10"))
		require.NoError(t, err)
	}

	require.NoError(t, m.Remove(ctx, "tx-2"))
	assert.Equal(t, []string{"ID", "tx-1", "tx-3"}, fake.ids())

	require.NoError(t, m.Remove(ctx, "missing"))
	assert.Equal(t, 1, fake.deletes)
}

func TestMirrorUpsertRejectsInvalid(t *testing.T) {
	m, _ := newTestMirror(t)
	tx := sampleTx("tx-1", "10")
	tx.Date = core.Date{}

	_, err := m.Upsert(context.Background(), tx)
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRowHelpers(t *testing.T) {
	values := [][]any{{"ID"}, {"a"}, {}, {" b "}}

	tests := []struct {
		id   string
		want int
	}{
		{id: "a", want: 2},
		{id: "b", want: 4},
		{id: "ID", want: -1},
		{id: "zzz", want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, findRow(values, tt.id))
		})
	}

	assert.Equal(t, "Transacoes!A3:G3", rowRange("Transacoes", 3))

	row := rowValues(sampleTx("tx-9", "1234.5"))
	assert.Equal(t, []any{"tx-9", "2024-03-05", "saida", "Moradia", "Aluguel", "Aluguel de março", "R$ 1.234,50"}, row)
}

func TestNewValidatesOptions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "no spreadsheet", opts: Options{SheetName: "T", CredentialsJSON: "{}"}, want: "spreadsheet id"},
		{name: "no sheet", opts: Options{SpreadsheetID: "x", CredentialsJSON: "{}"}, want: "sheet name"},
		{name: "no credentials", opts: Options{SpreadsheetID: "x", SheetName: "T"}, want: "credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
