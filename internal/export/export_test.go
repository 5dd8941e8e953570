package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func receipt(id, from, to string, fromAmount, toAmount, fromPrice float64, at time.Duration) swap.Receipt {
	return swap.Receipt{
		ID:         id,
		ExecutedAt: base.Add(at),
		Quote: swap.Quote{
			From:       token.Token{Symbol: from, Price: fromPrice},
			To:         token.Token{Symbol: to},
			FromAmount: fromAmount,
			ToAmount:   toAmount,
			Rate:       toAmount / fromAmount,
		},
	}
}

func testReceipts() []swap.Receipt {
	// newest first, the way Recorder.Recent returns them
	return []swap.Receipt{
		receipt("c", "RWA", "USDC", 100, 125, 1.25, 2*time.Hour),
		receipt("b", "USDC", "SOL", 98.45, 1, 1, time.Hour),
		receipt("a", "SOL", "USDC", 2, 196.9, 98.45, 0),
	}
}

func newTestExporter() *Exporter {
	e := NewExporter(zap.NewNop())
	e.now = func() time.Time { return base.Add(3 * time.Hour) }
	return e
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestExporter().Export(testReceipts(), Options{Format: FormatCSV, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "swaps_all_20250601_150000.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, swap.HistoryHeader, rows[0])
	// oldest first
	assert.Equal(t, "a", rows[1][1])
	assert.Equal(t, "c", rows[3][1])
}

func TestExportJSONWithTokenFilter(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestExporter().Export(testReceipts(), Options{Format: FormatJSON, Token: "sol", OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "swaps_SOL_20250601_150000.json", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		SwapCount int      `json:"swap_count"`
		Swaps     []Record `json:"swaps"`
		Summary   Summary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 2, doc.SwapCount)
	assert.Equal(t, "a", doc.Swaps[0].ID)
	assert.InDelta(t, 2*98.45, doc.Swaps[0].USDValue, 1e-9)
	assert.Equal(t, 2, doc.Summary.UniqueTokens)
	assert.InDelta(t, 2*98.45+98.45, doc.Summary.TotalUSDValue, 1e-9)
	assert.InDelta(t, 196.9, doc.Summary.BoughtByToken["USDC"], 1e-9)
}

func TestExportNothingToExport(t *testing.T) {
	_, err := newTestExporter().Export(testReceipts(), Options{Token: "JUP", OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = newTestExporter().Export(nil, Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := newTestExporter().Export(testReceipts(), Options{Format: "xml", OutputDir: t.TempDir()})
	assert.Error(t, err)
}

func TestFilterTimeWindow(t *testing.T) {
	got := Filter(testReceipts(), Options{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute)})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalSwaps)
	assert.True(t, s.StartDate.IsZero())
}
