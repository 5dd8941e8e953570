package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrNothingToExport is returned when no swap matches the options.
var ErrNothingToExport = errors.New("no swaps match the export criteria")

// Options configures the export behavior
type Options struct {
	Format    Format
	StartTime time.Time
	EndTime   time.Time
	Token     string // either side of the swap
	OutputDir string
}

// Exporter writes swap history snapshots to files.
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger, now: time.Now}
}

// Export writes the matching receipts, oldest first, and returns the path
// of the new file.
func (e *Exporter) Export(receipts []swap.Receipt, opts Options) (string, error) {
	filtered := Filter(receipts, opts)
	if len(filtered) == 0 {
		return "", ErrNothingToExport
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].ExecutedAt.Before(filtered[j].ExecutedAt)
	})

	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(opts.OutputDir, e.filename(opts))

	var err error
	switch opts.Format {
	case FormatCSV:
		err = writeCSV(filtered, outputPath)
	case FormatJSON:
		err = e.writeJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Swaps exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(opts.Format)))
	return outputPath, nil
}

// Filter keeps the receipts inside the time window that involve the token.
func Filter(receipts []swap.Receipt, opts Options) []swap.Receipt {
	sym := token.NormalizeSymbol(opts.Token)

	var out []swap.Receipt
	for _, rc := range receipts {
		if !opts.StartTime.IsZero() && rc.ExecutedAt.Before(opts.StartTime) {
			continue
		}
		if !opts.EndTime.IsZero() && rc.ExecutedAt.After(opts.EndTime) {
			continue
		}
		if sym != "" && rc.Quote.From.Symbol != sym && rc.Quote.To.Symbol != sym {
			continue
		}
		out = append(out, rc)
	}
	return out
}

func (e *Exporter) filename(opts Options) string {
	prefix := "swaps_all"
	if sym := token.NormalizeSymbol(opts.Token); sym != "" {
		prefix = "swaps_" + sym
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), opts.Format)
}

func writeCSV(receipts []swap.Receipt, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(swap.HistoryHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, rc := range receipts {
		if err := writer.Write(rc.Record()); err != nil {
			return fmt.Errorf("failed to write swap %s: %w", rc.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Record is the JSON shape of one swap.
type Record struct {
	ID          string    `json:"id"`
	ExecutedAt  time.Time `json:"executed_at"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	FromAmount  float64   `json:"from_amount"`
	ToAmount    float64   `json:"to_amount"`
	Rate        float64   `json:"rate"`
	Slippage    float64   `json:"slippage"`
	MinReceived float64   `json:"min_received"`
	USDValue    float64   `json:"usd_value"`
}

func recordOf(rc swap.Receipt) Record {
	return Record{
		ID:          rc.ID,
		ExecutedAt:  rc.ExecutedAt,
		From:        rc.Quote.From.Symbol,
		To:          rc.Quote.To.Symbol,
		FromAmount:  rc.Quote.FromAmount,
		ToAmount:    rc.Quote.ToAmount,
		Rate:        rc.Quote.Rate,
		Slippage:    rc.Quote.Slippage,
		MinReceived: rc.Quote.MinReceived,
		USDValue:    rc.Quote.USDValue(),
	}
}

func (e *Exporter) writeJSON(receipts []swap.Receipt, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	records := make([]Record, len(receipts))
	for i, rc := range receipts {
		records[i] = recordOf(rc)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	data := struct {
		ExportTime time.Time `json:"export_time"`
		SwapCount  int       `json:"swap_count"`
		Swaps      []Record  `json:"swaps"`
		Summary    Summary   `json:"summary"`
	}{
		ExportTime: e.now(),
		SwapCount:  len(records),
		Swaps:      records,
		Summary:    Summarize(receipts),
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summary contains summary statistics for exported swaps
type Summary struct {
	TotalSwaps    int                `json:"total_swaps"`
	UniqueTokens  int                `json:"unique_tokens"`
	TotalUSDValue float64            `json:"total_usd_value"`
	SoldByToken   map[string]float64 `json:"sold_by_token"`
	BoughtByToken map[string]float64 `json:"bought_by_token"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
}

// Summarize totals the receipts. Receipts are expected oldest first.
func Summarize(receipts []swap.Receipt) Summary {
	s := Summary{
		TotalSwaps:    len(receipts),
		SoldByToken:   make(map[string]float64),
		BoughtByToken: make(map[string]float64),
	}
	if len(receipts) == 0 {
		return s
	}
	s.StartDate = receipts[0].ExecutedAt
	s.EndDate = receipts[len(receipts)-1].ExecutedAt

	tokens := make(map[string]struct{})
	for _, rc := range receipts {
		q := rc.Quote
		tokens[q.From.Symbol] = struct{}{}
		tokens[q.To.Symbol] = struct{}{}
		s.SoldByToken[q.From.Symbol] += q.FromAmount
		s.BoughtByToken[q.To.Symbol] += q.ToAmount
		s.TotalUSDValue += q.USDValue()
	}
	s.UniqueTokens = len(tokens)
	return s
}
