package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/nft-marketplace/internal/market"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format       ExportFormat
	SellerFilter string // Filter by seller address
	MinPrice     uint64 // Base units, inclusive
	MaxPrice     uint64 // Base units, inclusive; 0 = no limit
	OutputDir    string
}

// ListingRecord is one exported listing with its price in every settlement token.
type ListingRecord struct {
	Listing   string             `json:"listing"`
	Mint      string             `json:"mint"`
	Seller    string             `json:"seller"`
	Escrow    string             `json:"escrow"`
	BasePrice uint64             `json:"base_price"`
	Prices    map[string]float64 `json:"prices"`
}

// ListingExporter writes directory snapshots to disk.
type ListingExporter struct {
	logger    *zap.Logger
	converter *market.Converter
}

// NewListingExporter creates a new listing exporter
func NewListingExporter(logger *zap.Logger, converter *market.Converter) *ListingExporter {
	return &ListingExporter{
		logger:    logger.Named("export"),
		converter: converter,
	}
}

// ExportListings exports listings based on the provided options
func (le *ListingExporter) ExportListings(listings []market.Listing, options ExportOptions) (string, error) {
	// Filter listings
	filtered := le.filterListings(listings, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no listings match the export criteria")
	}

	// Cheapest first, mint as tie-breaker for a stable file
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Price != filtered[j].Price {
			return filtered[i].Price < filtered[j].Price
		}
		return filtered[i].Mint.String() < filtered[j].Mint.String()
	})

	// Generate filename
	filename := le.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Export based on format
	var err error
	switch options.Format {
	case FormatCSV:
		err = le.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = le.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	le.logger.Info("Listings exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterListings applies filters to the listing set
func (le *ListingExporter) filterListings(listings []market.Listing, options ExportOptions) []market.Listing {
	var filtered []market.Listing

	for _, l := range listings {
		if options.SellerFilter != "" && l.Seller.String() != options.SellerFilter {
			continue
		}
		if l.Price < options.MinPrice {
			continue
		}
		if options.MaxPrice > 0 && l.Price > options.MaxPrice {
			continue
		}
		filtered = append(filtered, l)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (le *ListingExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "listings_all"
	if len(options.SellerFilter) >= 8 {
		prefix = "listings_" + options.SellerFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func (le *ListingExporter) symbols() []string {
	table := le.converter.Table()
	out := make([]string, 0, len(table.Tokens))
	for _, tok := range table.Tokens {
		out = append(out, tok.Symbol)
	}
	return out
}

// CSVHeaders returns the CSV header row for the configured token table.
func (le *ListingExporter) CSVHeaders() []string {
	headers := []string{"listing", "mint", "seller", "escrow", "base_price"}
	for _, sym := range le.symbols() {
		headers = append(headers, "price_"+sym)
	}
	return headers
}

func (le *ListingExporter) record(l market.Listing) ListingRecord {
	rec := ListingRecord{
		Listing:   l.Pubkey.String(),
		Mint:      l.Mint.String(),
		Seller:    l.Seller.String(),
		Escrow:    l.ListingAccount.String(),
		BasePrice: l.Price,
		Prices:    make(map[string]float64),
	}
	for _, q := range le.converter.QuoteAll(l.Price) {
		rec.Prices[q.Symbol] = q.Amount
	}
	return rec
}

// exportToCSV exports listings to CSV format
func (le *ListingExporter) exportToCSV(listings []market.Listing, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write headers
	if err := writer.Write(le.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	symbols := le.symbols()
	for _, l := range listings {
		rec := le.record(l)
		row := []string{rec.Listing, rec.Mint, rec.Seller, rec.Escrow, strconv.FormatUint(rec.BasePrice, 10)}
		for _, sym := range symbols {
			row = append(row, market.FormatPrice(rec.Prices[sym]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
	}

	return writer.Error()
}

// exportToJSON exports listings to JSON format
func (le *ListingExporter) exportToJSON(listings []market.Listing, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	records := make([]ListingRecord, 0, len(listings))
	for _, l := range listings {
		records = append(records, le.record(l))
	}

	// Create export data with metadata
	exportData := struct {
		ExportTime   time.Time       `json:"export_time"`
		ListingCount int             `json:"listing_count"`
		Listings     []ListingRecord `json:"listings"`
		Summary      ExportSummary   `json:"summary"`
	}{
		ExportTime:   time.Now(),
		ListingCount: len(listings),
		Listings:     records,
		Summary:      le.CalculateSummary(listings),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// ExportSummary contains summary statistics for exported listings
type ExportSummary struct {
	TotalListings int                `json:"total_listings"`
	UniqueSellers int                `json:"unique_sellers"`
	TotalValue    uint64             `json:"total_value"`
	FloorPrice    uint64             `json:"floor_price"`
	CeilingPrice  uint64             `json:"ceiling_price"`
	AvgPrice      float64            `json:"avg_price"`
	Sellers       []SellerStats      `json:"sellers"`
	Floor         map[string]float64 `json:"floor_by_token"`
}

// SellerStats represents listing statistics for one seller
type SellerStats struct {
	Seller       string `json:"seller"`
	ListingCount int    `json:"listing_count"`
	TotalValue   uint64 `json:"total_value"`
}

// CalculateSummary calculates summary statistics for a listing set
func (le *ListingExporter) CalculateSummary(listings []market.Listing) ExportSummary {
	summary := ExportSummary{
		TotalListings: len(listings),
		Floor:         make(map[string]float64),
	}

	if len(listings) == 0 {
		return summary
	}

	summary.FloorPrice = listings[0].Price
	sellerMap := make(map[solana.PublicKey]*SellerStats)

	for _, l := range listings {
		summary.TotalValue += l.Price
		if l.Price < summary.FloorPrice {
			summary.FloorPrice = l.Price
		}
		if l.Price > summary.CeilingPrice {
			summary.CeilingPrice = l.Price
		}

		stats, exists := sellerMap[l.Seller]
		if !exists {
			stats = &SellerStats{Seller: l.Seller.String()}
			sellerMap[l.Seller] = stats
		}
		stats.ListingCount++
		stats.TotalValue += l.Price
	}

	summary.UniqueSellers = len(sellerMap)
	summary.AvgPrice = float64(summary.TotalValue) / float64(len(listings))

	for _, q := range le.converter.QuoteAll(summary.FloorPrice) {
		summary.Floor[q.Symbol] = q.Amount
	}

	// Convert map to slice, biggest sellers first
	for _, stats := range sellerMap {
		summary.Sellers = append(summary.Sellers, *stats)
	}
	sort.Slice(summary.Sellers, func(i, j int) bool {
		if summary.Sellers[i].ListingCount != summary.Sellers[j].ListingCount {
			return summary.Sellers[i].ListingCount > summary.Sellers[j].ListingCount
		}
		return summary.Sellers[i].Seller < summary.Sellers[j].Seller
	})

	return summary
}
