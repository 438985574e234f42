package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format - формат файла выгрузки.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat принимает "csv" или "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Options управляет фильтрами выгрузки журнала.
type Options struct {
	Format    Format
	StartTime time.Time
	EndTime   time.Time
	Label     string // send-sol, send-spl, transfer-nft
	Status    string
	OutputDir string
}

// CSVHeaders - колонки CSV в порядке Row.
func CSVHeaders() []string {
	return []string{
		"created_at", "correlation_id", "wallet", "label", "status",
		"signature", "attempts", "execution_time", "error",
	}
}

// Row - одна запись журнала в виде строки CSV.
func Row(tx *models.Transaction) []string {
	return []string{
		tx.CreatedAt.UTC().Format(time.RFC3339),
		tx.CorrelationID,
		tx.WalletAddress,
		tx.Label,
		tx.Status,
		tx.Signature,
		strconv.Itoa(tx.Attempts),
		strconv.FormatFloat(tx.ExecutionTime, 'f', 3, 64),
		tx.ErrorMessage,
	}
}

// Summary - агрегаты по выгруженным записям.
type Summary struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	ByLabel       map[string]int `json:"by_label"`
	TotalAttempts int            `json:"total_attempts"`
	AvgAttempts   float64        `json:"avg_attempts"`
	AvgExecution  float64        `json:"avg_execution_time"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
}

// JournalExporter выгружает журнал транзакций в CSV или JSON.
type JournalExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewJournalExporter(logger *zap.Logger) *JournalExporter {
	return &JournalExporter{logger: logger, now: time.Now}
}

// ExportToDir пишет файл в options.OutputDir и возвращает его путь.
func (je *JournalExporter) ExportToDir(txs []*models.Transaction, options Options) (string, error) {
	filtered := je.Filter(txs, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no journal records match the export criteria")
	}

	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, je.generateFilename(options))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := je.write(file, filtered, options.Format); err != nil {
		return "", err
	}

	je.logger.Info("Journal exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))
	return outputPath, nil
}

// Export пишет отфильтрованные записи в w. Пустой результат не ошибка.
func (je *JournalExporter) Export(w io.Writer, txs []*models.Transaction, options Options) (int, error) {
	filtered := je.Filter(txs, options)
	return len(filtered), je.write(w, filtered, options.Format)
}

func (je *JournalExporter) write(w io.Writer, txs []*models.Transaction, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, txs)
	case FormatJSON:
		return je.writeJSON(w, txs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Filter применяет фильтры и сортирует по времени создания, старые первыми.
func (je *JournalExporter) Filter(txs []*models.Transaction, options Options) []*models.Transaction {
	var filtered []*models.Transaction
	for _, tx := range txs {
		if !options.StartTime.IsZero() && tx.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && tx.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.Label != "" && tx.Label != options.Label {
			continue
		}
		if options.Status != "" && tx.Status != options.Status {
			continue
		}
		filtered = append(filtered, tx)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered
}

func (je *JournalExporter) generateFilename(options Options) string {
	prefix := "journal_all"
	if options.Label != "" {
		prefix = "journal_" + options.Label
	}
	if options.Status != "" {
		prefix += "_" + options.Status
	}
	return fmt.Sprintf("%s_%s.%s", prefix, je.now().Format("20060102_150405"), options.Format)
}

func writeCSV(w io.Writer, txs []*models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, tx := range txs {
		if err := writer.Write(Row(tx)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (je *JournalExporter) writeJSON(w io.Writer, txs []*models.Transaction) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if txs == nil {
		txs = []*models.Transaction{}
	}
	exportData := struct {
		ExportTime   time.Time             `json:"export_time"`
		RecordCount  int                   `json:"record_count"`
		Summary      Summary               `json:"summary"`
		Transactions []*models.Transaction `json:"transactions"`
	}{
		ExportTime:   je.now().UTC(),
		RecordCount:  len(txs),
		Summary:      Summarize(txs),
		Transactions: txs,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summarize ожидает записи, отсортированные по времени.
func Summarize(txs []*models.Transaction) Summary {
	summary := Summary{
		Total:    len(txs),
		ByStatus: make(map[string]int),
		ByLabel:  make(map[string]int),
	}
	if len(txs) == 0 {
		return summary
	}

	summary.StartDate = txs[0].CreatedAt
	summary.EndDate = txs[len(txs)-1].CreatedAt

	var execution float64
	for _, tx := range txs {
		summary.ByStatus[tx.Status]++
		summary.ByLabel[tx.Label]++
		summary.TotalAttempts += tx.Attempts
		execution += tx.ExecutionTime
	}
	summary.AvgAttempts = float64(summary.TotalAttempts) / float64(len(txs))
	summary.AvgExecution = execution / float64(len(txs))
	return summary
}
