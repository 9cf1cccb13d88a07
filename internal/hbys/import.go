// Package hbys hastane bilgi sisteminden (HBYS) alınan aylık sayım tablolarını
// (yatış günü, ameliyat, protokol) operasyonel katsayı olarak içe aktarır.
package hbys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySheet = errors.New("Excel dosyası boş")
	ErrNoSheet    = errors.New("Excel dosyasında sheet bulunamadı")
)

// Row: tablodaki tek satır. Line Excel'deki 1 tabanlı satır numarasıdır.
type Row struct {
	Line     int
	Hospital string
	Category string
	Period   string
	Value    float64
}

// RowError: okunamayan ya da eşleşmeyen satır.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string { return fmt.Sprintf("satır %d: %s", e.Line, e.Reason) }

// normalizeTurkish başlık karşılaştırması için Türkçe karakterleri ASCII'ye indirir.
func normalizeTurkish(s string) string {
	replacer := strings.NewReplacer(
		"ç", "c", "Ç", "C",
		"ğ", "g", "Ğ", "G",
		"ı", "i", "İ", "I",
		"ö", "o", "Ö", "O",
		"ş", "s", "Ş", "S",
		"ü", "u", "Ü", "U",
	)
	return strings.ToLower(strings.TrimSpace(replacer.Replace(s)))
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeTurkish(row[0])
	return strings.Contains(first, "hastane") || strings.Contains(first, "hospital")
}

// normalizePeriod "2025-03", "2025-03-01" ve "03.2025" biçimlerini "2025-03"e çevirir.
// Tarih biçimli hücreler ham seri numarası olarak gelir.
func normalizePeriod(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01", "2006-01-02", "01.2006", "01/2006", "02.01.2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01"), true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}

// parseValue: sayısal hücreler ham değerle gelir (virgülsüz); virgül yalnızca
// metin hücrelerdeki Türkçe yazımdan gelir.
func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	// binlik ayırıcı nokta, ondalık virgül
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return strconv.ParseFloat(raw, 64)
}

// ReadSheet ilk sheet'i okur. Sütun sırası: hastane kodu, kategori kodu, dönem, değer.
// İlk satır başlıksa atlanır. Bozuk satırlar hata listesine düşer, okuma devam eder.
func ReadSheet(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("Excel dosyası okunamadı: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoSheet
	}
	// Biçimli metin ("12,400") yerine hücrenin ham değeri
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("sheet okunamadı: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptySheet
	}

	start := 0
	if isHeader(rows[0]) {
		start = 1
	}

	var out []Row
	var rowErrs []RowError
	for i := start; i < len(rows); i++ {
		cells := rows[i]
		line := i + 1
		if len(cells) == 0 || strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}
		if len(cells) < 4 {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: "4 sütun bekleniyor"})
			continue
		}
		period, ok := normalizePeriod(cells[2])
		if !ok {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: fmt.Sprintf("dönem okunamadı: %q", cells[2])})
			continue
		}
		value, err := parseValue(cells[3])
		if err != nil || value < 0 {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: fmt.Sprintf("değer geçersiz: %q", cells[3])})
			continue
		}
		out = append(out, Row{
			Line:     line,
			Hospital: strings.ToUpper(strings.TrimSpace(cells[0])),
			Category: strings.ToLower(strings.TrimSpace(cells[1])),
			Period:   period,
			Value:    value,
		})
	}
	return out, rowErrs, nil
}

type Repository interface {
	ListHospitals(ctx context.Context, includeInactive bool) ([]models.Hospital, error)
	ListLocationCategories(ctx context.Context) ([]models.LocationCategory, error)
	UpsertCoefficient(ctx context.Context, c *models.OperationalCoefficient) error
}

type Result struct {
	Imported int
	Skipped  []RowError
}

// Import satırları kod üzerinden eşleştirip upsert eder. Eşleşmeyen satırlar
// Skipped listesine eklenir; depolama hatası içe aktarmayı durdurur.
func Import(ctx context.Context, repo Repository, rows []Row) (Result, error) {
	hospitals, err := repo.ListHospitals(ctx, true)
	if err != nil {
		return Result{}, err
	}
	categories, err := repo.ListLocationCategories(ctx)
	if err != nil {
		return Result{}, err
	}
	hospitalIDs := make(map[string]uint, len(hospitals))
	for _, h := range hospitals {
		hospitalIDs[strings.ToUpper(h.Code)] = h.ID
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, c := range categories {
		categoryIDs[strings.ToLower(c.Code)] = c.ID
	}

	var res Result
	for _, row := range rows {
		hid, ok := hospitalIDs[row.Hospital]
		if !ok {
			res.Skipped = append(res.Skipped, RowError{Line: row.Line, Reason: fmt.Sprintf("bilinmeyen hastane %q", row.Hospital)})
			continue
		}
		cid, ok := categoryIDs[row.Category]
		if !ok {
			res.Skipped = append(res.Skipped, RowError{Line: row.Line, Reason: fmt.Sprintf("bilinmeyen kategori %q", row.Category)})
			continue
		}

		c := &models.OperationalCoefficient{HospitalID: hid, CategoryID: cid, Period: row.Period, Value: row.Value}
		if err := repo.UpsertCoefficient(ctx, c); err != nil {
			return res, fmt.Errorf("satır %d yazılamadı: %w", row.Line, err)
		}
		res.Imported++
	}

	logger.L().WithFields(logrus.Fields{
		"imported": res.Imported,
		"skipped":  len(res.Skipped),
	}).Info("HBYS katsayıları içe aktarıldı")
	return res, nil
}
