// Package pricing atık türü için belirli bir günde geçerli kg fiyatını çözer.
package pricing

import (
	"sort"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/models"

	"github.com/shopspring/decimal"
)

var ErrWasteTypeNotFound = apperr.NotFound("Atık türü bulunamadı")

// Rate: çözülen fiyat. EffectiveFrom nil ise atık türünün sabit fiyatına düşülmüştür.
type Rate struct {
	CostPerKg     decimal.Decimal
	EffectiveFrom *time.Time
}

func (r Rate) IsFallback() bool { return r.EffectiveFrom == nil }

// Table: atık türleri ve fiyat geçmişinin bellekteki hali. Bir okuma boyunca
// her toplama için ayrı sorgu atmamak için bir kez kurulur.
type Table struct {
	types   map[uint]models.WasteType
	history map[uint][]models.WasteTypeCost // EffectiveFrom azalan
}

func NewTable(types []models.WasteType, costs []models.WasteTypeCost) *Table {
	t := &Table{
		types:   make(map[uint]models.WasteType, len(types)),
		history: make(map[uint][]models.WasteTypeCost),
	}
	for _, wt := range types {
		t.types[wt.ID] = wt
	}
	for _, c := range costs {
		t.history[c.WasteTypeID] = append(t.history[c.WasteTypeID], c)
	}
	for id := range t.history {
		h := t.history[id]
		sort.SliceStable(h, func(i, j int) bool {
			return dayKey(h[i].EffectiveFrom) > dayKey(h[j].EffectiveFrom)
		})
	}
	return t
}

// Lookup: on gününde geçerli fiyat. Saat bileşeni yok sayılır.
func (t *Table) Lookup(wasteTypeID uint, on time.Time) (Rate, error) {
	wt, ok := t.types[wasteTypeID]
	if !ok {
		return Rate{}, ErrWasteTypeNotFound
	}
	return effective(t.history[wasteTypeID], wt.CostPerKg, on), nil
}

func (t *Table) CostPerKg(wasteTypeID uint, on time.Time) (decimal.Decimal, error) {
	r, err := t.Lookup(wasteTypeID, on)
	if err != nil {
		return decimal.Zero, err
	}
	return r.CostPerKg, nil
}

// effective: azalan sıralı geçmişte ilk uygun kayıt.
func effective(sorted []models.WasteTypeCost, fallback decimal.Decimal, on time.Time) Rate {
	target := dayKey(on)
	for _, c := range sorted {
		if dayKey(c.EffectiveFrom) <= target {
			from := c.EffectiveFrom
			return Rate{CostPerKg: c.CostPerKg, EffectiveFrom: &from}
		}
	}
	return Rate{CostPerKg: fallback}
}

// Cost = ağırlık * fiyat, kuruş hassasiyetinde. Negatif sonuç geçerlidir.
func Cost(weightKg float64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(weightKg).Mul(rate).Round(2)
}

// dayKey zamanın kendi saat dilimindeki takvim gününü YYYYMMDD sayısına çevirir.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Day t'nin kendi saat dilimindeki gün başlangıcı.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
