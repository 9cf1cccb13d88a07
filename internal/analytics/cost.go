package analytics

import (
	"sort"
	"time"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/pricing"

	"github.com/shopspring/decimal"
)

const rankingPodium = 3

// coster her toplamanın maliyetini toplama gününde geçerli fiyatla hesaplar.
type coster struct {
	prices *pricing.Table
	loc    *time.Location
}

func (c coster) of(wc models.WasteCollection) decimal.Decimal {
	w := wc.Weight()
	if w == 0 {
		return decimal.Zero
	}
	rate, err := c.prices.CostPerKg(wc.WasteTypeID, wc.CollectedAt.In(c.loc))
	if err != nil {
		// fiyat tablosunda olmayan tür: satırla gelen sabit fiyat
		rate = wc.WasteType.CostPerKg
	}
	return pricing.Cost(w, rate)
}

func costAnalysis(collections []models.WasteCollection, types []models.WasteType, c coster) CostAnalysis {
	out := CostAnalysis{RateStrategy: RateStrategy, ByType: make([]TypeCost, 0, len(types)), TotalCost: decimal.Zero}
	index := make(map[uint]int, len(types))
	for _, wt := range types {
		index[wt.ID] = len(out.ByType)
		out.ByType = append(out.ByType, TypeCost{WasteTypeID: wt.ID, Code: wt.Code, Name: wt.Name, TotalCost: decimal.Zero})
	}
	for _, wc := range collections {
		i, ok := index[wc.WasteTypeID]
		if !ok {
			i = len(out.ByType)
			index[wc.WasteTypeID] = i
			out.ByType = append(out.ByType, TypeCost{
				WasteTypeID: wc.WasteTypeID,
				Code:        wc.WasteType.Code,
				Name:        wc.WasteType.Name,
				TotalCost:   decimal.Zero,
			})
		}
		cost := c.of(wc)
		out.ByType[i].Weight += wc.Weight()
		out.ByType[i].TotalCost = out.ByType[i].TotalCost.Add(cost)
		out.TotalCost = out.TotalCost.Add(cost)
	}
	return out
}

// hospitalCostRanking tüm aktif hastaneleri artan maliyete göre sıralar.
// Best en düşük üç, Worst en yüksek üç (en yüksek önce).
func hospitalCostRanking(collections []models.WasteCollection, hospitals []models.Hospital, c coster) HospitalCostRanking {
	rows := make([]HospitalCost, 0, len(hospitals))
	index := make(map[uint]int, len(hospitals))
	for _, h := range hospitals {
		index[h.ID] = len(rows)
		rows = append(rows, HospitalCost{HospitalID: h.ID, Code: h.Code, Name: h.Name, Color: h.Color, TotalCost: decimal.Zero})
	}
	for _, wc := range collections {
		i, ok := index[wc.HospitalID]
		if !ok {
			continue
		}
		rows[i].Weight += wc.Weight()
		rows[i].TotalCost = rows[i].TotalCost.Add(c.of(wc))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if cmp := rows[i].TotalCost.Cmp(rows[j].TotalCost); cmp != 0 {
			return cmp < 0
		}
		return rows[i].Name < rows[j].Name
	})

	n := rankingPodium
	if len(rows) < n {
		n = len(rows)
	}
	out := HospitalCostRanking{
		Ranking: rows,
		Best:    append([]HospitalCost(nil), rows[:n]...),
		Worst:   make([]HospitalCost, 0, n),
	}
	if out.Best == nil {
		out.Best = []HospitalCost{}
	}
	for i := len(rows) - 1; i >= len(rows)-n; i-- {
		out.Worst = append(out.Worst, rows[i])
	}
	return out
}
