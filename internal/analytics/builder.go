package analytics

import (
	"sort"
	"time"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/pricing"
)

type Builder struct {
	KPI      KPICalculator
	Location *time.Location
}

// Build saf indirgeme: aynı girdi ve fiyat tablosu için aynı raporu üretir.
func (b Builder) Build(in Input, prices *pricing.Table) Report {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	c := coster{prices: prices, loc: loc}

	r := Report{
		Scope:           ScopeInfo{HospitalID: in.Scope, GlobalSections: GlobalSections},
		CollectionCount: len(in.Collections),
		CategoryRanking: categoryRanking(in.Collections, in.WasteTypes),
	}
	for _, row := range r.CategoryRanking {
		r.TotalWeight += row.Weight
	}

	var medical, recycle float64
	for _, row := range r.CategoryRanking {
		switch row.Code {
		case models.WasteCodeMedical:
			medical += row.Weight
		case models.WasteCodeRecycle:
			recycle += row.Weight
		}
	}
	recycleRatio := share(recycle, r.TotalWeight)
	intensity := b.KPI.Intensity(IntensityInput{
		TotalWeight:  r.TotalWeight,
		HospitalIDs:  scopedHospitalIDs(in.Hospitals, in.Scope),
		Periods:      periods(in.Collections, loc),
		Categories:   in.Categories,
		Coefficients: in.Coefficients,
	})
	r.KPIs = KPIs{
		Source:            b.KPI.Name(),
		WastePerBed:       intensity.WastePerBed,
		WastePerSurgery:   intensity.WastePerSurgery,
		WastePerProtocol:  intensity.WastePerProtocol,
		MedicalWasteRatio: round(share(medical, r.TotalWeight), 4),
		RecycleRatio:      round(recycleRatio, 4),
		CostEfficiency:    round(costEfficiency(recycleRatio, r.TotalWeight), 4),
	}

	r.Risk = riskMatrix(in.Issues, in.Scope)
	r.Cost = costAnalysis(in.Collections, in.WasteTypes, c)
	r.HospitalCostRanking = hospitalCostRanking(in.Global, in.Hospitals, c)

	hours := hourly(in.Collections, loc)
	avg, estimated := avgCollectionMinutes(in.Collections)
	r.Time = TimeAnalysis{
		Hourly:               hours,
		Shifts:               shifts(hours),
		AvgCollectionMinutes: avg,
		AvgIsEstimate:        estimated,
	}
	r.HospitalTimeStats = hospitalTimeStats(in.Global, in.Issues, in.Hospitals)
	return r
}

// categoryRanking: her atık türü için ağırlık ve yüzde, ağırlığa göre azalan.
func categoryRanking(collections []models.WasteCollection, types []models.WasteType) []CategoryRank {
	rows := make([]CategoryRank, 0, len(types))
	index := make(map[uint]int, len(types))
	for _, wt := range types {
		index[wt.ID] = len(rows)
		rows = append(rows, CategoryRank{WasteTypeID: wt.ID, Code: wt.Code, Name: wt.Name, Color: wt.Color})
	}
	for _, c := range collections {
		i, ok := index[c.WasteTypeID]
		if !ok {
			i = len(rows)
			index[c.WasteTypeID] = i
			rows = append(rows, CategoryRank{WasteTypeID: c.WasteTypeID, Code: c.WasteType.Code, Name: c.WasteType.Name, Color: c.WasteType.Color})
		}
		rows[i].Weight += c.Weight()
	}

	var total float64
	for _, row := range rows {
		total += row.Weight
	}
	for i := range rows {
		rows[i].Percentage = round(share(rows[i].Weight, total)*100, 2)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Weight > rows[j].Weight })
	return rows
}

func scopedHospitalIDs(hospitals []models.Hospital, scope *uint) []uint {
	if scope != nil {
		return []uint{*scope}
	}
	ids := make([]uint, 0, len(hospitals))
	for _, h := range hospitals {
		ids = append(ids, h.ID)
	}
	return ids
}

func periods(collections []models.WasteCollection, loc *time.Location) map[string]bool {
	out := make(map[string]bool)
	for _, c := range collections {
		out[c.CollectedAt.In(loc).Format("2006-01")] = true
	}
	return out
}
