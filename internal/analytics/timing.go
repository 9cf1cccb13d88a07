package analytics

import (
	"time"

	"medwaste-backend/internal/models"
)

// DefaultCollectionMinutes: tartımı olan toplama yokken raporlanan varsayılan süre.
// Ölçüm değildir; AvgIsEstimate ile işaretlenir.
const DefaultCollectionMinutes = 15.0

type Shift struct {
	Name      string
	StartHour int
	EndHour   int // dahil
}

// Shifts günün 24 saatini ayrık ve eksiksiz böler.
var Shifts = []Shift{
	{Name: "morning", StartHour: 8, EndHour: 15},
	{Name: "evening", StartHour: 16, EndHour: 23},
	{Name: "night", StartHour: 0, EndHour: 7},
}

func (s Shift) Contains(hour int) bool {
	return hour >= s.StartHour && hour <= s.EndHour
}

func hourly(collections []models.WasteCollection, loc *time.Location) []HourBucket {
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, c := range collections {
		h := c.CollectedAt.In(loc).Hour()
		buckets[h].Count++
		buckets[h].Weight += c.Weight()
	}
	return buckets
}

func shifts(hours []HourBucket) []ShiftBucket {
	out := make([]ShiftBucket, 0, len(Shifts))
	for _, s := range Shifts {
		b := ShiftBucket{Name: s.Name, StartHour: s.StartHour, EndHour: s.EndHour}
		for _, h := range hours {
			if s.Contains(h.Hour) {
				b.Count += h.Count
				b.Weight += h.Weight
			}
		}
		out = append(out, b)
	}
	return out
}

// avgCollectionMinutes: toplama ile tartım arasındaki ortalama süre. Tartım
// zamanı olan kayıt yoksa varsayılan değer ve true döner.
func avgCollectionMinutes(collections []models.WasteCollection) (float64, bool) {
	var total float64
	n := 0
	for _, c := range collections {
		if c.WeighedAt == nil {
			continue
		}
		total += c.WeighedAt.Sub(c.CollectedAt).Minutes()
		n++
	}
	if n == 0 {
		return DefaultCollectionMinutes, true
	}
	return round(total/float64(n), 1), false
}

func hospitalTimeStats(collections []models.WasteCollection, issues []models.Issue, hospitals []models.Hospital) []HospitalTimeStat {
	byHospital := make(map[uint][]models.WasteCollection, len(hospitals))
	for _, c := range collections {
		byHospital[c.HospitalID] = append(byHospital[c.HospitalID], c)
	}
	openIssues := make(map[uint]int, len(hospitals))
	for _, is := range issues {
		if !is.IsResolved {
			openIssues[is.HospitalID]++
		}
	}

	out := make([]HospitalTimeStat, 0, len(hospitals))
	for _, h := range hospitals {
		rows := byHospital[h.ID]
		avg, estimated := avgCollectionMinutes(rows)
		st := HospitalTimeStat{
			HospitalID:           h.ID,
			Code:                 h.Code,
			Name:                 h.Name,
			AvgCollectionMinutes: avg,
			AvgIsEstimate:        estimated,
			CollectionCount:      len(rows),
			OpenIssueCount:       openIssues[h.ID],
		}
		for _, c := range rows {
			st.TotalWeight += c.Weight()
		}
		out = append(out, st)
	}
	return out
}
