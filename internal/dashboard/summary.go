// Package dashboard anlık operasyon özetini (toplamlar, tür ve hastane kırılımları,
// son hareketler) hesaplar.
package dashboard

import (
	"sort"
	"time"

	"medwaste-backend/internal/models"
)

const RecentActivityLimit = 10

// Hastane kırılımı ve hastane istatistikleri çağıranın kapsamından bağımsız olarak
// tüm hastaneler üzerinden hesaplanır; diğer alanlar kapsama göredir.
var GlobalSections = []string{"by_hospital", "hospital_stats"}

type Input struct {
	Scope      *uint
	Recent     []models.WasteCollection // kapsamdaki son N toplama, en yeni önce
	Global     []models.WasteCollection // tüm hastanelerdeki son N toplama
	Hospitals  []models.Hospital
	WasteTypes []models.WasteType
	OpenIssues []models.Issue // tüm hastanelerin çözülmemiş bildirimleri
}

type TypeBreakdown struct {
	WasteTypeID uint    `json:"waste_type_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
}

type HospitalBreakdown struct {
	HospitalID uint    `json:"hospital_id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Weight     float64 `json:"weight"`
}

type Activity struct {
	ID            uint                    `json:"id"`
	TagCode       string                  `json:"tag_code"`
	HospitalID    uint                    `json:"hospital_id"`
	HospitalName  string                  `json:"hospital_name"`
	WasteTypeCode string                  `json:"waste_type_code"`
	Status        models.CollectionStatus `json:"status"`
	WeightKg      *float64                `json:"weight_kg"`
	CollectedAt   time.Time               `json:"collected_at"`
	WeighedAt     *time.Time              `json:"weighed_at"`
}

type HospitalStat struct {
	HospitalID       uint       `json:"hospital_id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Color            string     `json:"color"`
	TotalWeight      float64    `json:"total_weight"`
	PendingCount     int        `json:"pending_count"`
	CompletedCount   int        `json:"completed_count"`
	OpenIssueCount   int        `json:"open_issue_count"`
	LastCollectionAt *time.Time `json:"last_collection_at"`
}

type ScopeInfo struct {
	HospitalID     *uint    `json:"hospital_id"`
	GlobalSections []string `json:"global_sections"`
}

type Summary struct {
	Scope          ScopeInfo           `json:"scope"`
	TotalWeight    float64             `json:"total_weight"`
	PendingCount   int                 `json:"pending_count"`
	CompletedCount int                 `json:"completed_count"`
	OpenIssueCount int                 `json:"open_issue_count"`
	ByType         []TypeBreakdown     `json:"by_type"`
	ByHospital     []HospitalBreakdown `json:"by_hospital"`
	RecentActivity []Activity          `json:"recent_activity"`
	HospitalStats  []HospitalStat      `json:"hospital_stats"`
}

// Summarize saf bir indirgemedir: aynı girdiye aynı çıktı, saat okunmaz.
func Summarize(in Input) Summary {
	out := Summary{
		Scope:          ScopeInfo{HospitalID: in.Scope, GlobalSections: GlobalSections},
		ByType:         byType(in.Recent, in.WasteTypes),
		ByHospital:     make([]HospitalBreakdown, 0, len(in.Hospitals)),
		RecentActivity: make([]Activity, 0, RecentActivityLimit),
		HospitalStats:  make([]HospitalStat, 0, len(in.Hospitals)),
	}

	for _, t := range out.ByType {
		out.TotalWeight += t.Weight
	}
	for _, c := range in.Recent {
		switch c.Status {
		case models.CollectionPending:
			out.PendingCount++
		case models.CollectionCompleted:
			out.CompletedCount++
		}
	}
	for _, is := range in.OpenIssues {
		if in.Scope == nil || is.HospitalID == *in.Scope {
			out.OpenIssueCount++
		}
	}

	hospitalNames := make(map[uint]string, len(in.Hospitals))
	for _, h := range in.Hospitals {
		hospitalNames[h.ID] = h.Name
	}
	typeCodes := make(map[uint]string, len(in.WasteTypes))
	for _, wt := range in.WasteTypes {
		typeCodes[wt.ID] = wt.Code
	}
	for i, c := range in.Recent {
		if i == RecentActivityLimit {
			break
		}
		a := Activity{
			ID:            c.ID,
			TagCode:       c.TagCode,
			HospitalID:    c.HospitalID,
			HospitalName:  hospitalNames[c.HospitalID],
			WasteTypeCode: typeCodes[c.WasteTypeID],
			Status:        c.Status,
			WeightKg:      c.WeightKg,
			CollectedAt:   c.CollectedAt,
			WeighedAt:     c.WeighedAt,
		}
		if a.HospitalName == "" {
			a.HospitalName = c.Hospital.Name
		}
		if a.WasteTypeCode == "" {
			a.WasteTypeCode = c.WasteType.Code
		}
		out.RecentActivity = append(out.RecentActivity, a)
	}

	stats := hospitalStats(in.Global, in.OpenIssues, in.Hospitals)
	for _, st := range stats {
		out.ByHospital = append(out.ByHospital, HospitalBreakdown{
			HospitalID: st.HospitalID,
			Code:       st.Code,
			Name:       st.Name,
			Color:      st.Color,
			Weight:     st.TotalWeight,
		})
	}
	out.HospitalStats = stats
	return out
}

// byType: her atık türü için bir satır (toplaması olmayanlar 0). Tür listesinde
// bulunmayan bir türe ait toplama varsa sona eklenir.
func byType(collections []models.WasteCollection, types []models.WasteType) []TypeBreakdown {
	rows := make([]TypeBreakdown, 0, len(types))
	index := make(map[uint]int, len(types))
	for _, wt := range types {
		index[wt.ID] = len(rows)
		rows = append(rows, TypeBreakdown{WasteTypeID: wt.ID, Code: wt.Code, Name: wt.Name, Color: wt.Color})
	}
	for _, c := range collections {
		i, ok := index[c.WasteTypeID]
		if !ok {
			i = len(rows)
			index[c.WasteTypeID] = i
			rows = append(rows, TypeBreakdown{
				WasteTypeID: c.WasteTypeID,
				Code:        c.WasteType.Code,
				Name:        c.WasteType.Name,
				Color:       c.WasteType.Color,
			})
		}
		rows[i].Weight += c.Weight()
	}
	return rows
}

func hospitalStats(collections []models.WasteCollection, openIssues []models.Issue, hospitals []models.Hospital) []HospitalStat {
	stats := make([]HospitalStat, 0, len(hospitals))
	index := make(map[uint]int, len(hospitals))
	for _, h := range hospitals {
		index[h.ID] = len(stats)
		stats = append(stats, HospitalStat{HospitalID: h.ID, Code: h.Code, Name: h.Name, Color: h.Color})
	}

	for _, c := range collections {
		i, ok := index[c.HospitalID]
		if !ok {
			// pasif hastane
			continue
		}
		st := &stats[i]
		st.TotalWeight += c.Weight()
		switch c.Status {
		case models.CollectionPending:
			st.PendingCount++
		case models.CollectionCompleted:
			st.CompletedCount++
		}
		if st.LastCollectionAt == nil || c.CollectedAt.After(*st.LastCollectionAt) {
			at := c.CollectedAt
			st.LastCollectionAt = &at
		}
	}
	for _, is := range openIssues {
		if i, ok := index[is.HospitalID]; ok {
			stats[i].OpenIssueCount++
		}
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}
