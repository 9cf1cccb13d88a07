// Package analytics verimlilik KPI'ları, risk matrisi, zaman/vardiya dağılımı ve
// tarihli fiyatlarla maliyet analizini üretir.
package analytics

import (
	"medwaste-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Hastane maliyet sıralaması ve hastane zaman istatistikleri kapsamdan bağımsızdır.
var GlobalSections = []string{"hospital_cost_ranking", "hospital_time_stats"}

// RateStrategy: tüm maliyet alanlarında toplama gününde geçerli fiyat kullanılır.
const RateStrategy = "date_effective"

type ScopeInfo struct {
	HospitalID     *uint    `json:"hospital_id"`
	GlobalSections []string `json:"global_sections"`
}

type KPIs struct {
	Source            string   `json:"source"` // placeholder | coefficients
	WastePerBed       *float64 `json:"waste_per_bed"`
	WastePerSurgery   *float64 `json:"waste_per_surgery"`
	WastePerProtocol  *float64 `json:"waste_per_protocol"`
	MedicalWasteRatio float64  `json:"medical_waste_ratio"`
	RecycleRatio      float64  `json:"recycle_ratio"`
	CostEfficiency    float64  `json:"cost_efficiency"`
}

type CategoryRank struct {
	WasteTypeID uint    `json:"waste_type_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Percentage  float64 `json:"percentage"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type RiskCategory struct {
	Category models.IssueCategory `json:"category"`
	Count    int                  `json:"count"`
	Severity Severity             `json:"severity"`
}

type RiskMatrix struct {
	OpenIssues     int            `json:"open_issues"`
	ResolvedIssues int            `json:"resolved_issues"`
	ByCategory     []RiskCategory `json:"by_category"`
	Level          Severity       `json:"level"`
	Score          int            `json:"score"`
}

type TypeCost struct {
	WasteTypeID uint            `json:"waste_type_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Weight      float64         `json:"weight"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

type CostAnalysis struct {
	RateStrategy string          `json:"rate_strategy"`
	ByType       []TypeCost      `json:"by_type"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type HospitalCost struct {
	HospitalID uint            `json:"hospital_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Weight     float64         `json:"weight"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

type HospitalCostRanking struct {
	Ranking []HospitalCost `json:"ranking"` // artan maliyet
	Best    []HospitalCost `json:"best"`
	Worst   []HospitalCost `json:"worst"` // en yüksek önce
}

type HourBucket struct {
	Hour   int     `json:"hour"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

type ShiftBucket struct {
	Name      string  `json:"name"`
	StartHour int     `json:"start_hour"`
	EndHour   int     `json:"end_hour"`
	Count     int     `json:"count"`
	Weight    float64 `json:"weight"`
}

type TimeAnalysis struct {
	Hourly               []HourBucket  `json:"hourly"`
	Shifts               []ShiftBucket `json:"shifts"`
	AvgCollectionMinutes float64       `json:"avg_collection_minutes"`
	AvgIsEstimate        bool          `json:"avg_is_estimate"`
}

type HospitalTimeStat struct {
	HospitalID           uint    `json:"hospital_id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	AvgCollectionMinutes float64 `json:"avg_collection_minutes"`
	AvgIsEstimate        bool    `json:"avg_is_estimate"`
	TotalWeight          float64 `json:"total_weight"`
	CollectionCount      int     `json:"collection_count"`
	OpenIssueCount       int     `json:"open_issue_count"`
}

type Report struct {
	Scope               ScopeInfo           `json:"scope"`
	TotalWeight         float64             `json:"total_weight"`
	CollectionCount     int                 `json:"collection_count"`
	KPIs                KPIs                `json:"kpis"`
	CategoryRanking     []CategoryRank      `json:"category_ranking"`
	Risk                RiskMatrix          `json:"risk"`
	Cost                CostAnalysis        `json:"cost"`
	HospitalCostRanking HospitalCostRanking `json:"hospital_cost_ranking"`
	Time                TimeAnalysis        `json:"time"`
	HospitalTimeStats   []HospitalTimeStat  `json:"hospital_time_stats"`
}

// Input: rapor için okunmuş satırlar. Collections kapsamdaki pencere, Global tüm
// hastanelerin penceresidir (kapsam yoksa ikisi aynı).
type Input struct {
	Scope        *uint
	Collections  []models.WasteCollection
	Global       []models.WasteCollection
	Hospitals    []models.Hospital
	WasteTypes   []models.WasteType
	Issues       []models.Issue
	Categories   []models.LocationCategory
	Coefficients []models.OperationalCoefficient
}
