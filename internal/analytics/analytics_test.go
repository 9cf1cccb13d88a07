package analytics

import (
	"context"
	"testing"
	"time"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/pricing"
	"medwaste-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kg(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

var (
	hospitals = []models.Hospital{
		{ID: 1, Code: "A", Name: "Ankara"},
		{ID: 2, Code: "B", Name: "Bursa"},
		{ID: 3, Code: "C", Name: "Çorum"},
		{ID: 4, Code: "D", Name: "Denizli"},
	}
	medical = models.WasteType{ID: 10, Code: models.WasteCodeMedical, Name: "Tıbbi", CostPerKg: decimal.NewFromInt(99)}
	recycle = models.WasteType{ID: 11, Code: models.WasteCodeRecycle, Name: "Geri Dönüşüm", CostPerKg: decimal.NewFromInt(-2)}
	types   = []models.WasteType{medical, recycle}
)

func completed(id, hospitalID, typeID uint, at time.Time, weight float64, minutes int) models.WasteCollection {
	w := at.Add(time.Duration(minutes) * time.Minute)
	return models.WasteCollection{
		ID: id, HospitalID: hospitalID, WasteTypeID: typeID, CollectedAt: at,
		WeighedAt: &w, Status: models.CollectionCompleted, WeightKg: kg(weight),
	}
}

func pending(id, hospitalID, typeID uint, at time.Time) models.WasteCollection {
	return models.WasteCollection{ID: id, HospitalID: hospitalID, WasteTypeID: typeID, CollectedAt: at, Status: models.CollectionPending}
}

func medicalTable(costs ...models.WasteTypeCost) *pricing.Table {
	return pricing.NewTable(types, costs)
}

func builder() Builder {
	return Builder{KPI: PlaceholderKPI{AssumedBeds: 100, AssumedSurgeries: 50, AssumedProtocols: 200}, Location: time.UTC}
}

func TestCostUsesRateEffectiveOnCollectionDate(t *testing.T) {
	costs := []models.WasteTypeCost{
		{WasteTypeID: 10, EffectiveFrom: day(2025, 1, 1), CostPerKg: decimal.RequireFromString("15.00")},
	}
	in := Input{
		Hospitals:   hospitals[:3],
		WasteTypes:  types,
		Collections: []models.WasteCollection{completed(1, 1, 10, day(2025, 2, 1).Add(10*time.Hour), 10, 20)},
	}
	in.Global = in.Collections

	r := builder().Build(in, medicalTable(costs...))
	assert.Equal(t, "150", r.Cost.TotalCost.String())

	costs = append(costs, models.WasteTypeCost{WasteTypeID: 10, EffectiveFrom: day(2025, 3, 1), CostPerKg: decimal.RequireFromString("20.00")})
	in.Collections = []models.WasteCollection{
		completed(2, 1, 10, day(2025, 2, 15).Add(23*time.Hour), 1, 20),
		completed(3, 1, 10, day(2025, 3, 15), 1, 20),
	}
	in.Global = in.Collections

	r = builder().Build(in, medicalTable(costs...))
	assert.Equal(t, "35", r.Cost.TotalCost.String(), "15 + 20")
	assert.Equal(t, RateStrategy, r.Cost.RateStrategy)
}

func TestNegativeCostIsNotClamped(t *testing.T) {
	in := Input{
		Hospitals:   hospitals[:1],
		WasteTypes:  types,
		Collections: []models.WasteCollection{completed(1, 1, 11, day(2025, 5, 1), 50, 5)},
	}
	in.Global = in.Collections

	r := builder().Build(in, medicalTable())
	assert.Equal(t, "-100", r.Cost.TotalCost.String())
	assert.Equal(t, "-100", r.HospitalCostRanking.Ranking[0].TotalCost.String())
}

func TestCategoryRankingPercentages(t *testing.T) {
	in := Input{
		Hospitals:  hospitals,
		WasteTypes: types,
		Collections: []models.WasteCollection{
			completed(1, 1, 10, day(2025, 5, 1), 1, 5),
			completed(2, 1, 11, day(2025, 5, 1), 2, 5),
			pending(3, 1, 10, day(2025, 5, 2)),
		},
	}
	r := builder().Build(in, medicalTable())
	require.Len(t, r.CategoryRanking, 2)
	assert.Equal(t, models.WasteCodeRecycle, r.CategoryRanking[0].Code)
	assert.Equal(t, 66.67, r.CategoryRanking[0].Percentage)
	assert.Equal(t, 33.33, r.CategoryRanking[1].Percentage)
	assert.InDelta(t, 100, r.CategoryRanking[0].Percentage+r.CategoryRanking[1].Percentage, 0.02)

	assert.Equal(t, 0.3333, r.KPIs.MedicalWasteRatio)
	assert.Equal(t, 0.6667, r.KPIs.RecycleRatio)
	assert.Equal(t, 1.0, r.KPIs.CostEfficiency)

	empty := builder().Build(Input{Hospitals: hospitals, WasteTypes: types}, medicalTable())
	for _, row := range empty.CategoryRanking {
		assert.Zero(t, row.Percentage)
	}
	assert.Equal(t, 0.5, empty.KPIs.CostEfficiency)
	assert.Zero(t, empty.KPIs.MedicalWasteRatio)
}

func TestPlaceholderKPIDividesByHospitalsInScope(t *testing.T) {
	in := Input{
		Hospitals:   hospitals,
		WasteTypes:  types,
		Collections: []models.WasteCollection{completed(1, 1, 10, day(2025, 5, 1), 800, 5)},
	}
	r := builder().Build(in, medicalTable())
	assert.Equal(t, "placeholder", r.KPIs.Source)
	require.NotNil(t, r.KPIs.WastePerBed)
	assert.Equal(t, 2.0, *r.KPIs.WastePerBed)
	assert.Equal(t, 4.0, *r.KPIs.WastePerSurgery)
	assert.Equal(t, 1.0, *r.KPIs.WastePerProtocol)

	scope := uint(1)
	in.Scope = &scope
	r = builder().Build(in, medicalTable())
	assert.Equal(t, 8.0, *r.KPIs.WastePerBed)
}

func TestCoefficientKPI(t *testing.T) {
	categories := []models.LocationCategory{
		{ID: 1, Code: CategoryBedDays},
		{ID: 2, Code: CategorySurgeries},
	}
	coefficients := []models.OperationalCoefficient{
		{HospitalID: 1, CategoryID: 1, Period: "2025-05", Value: 300},
		{HospitalID: 1, CategoryID: 1, Period: "2025-04", Value: 1000}, // pencere dışında
		{HospitalID: 2, CategoryID: 1, Period: "2025-05", Value: 100},
		{HospitalID: 1, CategoryID: 2, Period: "2025-05", Value: 40},
	}
	scope := uint(1)
	in := Input{
		Scope:        &scope,
		Hospitals:    hospitals,
		WasteTypes:   types,
		Categories:   categories,
		Coefficients: coefficients,
		Collections:  []models.WasteCollection{completed(1, 1, 10, day(2025, 5, 10), 600, 5)},
	}
	b := Builder{KPI: NewCoefficientKPI(), Location: time.UTC}
	r := b.Build(in, medicalTable())

	assert.Equal(t, "coefficients", r.KPIs.Source)
	require.NotNil(t, r.KPIs.WastePerBed)
	assert.Equal(t, 2.0, *r.KPIs.WastePerBed)
	assert.Equal(t, 15.0, *r.KPIs.WastePerSurgery)
	assert.Nil(t, r.KPIs.WastePerProtocol, "katsayı yoksa KPI hesaplanmaz")
}

func TestRiskMatrix(t *testing.T) {
	var issues []models.Issue
	for i := 0; i < 9; i++ {
		issues = append(issues, models.Issue{HospitalID: 1, Category: models.IssueSegregation})
	}
	issues = append(issues, models.Issue{HospitalID: 1, Category: models.IssueTechnical, IsResolved: true})

	m := riskMatrix(issues, nil)
	assert.Equal(t, 9, m.OpenIssues)
	assert.Equal(t, 1, m.ResolvedIssues)
	assert.Equal(t, 90, m.Score)
	assert.Equal(t, SeverityMedium, m.Level)
	require.Len(t, m.ByCategory, len(models.IssueCategories))
	assert.Equal(t, RiskCategory{Category: models.IssueSegregation, Count: 9, Severity: SeverityHigh}, m.ByCategory[0])
	assert.Equal(t, SeverityLow, m.ByCategory[2].Severity)

	for i := 0; i < 6; i++ {
		issues = append(issues, models.Issue{HospitalID: 2, Category: models.IssueOther})
	}
	m = riskMatrix(issues, nil)
	assert.Equal(t, 100, m.Score)
	assert.Equal(t, SeverityHigh, m.Level)

	scope := uint(2)
	m = riskMatrix(issues, &scope)
	assert.Equal(t, 6, m.OpenIssues)
	assert.Equal(t, 60, m.Score)

	prev := 0
	for n := 0; n < 30; n++ {
		s := riskScore(n)
		assert.GreaterOrEqual(t, s, prev)
		assert.LessOrEqual(t, s, 100)
		prev = s
	}

	assert.Equal(t, SeverityMedium, categorySeverity(3))
	assert.Equal(t, SeverityLow, categorySeverity(2))
}

func TestShiftsPartitionTheDay(t *testing.T) {
	seen := map[int]int{}
	for _, s := range Shifts {
		for h := 0; h < 24; h++ {
			if s.Contains(h) {
				seen[h]++
			}
		}
	}
	require.Len(t, seen, 24)
	for h, n := range seen {
		assert.Equal(t, 1, n, "saat %d", h)
	}
}

func TestTimeAnalysis(t *testing.T) {
	ist := time.FixedZone("TRT", 3*3600)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	collections := []models.WasteCollection{
		completed(1, 1, 10, base.Add(6*time.Hour), 2, 10),  // 09 yerel
		completed(2, 1, 10, base.Add(14*time.Hour), 3, 30), // 17 yerel
		completed(3, 1, 10, base.Add(22*time.Hour), 5, 20), // 01 yerel
		pending(4, 1, 10, base.Add(6*time.Hour)),
	}
	b := Builder{KPI: PlaceholderKPI{}, Location: ist}
	r := b.Build(Input{Hospitals: hospitals, WasteTypes: types, Collections: collections, Global: collections}, medicalTable())

	require.Len(t, r.Time.Hourly, 24)
	assert.Equal(t, 2, r.Time.Hourly[9].Count)
	assert.Equal(t, 2.0, r.Time.Hourly[9].Weight)
	assert.Equal(t, 1, r.Time.Hourly[1].Count)

	var hourly, shifted float64
	for _, h := range r.Time.Hourly {
		hourly += h.Weight
	}
	for _, s := range r.Time.Shifts {
		shifted += s.Weight
	}
	assert.Equal(t, hourly, shifted)
	assert.Equal(t, "morning", r.Time.Shifts[0].Name)
	assert.Equal(t, 2, r.Time.Shifts[0].Count)

	assert.Equal(t, 20.0, r.Time.AvgCollectionMinutes)
	assert.False(t, r.Time.AvgIsEstimate)
}

func TestAvgCollectionTimeFallback(t *testing.T) {
	avg, estimated := avgCollectionMinutes([]models.WasteCollection{pending(1, 1, 10, day(2025, 1, 1))})
	assert.Equal(t, DefaultCollectionMinutes, avg)
	assert.True(t, estimated)
}

func TestHospitalCostRankingIsGlobal(t *testing.T) {
	rate := []models.WasteTypeCost{{WasteTypeID: 10, EffectiveFrom: day(2025, 1, 1), CostPerKg: decimal.NewFromInt(10)}}
	global := []models.WasteCollection{
		completed(1, 1, 10, day(2025, 5, 1), 4, 5),
		completed(2, 2, 10, day(2025, 5, 1), 1, 5),
		completed(3, 3, 10, day(2025, 5, 1), 3, 5),
		completed(4, 4, 10, day(2025, 5, 1), 2, 5),
	}
	scope := uint(2)
	in := Input{Scope: &scope, Hospitals: hospitals, WasteTypes: types, Collections: global[1:2], Global: global}
	r := builder().Build(in, medicalTable(rate...))

	names := func(rows []HospitalCost) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Bursa", "Denizli", "Çorum", "Ankara"}, names(r.HospitalCostRanking.Ranking))
	assert.Equal(t, []string{"Bursa", "Denizli", "Çorum"}, names(r.HospitalCostRanking.Best))
	assert.Equal(t, []string{"Ankara", "Çorum", "Denizli"}, names(r.HospitalCostRanking.Worst))
	assert.Equal(t, "10", r.Cost.TotalCost.String(), "maliyet analizi kapsamlı")

	require.Len(t, r.HospitalTimeStats, 4)
	assert.Equal(t, 1, r.HospitalTimeStats[0].CollectionCount)
	assert.Equal(t, 4.0, r.HospitalTimeStats[0].TotalWeight)
}

type fakeRepo struct {
	collections []models.WasteCollection
	costs       []models.WasteTypeCost
}

func (f *fakeRepo) GetWasteType(_ context.Context, id uint) (*models.WasteType, error) {
	for _, wt := range types {
		if wt.ID == id {
			return &wt, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ListWasteTypes(context.Context) ([]models.WasteType, error) { return types, nil }

func (f *fakeRepo) ListWasteTypeCosts(context.Context, *uint) ([]models.WasteTypeCost, error) {
	return f.costs, nil
}

func (f *fakeRepo) ListCollections(_ context.Context, flt store.CollectionFilter) ([]models.WasteCollection, error) {
	var out []models.WasteCollection
	for _, c := range f.collections {
		if flt.HospitalID == nil || c.HospitalID == *flt.HospitalID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListHospitals(context.Context, bool) ([]models.Hospital, error) {
	return hospitals[:3], nil
}

func (f *fakeRepo) ListIssues(context.Context, store.IssueFilter) ([]models.Issue, error) {
	return []models.Issue{{HospitalID: 1, Category: models.IssueOther}, {HospitalID: 2, Category: models.IssueOther}}, nil
}

func (f *fakeRepo) ListLocationCategories(context.Context) ([]models.LocationCategory, error) {
	return nil, nil
}

func (f *fakeRepo) ListCoefficients(context.Context, store.CoefficientFilter) ([]models.OperationalCoefficient, error) {
	return nil, nil
}

func TestServiceReport(t *testing.T) {
	repo := &fakeRepo{
		collections: []models.WasteCollection{
			completed(2, 2, 10, day(2025, 3, 15), 1, 5),
			completed(1, 1, 10, day(2025, 2, 1), 10, 5),
		},
		costs: []models.WasteTypeCost{
			{WasteTypeID: 10, EffectiveFrom: day(2025, 1, 1), CostPerKg: decimal.NewFromInt(15)},
			{WasteTypeID: 10, EffectiveFrom: day(2025, 3, 1), CostPerKg: decimal.NewFromInt(20)},
		},
	}
	svc := NewService(repo, builder(), 1000)

	scope := uint(1)
	r, err := svc.Report(context.Background(), &scope)
	require.NoError(t, err)
	assert.Equal(t, "150", r.Cost.TotalCost.String())
	assert.Equal(t, 1, r.Risk.OpenIssues)
	require.Len(t, r.HospitalCostRanking.Ranking, 3)
	assert.Equal(t, "Çorum", r.HospitalCostRanking.Ranking[0].Name)
	assert.Equal(t, "Ankara", r.HospitalCostRanking.Worst[0].Name)
}
