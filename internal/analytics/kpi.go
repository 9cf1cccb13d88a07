package analytics

import (
	"math"

	"medwaste-backend/internal/config"
	"medwaste-backend/internal/models"
)

// Intensity KPI'larının payda kaynağı için kullanılan kategori kodları.
const (
	CategoryBedDays   = "bed_days"
	CategorySurgeries = "surgery"
	CategoryProtocols = "protocol"
)

// IntensityInput: yoğunluk KPI'larını hesaplamak için gereken veri.
type IntensityInput struct {
	TotalWeight  float64
	HospitalIDs  []uint          // kapsamdaki hastaneler
	Periods      map[string]bool // pencerenin kapsadığı aylar (YYYY-MM)
	Categories   []models.LocationCategory
	Coefficients []models.OperationalCoefficient
}

type Intensity struct {
	WastePerBed      *float64
	WastePerSurgery  *float64
	WastePerProtocol *float64
}

// KPICalculator "atık / yatak" gibi yoğunluk KPI'larını hesaplar. Payda
// bulunamazsa ilgili alan nil döner.
type KPICalculator interface {
	Name() string
	Intensity(in IntensityInput) Intensity
}

// PlaceholderKPI: HBYS verisi bağlanana kadar hastane başına varsayılan birim
// sayısıyla bölen geçici hesap.
type PlaceholderKPI struct {
	AssumedBeds      float64
	AssumedSurgeries float64
	AssumedProtocols float64
}

func (PlaceholderKPI) Name() string { return "placeholder" }

func (p PlaceholderKPI) Intensity(in IntensityInput) Intensity {
	n := float64(len(in.HospitalIDs))
	return Intensity{
		WastePerBed:      ratio(in.TotalWeight, n*p.AssumedBeds),
		WastePerSurgery:  ratio(in.TotalWeight, n*p.AssumedSurgeries),
		WastePerProtocol: ratio(in.TotalWeight, n*p.AssumedProtocols),
	}
}

// CoefficientKPI paydayı kapsamdaki hastanelerin, pencerenin aylarına ait
// operasyonel katsayılarından toplar.
type CoefficientKPI struct {
	BedCategory      string
	SurgeryCategory  string
	ProtocolCategory string
}

func NewCoefficientKPI() CoefficientKPI {
	return CoefficientKPI{
		BedCategory:      CategoryBedDays,
		SurgeryCategory:  CategorySurgeries,
		ProtocolCategory: CategoryProtocols,
	}
}

func (CoefficientKPI) Name() string { return "coefficients" }

func (k CoefficientKPI) Intensity(in IntensityInput) Intensity {
	codes := make(map[uint]string, len(in.Categories))
	for _, cat := range in.Categories {
		codes[cat.ID] = cat.Code
	}
	hospitals := make(map[uint]bool, len(in.HospitalIDs))
	for _, id := range in.HospitalIDs {
		hospitals[id] = true
	}

	totals := map[string]float64{}
	for _, co := range in.Coefficients {
		if !hospitals[co.HospitalID] || !in.Periods[co.Period] {
			continue
		}
		totals[codes[co.CategoryID]] += co.Value
	}
	return Intensity{
		WastePerBed:      ratio(in.TotalWeight, totals[k.BedCategory]),
		WastePerSurgery:  ratio(in.TotalWeight, totals[k.SurgeryCategory]),
		WastePerProtocol: ratio(in.TotalWeight, totals[k.ProtocolCategory]),
	}
}

func ratio(num, den float64) *float64 {
	if den <= 0 {
		return nil
	}
	v := round(num/den, 3)
	return &v
}

// share: tür ağırlığının toplama oranı; toplam 0 ise 0.
func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total
}

// costEfficiency: geri dönüşüm oranına dayalı kaba gösterge, [0.5, 1] aralığında.
func costEfficiency(recycleRatio, totalWeight float64) float64 {
	if totalWeight <= 0 {
		return 0.5
	}
	return math.Min(recycleRatio+0.5, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// NewKPICalculator KPI_MODE ayarına göre hesaplayıcı seçer.
func NewKPICalculator(cfg config.KPIConfig) KPICalculator {
	if cfg.Mode == "coefficients" {
		return NewCoefficientKPI()
	}
	return PlaceholderKPI{
		AssumedBeds:      cfg.AssumedBeds,
		AssumedSurgeries: cfg.AssumedSurgeries,
		AssumedProtocols: cfg.AssumedProtocols,
	}
}
