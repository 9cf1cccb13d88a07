// Package seed YAML dosyasından referans verisini (hastaneler, atık türleri,
// fiyat geçmişi, lokasyon kategorileri, katsayılar, kullanıcılar) yükler.
// Tüm satırlar doğal anahtarlarıyla upsert edilir; tekrar çalıştırmak güvenlidir.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type File struct {
	Hospitals          []Hospital         `yaml:"hospitals"`
	WasteTypes         []WasteType        `yaml:"waste_types"`
	LocationCategories []LocationCategory `yaml:"location_categories"`
	Coefficients       []Coefficient      `yaml:"coefficients"`
	Users              []User             `yaml:"users"`
}

type Hospital struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
	Active *bool  `yaml:"active"` // varsayılan: true
}

type WasteType struct {
	Code      string          `yaml:"code"`
	Name      string          `yaml:"name"`
	Color     string          `yaml:"color"`
	CostPerKg decimal.Decimal `yaml:"cost_per_kg"`
	Costs     []Cost          `yaml:"costs"`
}

type Cost struct {
	EffectiveFrom string          `yaml:"effective_from"` // YYYY-MM-DD
	CostPerKg     decimal.Decimal `yaml:"cost_per_kg"`
}

type LocationCategory struct {
	Code                 string  `yaml:"code"`
	Name                 string  `yaml:"name"`
	Unit                 string  `yaml:"unit"`
	ReferenceWasteFactor float64 `yaml:"reference_waste_factor"`
}

type Coefficient struct {
	Hospital string  `yaml:"hospital"` // hastane kodu
	Category string  `yaml:"category"` // kategori kodu
	Period   string  `yaml:"period"`
	Value    float64 `yaml:"value"`
}

type User struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Email     string   `yaml:"email"`
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Roles     []string `yaml:"roles"`
	Hospitals []string `yaml:"hospitals"` // ilk kod varsayılan hastanedir
	Inactive  bool     `yaml:"inactive"`
}

// Load dosyayı okur ve doğrular.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed dosyası okunamadı: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed dosyası parse edilemedi: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate kodların boş olmamasını ve çapraz referansların dosya içinde
// çözülebilmesini kontrol eder.
func (f *File) Validate() error {
	var errs []error
	hospitals := make(map[string]bool, len(f.Hospitals))
	for i, h := range f.Hospitals {
		if h.Code == "" || h.Name == "" {
			errs = append(errs, fmt.Errorf("hospitals[%d]: code ve name zorunlu", i))
		}
		hospitals[strings.ToUpper(h.Code)] = true
	}
	for i, wt := range f.WasteTypes {
		if wt.Code == "" || wt.Name == "" {
			errs = append(errs, fmt.Errorf("waste_types[%d]: code ve name zorunlu", i))
		}
		for j, c := range wt.Costs {
			if _, err := time.Parse("2006-01-02", c.EffectiveFrom); err != nil {
				errs = append(errs, fmt.Errorf("waste_types[%d].costs[%d]: effective_from 'YYYY-MM-DD' olmalı", i, j))
			}
		}
	}
	categories := make(map[string]bool, len(f.LocationCategories))
	for i, c := range f.LocationCategories {
		if c.Code == "" || c.Name == "" {
			errs = append(errs, fmt.Errorf("location_categories[%d]: code ve name zorunlu", i))
		}
		categories[c.Code] = true
	}
	for i, c := range f.Coefficients {
		if !hospitals[strings.ToUpper(c.Hospital)] {
			errs = append(errs, fmt.Errorf("coefficients[%d]: bilinmeyen hastane %q", i, c.Hospital))
		}
		if !categories[c.Category] {
			errs = append(errs, fmt.Errorf("coefficients[%d]: bilinmeyen kategori %q", i, c.Category))
		}
		if err := apperr.Validate(struct {
			Period string `json:"period" validate:"required,period"`
		}{c.Period}); err != nil {
			errs = append(errs, fmt.Errorf("coefficients[%d]: period 'YYYY-MM' olmalı", i))
		}
		if c.Value < 0 {
			errs = append(errs, fmt.Errorf("coefficients[%d]: value negatif olamaz", i))
		}
	}
	for i, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d]: username ve password zorunlu", i))
		}
		if len(u.Roles) == 0 {
			errs = append(errs, fmt.Errorf("users[%d]: en az bir rol gerekli", i))
		}
		for _, r := range u.Roles {
			if !models.Role(r).Valid() {
				errs = append(errs, fmt.Errorf("users[%d]: geçersiz rol %q", i, r))
			}
		}
		for _, code := range u.Hospitals {
			if !hospitals[strings.ToUpper(code)] {
				errs = append(errs, fmt.Errorf("users[%d]: bilinmeyen hastane %q", i, code))
			}
		}
	}
	return errors.Join(errs...)
}

type Repository interface {
	UpsertHospitalByCode(ctx context.Context, h *models.Hospital) error
	UpsertWasteTypeByCode(ctx context.Context, wt *models.WasteType) error
	UpsertWasteTypeCost(ctx context.Context, cost *models.WasteTypeCost) error
	UpsertLocationCategoryByCode(ctx context.Context, cat *models.LocationCategory) error
	UpsertCoefficient(ctx context.Context, c *models.OperationalCoefficient) error
	UpsertUser(ctx context.Context, u *models.User, roles []models.Role, hospitals []models.UserHospital) error
}

// Apply dosyayı sırayla yazar. Fiyat tarihleri loc saat diliminde yorumlanır.
func Apply(ctx context.Context, repo Repository, f *File, loc *time.Location) error {
	log := logger.L()

	hospitalIDs := make(map[string]uint, len(f.Hospitals))
	for _, in := range f.Hospitals {
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		h := &models.Hospital{Code: strings.ToUpper(in.Code), Name: in.Name, Color: in.Color, IsActive: active}
		if err := repo.UpsertHospitalByCode(ctx, h); err != nil {
			return fmt.Errorf("hastane %s yazılamadı: %w", h.Code, err)
		}
		hospitalIDs[h.Code] = h.ID
	}

	var costCount int
	for _, in := range f.WasteTypes {
		wt := &models.WasteType{Code: in.Code, Name: in.Name, Color: in.Color, CostPerKg: in.CostPerKg}
		if err := repo.UpsertWasteTypeByCode(ctx, wt); err != nil {
			return fmt.Errorf("atık türü %s yazılamadı: %w", wt.Code, err)
		}
		for _, c := range in.Costs {
			from, err := time.ParseInLocation("2006-01-02", c.EffectiveFrom, loc)
			if err != nil {
				return fmt.Errorf("atık türü %s: %w", wt.Code, err)
			}
			cost := &models.WasteTypeCost{WasteTypeID: wt.ID, EffectiveFrom: from, CostPerKg: c.CostPerKg}
			if err := repo.UpsertWasteTypeCost(ctx, cost); err != nil {
				return fmt.Errorf("atık türü %s fiyatı yazılamadı: %w", wt.Code, err)
			}
			costCount++
		}
	}

	categoryIDs := make(map[string]uint, len(f.LocationCategories))
	for _, in := range f.LocationCategories {
		cat := &models.LocationCategory{
			Code:                 in.Code,
			Name:                 in.Name,
			Unit:                 in.Unit,
			ReferenceWasteFactor: in.ReferenceWasteFactor,
		}
		if err := repo.UpsertLocationCategoryByCode(ctx, cat); err != nil {
			return fmt.Errorf("kategori %s yazılamadı: %w", cat.Code, err)
		}
		categoryIDs[cat.Code] = cat.ID
	}

	for _, in := range f.Coefficients {
		row := &models.OperationalCoefficient{
			HospitalID: hospitalIDs[strings.ToUpper(in.Hospital)],
			CategoryID: categoryIDs[in.Category],
			Period:     in.Period,
			Value:      in.Value,
		}
		if err := repo.UpsertCoefficient(ctx, row); err != nil {
			return fmt.Errorf("katsayı %s/%s/%s yazılamadı: %w", in.Hospital, in.Category, in.Period, err)
		}
	}

	for _, in := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("kullanıcı %s şifresi hash'lenemedi: %w", in.Username, err)
		}
		u := &models.User{
			Username:     in.Username,
			Email:        in.Email,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			PasswordHash: string(hash),
			IsActive:     !in.Inactive,
		}
		roles := make([]models.Role, 0, len(in.Roles))
		for _, r := range in.Roles {
			roles = append(roles, models.Role(r))
		}
		memberships := make([]models.UserHospital, 0, len(in.Hospitals))
		for i, code := range in.Hospitals {
			memberships = append(memberships, models.UserHospital{
				HospitalID: hospitalIDs[strings.ToUpper(code)],
				IsDefault:  i == 0,
			})
		}
		if err := repo.UpsertUser(ctx, u, roles, memberships); err != nil {
			return fmt.Errorf("kullanıcı %s yazılamadı: %w", in.Username, err)
		}
	}

	log.WithFields(logrus.Fields{
		"hospitals":    len(f.Hospitals),
		"waste_types":  len(f.WasteTypes),
		"costs":        costCount,
		"categories":   len(f.LocationCategories),
		"coefficients": len(f.Coefficients),
		"users":        len(f.Users),
	}).Info("Seed verisi yüklendi")
	return nil
}
