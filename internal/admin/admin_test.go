package admin

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	hospitals    []models.Hospital
	wasteTypes   []models.WasteType
	costs        []models.WasteTypeCost
	categories   []models.LocationCategory
	locations    []models.Location
	coefficients []models.OperationalCoefficient
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		hospitals: []models.Hospital{
			{ID: 1, Code: "ANK", Name: "Ankara", IsActive: true},
			{ID: 2, Code: "BRS", Name: "Bursa", IsActive: true},
			{ID: 3, Code: "IZM", Name: "İzmir", IsActive: false},
		},
		wasteTypes: []models.WasteType{{ID: 1, Code: "medical", Name: "Tıbbi"}},
		categories: []models.LocationCategory{{ID: 1, Code: "bed_days", Name: "Yatış günü"}},
	}
}

func (f *fakeRepo) ListHospitals(_ context.Context, includeInactive bool) ([]models.Hospital, error) {
	var out []models.Hospital
	for _, h := range f.hospitals {
		if h.IsActive || includeInactive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetHospital(_ context.Context, id uint) (*models.Hospital, error) {
	for _, h := range f.hospitals {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) CreateHospital(_ context.Context, h *models.Hospital) error {
	for _, e := range f.hospitals {
		if e.Code == h.Code {
			return store.ErrDuplicate
		}
	}
	h.ID = uint(len(f.hospitals) + 1)
	f.hospitals = append(f.hospitals, *h)
	return nil
}

func (f *fakeRepo) SaveHospital(_ context.Context, h *models.Hospital) error {
	for i := range f.hospitals {
		if f.hospitals[i].ID == h.ID {
			f.hospitals[i] = *h
		}
	}
	return nil
}

func (f *fakeRepo) ListWasteTypes(context.Context) ([]models.WasteType, error) {
	return f.wasteTypes, nil
}

func (f *fakeRepo) GetWasteType(_ context.Context, id uint) (*models.WasteType, error) {
	for _, wt := range f.wasteTypes {
		if wt.ID == id {
			return &wt, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ListWasteTypeCosts(_ context.Context, wasteTypeID *uint) ([]models.WasteTypeCost, error) {
	var out []models.WasteTypeCost
	for _, c := range f.costs {
		if wasteTypeID == nil || c.WasteTypeID == *wasteTypeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertWasteTypeCost(_ context.Context, cost *models.WasteTypeCost) error {
	for i := range f.costs {
		if f.costs[i].WasteTypeID == cost.WasteTypeID && f.costs[i].EffectiveFrom.Equal(cost.EffectiveFrom) {
			f.costs[i].CostPerKg = cost.CostPerKg
			cost.ID = f.costs[i].ID
			return nil
		}
	}
	cost.ID = uint(len(f.costs) + 1)
	f.costs = append(f.costs, *cost)
	return nil
}

func (f *fakeRepo) ListLocationCategories(context.Context) ([]models.LocationCategory, error) {
	return f.categories, nil
}

func (f *fakeRepo) GetLocationCategory(_ context.Context, id uint) (*models.LocationCategory, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) CreateLocationCategory(_ context.Context, cat *models.LocationCategory) error {
	for _, c := range f.categories {
		if c.Code == cat.Code {
			return store.ErrDuplicate
		}
	}
	cat.ID = uint(len(f.categories) + 1)
	f.categories = append(f.categories, *cat)
	return nil
}

func (f *fakeRepo) SaveLocationCategory(_ context.Context, cat *models.LocationCategory) error {
	for i := range f.categories {
		if f.categories[i].ID == cat.ID {
			f.categories[i] = *cat
		}
	}
	return nil
}

func (f *fakeRepo) ListLocations(_ context.Context, hospitalID *uint) ([]models.Location, error) {
	var out []models.Location
	for _, l := range f.locations {
		if hospitalID == nil || l.HospitalID == *hospitalID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetLocation(_ context.Context, id uint) (*models.Location, error) {
	for _, l := range f.locations {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) CreateLocation(_ context.Context, loc *models.Location) error {
	for _, l := range f.locations {
		if l.Code == loc.Code {
			return store.ErrDuplicate
		}
	}
	loc.ID = uint(len(f.locations) + 1)
	f.locations = append(f.locations, *loc)
	return nil
}

func (f *fakeRepo) SetLocationActive(_ context.Context, id uint, active bool) error {
	for i := range f.locations {
		if f.locations[i].ID == id {
			f.locations[i].IsActive = active
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRepo) ListCoefficients(_ context.Context, flt store.CoefficientFilter) ([]models.OperationalCoefficient, error) {
	var out []models.OperationalCoefficient
	for _, r := range f.coefficients {
		if flt.HospitalID != nil && r.HospitalID != *flt.HospitalID {
			continue
		}
		if flt.Period != "" && r.Period != flt.Period {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) UpsertCoefficient(_ context.Context, c *models.OperationalCoefficient) error {
	for i := range f.coefficients {
		r := &f.coefficients[i]
		if r.HospitalID == c.HospitalID && r.CategoryID == c.CategoryID && r.Period == c.Period {
			r.Value = c.Value
			c.ID = r.ID
			return nil
		}
	}
	c.ID = uint(len(f.coefficients) + 1)
	f.coefficients = append(f.coefficients, *c)
	return nil
}

type recordingAudit struct {
	entries []audit.LogOptions
}

func (r *recordingAudit) Record(_ context.Context, opts audit.LogOptions) {
	r.entries = append(r.entries, opts)
}

var (
	one     = uint(1)
	hq      = &auth.Identity{UserID: 1, Roles: []models.Role{models.RoleHQ}}
	manager = &auth.Identity{UserID: 5, Roles: []models.Role{models.RoleHospitalManager}, HospitalIDs: []uint{1}, DefaultHospitalID: &one}
)

func newService() (*Service, *fakeRepo, *recordingAudit) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := NewService(repo, rec)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo, rec
}

func TestListHospitalsVisibility(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	all, err := svc.ListHospitals(ctx, hq, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListHospitals(ctx, hq, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	own, err := svc.ListHospitals(ctx, manager, true)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "ANK", own[0].Code)

	_, err = svc.GetHospital(ctx, manager, 2)
	assert.ErrorIs(t, err, auth.ErrHospitalForbidden)
}

func TestCreateHospitalRejectsDuplicateCode(t *testing.T) {
	svc, _, rec := newService()

	_, err := svc.CreateHospital(context.Background(), hq, HospitalInput{Code: "ANK", Name: "Yeni Ankara"})
	assert.ErrorIs(t, err, ErrDuplicateHospital)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	h, err := svc.CreateHospital(context.Background(), hq, HospitalInput{Code: "ADN", Name: "Adana", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, uint(4), h.ID)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, models.AuditActionCreate, rec.entries[0].Action)
}

func TestUpsertWasteTypeCostNormalizesDate(t *testing.T) {
	svc, repo, rec := newService()
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 17, 45, 0, 0, time.UTC)
	first, err := svc.UpsertWasteTypeCost(ctx, manager, CostInput{WasteTypeID: 1, EffectiveFrom: at, CostPerKg: decimal.RequireFromString("15")})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), first.EffectiveFrom)

	second, err := svc.UpsertWasteTypeCost(ctx, manager, CostInput{WasteTypeID: 1, EffectiveFrom: at.Add(-time.Hour), CostPerKg: decimal.RequireFromString("-2.5")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, repo.costs, 1)
	assert.True(t, repo.costs[0].CostPerKg.Equal(decimal.RequireFromString("-2.5")))
	assert.Len(t, rec.entries, 2)

	_, err = svc.UpsertWasteTypeCost(ctx, manager, CostInput{WasteTypeID: 9, EffectiveFrom: at})
	assert.ErrorIs(t, err, ErrWasteTypeNotFound)
}

func TestCreateLocationRetriesOnCodeCollision(t *testing.T) {
	svc, repo, _ := newService()
	codes := []string{"ANK-AAA-0001", "ANK-AAA-0001", "ANK-AAA-0002"}
	svc.newCode = func(prefix string, _ time.Time) string {
		assert.Equal(t, "ANK", prefix)
		c := codes[0]
		codes = codes[1:]
		return c
	}
	ctx := context.Background()
	cat := uint(1)

	a, err := svc.CreateLocation(ctx, manager, LocationInput{HospitalID: 1, CategoryID: &cat, Label: "Dahiliye"})
	require.NoError(t, err)
	assert.Equal(t, "ANK-AAA-0001", a.Code)
	require.NotNil(t, a.Category)
	assert.Equal(t, "bed_days", a.Category.Code)

	b, err := svc.CreateLocation(ctx, manager, LocationInput{HospitalID: 1, Label: "Cerrahi"})
	require.NoError(t, err)
	assert.Equal(t, "ANK-AAA-0002", b.Code)
	assert.Len(t, repo.locations, 2)

	_, err = svc.CreateLocation(ctx, manager, LocationInput{HospitalID: 2})
	assert.ErrorIs(t, err, auth.ErrHospitalForbidden)

	missing := uint(42)
	_, err = svc.CreateLocation(ctx, manager, LocationInput{HospitalID: 1, CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateLocationGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, repo, _ := newService()
	repo.locations = []models.Location{{ID: 1, HospitalID: 1, Code: "ANK-X"}}
	svc.newCode = func(string, time.Time) string { return "ANK-X" }

	_, err := svc.CreateLocation(context.Background(), manager, LocationInput{HospitalID: 1})
	assert.ErrorIs(t, err, errCodeSpaceExhausted)
}

func TestSetLocationActive(t *testing.T) {
	svc, repo, rec := newService()
	repo.locations = []models.Location{
		{ID: 1, HospitalID: 1, Code: "ANK-1", IsActive: true},
		{ID: 2, HospitalID: 2, Code: "BRS-1", IsActive: true},
	}
	ctx := context.Background()

	loc, err := svc.SetLocationActive(ctx, manager, 1, false)
	require.NoError(t, err)
	assert.False(t, loc.IsActive)
	assert.False(t, repo.locations[0].IsActive)
	require.Len(t, rec.entries, 1)

	_, err = svc.SetLocationActive(ctx, manager, 2, false)
	assert.ErrorIs(t, err, auth.ErrHospitalForbidden)

	_, err = svc.SetLocationActive(ctx, hq, 99, false)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestUpsertCoefficient(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	row, err := svc.UpsertCoefficient(ctx, manager, CoefficientInput{HospitalID: 1, CategoryID: 1, Period: "2025-03", Value: 1200})
	require.NoError(t, err)
	assert.Equal(t, "bed_days", row.Category.Code)

	_, err = svc.UpsertCoefficient(ctx, manager, CoefficientInput{HospitalID: 1, CategoryID: 1, Period: "2025-03", Value: 1350})
	require.NoError(t, err)
	require.Len(t, repo.coefficients, 1)
	assert.Equal(t, 1350.0, repo.coefficients[0].Value)

	_, err = svc.UpsertCoefficient(ctx, manager, CoefficientInput{HospitalID: 1, CategoryID: 1, Period: "2025-03", Value: -1})
	assert.ErrorIs(t, err, ErrNegativeCoefficient)

	_, err = svc.UpsertCoefficient(ctx, manager, CoefficientInput{HospitalID: 2, CategoryID: 1, Period: "2025-03", Value: 1})
	assert.ErrorIs(t, err, auth.ErrHospitalForbidden)

	rows, err := svc.ListCoefficients(ctx, &one, "2025-03")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func newTestApp(svc *Service, id *auth.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxIdentityKey, id)
		return c.Next()
	})
	app.Get("/api/hospitals", ListHospitalsHandler(svc))
	app.Post("/api/hospitals", auth.Require(auth.ActionManageHospitals), CreateHospitalHandler(svc))
	app.Put("/api/waste-type-costs", auth.Require(auth.ActionManageCosts), UpsertWasteTypeCostHandler(svc, time.UTC))
	app.Put("/api/coefficients", auth.Require(auth.ActionManageCoefficients), UpsertCoefficientHandler(svc))
	app.Post("/api/locations", auth.Require(auth.ActionManageLocations), CreateLocationHandler(svc))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHTTPCatalogWrites(t *testing.T) {
	svc, _, _ := newService()
	managerApp := newTestApp(svc, manager)

	status, _ := doJSON(t, managerApp, "POST", "/api/hospitals", `{"code":"ADN","name":"Adana"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := doJSON(t, managerApp, "PUT", "/api/coefficients", `{"hospital_id":1,"category_id":1,"period":"2025-13","value":10}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"period": "period"}, body["fields"])

	status, body = doJSON(t, managerApp, "PUT", "/api/coefficients", `{"hospital_id":1,"category_id":1,"period":"2025-03","value":0}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "bed_days", body["category_code"])

	status, body = doJSON(t, managerApp, "PUT", "/api/waste-type-costs", `{"waste_type_id":1,"effective_from":"2025-03-01","cost_per_kg":"20.50"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2025-03-01", body["effective_from"])
	assert.Equal(t, "20.5", body["cost_per_kg"])

	status, _ = doJSON(t, managerApp, "PUT", "/api/waste-type-costs", `{"waste_type_id":1,"effective_from":"01.03.2025","cost_per_kg":1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, managerApp, "POST", "/api/locations", `{"label":"Acil"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(1), body["hospital_id"])
	assert.True(t, strings.HasPrefix(body["code"].(string), "ANK-"))

	hqApp := newTestApp(svc, hq)
	status, body = doJSON(t, hqApp, "POST", "/api/hospitals", `{"code":"adn","name":"Adana","color":"#ff0000"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "ADN", body["code"])
	assert.Equal(t, true, body["is_active"])
}
