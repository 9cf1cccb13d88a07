package issue

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	issues      []models.Issue
	users       []models.User
	collections []models.WasteCollection
	hospitals   map[uint]models.Hospital
	locations   map[string]models.Location
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		hospitals: map[uint]models.Hospital{
			1: {ID: 1, Name: "Ankara"},
			2: {ID: 2, Name: "Bursa"},
		},
		collections: []models.WasteCollection{{ID: 55, HospitalID: 2, TagCode: "WC-OTHER"}},
		locations:   map[string]models.Location{"ANK-L1": {ID: 5, HospitalID: 1, Code: "ANK-L1"}},
		users: []models.User{
			{ID: 7, Username: "ayse", FirstName: "Ayşe", LastName: "Kaya"},
			{ID: 8, Username: "mehmet"},
		},
	}
}

func (f *fakeRepo) GetHospital(_ context.Context, id uint) (*models.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &h, nil
}

func (f *fakeRepo) FindCollectionByTag(_ context.Context, tag string) (*models.WasteCollection, error) {
	for _, c := range f.collections {
		if c.TagCode == tag {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) GetLocationByCode(_ context.Context, code string) (*models.Location, error) {
	l, ok := f.locations[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &l, nil
}

func (f *fakeRepo) CreateIssue(_ context.Context, is *models.Issue) error {
	is.ID = uint(len(f.issues) + 1)
	is.Hospital = f.hospitals[is.HospitalID]
	f.issues = append(f.issues, *is)
	return nil
}

func (f *fakeRepo) GetIssue(_ context.Context, id uint) (*models.Issue, error) {
	for _, is := range f.issues {
		if is.ID == id {
			return &is, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ResolveIssue(_ context.Context, id uint, at time.Time) error {
	for i := range f.issues {
		if f.issues[i].ID == id {
			if f.issues[i].IsResolved {
				return store.ErrNotPending
			}
			f.issues[i].IsResolved = true
			f.issues[i].ResolvedAt = &at
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRepo) ListIssues(_ context.Context, flt store.IssueFilter) ([]models.Issue, error) {
	var out []models.Issue
	for i := len(f.issues) - 1; i >= 0; i-- {
		is := f.issues[i]
		if flt.HospitalID != nil && is.HospitalID != *flt.HospitalID {
			continue
		}
		if flt.Resolved != nil && is.IsResolved != *flt.Resolved {
			continue
		}
		out = append(out, is)
	}
	return out, nil
}

func (f *fakeRepo) ListUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type counters struct{ reported, resolved int }

func (c *counters) IssueReported(string) { c.reported++ }
func (c *counters) IssueResolved()       { c.resolved++ }

var (
	one       = uint(1)
	collector = &auth.Identity{UserID: 7, DisplayName: "Ayşe Kaya", Roles: []models.Role{models.RoleCollector}, HospitalIDs: []uint{1}, DefaultHospitalID: &one}
	manager   = &auth.Identity{UserID: 8, Roles: []models.Role{models.RoleHospitalManager}, HospitalIDs: []uint{1}, DefaultHospitalID: &one}
)

func newService() (*Service, *fakeRepo, *counters) {
	repo := newFakeRepo()
	c := &counters{}
	svc := NewService(repo, audit.Nop{}, c)
	clock := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, repo, c
}

func TestCreateLinksTagGlobally(t *testing.T) {
	svc, _, c := newService()

	is, err := svc.Create(context.Background(), collector, CreateInput{
		HospitalID:   1,
		Category:     models.IssueSegregation,
		Description:  "Kırmızı poşette evsel atık",
		TagCode:      "WC-OTHER",
		LocationCode: "ANK-L1",
		Photos:       []string{"photos/1.jpg"},
	})
	require.NoError(t, err)
	require.NotNil(t, is.CollectionID)
	assert.Equal(t, uint(55), *is.CollectionID, "etiket hastane kapsamından bağımsız aranır")
	assert.Equal(t, "WC-OTHER", *is.TagCode)
	assert.Equal(t, uint(5), *is.LocationID)
	assert.False(t, is.IsResolved)
	assert.Nil(t, is.ResolvedAt)
	assert.Equal(t, []string{"photos/1.jpg"}, []string(is.Photos))
	assert.Equal(t, 1, c.reported)
}

func TestCreateKeepsDanglingTag(t *testing.T) {
	svc, _, _ := newService()

	is, err := svc.Create(context.Background(), collector, CreateInput{
		HospitalID: 1, Category: models.IssueTechnical, Description: "Tartı arızalı", TagCode: "WC-GHOST", LocationCode: "NOWHERE",
	})
	require.NoError(t, err)
	assert.Nil(t, is.CollectionID)
	require.NotNil(t, is.TagCode)
	assert.Equal(t, "WC-GHOST", *is.TagCode)
	assert.Nil(t, is.LocationID)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.Create(context.Background(), collector, CreateInput{HospitalID: 1, Category: "misc", Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
	assert.Empty(t, repo.issues)

	_, err = svc.Create(context.Background(), collector, CreateInput{HospitalID: 2, Category: models.IssueOther, Description: "x"})
	assert.ErrorIs(t, err, auth.ErrHospitalForbidden)
}

func TestResolveIsIdempotent(t *testing.T) {
	svc, _, c := newService()
	ctx := context.Background()

	is, err := svc.Create(ctx, collector, CreateInput{HospitalID: 1, Category: models.IssueOther, Description: "x"})
	require.NoError(t, err)

	first, err := svc.Resolve(ctx, manager, is.ID)
	require.NoError(t, err)
	assert.True(t, first.IsResolved)
	require.NotNil(t, first.ResolvedAt)

	second, err := svc.Resolve(ctx, manager, is.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ResolvedAt, *second.ResolvedAt)
	assert.Equal(t, 1, c.resolved)

	_, err = svc.Resolve(ctx, manager, 999)
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestListFiltersAndEnriches(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, collector, CreateInput{HospitalID: 1, Category: models.IssueOther, Description: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, manager, CreateInput{HospitalID: 1, Category: models.IssueOther, Description: "b"})
	require.NoError(t, err)
	ghost := &auth.Identity{UserID: 99, Roles: []models.Role{models.RoleHQ}}
	_, err = svc.Create(ctx, ghost, CreateInput{HospitalID: 2, Category: models.IssueOther, Description: "c"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, manager, a.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Description, "en yeni önce")
	assert.Equal(t, UnknownReporter, all[0].ReporterName)
	assert.Equal(t, "mehmet", all[1].ReporterName)
	assert.Equal(t, "Ayşe Kaya", all[2].ReporterName)
	assert.Equal(t, "Ankara", all[2].HospitalName)

	open, err := svc.List(ctx, &one, "open")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "b", open[0].Description)

	resolved, err := svc.List(ctx, nil, "resolved")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, a.ID, resolved[0].ID)

	_, err = svc.List(ctx, nil, "closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Len(t, repo.issues, 3)
}

func TestHTTPCreateAndResolve(t *testing.T) {
	svc, _, _ := newService()
	newApp := func(id *auth.Identity) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(auth.CtxIdentityKey, id)
			return c.Next()
		})
		app.Get("/api/issues", ListIssuesHandler(svc))
		app.Post("/api/issues", auth.Require(auth.ActionReportIssues), CreateIssueHandler(svc))
		app.Post("/api/issues/:id/resolve", auth.Require(auth.ActionResolveIssues), ResolveIssueHandler(svc))
		return app
	}
	collectorApp := newApp(collector)
	managerApp := newApp(manager)

	req := httptest.NewRequest("POST", "/api/issues", strings.NewReader(`{"category":"wrong","description":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := collectorApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/issues", strings.NewReader(`{"category":"technical","description":"Kapak kırık","tag_code":"WC-OTHER"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = collectorApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created IssueResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Ayşe Kaya", created.ReporterName)
	assert.Equal(t, []string{}, created.Photos)

	resp, err = collectorApp.Test(httptest.NewRequest("POST", "/api/issues/1/resolve", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = managerApp.Test(httptest.NewRequest("POST", "/api/issues/1/resolve", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var resolved IssueResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&resolved))
	assert.True(t, resolved.IsResolved)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "Ayşe Kaya", resolved.ReporterName)

	resp, err = managerApp.Test(httptest.NewRequest("GET", "/api/issues?status=open", nil))
	require.NoError(t, err)
	var open []IssueResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&open))
	assert.Empty(t, open)
}
