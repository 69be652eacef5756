package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"propertypal/internal/auth"
	"propertypal/internal/domain"
	"propertypal/internal/hierarchy"
	"propertypal/internal/members"
	"propertypal/internal/repository"
	"propertypal/internal/service"
	"propertypal/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type testApp struct {
	router  *Router
	store   *hierarchy.Store
	roster  *members.Roster
	wizard  *wizard.Wizard
	members service.MemberService
	token   string
}

// newTestApp wires the local backend in-process, the way main does with
// STORAGE_DRIVER=memory.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop()

	propertyRepo := repository.NewMemoryProperties()
	memberRepo := repository.NewMemoryMembers()
	paymentRepo := repository.NewMemoryPayments()
	propertySvc := service.NewPropertyService(propertyRepo, logger)
	memberSvc := service.NewMemberService(memberRepo, propertyRepo, logger)
	paymentSvc := service.NewPaymentService(paymentRepo, memberRepo, logger)

	st := hierarchy.New(propertySvc, logger)
	roster := members.New(memberSvc, st, logger)
	wz := wizard.New(newFakeKV(), st, logger)
	reload := func(ctx context.Context) {
		st.LoadProperties(ctx)
		roster.Load(ctx, "")
	}

	issuer := auth.NewIssuer("test-secret", time.Minute, time.Hour)
	operator, err := auth.NewOperator("admin", "s3cret", issuer)
	require.NoError(t, err)
	protect := auth.Middleware(issuer)

	router := NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(NewAuthHandler(operator, logger))
	router.RegisterContractRoutes(NewContractHandler(propertySvc, memberSvc, paymentSvc, logger, WithAfterWrite(reload)), protect)
	router.RegisterAppRoutes(NewAppHandler(st, roster, paymentSvc, logger), protect)
	router.RegisterWizardRoutes(NewWizardHandler(wz, st, logger), protect)

	a := &testApp{router: router, store: st, roster: roster, wizard: wz, members: memberSvc}
	pair, err := a.loginPair()
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	a.token = pair.AccessToken
	return a
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) wizardAction(t *testing.T, action string, body any) envelope {
	t.Helper()
	rec := a.do(t, http.MethodPost, appWizard+"/"+action, body, a.token)
	require.Equal(t, http.StatusOK, rec.Code, "action %s: %s", action, rec.Body.String())
	return decodeEnvelope(t, rec)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// actionResult decodes the "result" field of a wizard action response.
func actionResult(t *testing.T, env envelope, out any) {
	t.Helper()
	var payload struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &payload))
	require.NoError(t, json.Unmarshal(payload.Result, out))
}

// buildSunrise drives the wizard through a one-building, one-double-room
// property and commits it.
func buildSunrise(t *testing.T, a *testApp) domain.Property {
	t.Helper()
	name, city := "Sunrise PG", "Pune"
	typ := domain.PropertyTypeHostel

	a.wizardAction(t, "details", map[string]any{
		"details": wizard.PropertyDetailsPatch{Name: &name, Type: &typ, City: &city},
	})
	a.wizardAction(t, "next", nil)

	var b domain.Building
	actionResult(t, a.wizardAction(t, "add-building", map[string]any{"name": "Block A"}), &b)
	a.wizardAction(t, "next", nil)

	var f domain.Floor
	actionResult(t, a.wizardAction(t, "add-floor", map[string]any{"buildingId": b.ID, "label": "G"}), &f)
	a.wizardAction(t, "add-room", map[string]any{
		"buildingId": b.ID, "floorId": f.ID, "roomNumber": "001", "shareType": domain.ShareDouble,
	})
	a.wizardAction(t, "next", nil)

	a.wizardAction(t, "share-types", map[string]any{"bedCounts": []int{2}})
	a.wizardAction(t, "next", nil)
	a.wizardAction(t, "pricing", map[string]any{
		"bedPricing": []domain.BedPricing{{BedCount: 2, DailyPrice: 400, MonthlyPrice: 9000}},
	})
	a.wizardAction(t, "next", nil)

	env := a.wizardAction(t, "commit", nil)
	var p domain.Property
	require.NoError(t, json.Unmarshal(env.Result, &p))
	return p
}

func TestWizardCommit_SunriseScenario(t *testing.T) {
	a := newTestApp(t)

	p := buildSunrise(t, a)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1, p.TotalRooms)
	assert.Equal(t, 2, p.TotalBeds)

	// draft is reset after commit
	assert.Equal(t, wizard.StepPropertyDetails, a.wizard.State().CurrentStep)
	assert.Equal(t, p.ID, a.store.ActivePropertyID())

	rec := a.do(t, http.MethodGet, appProperties+"/"+p.ID+"/summary", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.Summary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &summary))
	assert.Equal(t, 2, summary.AvailableBeds)
	assert.Equal(t, 0, summary.OccupiedBeds)
}

func TestWizardNext_ValidationFailure(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodPost, appWizard+"/next", nil, a.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, ResultError, env.Code)
	assert.Contains(t, env.Message, "property details")
	assert.Equal(t, wizard.StepPropertyDetails, a.wizard.State().CurrentStep)
}

func TestWizardCommit_OutsideConfirmStep(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodPost, appWizard+"/commit", nil, a.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decodeEnvelope(t, rec).Message
	assert.Contains(t, msg, "commit is only allowed")
	assert.NotContains(t, msg, "Failed to add property")
}

func TestWizardCommit_BackendErrorNotDoubled(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	a.wizardAction(t, "edit", map[string]any{"propertyId": p.ID})
	a.wizardAction(t, "step", map[string]any{"step": int(wizard.StepConfirm)})
	rec := a.do(t, http.MethodDelete, appProperties+"/"+p.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, appWizard+"/commit", nil, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	msg := decodeEnvelope(t, rec).Message
	assert.Equal(t, 1, strings.Count(strings.ToLower(msg), "failed to update property"), msg)
}

func TestWizard_UnknownActionAndMethod(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, appWizard+"/fly", nil, a.token).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, a.do(t, http.MethodGet, appWizard+"/next", nil, a.token).Code)

	rec := a.do(t, http.MethodGet, appWizard, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var st wizard.State
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &st))
	assert.Equal(t, wizard.StepPropertyDetails, st.CurrentStep)
}

func TestWizard_DuplicateFloorLabelsAllowed(t *testing.T) {
	a := newTestApp(t)

	var b domain.Building
	actionResult(t, a.wizardAction(t, "add-building", map[string]any{"name": "Block A"}), &b)
	var first, second domain.Floor
	actionResult(t, a.wizardAction(t, "add-floor", map[string]any{"buildingId": b.ID, "label": "1"}), &first)
	actionResult(t, a.wizardAction(t, "add-floor", map[string]any{"buildingId": b.ID, "label": "1"}), &second)
	assert.NotEqual(t, first.ID, second.ID)

	// room numbers stay unique within a floor
	a.wizardAction(t, "add-room", map[string]any{
		"buildingId": b.ID, "floorId": first.ID, "roomNumber": "101", "shareType": domain.ShareSingle,
	})
	rec := a.do(t, http.MethodPost, appWizard+"/add-room", map[string]any{
		"buildingId": b.ID, "floorId": first.ID, "roomNumber": "101", "shareType": domain.ShareSingle,
	}, a.token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizard_AddRoomByBedCount(t *testing.T) {
	a := newTestApp(t)

	var b domain.Building
	actionResult(t, a.wizardAction(t, "add-building", map[string]any{"name": "Block A"}), &b)
	var f domain.Floor
	actionResult(t, a.wizardAction(t, "add-floor", map[string]any{"buildingId": b.ID, "label": "G"}), &f)

	var room domain.Room
	actionResult(t, a.wizardAction(t, "add-room", map[string]any{
		"buildingId": b.ID, "floorId": f.ID, "roomNumber": "001", "bedCount": 3,
	}), &room)
	assert.Equal(t, domain.ShareTriple, room.ShareType)
	assert.Len(t, room.Beds, 3)

	var rooms []domain.Room
	actionResult(t, a.wizardAction(t, "add-rooms", map[string]any{
		"buildingId": b.ID, "floorId": f.ID, "start": "101", "count": 2, "bedCount": 2,
	}), &rooms)
	require.Len(t, rooms, 2)
	assert.Equal(t, domain.ShareDouble, rooms[1].ShareType)

	rec := a.do(t, http.MethodPost, appWizard+"/add-room", map[string]any{
		"buildingId": b.ID, "floorId": f.ID, "roomNumber": "002", "bedCount": -1,
	}, a.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardEdit_UpdatesExistingProperty(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	a.wizardAction(t, "edit", map[string]any{"propertyId": p.ID})
	assert.Equal(t, p.ID, a.wizard.State().EditingPropertyID)

	name := "Sunrise PG Annex"
	a.wizardAction(t, "details", map[string]any{"details": wizard.PropertyDetailsPatch{Name: &name}})
	a.wizardAction(t, "step", map[string]any{"step": int(wizard.StepConfirm)})

	env := a.wizardAction(t, "commit", nil)
	var updated domain.Property
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, name, updated.Name)
	assert.Len(t, a.store.Properties(), 1)

	rec := a.do(t, http.MethodPost, appWizard+"/edit", map[string]any{"propertyId": "missing"}, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppMembers_AssignAndRelease(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	b := p.Buildings[0]
	f := b.Floors[0]
	room := f.Rooms[0]
	asha := domain.MemberInput{
		Name: "Asha", Phone: "9876543210",
		PropertyID: p.ID, BuildingID: b.ID, FloorID: f.ID, RoomID: room.ID, BedID: "B1",
	}

	rec := a.do(t, http.MethodPost, appMembers, asha, a.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var m domain.Member
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &m))

	rec = a.do(t, http.MethodGet, appProperties+"/"+p.ID+"/available-beds", nil, a.token)
	var free []domain.BedPath
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &free))
	require.Len(t, free, 1)
	assert.Equal(t, "B2", free[0].BedID)

	// B1 is taken
	other := asha
	other.Name = "Ravi"
	rec = a.do(t, http.MethodPost, appMembers, other, a.token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodDelete, appMembers+"/"+m.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	path, _ := asha.Assignment()
	occupied, found := a.store.BedOccupied(path)
	assert.True(t, found)
	assert.False(t, occupied)

	rec = a.do(t, http.MethodGet, appMembers+"/"+m.ID, nil, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppProperties_ActiveAndRemove(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	rec := a.do(t, http.MethodPost, appProperties+"/active", map[string]any{"propertyId": "nope"}, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, appProperties+"/active", map[string]any{"propertyId": ""}, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.store.ActivePropertyID())

	rec = a.do(t, http.MethodDelete, appProperties+"/"+p.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.store.Properties())

	rec = a.do(t, http.MethodGet, appProperties+"/"+p.ID, nil, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// reload from the backend finds nothing either
	rec = a.do(t, http.MethodPost, appProperties+"/reload", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.store.ActivePropertyID())
}

func TestAppProperties_OccupancyExport(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	rec := a.do(t, http.MethodGet, appProperties+"/"+p.ID+"/occupancy.xlsx", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestContract_RequiresBearer(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodGet, "/properties", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "s3cret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)

	rec = a.do(t, http.MethodGet, "/properties", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": pair.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": pair.AccessToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContract_PropertiesAndMembers(t *testing.T) {
	a := newTestApp(t)
	pair, err := a.loginPair()
	require.NoError(t, err)
	token := pair.AccessToken

	in := domain.PropertyInput{
		Name: "Lakeview", Type: domain.PropertyTypeApartment, City: "Goa",
		Buildings: []domain.Building{{Name: "Main", Floors: []domain.Floor{{Label: "1", Rooms: []domain.Room{
			{RoomNumber: "101", ShareType: domain.ShareSingle},
		}}}}},
	}
	rec := a.do(t, http.MethodPost, "/properties", in, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Property
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 1, p.TotalBeds)

	newName := "Lakeview Residency"
	rec = a.do(t, http.MethodPatch, "/properties/"+p.ID, domain.PropertyPatch{Name: &newName}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	room := p.Buildings[0].Floors[0].Rooms[0]
	member := domain.MemberInput{
		Name: "Asha", Phone: "9876543210", PropertyID: p.ID,
		BuildingID: p.Buildings[0].ID, FloorID: p.Buildings[0].Floors[0].ID, RoomID: room.ID, BedID: "B1",
	}
	rec = a.do(t, http.MethodPost, "/members", member, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/members", member, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "already occupied")

	rec = a.do(t, http.MethodGet, "/members?propertyId="+p.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodDelete, "/properties/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/properties/"+p.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestApp_RequiresBearer(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)

	rec := a.do(t, http.MethodDelete, appProperties+"/"+p.ID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, ok := a.store.Property(p.ID)
	assert.True(t, ok)

	rec = a.do(t, http.MethodDelete, appProperties+"/"+p.ID, nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, path := range []string{appProperties, appMembers, appPayments, appWizard} {
		rec = a.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec = a.do(t, http.MethodPost, appWizard+"/reset", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, http.MethodPost, appOccupancySync, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContract_MemberWritesSyncOccupancy(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)
	b, f := p.Buildings[0], p.Buildings[0].Floors[0]
	in := domain.MemberInput{
		Name: "Asha", Phone: "9876543210",
		PropertyID: p.ID, BuildingID: b.ID, FloorID: f.ID, RoomID: f.Rooms[0].ID, BedID: "B2",
	}
	path, _ := in.Assignment()

	rec := a.do(t, http.MethodPost, "/members", in, a.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m domain.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))

	occupied, found := a.store.BedOccupied(path)
	require.True(t, found)
	assert.True(t, occupied)
	_, err := a.roster.Member(m.ID)
	assert.NoError(t, err)

	rec = a.do(t, http.MethodDelete, "/members/"+m.ID, nil, a.token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	occupied, _ = a.store.BedOccupied(path)
	assert.False(t, occupied)
}

func TestAppOccupancySync_Refetches(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)
	b, f := p.Buildings[0], p.Buildings[0].Floors[0]
	in := domain.MemberInput{
		Name: "Ravi", Phone: "9876543210",
		PropertyID: p.ID, BuildingID: b.ID, FloorID: f.ID, RoomID: f.Rooms[0].ID, BedID: "B1",
	}
	path, _ := in.Assignment()

	// written behind the roster's back
	_, err := a.members.Create(context.Background(), in)
	require.NoError(t, err)
	occupied, _ := a.store.BedOccupied(path)
	require.False(t, occupied)

	rec := a.do(t, http.MethodPost, appOccupancySync, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	occupied, _ = a.store.BedOccupied(path)
	assert.True(t, occupied)
	assert.Len(t, a.roster.Members(p.ID), 1)
}

func TestAppPayments_Lifecycle(t *testing.T) {
	a := newTestApp(t)
	p := buildSunrise(t, a)
	b, f := p.Buildings[0], p.Buildings[0].Floors[0]

	rec := a.do(t, http.MethodPost, appMembers, domain.MemberInput{
		Name: "Asha", Phone: "9876543210",
		PropertyID: p.ID, BuildingID: b.ID, FloorID: f.ID, RoomID: f.Rooms[0].ID, BedID: "B1",
	}, a.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var m domain.Member
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &m))

	rec = a.do(t, http.MethodPost, appPayments, domain.PaymentInput{MemberID: m.ID, Amount: 9000, Method: "upi"}, a.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pay domain.Payment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &pay))
	assert.Equal(t, "paid", pay.Status)
	assert.NotEmpty(t, pay.Date)

	rec = a.do(t, http.MethodPost, appPayments, domain.PaymentInput{MemberID: "ghost", Amount: 100}, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodPost, appPayments, domain.PaymentInput{MemberID: m.ID, Amount: 0}, a.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, appPayments+"?memberId="+m.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Payment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &list))
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodGet, appProperties+"/"+p.ID+"/payments", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &list))
	require.Len(t, list, 1)
	assert.Equal(t, pay.ID, list[0].ID)

	rec = a.do(t, http.MethodPut, appPayments+"/"+pay.ID, map[string]any{"status": "pending"}, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Payment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Result, &updated))
	assert.Equal(t, "pending", updated.Status)

	rec = a.do(t, http.MethodDelete, appPayments+"/"+pay.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodGet, appPayments+"/"+pay.ID, nil, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContract_Payments(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodGet, "/payments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	m, err := a.members.Create(context.Background(), domain.MemberInput{Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	rec = a.do(t, http.MethodPost, "/payments", domain.PaymentInput{MemberID: m.ID, Amount: 6500, Date: "2026-03-01"}, a.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pay domain.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pay))
	assert.Equal(t, "2026-03-01", pay.Date)

	rec = a.do(t, http.MethodGet, "/payments?memberId="+m.ID, nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodGet, "/payments?memberId=nobody", nil, a.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = a.do(t, http.MethodPut, "/payments/"+pay.ID, map[string]any{"amount": -1}, a.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodDelete, "/payments/"+pay.ID, nil, a.token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodDelete, "/payments/"+pay.ID, nil, a.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	rec := a.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, decodeEnvelope(t, rec).Code)
}

func (a *testApp) loginPair() (auth.TokenPair, error) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		bytes.NewBufferString(`{"username":"admin","password":"s3cret"}`)).WithContext(context.Background())
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	var pair auth.TokenPair
	err := json.Unmarshal(rec.Body.Bytes(), &pair)
	return pair, err
}
