package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/server/service/dialog"
	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/store"
)

type fakeDriver struct {
	vehicles []*store.Vehicle
}

func (d *fakeDriver) GetDB() any { return nil }

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) Migrate(context.Context) error { return nil }

func (d *fakeDriver) UpsertVehicle(_ context.Context, v *store.Vehicle) error {
	d.vehicles = append(d.vehicles, v)
	return nil
}

func (d *fakeDriver) ListVehicles(context.Context) ([]*store.Vehicle, error) {
	return d.vehicles, nil
}

func (d *fakeDriver) GetVehicle(_ context.Context, id string) (*store.Vehicle, error) {
	for _, v := range d.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (d *fakeDriver) CreateManualChunk(context.Context, *store.ManualChunk) error {
	return nil
}

func (d *fakeDriver) ListManualChunks(context.Context, *store.FindManualChunk) ([]*store.ManualChunk, error) {
	return nil, nil
}

func newTestAPI() *APIV1Service {
	prof := &profile.Profile{Mode: "demo", Version: "test"}
	_ = prof.Validate()
	driver := &fakeDriver{vehicles: []*store.Vehicle{
		{ID: "toyota-aqua-2021", Make: "トヨタ", Model: "アクア", Year: 2021},
	}}
	return NewAPIV1Service(prof, store.New(driver, prof))
}

func postChat(t *testing.T, svc *APIV1Service, body string) (*httptest.ResponseRecorder, *dialog.Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, svc.chat(e.NewContext(req, rec)))

	var resp dialog.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, &resp
}

func TestChat_NewSessionGetsWelcome(t *testing.T) {
	svc := newTestAPI()

	rec, resp := postChat(t, svc, `{}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "vehicle_id", resp.CurrentStep)
	assert.Equal(t, dialog.PromptVehicleSearch, resp.Prompt.Type)
	assert.NotNil(t, svc.Sessions.Get(resp.SessionID))
}

func TestChat_UnknownSessionAnswersExpired(t *testing.T) {
	svc := newTestAPI()

	rec, resp := postChat(t, svc, `{"session_id":"not-there","message":"hello"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not-there", resp.SessionID)
	assert.Equal(t, "expired", resp.CurrentStep)
	assert.Contains(t, resp.Prompt.Message, "有効期限")
}

func TestChat_TurnsAdvanceTheSameSession(t *testing.T) {
	svc := newTestAPI()

	_, first := postChat(t, svc, `{}`)
	body := `{"session_id":"` + first.SessionID + `","action":"select_vehicle","action_value":"toyota-aqua-2021"}`
	_, second := postChat(t, svc, body)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "photo_confirm", second.CurrentStep)

	persisted := svc.Sessions.Get(first.SessionID)
	require.NotNil(t, persisted)
	assert.Equal(t, "トヨタ", persisted.VehicleMake)
}

func TestChat_ConcurrentTurnsOnOneSessionBothPersist(t *testing.T) {
	svc := newTestAPI()
	_, first := postChat(t, svc, `{}`)

	sess := svc.Sessions.Get(first.SessionID)
	require.NotNil(t, sess)
	sess.CurrentStep = session.StepDiagnosing
	svc.Sessions.Update(sess)

	body := `{"session_id":"` + first.SessionID + `","message":"エンジンのかかりが悪い気がします"}`
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			errs <- svc.chat(e.NewContext(req, httptest.NewRecorder()))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	persisted := svc.Sessions.Get(first.SessionID)
	require.NotNil(t, persisted)
	assert.Equal(t, 2, persisted.DiagnosticTurn, "a turn processed while another was in flight must not be lost")
}

func TestSearchVehicles(t *testing.T) {
	svc := newTestAPI()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/search?q="+
		"%E3%82%A2%E3%82%AF%E3%82%A2", nil) // アクア
	rec := httptest.NewRecorder()
	require.NoError(t, svc.searchVehicles(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toyota-aqua-2021")

	// missing query is a client error
	req = httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/search", nil)
	rec = httptest.NewRecorder()
	err := svc.searchVehicles(e.NewContext(req, rec))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHealth(t *testing.T) {
	svc := newTestAPI()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, svc.health(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"llm_configured":false`)
}
