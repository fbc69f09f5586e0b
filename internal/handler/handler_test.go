package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/dispatch"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/pkg/webhook"
	"github.com/maitrisea/backend/internal/repository"
	"github.com/maitrisea/backend/internal/service"
	"github.com/maitrisea/backend/internal/service/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	calls []webhook.GenerationPayload
}

func (s *recordingSender) Send(ctx context.Context, url string, payload webhook.GenerationPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, payload)
	return nil
}

type testServer struct {
	router *gin.Engine
	ws     *repository.Workspace
	sender *recordingSender
}

func newTestServer(t *testing.T, fallbackURL string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws := repository.NewWorkspace(repository.NewMemoryStore())
	opts := service.Options{WorkspaceID: "ws_1", IDs: idgen.Sequence()}
	if err := service.InitDefaultTemplates(context.Background(), ws, opts, "u_1"); err != nil {
		t.Fatalf("seed templates error: %v", err)
	}
	sender := &recordingSender{}

	fields := service.NewFieldService(ws, opts)
	generation := service.NewGenerationService(ws, sender, dispatch.Inline{}, fallbackURL)

	router := gin.New()
	api := router.Group("/api")
	NewProjectHandler(service.NewProjectService(ws, opts), service.NewScaffoldService(ws, opts), fields, generation, "u_1").RegisterRoutes(api)
	NewTimelineHandler(service.NewTimelineService(ws, opts), service.NewSnapshotService(ws, opts), generation).RegisterRoutes(api)
	NewTemplateHandler(service.NewCatalogService(ws, nil, opts)).RegisterRoutes(api)
	NewSettingsHandler(service.NewSettingsService(ws), "u_1").RegisterRoutes(api)

	return &testServer{router: router, ws: ws, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body error: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response error: %v, body=%s", err, w.Body.String())
	}
	return resp.Data
}

func (s *testServer) createProject(t *testing.T, req service.CreateProjectRequest) model.Project {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/projects", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeData[model.Project](t, w)
}

func TestCreateProjectScaffoldsFromDefaults(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{ProjectName: "Maison Dupont"})
	assert.Equal(t, []string{"u_1"}, project.AssignedUsers)

	w := s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeData[[]service.TimelineEntry](t, w)
	require.Len(t, entries, 5)
	assert.Equal(t, 100, entries[0].Position)
	assert.Equal(t, "APS", entries[0].Stage.StageName)

	w = s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]model.ProjectField](t, w), 4)

	w = s.do(t, http.MethodGet, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeData[service.ProjectDetail](t, w)
	assert.Len(t, detail.Stakeholders, 4)
	assert.Len(t, detail.TradeLots, 8)
}

func TestCreateProjectUsesHeaderUser(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(t, http.MethodPost, "/api/projects", service.CreateProjectRequest{}, UserHeader, "u_9")
	require.Equal(t, http.StatusCreated, w.Code)
	project := decodeData[model.Project](t, w)
	assert.Equal(t, []string{"u_9"}, project.AssignedUsers)

	// u_9 没有偏好：只使用内置时间线
	w = s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]model.ProjectField](t, w))
}

func TestToggleTemplateRoute(t *testing.T) {
	s := newTestServer(t, "")
	empty := []string{}
	project := s.createProject(t, service.CreateProjectRequest{InitialTemplateIDs: empty})

	path := "/api/projects/" + project.ID + "/templates/" + service.DefaultDocumentTemplateID + "/toggle"
	w := s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"active": true}, decodeData[map[string]bool](t, w))

	w = s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"active": false}, decodeData[map[string]bool](t, w))

	w = s.do(t, http.MethodPost, "/api/projects/p_missing/templates/"+service.DefaultDocumentTemplateID+"/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaceOrderRoute(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{})
	w := s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/timeline", nil)
	entries := decodeData[[]service.TimelineEntry](t, w)

	w = s.do(t, http.MethodPut, "/api/projects/"+project.ID+"/timeline/order", ReorderRequest{
		Items: []service.OrderEntry{{ID: entries[0].ID, Position: entries[1].Position}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/projects/"+project.ID+"/timeline/order", ReorderRequest{
		Items: []service.OrderEntry{{ID: entries[0].ID, Position: -5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/projects/"+project.ID+"/timeline/order", ReorderRequest{
		Items: []service.OrderEntry{{ID: entries[0].ID, Position: 1000}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/timeline", nil)
	entries = decodeData[[]service.TimelineEntry](t, w)
	assert.Equal(t, 1000, entries[len(entries)-1].Position)
}

func TestSaveStakeholderTemplateWithoutRows(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{StakeholderTemplateID: "stt_missing"})
	// 偏好中的模板被显式 ID 覆盖，项目没有干系人
	w := s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/stakeholders/save-template", SaveTemplateRequest{Name: "Vide"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/stakeholders/save-template", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateForTaskRoute(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{ClientName: "Dupont"})
	w := s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/timeline", nil)
	entries := decodeData[[]service.TimelineEntry](t, w)
	var systemTask, freeTask string
	for _, e := range entries {
		if e.Task == nil {
			continue
		}
		if e.Task.TaskType == model.TaskTypeSystem {
			systemTask = e.Task.ID
		} else {
			freeTask = e.Task.ID
		}
	}
	require.NotEmpty(t, systemTask)
	require.NotEmpty(t, freeTask)

	w = s.do(t, http.MethodPost, "/api/tasks/"+systemTask+"/generate", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodPut, "/api/settings", UpdateSettingsRequest{MakeWebhookURL: "https://hook.example.com/x"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/tasks/"+systemTask+"/generate", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, s.sender.calls, 1)
	assert.Equal(t, "Génération du document", s.sender.calls[0].DocumentName)
	assert.Equal(t, "Dupont", s.sender.calls[0].ClientName)
	assert.Len(t, s.sender.calls[0].Vars, 4)

	w = s.do(t, http.MethodPost, "/api/tasks/"+freeTask+"/generate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPreferencesRoutes(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decodeData[model.UserPreferences](t, w)
	assert.Equal(t, service.DefaultTimelineTemplateID, prefs.DefaultTimelineTemplateID)

	w = s.do(t, http.MethodPut, "/api/preferences", service.UpdatePreferencesRequest{DefaultTradeLotTemplateID: "tlt_default"}, UserHeader, "u_2")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/preferences", nil, UserHeader, "u_2")
	prefs = decodeData[model.UserPreferences](t, w)
	assert.Equal(t, "u_2", prefs.UserID)
	assert.Equal(t, "tlt_default", prefs.DefaultTradeLotTemplateID)
	assert.Empty(t, prefs.DefaultTimelineTemplateID)
}

func TestTemplateRoutes(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/templates", service.CreateTemplateRequest{TemplateName: "Ordre de service", Variables: []string{"date_debut"}})
	require.Equal(t, http.StatusCreated, w.Code)
	tpl := decodeData[model.DocumentTemplate](t, w)

	w = s.do(t, http.MethodPatch, "/api/templates/"+tpl.ID+"/status", map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/templates?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeData[[]model.DocumentTemplate](t, w)
	require.Len(t, active, 1)
	assert.Equal(t, service.DefaultDocumentTemplateID, active[0].ID)

	w = s.do(t, http.MethodGet, "/api/templates/t_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/templates", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/lot-templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]model.TradeLotTemplate](t, w), 1)
}

func TestReportRoutes(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{})

	w := s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/reports", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	report := decodeData[model.SiteReport](t, w)
	assert.Equal(t, 1, report.ReportNumber)

	w = s.do(t, http.MethodGet, "/api/projects/"+project.ID+"/timeline", nil)
	entries := decodeData[[]service.TimelineEntry](t, w)
	last := entries[len(entries)-1]
	assert.Equal(t, model.ItemTypeReport, last.ItemType)
	assert.Equal(t, 600, last.Position)
}

func TestAttachAndDetachTimelineItemRoutes(t *testing.T) {
	s := newTestServer(t, "")
	project := s.createProject(t, service.CreateProjectRequest{})
	w := s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/reports", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	report := decodeData[model.SiteReport](t, w)

	attach := AttachItemRequest{ItemType: model.ItemTypeReport, RefID: report.ID}
	w = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/timeline/items", attach)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodDelete, "/api/timeline/items/"+report.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/timeline/items", attach)
	require.Equal(t, http.StatusCreated, w.Code)
	item := decodeData[model.TimelineItem](t, w)
	assert.Equal(t, report.ID, item.ReportID)

	w = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/timeline/items", AttachItemRequest{ItemType: "note", RefID: report.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/timeline/items", AttachItemRequest{ItemType: model.ItemTypeStage, RefID: "s_missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(service.ErrStageNotFound))
	assert.Equal(t, http.StatusConflict, errorStatus(service.ErrPositionConflict))
	assert.Equal(t, http.StatusConflict, errorStatus(service.ErrAlreadyOnTimeline))
	assert.Equal(t, http.StatusConflict, errorStatus(&statemachine.InvalidStateTransitionError{From: "ok", To: "error"}))
	assert.Equal(t, http.StatusServiceUnavailable, errorStatus(dispatch.ErrPoolClosed))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(assert.AnError))
}
