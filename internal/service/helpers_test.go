package service

import (
	"context"
	"testing"
	"time"

	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/pkg/idgen"
	"github.com/maitrisea/backend/internal/repository"
)

type testEnv struct {
	store *repository.MemoryStore
	ws    *repository.Workspace
	opts  Options
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &testEnv{
		store: store,
		ws:    repository.NewWorkspace(store),
		opts: Options{
			WorkspaceID: "ws_1",
			IDs:         idgen.Sequence(),
			Clock: func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			},
		},
	}
}

// seed 直接写入测试数据
func (e *testEnv) seed(t *testing.T, fn func(s *model.Snapshot)) {
	t.Helper()
	err := e.ws.Update(context.Background(), func(s *model.Snapshot) error {
		fn(s)
		return nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func (e *testEnv) snapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	var copied *model.Snapshot
	err := e.ws.View(context.Background(), func(s *model.Snapshot) error {
		c := *s
		copied = &c
		return nil
	})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	return copied
}

func addProject(s *model.Snapshot, id string) {
	s.Projects = append(s.Projects, model.Project{ID: id, ProjectName: "Projet " + id, ClientName: "Client " + id})
}

func addDocTemplate(s *model.Snapshot, id string, vars ...string) {
	s.Templates = append(s.Templates, model.DocumentTemplate{
		ID: id, TemplateName: "Modèle " + id, Variables: vars, IsActive: true, AnalysisStatus: model.AnalysisOK,
	})
}

// fieldState 字段 key → (值, 引用集合)，用于比较前后状态
type fieldState struct {
	Value string
	Refs  []string
}

func fieldsOf(s *model.Snapshot, projectID string) map[string]fieldState {
	out := make(map[string]fieldState)
	for _, f := range s.ProjectFieldsOf(projectID) {
		out[f.Key] = fieldState{Value: f.Value, Refs: append([]string(nil), f.UsedInTemplateIDs...)}
	}
	return out
}

func timelineNames(s *model.Snapshot, projectID string) []string {
	var names []string
	for _, it := range s.ProjectTimeline(projectID) {
		switch it.ItemType {
		case model.ItemTypeStage:
			names = append(names, "stage:"+s.FindStage(it.StageID).StageName)
		case model.ItemTypeTask:
			t := s.FindTask(it.TaskID)
			names = append(names, "task:"+t.TaskName+":"+string(t.TaskType))
		case model.ItemTypeReport:
			names = append(names, "report:"+it.ReportID)
		}
	}
	return names
}

func positions(s *model.Snapshot, projectID string) []int {
	var out []int
	for _, it := range s.ProjectTimeline(projectID) {
		out = append(out, it.Position)
	}
	return out
}
