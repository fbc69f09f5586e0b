package service

import (
	"context"
	"testing"

	"github.com/maitrisea/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineTemplateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_src")
		addProject(s, "p_dst")
	})
	timeline := NewTimelineService(env.ws, env.opts)
	_, err := timeline.AddStage(ctx, "p_src", AddStageRequest{StageName: "Esquisse"})
	require.NoError(t, err)
	_, err = timeline.AddTask(ctx, "p_src", AddTaskRequest{TaskName: "Contrat", TaskType: model.TaskTypeSystem, SystemActionKey: "GENERATE_DOC"})
	require.NoError(t, err)
	_, err = timeline.AddStage(ctx, "p_src", AddStageRequest{StageName: "DCE"})
	require.NoError(t, err)

	svc := NewSnapshotService(env.ws, env.opts)
	tt, err := svc.SaveTimelineAsTemplate(ctx, "p_src", "  Mon modèle  ")
	require.NoError(t, err)
	assert.Equal(t, "Mon modèle", tt.TemplateName)
	assert.Equal(t, []model.TimelineDescriptor{
		{Name: "Esquisse", ItemType: model.ItemTypeStage},
		{Name: "Contrat", ItemType: model.ItemTypeTask, TaskType: model.TaskTypeSystem, SystemActionKey: "GENERATE_DOC"},
		{Name: "DCE", ItemType: model.ItemTypeStage},
	}, tt.Items)

	require.NoError(t, svc.LoadTimelineTemplate(ctx, "p_dst", tt.ID))
	snap := env.snapshot(t)
	assert.Equal(t, timelineNames(snap, "p_src"), timelineNames(snap, "p_dst"))
	assert.Equal(t, []int{100, 200, 300}, positions(snap, "p_dst"))
}

func TestSaveTimelineAsTemplateSkipsReports(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		s.SiteReports = append(s.SiteReports, model.SiteReport{ID: "r_1", ProjectID: "p_1", ReportNumber: 1})
		s.TimelineItems = append(s.TimelineItems,
			model.TimelineItem{ID: "ti_1", ProjectID: "p_1", ItemType: model.ItemTypeReport, ReportID: "r_1", Position: 100},
			model.TimelineItem{ID: "ti_2", ProjectID: "p_1", ItemType: model.ItemTypeStage, StageID: "s_gone", Position: 200},
		)
	})
	svc := NewSnapshotService(env.ws, env.opts)

	tt, err := svc.SaveTimelineAsTemplate(context.Background(), "p_1", "Avec rapport")
	require.NoError(t, err)
	// 阶段内容缺失时使用默认名称
	assert.Equal(t, []model.TimelineDescriptor{{Name: "Étape", ItemType: model.ItemTypeStage}}, tt.Items)

	_, err = svc.SaveTimelineAsTemplate(context.Background(), "p_1", " ")
	assert.ErrorIs(t, err, ErrInvalidTemplateData)
	_, err = svc.SaveTimelineAsTemplate(context.Background(), "p_missing", "x")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestTimelineTemplateBlankNamesUseDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		addProject(s, "p_2")
		s.Stages = append(s.Stages, model.Stage{ID: "s_blank", ProjectID: "p_1", StageName: ""})
		s.Tasks = append(s.Tasks, model.Task{ID: "t_blank", ProjectID: "p_1", TaskName: "  ", TaskType: model.TaskTypeAuto})
		s.TimelineItems = append(s.TimelineItems,
			model.TimelineItem{ID: "ti_1", ProjectID: "p_1", ItemType: model.ItemTypeStage, StageID: "s_blank", Position: 100},
			model.TimelineItem{ID: "ti_2", ProjectID: "p_1", ItemType: model.ItemTypeTask, TaskID: "t_blank", Position: 200},
		)
		s.TimelineTemplates = append(s.TimelineTemplates, model.TimelineTemplate{
			ID: "tt_blank",
			Items: []model.TimelineDescriptor{
				{ItemType: model.ItemTypeStage},
				{Name: " ", ItemType: model.ItemTypeTask},
			},
		})
	})
	svc := NewSnapshotService(env.ws, env.opts)

	tt, err := svc.SaveTimelineAsTemplate(ctx, "p_1", "Sans noms")
	require.NoError(t, err)
	assert.Equal(t, []model.TimelineDescriptor{
		{Name: "Étape", ItemType: model.ItemTypeStage},
		{Name: "Tâche", ItemType: model.ItemTypeTask, TaskType: model.TaskTypeAuto},
	}, tt.Items)

	require.NoError(t, svc.LoadTimelineTemplate(ctx, "p_2", "tt_blank"))
	assert.Equal(t, []string{"stage:Étape", "task:Tâche:free"}, timelineNames(env.snapshot(t), "p_2"))
}

func TestLoadTimelineTemplatePreservesReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		s.Stages = append(s.Stages,
			model.Stage{ID: "s_a", ProjectID: "p_1", StageName: "A"},
			model.Stage{ID: "s_b", ProjectID: "p_1", StageName: "B"},
		)
		s.SiteReports = append(s.SiteReports, model.SiteReport{ID: "r_1", ProjectID: "p_1", ReportNumber: 7})
		s.TimelineItems = append(s.TimelineItems,
			model.TimelineItem{ID: "ti_a", ProjectID: "p_1", ItemType: model.ItemTypeStage, StageID: "s_a", Position: 100},
			model.TimelineItem{ID: "ti_r", ProjectID: "p_1", ItemType: model.ItemTypeReport, ReportID: "r_1", Position: 200},
			model.TimelineItem{ID: "ti_b", ProjectID: "p_1", ItemType: model.ItemTypeStage, StageID: "s_b", Position: 300},
		)
		s.TimelineTemplates = append(s.TimelineTemplates, model.TimelineTemplate{
			ID: "tt_new",
			Items: []model.TimelineDescriptor{
				{Name: "X", ItemType: model.ItemTypeStage},
				{Name: "Y", ItemType: model.ItemTypeTask},
				{Name: "Z", ItemType: model.ItemTypeStage},
			},
		})
	})
	svc := NewSnapshotService(env.ws, env.opts)

	require.NoError(t, svc.LoadTimelineTemplate(ctx, "p_1", "tt_new"))

	snap := env.snapshot(t)
	assert.Nil(t, snap.FindStage("s_a"))
	assert.Nil(t, snap.FindStage("s_b"))
	assert.Equal(t, []string{"stage:X", "report:r_1", "task:Y:free", "stage:Z"}, timelineNames(snap, "p_1"))
	assert.Equal(t, []int{100, 200, 300, 400}, positions(snap, "p_1"))
	report := snap.FindReport("r_1")
	require.NotNil(t, report)
	assert.Equal(t, 7, report.ReportNumber)
}

func TestLoadTimelineTemplateNoop(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		s.TimelineTemplates = append(s.TimelineTemplates, model.TimelineTemplate{ID: "tt_empty"})
	})
	saves := env.store.Saves()
	svc := NewSnapshotService(env.ws, env.opts)

	require.NoError(t, svc.LoadTimelineTemplate(context.Background(), "p_1", "tt_empty"))
	require.NoError(t, svc.LoadTimelineTemplate(context.Background(), "p_1", "tt_missing"))
	assert.Equal(t, saves, env.store.Saves())
}

func TestStakeholderTemplateSaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		addProject(s, "p_2")
		s.Stakeholders = append(s.Stakeholders,
			model.Stakeholder{ID: "stk_a", ProjectID: "p_1", Role: "Maître d'ouvrage", CompanyName: "SCI"},
			model.Stakeholder{ID: "stk_b", ProjectID: "p_1", Role: "CSPS"},
			model.Stakeholder{ID: "stk_c", ProjectID: "p_2", Role: "Géomètre"},
		)
	})
	svc := NewSnapshotService(env.ws, env.opts)

	tpl, err := svc.SaveStakeholderTemplate(ctx, "p_1", "Equipe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maître d'ouvrage", "CSPS"}, tpl.Roles)

	added, err := svc.LoadStakeholderTemplate(ctx, "p_2", tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	var roles []string
	for _, st := range env.snapshot(t).Stakeholders {
		if st.ProjectID == "p_2" {
			roles = append(roles, st.Role)
		}
	}
	assert.Equal(t, []string{"Géomètre", "Maître d'ouvrage", "CSPS"}, roles)

	added, err = svc.LoadStakeholderTemplate(ctx, "p_2", "stt_missing")
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSaveTemplateRejectsEmptyProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) { addProject(s, "p_1") })
	svc := NewSnapshotService(env.ws, env.opts)

	_, err := svc.SaveStakeholderTemplate(ctx, "p_1", "Vide")
	assert.ErrorIs(t, err, ErrNothingToSnapshot)
	_, err = svc.SaveLotTemplate(ctx, "p_1", "Vide")
	assert.ErrorIs(t, err, ErrNothingToSnapshot)

	snap := env.snapshot(t)
	assert.Empty(t, snap.StakeholderTemplates)
	assert.Empty(t, snap.TradeLotTemplates)
}

func TestLotTemplateSaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seed(t, func(s *model.Snapshot) {
		addProject(s, "p_1")
		s.TradeLots = append(s.TradeLots,
			model.TradeLot{ID: "lot_a", ProjectID: "p_1", LotName: "Gros œuvre"},
			model.TradeLot{ID: "lot_b", ProjectID: "p_1", LotName: "Peinture"},
		)
	})
	svc := NewSnapshotService(env.ws, env.opts)

	tpl, err := svc.SaveLotTemplate(ctx, "p_1", "Rénovation")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gros œuvre", "Peinture"}, tpl.Lots)

	added, err := svc.LoadLotTemplate(ctx, "p_1", tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	_, _, _, lots := countByProject(env.snapshot(t), "p_1")
	assert.Equal(t, 4, lots)

	_, err = svc.LoadLotTemplate(ctx, "p_missing", tpl.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
