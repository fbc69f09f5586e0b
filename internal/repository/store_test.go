package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/maitrisea/backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func sampleSnapshot() *model.Snapshot {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := model.NewSnapshot()
	snap.Projects = []model.Project{{
		ID: "p_1", WorkspaceID: "ws_1", ProjectName: "Maison Dupont", ClientName: "Dupont",
		Category: model.CategoryProspect, StatusGlobal: model.DefaultStatusGlobal,
		AssignedUsers: []string{"u_1"}, CreatedAt: now, UpdatedAt: now,
	}}
	snap.Stages = []model.Stage{{ID: "s_1", ProjectID: "p_1", StageName: "APS", Status: model.StatusNotStarted, CreatedAt: now, UpdatedAt: now}}
	snap.Tasks = []model.Task{{ID: "t_1", ProjectID: "p_1", TaskName: "Relancer devis", TaskType: model.TaskTypeFree, Status: model.StatusNotStarted, CreatedAt: now}}
	snap.TimelineItems = []model.TimelineItem{
		{ID: "ti_1", ProjectID: "p_1", ItemType: model.ItemTypeStage, StageID: "s_1", Position: 100, CreatedAt: now, UpdatedAt: now},
		{ID: "ti_2", ProjectID: "p_1", ItemType: model.ItemTypeTask, TaskID: "t_1", Position: 200, CreatedAt: now, UpdatedAt: now},
	}
	snap.Templates = []model.DocumentTemplate{{
		ID: "t_contract_v1", TemplateName: "Contrat", TemplateType: model.TemplateContract,
		Variables: []string{"client_nom", "budget_travaux"}, IsActive: true, AnalysisStatus: model.AnalysisOK,
		CreatedAt: now, UpdatedAt: now,
	}}
	snap.TimelineTemplates = []model.TimelineTemplate{{
		ID: "tt_1", TemplateName: "Court",
		Items: []model.TimelineDescriptor{{Name: "APS", ItemType: model.ItemTypeStage}}, CreatedAt: now,
	}}
	snap.ProjectFields = []model.ProjectField{{
		ID: "f_1", ProjectID: "p_1", Key: "client_nom", Label: "client nom", Value: "Dupont",
		UsedInTemplateIDs: model.NewIDSet("t_contract_v1"), CreatedFromTemplateID: "t_contract_v1", UpdatedAt: now,
	}}
	snap.TemplateLinks = []model.ProjectTemplateLink{{ID: "l_1", ProjectID: "p_1", TemplateID: "t_contract_v1", Status: model.LinkActive, CreatedAt: now}}
	snap.Settings = &model.AppSettings{ID: 1, MakeWebhookURL: "https://hook.example.test/gen"}
	snap.UserPreferences = []model.UserPreferences{{UserID: "u_1", DefaultDocumentTemplateIDs: []string{"t_contract_v1"}}}
	snap.Stakeholders = []model.Stakeholder{{ID: "stk_1", ProjectID: "p_1", Role: "CSPS"}}
	snap.TradeLots = []model.TradeLot{{ID: "lot_1", ProjectID: "p_1", LotName: "Peinture"}}
	snap.SiteReports = []model.SiteReport{{
		ID: "r_1", ProjectID: "p_1", ReportNumber: 1, Status: model.ReportDraft,
		LotObservations: []model.LotObservation{{LotID: "lot_1", LotName: "Peinture", Photos: []string{}}}, CreatedAt: now,
	}}
	snap.StakeholderTemplates = []model.StakeholderTemplate{{ID: "stt_1", TemplateName: "Equipe", Roles: []string{"CSPS"}, CreatedAt: now}}
	snap.TradeLotTemplates = []model.TradeLotTemplate{{ID: "tlt_1", TemplateName: "Lots", Lots: []string{"Peinture"}, CreatedAt: now}}
	return snap
}

func assertSampleRoundTrip(t *testing.T, got *model.Snapshot) {
	t.Helper()
	require.Len(t, got.Projects, 1)
	assert.Equal(t, []string{"u_1"}, got.Projects[0].AssignedUsers)
	require.Len(t, got.TimelineItems, 2)
	require.Len(t, got.ProjectFields, 1)
	assert.Equal(t, model.IDSet{"t_contract_v1"}, got.ProjectFields[0].UsedInTemplateIDs)
	assert.Equal(t, "Dupont", got.ProjectFields[0].Value)
	require.Len(t, got.Templates, 1)
	assert.Equal(t, []string{"client_nom", "budget_travaux"}, got.Templates[0].Variables)
	require.Len(t, got.TimelineTemplates, 1)
	assert.Equal(t, "APS", got.TimelineTemplates[0].Items[0].Name)
	assert.Equal(t, "https://hook.example.test/gen", got.Settings.MakeWebhookURL)
	require.Len(t, got.UserPreferences, 1)
	assert.Equal(t, []string{"t_contract_v1"}, got.UserPreferences[0].DefaultDocumentTemplateIDs)
	require.Len(t, got.SiteReports, 1)
	assert.Equal(t, "Peinture", got.SiteReports[0].LotObservations[0].LotName)
	assert.Equal(t, []string{"CSPS"}, got.StakeholderTemplates[0].Roles)
	assert.Equal(t, []string{"Peinture"}, got.TradeLotTemplates[0].Lots)
	assert.Len(t, got.Stakeholders, 1)
	assert.Len(t, got.TradeLots, 1)
}

func TestGormStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Projects)
	assert.NotNil(t, empty.Settings)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertSampleRoundTrip(t, got)
}

func TestGormStore_SaveOverwritesWholeSet(t *testing.T) {
	db := newTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	next := sampleSnapshot()
	next.TimelineItems = next.TimelineItems[:1]
	next.Stakeholders = nil
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.TimelineItems, 1)
	assert.Empty(t, got.Stakeholders)

	var count int64
	require.NoError(t, db.Model(&model.AppSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "")
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Templates)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	assert.True(t, mr.Exists(model.SnapshotKey))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertSampleRoundTrip(t, got)
}

func TestRedisStore_MissingCollectionsDefaultToEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set("custom_key", `{"projects":[{"id":"p_9","project_name":"Ancien"}]}`))

	got, err := NewRedisStore(client, "custom_key").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)
	assert.NotNil(t, got.Stages)
	assert.NotNil(t, got.TimelineItems)
	assert.NotNil(t, got.UserPreferences)
	assert.NotNil(t, got.Settings)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(model.SnapshotKey, "not-json"))
	_, err := NewRedisStore(client, "").Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, snap))
	snap.Projects[0].ProjectName = "modifié après sauvegarde"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Maison Dupont", got.Projects[0].ProjectName)
	assert.Equal(t, 1, store.Saves())
}
