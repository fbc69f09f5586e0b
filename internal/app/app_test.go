package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/maitrisea/backend/config"
	"github.com/maitrisea/backend/internal/model"
	"github.com/maitrisea/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Backend = "gorm"
	cfg.Database.Type = "sqlite"
	cfg.Workspace.ID = "ws_1"
	cfg.Workspace.DefaultUserID = "u_1"
	cfg.Worker.PoolSize = 2
	return cfg
}

func TestNewSeedsAndPersistsWithSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "data", "maitrisea.db")
	ctx := context.Background()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, a.Seed(ctx, ""))
	project, err := a.Scaffold.CreateProject(ctx, service.CreateProjectRequest{ProjectName: "Atelier"}, "u_1")
	require.NoError(t, err)
	a.Close()

	// 重新打开后状态仍在
	b, err := New(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()
	detail, err := b.Projects.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atelier", detail.Project.ProjectName)
	assert.Len(t, detail.Fields, 4)

	templates, err := b.Catalog.ListDocumentTemplates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Storage.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Key = model.SnapshotKey
	ctx := context.Background()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.False(t, mr.Exists(model.SnapshotKey))

	require.NoError(t, a.Seed(ctx, "u_7"))
	assert.True(t, mr.Exists(model.SnapshotKey))
	prefs, err := a.Settings.GetPreferences(ctx, "u_7")
	require.NoError(t, err)
	assert.Equal(t, service.DefaultTimelineTemplateID, prefs.DefaultTimelineTemplateID)
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "s3"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
