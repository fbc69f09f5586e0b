package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSettings(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSettingsService(env.ws)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.MakeWebhookURL)

	settings, err = svc.UpdateWebhookURL(ctx, "https://hook.example.com/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://hook.example.com/abc", settings.MakeWebhookURL)
	saves := env.store.Saves()

	_, err = svc.UpdateWebhookURL(ctx, "https://hook.example.com/abc")
	require.NoError(t, err)
	assert.Equal(t, saves, env.store.Saves())
}

func TestUserPreferences(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSettingsService(env.ws)
	ctx := context.Background()

	prefs, err := svc.GetPreferences(ctx, "u_1")
	require.NoError(t, err)
	assert.Equal(t, "u_1", prefs.UserID)
	assert.Empty(t, prefs.DefaultDocumentTemplateIDs)

	_, err = svc.UpdatePreferences(ctx, "u_1", UpdatePreferencesRequest{
		DefaultTimelineTemplateID:  "tt_a",
		DefaultDocumentTemplateIDs: []string{"doc_a", "doc_a", "doc_b"},
	})
	require.NoError(t, err)
	_, err = svc.UpdatePreferences(ctx, "u_2", UpdatePreferencesRequest{DefaultTradeLotTemplateID: "tlt_x"})
	require.NoError(t, err)

	prefs, err = svc.GetPreferences(ctx, "u_1")
	require.NoError(t, err)
	assert.Equal(t, "tt_a", prefs.DefaultTimelineTemplateID)
	assert.Equal(t, []string{"doc_a", "doc_b"}, prefs.DefaultDocumentTemplateIDs)

	// 整体替换
	_, err = svc.UpdatePreferences(ctx, "u_1", UpdatePreferencesRequest{DefaultStakeholderTemplateID: "stt_a"})
	require.NoError(t, err)
	prefs, err = svc.GetPreferences(ctx, "u_1")
	require.NoError(t, err)
	assert.Empty(t, prefs.DefaultTimelineTemplateID)
	assert.Equal(t, "stt_a", prefs.DefaultStakeholderTemplateID)

	assert.Len(t, env.snapshot(t).UserPreferences, 2)
}
