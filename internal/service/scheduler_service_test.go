package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crehm/artflow/internal/models"
)

func TestAddPostRoundTrip(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	s := env.scheduler(t)
	ctx := context.Background()

	id, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	upcoming, err := s.GetUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, id, upcoming[0].ID)
	assert.Equal(t, models.PostStatusPending, upcoming[0].Status)

	due, err := s.GetPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, due, "future post must not show as due")
}

func TestCancelPost(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	s := env.scheduler(t)
	ctx := context.Background()

	id, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cancelled, err := s.Cancel(ctx, id)
	require.NoError(t, err)
	assert.True(t, cancelled)

	// Already terminal, second cancel is a no-op.
	cancelled, err = s.Cancel(ctx, id)
	require.NoError(t, err)
	assert.False(t, cancelled)

	post, err := env.schedules.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusCancelled, post.Status)
}

func TestExecuteDuePublishesAndRecords(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	s := env.scheduler(t)
	ctx := context.Background()

	item := env.addContent(t, "c1", "Sea Beasties")
	id, err := s.AddPost(ctx, item.ID, "", "mastodon", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	report, err := s.ExecuteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posted)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 1, env.adapters["mastodon"].imagePosts)
	assert.Contains(t, env.adapters["mastodon"].lastText, "Sea Beasties")

	post, err := env.schedules.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPosted, post.Status)
	assert.Equal(t, env.adapters["mastodon"].resultURL, post.ResultURL)

	// Success and the publish record land together.
	reloaded, err := env.contents.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.PublishCountFor("mastodon"))

	entries, err := env.plog.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LogOutcomeSuccess, entries[0].Outcome)
}

func TestExecuteDueSkipsCancelled(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	s := env.scheduler(t)
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")
	id, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = s.Cancel(ctx, id)
	require.NoError(t, err)

	report, err := s.ExecuteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Posted)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, env.adapters["mastodon"].imagePosts)
}

func TestExecuteDueMarksFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown destination", func(t *testing.T) {
		env := newTestEnv(t, "mastodon")
		s := env.scheduler(t)

		env.addContent(t, "c1", "Dunes")
		id, err := s.AddPost(ctx, "c1", "", "friendster", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		report, err := s.ExecuteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)

		post, err := env.schedules.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusFailed, post.Status)
		assert.Contains(t, post.ErrorMessage, "friendster")
	})

	t.Run("missing content", func(t *testing.T) {
		env := newTestEnv(t, "mastodon")
		s := env.scheduler(t)

		id, err := s.AddPost(ctx, "ghost", "", "mastodon", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		report, err := s.ExecuteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)

		post, err := env.schedules.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Contains(t, post.ErrorMessage, "content not found")
	})

	t.Run("destination not configured", func(t *testing.T) {
		env := newTestEnv(t, "mastodon")
		env.adapters["mastodon"].configured = false
		s := env.scheduler(t)

		env.addContent(t, "c1", "Dunes")
		_, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		report, err := s.ExecuteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 0, env.adapters["mastodon"].imagePosts)
	})

	t.Run("asset resolution failure", func(t *testing.T) {
		env := newTestEnv(t, "mastodon")
		env.assets.err = errResolverDown
		s := env.scheduler(t)

		env.addContent(t, "c1", "Dunes")
		_, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		report, err := s.ExecuteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
	})

	t.Run("adapter panic becomes failure", func(t *testing.T) {
		env := newTestEnv(t, "mastodon")
		env.adapters["mastodon"].panicWith = "nil dereference in upload"
		s := env.scheduler(t)

		env.addContent(t, "c1", "Dunes")
		id, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		report, err := s.ExecuteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)

		post, err := env.schedules.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Contains(t, post.ErrorMessage, "adapter panic")
	})
}

func TestExecuteDueContinuesAfterFailure(t *testing.T) {
	env := newTestEnv(t, "mastodon", "pixelfed")
	env.adapters["mastodon"].failWith = "api returned 500"
	s := env.scheduler(t)
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")
	_, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)
	_, err = s.AddPost(ctx, "c1", "", "pixelfed", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	report, err := s.ExecuteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, env.adapters["pixelfed"].imagePosts)
}

func TestExecuteDueDispatchesVideo(t *testing.T) {
	env := newTestEnv(t, "youtube")
	env.assets.kind = AssetKindVideo
	s := env.scheduler(t)
	ctx := context.Background()

	env.addContent(t, "c1", "Studio Tour")
	_, err := s.AddPost(ctx, "c1", "", "youtube", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	report, err := s.ExecuteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posted)
	assert.Equal(t, 1, env.adapters["youtube"].videoPosts)
	assert.Equal(t, 0, env.adapters["youtube"].imagePosts)
}

func TestGetHistoryOnlyTerminalOutcomes(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	s := env.scheduler(t)
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")
	_, err := s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.AddPost(ctx, "c1", "", "mastodon", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = s.ExecuteDue(ctx)
	require.NoError(t, err)

	history, err := s.GetHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.PostStatusPosted, history[0].Status)
}
