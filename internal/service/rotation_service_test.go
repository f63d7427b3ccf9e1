package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crehm/artflow/internal/models"
)

func TestRunOnceAdvancesEveryDestination(t *testing.T) {
	env := newTestEnv(t, "mastodon", "pixelfed")
	r := env.rotation(t, []string{"mastodon", "pixelfed"})
	ctx := context.Background()

	env.addContent(t, "c1", "Sea Beasties")

	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Round)
	assert.Equal(t, "c1", report.ContentID)
	assert.ElementsMatch(t, []string{"mastodon", "pixelfed"}, report.Succeeded)
	assert.Empty(t, report.Failed)

	item, err := env.contents.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.PublishCountFor("mastodon"))
	assert.Equal(t, 1, item.PublishCountFor("pixelfed"))
	assert.Equal(t, env.adapters["mastodon"].resultURL, item.Records["mastodon"].PublishedURL)
}

func TestRotationCoversLibraryBeforeRepeating(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	r := env.rotation(t, []string{"mastodon"})
	ctx := context.Background()

	ids := []string{"c1", "c2", "c3"}
	for _, id := range ids {
		env.addContent(t, id, "Painting "+id)
	}

	posted := make(map[string]bool)
	for range ids {
		report, err := r.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Round)
		assert.False(t, posted[report.ContentID], "item %s repeated before the library was exhausted", report.ContentID)
		posted[report.ContentID] = true
	}
	assert.Len(t, posted, len(ids))

	// Library exhausted; the next run rolls into round two.
	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Round)

	round, err := r.CurrentRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, round)
}

func TestRunOnceFailureStillAdvancesRecord(t *testing.T) {
	env := newTestEnv(t, "mastodon", "pixelfed")
	env.adapters["pixelfed"].failWith = "api returned 500"
	r := env.rotation(t, []string{"mastodon", "pixelfed"})
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")

	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mastodon"}, report.Succeeded)
	assert.Equal(t, []string{"pixelfed"}, report.Failed)

	// The failed destination is done for this round too; it is not retried
	// on every subsequent run.
	item, err := env.contents.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.PublishCountFor("pixelfed"))

	entries, err := env.plog.Recent(ctx, 10)
	require.NoError(t, err)
	outcomes := make(map[string]int)
	for _, e := range entries {
		outcomes[e.Outcome]++
	}
	assert.Equal(t, 1, outcomes[models.LogOutcomeSuccess])
	assert.Equal(t, 1, outcomes[models.LogOutcomeFailure])
}

func TestRunOnceCredentialFailure(t *testing.T) {
	env := newTestEnv(t, "flickr")
	env.adapters["flickr"].verifyOK = false
	r := env.rotation(t, []string{"flickr"})
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")

	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"flickr"}, report.Failed)
	assert.Equal(t, 0, env.adapters["flickr"].imagePosts, "must not post with rejected credentials")

	entries, err := env.plog.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LogOutcomeCredentialFailure, entries[0].Outcome)

	item, err := env.contents.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.PublishCountFor("flickr"))
}

func TestRunOnceEmptyLibrary(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	r := env.rotation(t, []string{"mastodon"})

	_, err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrNoEligibleContent)
}

func TestRunOnceSkipsFullyPublishedItems(t *testing.T) {
	env := newTestEnv(t, "mastodon")
	r := env.rotation(t, []string{"mastodon"})
	ctx := context.Background()

	env.addContent(t, "c1", "Dunes")
	env.addContent(t, "c2", "Tides")

	first, err := r.RunOnce(ctx)
	require.NoError(t, err)

	second, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ContentID, second.ContentID)
}
