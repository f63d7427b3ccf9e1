package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crehm/artflow/internal/models"
	"github.com/crehm/artflow/internal/platform"
	"github.com/crehm/artflow/internal/repository"
)

// testEnv wires real repositories over a throwaway sqlite file with fake
// destination adapters and a fake asset resolver.
type testEnv struct {
	db        *sql.DB
	registry  *platform.Registry
	adapters  map[string]*fakeAdapter
	assets    *fakeResolver
	plog      *PostLogger
	contents  repository.ContentRepository
	schedules repository.ScheduleRepository
	rounds    repository.RoundRepository
	sessions  repository.SessionRepository
	logs      repository.PostLogRepository
}

func newTestEnv(t *testing.T, destinations ...string) *testEnv {
	t.Helper()

	db, err := repository.Open(filepath.Join(t.TempDir(), "artflow_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(db))

	env := &testEnv{
		db:        db,
		registry:  platform.NewRegistry(),
		adapters:  make(map[string]*fakeAdapter),
		assets:    &fakeResolver{path: "/tmp/asset.jpg", kind: AssetKindImage},
		contents:  repository.NewContentRepository(db),
		schedules: repository.NewScheduleRepository(db),
		rounds:    repository.NewRoundRepository(db),
		sessions:  repository.NewSessionRepository(db),
		logs:      repository.NewPostLogRepository(db),
	}
	env.plog = NewPostLogger(env.logs, t.TempDir(), slog.Default())

	for _, name := range destinations {
		adapter := &fakeAdapter{name: name, configured: true, verifyOK: true, resultURL: "https://" + name + ".example/post/1"}
		env.adapters[name] = adapter
		env.registry.Register(name, func() platform.Platform { return adapter })
	}
	return env
}

func (e *testEnv) scheduler(t *testing.T) SchedulerService {
	t.Helper()
	return NewSchedulerService(e.db, e.schedules, e.contents, e.registry,
		e.assets, e.plog, 75, slog.Default())
}

func (e *testEnv) rotation(t *testing.T, destinations []string) RotationService {
	t.Helper()
	return NewRotationService(e.contents, e.rounds, e.registry,
		e.assets, e.plog, destinations, 75, slog.Default())
}

func (e *testEnv) addContent(t *testing.T, id, title string) *models.ContentItem {
	t.Helper()
	item := &models.ContentItem{
		ID:        id,
		Title:     title,
		Subject:   "seascape",
		AssetRef:  "r2://" + id + ".jpg",
		CreatedAt: time.Now(),
		Records:   make(map[string]*models.PublishRecord),
	}
	require.NoError(t, e.contents.Create(context.Background(), item))
	return item
}

// fakeAdapter is an in-memory destination. A single instance is shared
// across registry resolutions so call counts survive.
type fakeAdapter struct {
	name       string
	configured bool
	verifyOK   bool
	verifyErr  error
	failWith   string
	panicWith  string
	resultURL  string

	imagePosts int
	videoPosts int
	lastText   string
	lastAlt    string
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) DisplayName() string { return f.name }
func (f *fakeAdapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{SupportsImages: true, SupportsVideo: true}
}
func (f *fakeAdapter) IsConfigured() bool { return f.configured }

func (f *fakeAdapter) VerifyCredentials(ctx context.Context) (bool, error) {
	return f.verifyOK, f.verifyErr
}

func (f *fakeAdapter) PostImage(ctx context.Context, path, text, altText string) platform.PublishResult {
	f.imagePosts++
	f.lastText = text
	f.lastAlt = altText
	return f.result()
}

func (f *fakeAdapter) PostVideo(ctx context.Context, path, text string) platform.PublishResult {
	f.videoPosts++
	f.lastText = text
	return f.result()
}

func (f *fakeAdapter) result() platform.PublishResult {
	if f.panicWith != "" {
		panic(f.panicWith)
	}
	if f.failWith != "" {
		return platform.PublishResult{Success: false, Error: f.failWith}
	}
	return platform.PublishResult{Success: true, URL: f.resultURL}
}

type fakeResolver struct {
	path string
	kind string
	err  error
}

func (f *fakeResolver) Resolve(ctx context.Context, ref string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.path, f.kind, f.err
}

var errResolverDown = errors.New("asset storage unreachable")
