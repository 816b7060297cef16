package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/trainfetch/trainfetch/internal/model"
)

type fakeLister struct {
	links []string
	err   error
}

func (f *fakeLister) Fetch(_ context.Context, _ string) ([]string, error) {
	return f.links, f.err
}

// fakeFetcher maps links to canned content; missing links fail.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, link string) (string, string, error) {
	content, ok := f.pages[link]
	if !ok {
		return "", "", errors.New("no content retrieved: " + link)
	}
	return content, "direct", nil
}

// passthroughExtractor trims angle brackets crudely for test visibility.
type passthroughExtractor struct{}

func (passthroughExtractor) Text(source string) string {
	return strings.TrimSpace(source)
}

type fakeSaver struct {
	saved   *model.Dataset
	path    string
	err     error
	calls   int
	savedAt time.Time
}

func (f *fakeSaver) Save(dataset *model.Dataset, path string) error {
	f.calls++
	f.saved = dataset
	f.path = path
	f.savedAt = dataset.GeneratedAt
	return f.err
}

type fakeStore struct {
	run *model.Run
	err error
}

func (f *fakeStore) SaveRun(_ context.Context, run *model.Run) (int64, error) {
	f.run = run
	return 42, f.err
}

type fakePublisher struct {
	configured bool
	suppressed bool
	key        string
	err        error
	calls      int
}

func (f *fakePublisher) Configured() bool { return f.configured }
func (f *fakePublisher) Suppressed() bool { return f.suppressed }

func (f *fakePublisher) Publish(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.key, f.err
}

func TestFetchLinksStep(t *testing.T) {
	t.Parallel()

	t.Run("stores links on the run", func(t *testing.T) {
		t.Parallel()

		step := NewFetchLinksStep(&fakeLister{links: []string{"https://a.example/"}}, "https://lists.example/links.txt")
		run := model.NewRun("https://lists.example/links.txt")

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(run.Links) != 1 || run.Links[0] != "https://a.example/" {
			t.Errorf("unexpected links %v", run.Links)
		}
	})

	t.Run("list failure is fatal and leaves no dataset entries", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{err: errors.New("status 500")}
		step := NewFetchLinksStep(lister, "https://lists.example/links.txt")
		saver := &fakeSaver{}

		p := New()
		p.AddSteps(step, NewSaveDatasetStep(saver, "dataset.json"))

		run := model.NewRun("https://lists.example/links.txt")
		if err := p.Execute(context.Background(), run); err == nil {
			t.Fatal("expected pipeline to fail")
		}
		if saver.calls != 0 {
			t.Error("expected no dataset written after a list failure")
		}
		if run.Dataset.Len() != 0 {
			t.Errorf("expected empty dataset, got %d entries", run.Dataset.Len())
		}
	})
}

func TestHarvestStep(t *testing.T) {
	t.Parallel()

	t.Run("failed link stored as empty string, others kept", func(t *testing.T) {
		t.Parallel()

		fetch := &fakeFetcher{pages: map[string]string{
			"https://a.example/": "text a",
			"https://c.example/": "text c",
		}}
		step := NewHarvestStep(fetch, passthroughExtractor{})

		run := model.NewRun("https://lists.example/links.txt")
		run.Links = []string{"https://a.example/", "https://b.example/", "https://c.example/"}

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if run.Dataset.Len() != 3 {
			t.Fatalf("expected 3 entries, got %d", run.Dataset.Len())
		}
		if run.Dataset.Entries["https://b.example/"] != "" {
			t.Errorf("expected failed link stored as empty string")
		}
		if run.Dataset.Entries["https://a.example/"] != "text a" {
			t.Errorf("unexpected entry %q", run.Dataset.Entries["https://a.example/"])
		}
		if run.LoadedCount() != 2 || run.FailedCount() != 1 {
			t.Errorf("unexpected counts loaded=%d failed=%d", run.LoadedCount(), run.FailedCount())
		}
	})

	t.Run("preserves list order in dataset", func(t *testing.T) {
		t.Parallel()

		fetch := &fakeFetcher{pages: map[string]string{
			"https://b.example/": "b", "https://a.example/": "a",
		}}
		step := NewHarvestStep(fetch, passthroughExtractor{})

		run := model.NewRun("https://lists.example/links.txt")
		run.Links = []string{"https://b.example/", "https://a.example/"}

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Dataset.Links[0] != "https://b.example/" || run.Dataset.Links[1] != "https://a.example/" {
			t.Errorf("expected source order preserved, got %v", run.Dataset.Links)
		}
	})

	t.Run("cancellation aborts the walk", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := NewHarvestStep(&fakeFetcher{}, passthroughExtractor{})
		run := model.NewRun("https://lists.example/links.txt")
		run.Links = []string{"https://a.example/"}

		if err := step.Do(ctx, run); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(run.Outcomes) != 0 {
			t.Error("expected no outcomes after immediate cancel")
		}
	})
}

func TestSaveDatasetStep(t *testing.T) {
	t.Parallel()

	t.Run("stamps and saves", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.Local)
		saver := &fakeSaver{}
		step := NewSaveDatasetStep(saver, "out/dataset.json", WithClock(func() time.Time { return now }))

		run := model.NewRun("https://lists.example/links.txt")
		run.Dataset.Add("https://a.example/", "text")

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saver.path != "out/dataset.json" {
			t.Errorf("unexpected path %q", saver.path)
		}
		if !saver.savedAt.Equal(now) {
			t.Errorf("expected dataset stamped before save, got %v", saver.savedAt)
		}
		if run.OutputPath != "out/dataset.json" {
			t.Errorf("expected output path recorded, got %q", run.OutputPath)
		}
	})

	t.Run("save failure is fatal", func(t *testing.T) {
		t.Parallel()

		step := NewSaveDatasetStep(&fakeSaver{err: errors.New("disk full")}, "dataset.json")
		run := model.NewRun("https://lists.example/links.txt")

		if err := step.Do(context.Background(), run); err == nil {
			t.Error("expected error from failed save")
		}
	})
}

func TestRecordHistoryStep(t *testing.T) {
	t.Parallel()

	t.Run("nil store is a no-op", func(t *testing.T) {
		t.Parallel()

		step := NewRecordHistoryStep(nil)
		if err := step.Do(context.Background(), model.NewRun("u")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("store failure is not fatal", func(t *testing.T) {
		t.Parallel()

		step := NewRecordHistoryStep(&fakeStore{err: errors.New("locked")})
		if err := step.Do(context.Background(), model.NewRun("u")); err != nil {
			t.Errorf("expected history failure swallowed, got %v", err)
		}
	})

	t.Run("saves the run", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		run := model.NewRun("https://lists.example/links.txt")
		if err := NewRecordHistoryStep(store).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.run != run {
			t.Error("expected run passed to store")
		}
	})
}

func TestPublishStep(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured publisher skips", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{configured: false}
		run := model.NewRun("u")
		if err := NewPublishStep(pub).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !run.PublishSkipped || pub.calls != 0 {
			t.Error("expected skip without upload")
		}
	})

	t.Run("disabled flag skips", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{configured: true}
		run := model.NewRun("u")
		step := NewPublishStep(pub, WithPublishDisabled(true))
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !run.PublishSkipped || pub.calls != 0 {
			t.Error("expected skip without upload")
		}
	})

	t.Run("suppressed environment skips", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{configured: true, suppressed: true}
		run := model.NewRun("u")
		if err := NewPublishStep(pub).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !run.PublishSkipped || pub.calls != 0 {
			t.Error("expected suppression without upload")
		}
	})

	t.Run("upload failure is not fatal", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{configured: true, err: errors.New("connection refused")}
		run := model.NewRun("u")
		run.OutputPath = "dataset.json"

		if err := NewPublishStep(pub).Do(context.Background(), run); err != nil {
			t.Errorf("expected publish failure swallowed, got %v", err)
		}
		if run.PublishError == "" {
			t.Error("expected publish error recorded on run")
		}
		if run.PublishedKey != "" {
			t.Error("expected no published key after failure")
		}
	})

	t.Run("successful upload records key", func(t *testing.T) {
		t.Parallel()

		pub := &fakePublisher{configured: true, key: "dataset.json"}
		run := model.NewRun("u")
		run.OutputPath = "dataset.json"

		if err := NewPublishStep(pub).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.PublishedKey != "dataset.json" {
			t.Errorf("unexpected key %q", run.PublishedKey)
		}
		if run.PublishSkipped {
			t.Error("expected publish not marked skipped")
		}
	})
}
