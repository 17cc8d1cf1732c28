package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emmalund/plantwatch/backend/internal/model/location"
	sessionmodel "github.com/emmalund/plantwatch/backend/internal/model/session"
	"github.com/emmalund/plantwatch/backend/internal/model/weather"
	"github.com/emmalund/plantwatch/backend/internal/service/assistant"
	sessionservice "github.com/emmalund/plantwatch/backend/internal/service/session"
	"github.com/emmalund/plantwatch/backend/internal/service/storage"
)

// scriptedFetcher records fetch coordinates and encodes them into the
// snapshot (temperature=lat, humidity=lon) so tests can tell fetches apart.
type scriptedFetcher struct {
	mu    sync.Mutex
	calls []location.Coordinates
	fail  bool
	delay time.Duration
}

func (f *scriptedFetcher) Fetch(_ context.Context, coords location.Coordinates) weather.Snapshot {
	f.mu.Lock()
	f.calls = append(f.calls, coords)
	fail, delay := f.fail, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return weather.Failed("Could not reach weather service.")
	}
	return weather.New(coords.Lat, coords.Lon, 0)
}

func (f *scriptedFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *scriptedFetcher) lastCoords() location.Coordinates {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// scriptedEngine returns fixed replies and records what it was asked.
type scriptedEngine struct {
	replies     []string
	lastSession string
	lastText    string
	lastAttrs   map[string]string
}

func (e *scriptedEngine) Converse(_ context.Context, sessionID, text string, attrs map[string]string) []string {
	e.lastSession = sessionID
	e.lastText = text
	e.lastAttrs = attrs
	if len(e.replies) == 0 {
		return []string{"ok"}
	}
	return e.replies
}

// flakyUploader delegates to the simulated store until fail is set.
type flakyUploader struct {
	inner *storage.Simulated
	fail  bool
	calls int
}

func (u *flakyUploader) Upload(ctx context.Context, data []byte, bucket, suggestedName string) storage.Result {
	u.calls++
	if u.fail {
		return storage.Result{Err: "Upload failed."}
	}
	return u.inner.Upload(ctx, data, bucket, suggestedName)
}

func newTestCoordinator() (*sessionservice.Coordinator, *scriptedFetcher, *scriptedEngine, *flakyUploader) {
	fetcher := &scriptedFetcher{}
	engine := &scriptedEngine{}
	uploader := &flakyUploader{inner: storage.NewSimulated()}
	coordinator := sessionservice.NewCoordinator(location.Sweden(), fetcher, uploader, engine, "plants")
	return coordinator, fetcher, engine, uploader
}

func TestStartSessionFetchesDefaultWeather(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()

	state := coordinator.StartSession(context.Background())

	if !strings.HasPrefix(state.ID, "pw-session-") {
		t.Fatalf("session id %q missing prefix", state.ID)
	}
	if state.Location != "uppsala" {
		t.Fatalf("initial location = %q, want uppsala", state.Location)
	}
	if fetcher.fetchCount() != 1 {
		t.Fatalf("fetch count = %d, want 1", fetcher.fetchCount())
	}
	if coords := fetcher.lastCoords(); coords.Lat != 59.86 || coords.Lon != 17.64 {
		t.Fatalf("initial fetch coords = %+v, want uppsala 59.86/17.64", coords)
	}
	if temp, ok := state.Weather.Temperature.Value(); !ok || temp != 59.86 {
		t.Fatalf("initial weather not merged: %v/%v", temp, ok)
	}
	if len(state.Transcript) != 0 || state.LastUpload != nil {
		t.Fatal("fresh session has transcript or upload state")
	}
}

func TestChangeLocationRefetchesWeather(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	state, err := coordinator.ChangeLocation(ctx, id, "stockholm")
	if err != nil {
		t.Fatalf("ChangeLocation err: %v", err)
	}

	if state.Location != "stockholm" {
		t.Fatalf("location = %q, want stockholm", state.Location)
	}
	if coords := fetcher.lastCoords(); coords.Lat != 59.33 || coords.Lon != 18.06 {
		t.Fatalf("fetch coords = %+v, want stockholm 59.33/18.06", coords)
	}
	if temp, _ := state.Weather.Temperature.Value(); temp != 59.33 {
		t.Fatalf("snapshot not replaced, temperature = %v", temp)
	}
	if len(state.Transcript) != 0 {
		t.Fatal("ChangeLocation mutated the transcript")
	}
}

func TestChangeLocationUnknownRejected(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	if _, err := coordinator.ChangeLocation(ctx, id, "atlantis"); !errors.Is(err, sessionservice.ErrUnknownLocation) {
		t.Fatalf("err = %v, want ErrUnknownLocation", err)
	}

	state, _ := coordinator.State(id)
	if state.Location != "uppsala" {
		t.Fatalf("rejected transition mutated location to %q", state.Location)
	}
	if fetcher.fetchCount() != 1 {
		t.Fatalf("rejected transition issued a fetch, count = %d", fetcher.fetchCount())
	}
}

func TestChangeLocationSameNameRejected(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	if _, err := coordinator.ChangeLocation(ctx, id, "Uppsala"); !errors.Is(err, sessionservice.ErrLocationUnchanged) {
		t.Fatalf("err = %v, want ErrLocationUnchanged", err)
	}
	if fetcher.fetchCount() != 1 {
		t.Fatalf("no-op change issued a fetch, count = %d", fetcher.fetchCount())
	}
}

func TestChangeLocationKeepsFailedFetchAsSnapshot(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	fetcher.fail = true
	state, err := coordinator.ChangeLocation(ctx, id, "lund")
	if err != nil {
		t.Fatalf("ChangeLocation err: %v", err)
	}

	if state.Location != "lund" {
		t.Fatalf("location = %q, want lund", state.Location)
	}
	if state.Weather.OK() {
		t.Fatal("expected failed snapshot to be merged")
	}
	if state.Weather.Err == "" {
		t.Fatal("failed snapshot missing error message")
	}
}

func TestConcurrentLocationChangesLastWins(t *testing.T) {
	coordinator, fetcher, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	fetcher.delay = 10 * time.Millisecond

	var wg sync.WaitGroup
	for _, name := range []string{"stockholm", "lund"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, _ = coordinator.ChangeLocation(ctx, id, name)
		}(name)
	}
	wg.Wait()

	state, err := coordinator.State(id)
	if err != nil {
		t.Fatalf("State err: %v", err)
	}
	want := location.Sweden().Resolve(state.Location)
	if temp, _ := state.Weather.Temperature.Value(); temp != want.Lat {
		t.Fatalf("weather (temp=%v) does not match final location %q (lat=%v)", temp, state.Location, want.Lat)
	}
}

func TestSendMessageAppendsUserThenAssistant(t *testing.T) {
	coordinator, _, engine, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	engine.replies = []string{"first part", "second part"}
	state, err := coordinator.SendMessage(ctx, id, "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if len(state.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(state.Transcript))
	}
	if state.Transcript[0].Speaker != sessionmodel.SpeakerUser || state.Transcript[0].Text != "hello" {
		t.Fatalf("first turn = %+v, want user hello", state.Transcript[0])
	}
	if state.Transcript[1].Speaker != sessionmodel.SpeakerAssistant {
		t.Fatalf("second turn speaker = %q, want assistant", state.Transcript[1].Speaker)
	}
	if state.Transcript[1].Text != "first part\n\nsecond part" {
		t.Fatalf("assistant turn = %q, want replies joined with blank line", state.Transcript[1].Text)
	}
	if engine.lastSession != id {
		t.Fatalf("engine called with session %q, want %q", engine.lastSession, id)
	}
	if engine.lastAttrs[assistant.AttrLocation] != "uppsala" {
		t.Fatalf("engine context %v missing current location", engine.lastAttrs)
	}
}

func TestSendMessageEmptyRejected(t *testing.T) {
	coordinator, _, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	for _, text := range []string{"", "   "} {
		if _, err := coordinator.SendMessage(ctx, id, text); !errors.Is(err, sessionservice.ErrEmptyMessage) {
			t.Fatalf("SendMessage(%q) err = %v, want ErrEmptyMessage", text, err)
		}
	}

	state, _ := coordinator.State(id)
	if len(state.Transcript) != 0 {
		t.Fatalf("rejected message mutated transcript: %v", state.Transcript)
	}
}

func TestSendMessageEngineFailureStillAppendsAssistantTurn(t *testing.T) {
	coordinator, _, engine, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	engine.replies = []string{assistant.ReplyAccessDenied}
	state, err := coordinator.SendMessage(ctx, id, "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if len(state.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(state.Transcript))
	}
	if state.Transcript[1].Text != assistant.ReplyAccessDenied {
		t.Fatalf("assistant turn = %q, want fixed authorization fallback", state.Transcript[1].Text)
	}
}

func TestUploadImageSuccessRecordsDisplayName(t *testing.T) {
	coordinator, _, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	state, err := coordinator.UploadImage(ctx, id, []byte("image-bytes"), "plant.jpg")
	if err != nil {
		t.Fatalf("UploadImage err: %v", err)
	}

	if state.LastUpload == nil {
		t.Fatal("successful upload left LastUpload empty")
	}
	if state.LastUpload.DisplayName != "plant.jpg" {
		t.Fatalf("display name = %q, want plant.jpg", state.LastUpload.DisplayName)
	}
	if !strings.HasPrefix(state.LastUpload.StorageKey, "uploads/") {
		t.Fatalf("storage key = %q, want uploads/ prefix", state.LastUpload.StorageKey)
	}
	if state.UploadFailed {
		t.Fatal("successful upload raised the failure flag")
	}
	if len(state.Transcript) != 0 {
		t.Fatal("upload mutated the transcript")
	}
}

func TestUploadImageFailureClearsLastUpload(t *testing.T) {
	coordinator, _, _, uploader := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	if _, err := coordinator.UploadImage(ctx, id, []byte("a"), "plant.jpg"); err != nil {
		t.Fatalf("first upload err: %v", err)
	}

	uploader.fail = true
	state, err := coordinator.UploadImage(ctx, id, []byte("b"), "plant.jpg")
	if err != nil {
		t.Fatalf("second upload err: %v", err)
	}

	if state.LastUpload != nil {
		t.Fatalf("failed upload retained previous record %+v", state.LastUpload)
	}
	if !state.UploadFailed {
		t.Fatal("failed upload did not raise the failure flag")
	}
}

func TestUploadImageValidation(t *testing.T) {
	coordinator, _, _, uploader := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	if _, err := coordinator.UploadImage(ctx, id, nil, "plant.jpg"); !errors.Is(err, sessionservice.ErrEmptyImage) {
		t.Fatalf("empty image err = %v, want ErrEmptyImage", err)
	}
	if _, err := coordinator.UploadImage(ctx, id, []byte("x"), "notes.txt"); !errors.Is(err, sessionservice.ErrUnsupportedImage) {
		t.Fatalf("bad extension err = %v, want ErrUnsupportedImage", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("validation failures reached the uploader, calls = %d", uploader.calls)
	}
}

func TestUploadImageTraversalNameSanitized(t *testing.T) {
	coordinator, _, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	state, err := coordinator.UploadImage(ctx, id, []byte("x"), "../secret.png")
	if err != nil {
		t.Fatalf("UploadImage err: %v", err)
	}
	if strings.Contains(state.LastUpload.StorageKey, "..") {
		t.Fatalf("storage key %q contains traversal segment", state.LastUpload.StorageKey)
	}
	if state.LastUpload.DisplayName != "secret.png" {
		t.Fatalf("display name = %q, want secret.png", state.LastUpload.DisplayName)
	}
}

func TestStateUnknownSession(t *testing.T) {
	coordinator, _, _, _ := newTestCoordinator()

	if _, err := coordinator.State("missing"); !errors.Is(err, sessionservice.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestWatchDeliversStateAfterTransition(t *testing.T) {
	coordinator, _, _, _ := newTestCoordinator()
	ctx := context.Background()
	id := coordinator.StartSession(ctx).ID

	states, cancel, err := coordinator.Watch(id)
	if err != nil {
		t.Fatalf("Watch err: %v", err)
	}
	defer cancel()

	if _, err := coordinator.SendMessage(ctx, id, "hello"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	select {
	case state := <-states:
		if len(state.Transcript) != 2 {
			t.Fatalf("watched state transcript length = %d, want 2", len(state.Transcript))
		}
	case <-time.After(time.Second):
		t.Fatal("no state pushed after transition")
	}
}
