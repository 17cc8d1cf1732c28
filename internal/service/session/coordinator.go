package session

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/internal/model/session"
	"github.com/emmalund/plantwatch/backend/internal/model/weather"
	"github.com/emmalund/plantwatch/backend/internal/service/assistant"
	"github.com/emmalund/plantwatch/backend/internal/service/storage"
	weathersvc "github.com/emmalund/plantwatch/backend/internal/service/weather"
)

// Validation errors, rejected before any collaborator call and without
// partial state mutation.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrLocationUnchanged = errors.New("location unchanged")
	ErrEmptyMessage      = errors.New("message text is required")
	ErrEmptyImage        = errors.New("image data is required")
	ErrUnsupportedImage  = errors.New("unsupported image type")
)

// imageExtensions are the accepted upload file types.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Coordinator owns all session state and applies the dashboard transitions:
// start, change location, send message, upload image. Each transition
// validates its preconditions, mutates state, and calls at most one
// collaborator; collaborator failures are merged back as data, so no
// transition surfaces a transport error.
type Coordinator struct {
	registry *location.Registry
	fetcher  weathersvc.Fetcher
	uploader storage.Uploader
	engine   assistant.Engine
	bucket   string

	mu       sync.RWMutex
	sessions map[string]*state
}

// state is one session's mutable record. action serializes transitions
// (held across the collaborator call); mu guards reads of current so state
// inspection never blocks behind an in-flight fetch.
type state struct {
	action sync.Mutex

	mu          sync.Mutex
	current     session.Session
	fetchSeq    uint64
	watchers    map[int]chan session.Session
	nextWatcher int
}

// NewCoordinator wires the coordinator to its collaborators.
func NewCoordinator(registry *location.Registry, fetcher weathersvc.Fetcher, uploader storage.Uploader, engine assistant.Engine, bucket string) *Coordinator {
	return &Coordinator{
		registry: registry,
		fetcher:  fetcher,
		uploader: uploader,
		engine:   engine,
		bucket:   bucket,
		sessions: make(map[string]*state),
	}
}

// StartSession creates a session at the registry default location and runs
// the initial weather fetch for it. The session id is generated once and
// never changes.
func (c *Coordinator) StartSession(ctx context.Context) session.Session {
	st := &state{
		current: session.Session{
			ID:         "pw-session-" + uuid.NewString(),
			Location:   c.registry.DefaultName(),
			Weather:    weather.Empty(),
			Transcript: make([]session.Turn, 0, 16),
			CreatedAt:  time.Now().UTC(),
		},
		watchers: make(map[int]chan session.Session),
	}

	c.mu.Lock()
	c.sessions[st.current.ID] = st
	c.mu.Unlock()

	log.Printf("[session] started %s at %q", st.current.ID, st.current.Location)

	st.action.Lock()
	defer st.action.Unlock()
	c.refreshWeather(ctx, st, st.current.Location)
	return st.snapshot()
}

// State returns the current session state for rendering. Pure read.
func (c *Coordinator) State(sessionID string) (session.Session, error) {
	st, err := c.lookup(sessionID)
	if err != nil {
		return session.Session{}, err
	}
	return st.snapshot(), nil
}

// ChangeLocation switches the session to a registered location and replaces
// the weather snapshot with a fresh fetch for it. The new name must differ
// from the current location; the transcript is untouched.
func (c *Coordinator) ChangeLocation(ctx context.Context, sessionID, name string) (session.Session, error) {
	st, err := c.lookup(sessionID)
	if err != nil {
		return session.Session{}, err
	}

	loc := strings.ToLower(strings.TrimSpace(name))
	if !c.registry.Contains(loc) {
		return session.Session{}, ErrUnknownLocation
	}

	st.action.Lock()
	defer st.action.Unlock()

	if loc == st.currentLocation() {
		return session.Session{}, ErrLocationUnchanged
	}

	st.mu.Lock()
	st.current.Location = loc
	st.mu.Unlock()

	c.refreshWeather(ctx, st, loc)

	snap := st.snapshot()
	st.notify(snap)
	return snap, nil
}

// SendMessage appends the user turn, asks the engine for a reply with the
// current location as context, and appends the joined assistant turn. The
// engine call is total, so this transition never fails past validation.
func (c *Coordinator) SendMessage(ctx context.Context, sessionID, text string) (session.Session, error) {
	st, err := c.lookup(sessionID)
	if err != nil {
		return session.Session{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return session.Session{}, ErrEmptyMessage
	}

	st.action.Lock()
	defer st.action.Unlock()

	st.appendTurn(session.SpeakerUser, text)

	replies := c.engine.Converse(ctx, sessionID, text, map[string]string{
		assistant.AttrLocation: st.currentLocation(),
	})

	st.appendTurn(session.SpeakerAssistant, strings.Join(replies, "\n\n"))

	snap := st.snapshot()
	st.notify(snap)
	return snap, nil
}

// UploadImage stores the image bytes and records the upload under the name
// the user will reference in chat. A failed upload clears the previous record
// and raises the failure flag; the transcript is never touched here.
func (c *Coordinator) UploadImage(ctx context.Context, sessionID string, data []byte, filename string) (session.Session, error) {
	st, err := c.lookup(sessionID)
	if err != nil {
		return session.Session{}, err
	}

	if len(data) == 0 {
		return session.Session{}, ErrEmptyImage
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return session.Session{}, ErrUnsupportedImage
	}

	st.action.Lock()
	defer st.action.Unlock()

	result := c.uploader.Upload(ctx, data, c.bucket, filename)

	st.mu.Lock()
	if result.Failed() {
		st.current.LastUpload = nil
		st.current.UploadFailed = true
	} else {
		st.current.LastUpload = &session.Upload{
			DisplayName: storage.DisplayName(result.Key),
			StorageKey:  result.Key,
		}
		st.current.UploadFailed = false
	}
	st.mu.Unlock()

	snap := st.snapshot()
	st.notify(snap)
	return snap, nil
}

// Watch subscribes to state snapshots pushed after each completed transition.
// The returned cancel func must be called to release the subscription.
func (c *Coordinator) Watch(sessionID string) (<-chan session.Session, func(), error) {
	st, err := c.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan session.Session, 8)

	st.mu.Lock()
	id := st.nextWatcher
	st.nextWatcher++
	st.watchers[id] = ch
	st.mu.Unlock()

	cancel := func() {
		st.mu.Lock()
		if _, ok := st.watchers[id]; ok {
			delete(st.watchers, id)
			close(ch)
		}
		st.mu.Unlock()
	}
	return ch, cancel, nil
}

// refreshWeather fetches for the resolved coordinates and merges the result,
// unless a newer ChangeLocation has started another fetch in the meantime:
// the last ChangeLocation wins, a stale result never overwrites its snapshot.
func (c *Coordinator) refreshWeather(ctx context.Context, st *state, loc string) {
	st.mu.Lock()
	st.fetchSeq++
	seq := st.fetchSeq
	st.mu.Unlock()

	snapshot := c.fetcher.Fetch(ctx, c.registry.Resolve(loc))

	st.mu.Lock()
	if seq == st.fetchSeq {
		st.current.Weather = snapshot
	} else {
		log.Printf("[session] discarding stale weather result for %s (%q)", st.current.ID, loc)
	}
	st.mu.Unlock()
}

func (c *Coordinator) lookup(sessionID string) (*state, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

func (st *state) currentLocation() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.Location
}

func (st *state) appendTurn(speaker session.Speaker, text string) {
	st.mu.Lock()
	st.current.Transcript = append(st.current.Transcript, session.Turn{
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	st.mu.Unlock()
}

// snapshot deep-copies the session so renderers never alias live state.
func (st *state) snapshot() session.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	snap := st.current
	snap.Transcript = make([]session.Turn, len(st.current.Transcript))
	copy(snap.Transcript, st.current.Transcript)
	if st.current.LastUpload != nil {
		upload := *st.current.LastUpload
		snap.LastUpload = &upload
	}
	return snap
}

// notify pushes a snapshot to every watcher, dropping it for watchers that
// are not keeping up.
func (st *state) notify(snap session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, ch := range st.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}
