package material

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
	"github.com/darasahub/darasa/core/session"
)

// EditorState enumerates the states of a material editing session.
type EditorState int

const (
	StateIdle EditorState = iota
	StateEditing
	StateSubmitting
)

// EventKind identifies a successful catalogue write.
type EventKind string

const (
	EventCreated EventKind = "material-created"
	EventUpdated EventKind = "material-updated"
	EventDeleted EventKind = "material-deleted"
)

// Event is the domain event emitted after a successful write. Presentation
// layers derive their transient affordances (banners etc.) from it.
type Event struct {
	Kind       EventKind
	MaterialID string
	OwnerID    string
}

// Notice is the coordinator's own transient success affordance; it stays
// visible for exactly Config.NoticeTimeout, judged against the injected clock.
type Notice struct {
	Kind EventKind
	At   time.Time
}

var nowFunc = time.Now // mockable

// Coordinator performs create/update/delete against the catalogue on behalf of
// the authenticated owner, requests directory invalidation on success, and
// serializes deletion behind an explicit confirmation step.
type Coordinator struct {
	repo    Repository
	dir     *Directory
	session *session.Resolver
	conf    *core.Config
	log     core.Logger

	mu        sync.Mutex
	state     EditorState
	draft     Draft
	editingID string // non-empty while editing an existing item
	lastErr   error

	deleteCandidate string

	notice *Notice
	subs   []func(Event)
}

func NewCoordinator(repo Repository, dir *Directory, sess *session.Resolver, conf *core.Config, logger core.Logger) *Coordinator {
	return &Coordinator{
		repo:    repo,
		dir:     dir,
		session: sess,
		conf:    conf,
		log:     logger,
	}
}

// Subscribe registers cb for synchronous delivery of write events.
func (co *Coordinator) Subscribe(cb func(Event)) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.subs = append(co.subs, cb)
}

func (co *Coordinator) State() EditorState {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// Draft returns the fields currently being edited.
func (co *Coordinator) Draft() Draft {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.draft
}

// Err returns the error retained from the last failed submission, if any.
func (co *Coordinator) Err() error {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.lastErr
}

// BeginCreate opens an editing session with an empty draft.
func (co *Coordinator) BeginCreate() {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.state = StateEditing
	co.draft = Draft{}
	co.editingID = ""
	co.lastErr = nil
}

// BeginEdit opens an editing session seeded from an existing item.
func (co *Coordinator) BeginEdit(m Material) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.state = StateEditing
	co.draft = Draft{Title: m.Title, Description: m.Description, URL: m.URL}
	co.editingID = m.ID
	co.lastErr = nil
}

// SetDraft replaces the draft fields of the current editing session.
func (co *Coordinator) SetDraft(d Draft) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.state != StateEditing {
		return
	}
	co.draft = d
}

// Cancel discards the editing session and returns to Idle.
func (co *Coordinator) Cancel() {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.state == StateSubmitting {
		return
	}
	co.state = StateIdle
	co.draft = Draft{}
	co.editingID = ""
	co.lastErr = nil
}

// Submit dispatches the current editing session: an update when it was opened
// with BeginEdit, a create otherwise.
func (co *Coordinator) Submit(ctx context.Context) (Material, error) {
	co.mu.Lock()
	d, id := co.draft, co.editingID
	co.mu.Unlock()
	if id != "" {
		return co.Update(ctx, id, d)
	}
	return co.Create(ctx, d)
}

// Create validates the draft and adds a new material owned by the current
// identity. On success the owner's scope (and the global scope) is
// invalidated and the session returns to Idle; on failure it returns to
// Editing with the error retained. No automatic retry.
func (co *Coordinator) Create(ctx context.Context, d Draft) (Material, error) {
	ident, ok := co.session.Current()
	if !ok {
		return Material{}, session.ErrNotSignedIn
	}
	if err := co.beginSubmit(d); err != nil {
		return Material{}, err
	}

	wctx, cancel := context.WithTimeout(ctx, co.conf.StoreTimeout)
	defer cancel()
	created, err := co.repo.CreateMaterial(wctx, Material{
		Title:       d.Title,
		Description: d.Description,
		URL:         d.URL,
		OwnerID:     ident.ID,
	})
	if err != nil {
		return Material{}, co.failSubmit(core.NewStoreError("material.create", err))
	}

	co.settle(EventCreated, created)
	return created, nil
}

// Update validates the draft and rewrites the editable fields of an item the
// current identity owns; the store surfaces ErrForbidden otherwise.
func (co *Coordinator) Update(ctx context.Context, id string, d Draft) (Material, error) {
	ident, ok := co.session.Current()
	if !ok {
		return Material{}, session.ErrNotSignedIn
	}
	if err := co.beginSubmit(d); err != nil {
		return Material{}, err
	}

	wctx, cancel := context.WithTimeout(ctx, co.conf.StoreTimeout)
	defer cancel()
	updated, err := co.repo.UpdateMaterial(wctx, ident.ID, id, d)
	if err != nil {
		switch errors.Cause(err) {
		case ErrNotFound, ErrForbidden:
			return Material{}, co.failSubmit(err)
		}
		return Material{}, co.failSubmit(core.NewStoreError("material.update", err))
	}

	co.settle(EventUpdated, updated)
	return updated, nil
}

// RequestDelete records id as the deletion candidate. Nothing is mutated
// until ConfirmDelete.
func (co *Coordinator) RequestDelete(id string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.deleteCandidate = id
}

// CancelDelete drops the pending deletion candidate.
func (co *Coordinator) CancelDelete() {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.deleteCandidate = ""
}

// PendingDelete returns the current deletion candidate, if any.
func (co *Coordinator) PendingDelete() (string, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.deleteCandidate, co.deleteCandidate != ""
}

// ConfirmDelete performs the destructive call for the pending candidate.
// Without a prior RequestDelete it is a no-op. The candidate is cleared on
// both execution paths.
func (co *Coordinator) ConfirmDelete(ctx context.Context) error {
	co.mu.Lock()
	id := co.deleteCandidate
	co.deleteCandidate = ""
	co.mu.Unlock()
	if id == "" {
		return nil
	}

	ident, ok := co.session.Current()
	if !ok {
		return session.ErrNotSignedIn
	}

	wctx, cancel := context.WithTimeout(ctx, co.conf.StoreTimeout)
	defer cancel()
	if err := co.repo.DeleteMaterial(wctx, ident.ID, id); err != nil {
		switch errors.Cause(err) {
		case ErrNotFound, ErrForbidden:
			return err
		}
		return core.NewStoreError("material.delete", err)
	}

	co.settle(EventDeleted, Material{ID: id, OwnerID: ident.ID})
	return nil
}

// Notice returns the success notice from the most recent write while it is
// still within NoticeTimeout of the injected clock; past that it auto-clears.
func (co *Coordinator) Notice() (Notice, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.notice == nil {
		return Notice{}, false
	}
	if nowFunc().Sub(co.notice.At) >= co.conf.NoticeTimeout {
		co.notice = nil
		return Notice{}, false
	}
	return *co.notice, true
}

// beginSubmit validates the draft and moves the session to Submitting.
// A validation failure keeps (or puts) the session in Editing with the draft
// intact for correction.
func (co *Coordinator) beginSubmit(d Draft) error {
	if err := d.Validate(); err != nil {
		co.mu.Lock()
		co.state = StateEditing
		co.draft = d
		co.lastErr = err
		co.mu.Unlock()
		return err
	}
	co.mu.Lock()
	co.state = StateSubmitting
	co.draft = d
	co.lastErr = nil
	co.mu.Unlock()
	return nil
}

// failSubmit returns the session to the pre-submission editable state with
// the error retained for display.
func (co *Coordinator) failSubmit(err error) error {
	co.mu.Lock()
	co.state = StateEditing
	co.lastErr = err
	co.mu.Unlock()
	co.log.Error("material submission failed", err)
	return err
}

// settle finishes a successful write: invalidate the owner and global scopes,
// return to Idle, record the notice and emit the event.
func (co *Coordinator) settle(kind EventKind, m Material) {
	co.dir.Invalidate(OwnedBy(m.OwnerID))
	co.dir.Invalidate(ScopeAll())

	co.mu.Lock()
	co.state = StateIdle
	co.draft = Draft{}
	co.editingID = ""
	co.lastErr = nil
	co.notice = &Notice{Kind: kind, At: nowFunc()}
	subs := make([]func(Event), len(co.subs))
	copy(subs, co.subs)
	co.mu.Unlock()

	ev := Event{Kind: kind, MaterialID: m.ID, OwnerID: m.OwnerID}
	for _, cb := range subs {
		cb(ev)
	}
	co.log.Debug("material write settled", string(kind), m.ID)
}
