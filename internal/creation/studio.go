package creation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/myaiplug/saasify/internal/gate"
	"github.com/myaiplug/saasify/internal/security"
	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/pkg/models"
)

var (
	ErrBusy            = errors.New("operation already in progress")
	ErrSessionClosed   = errors.New("session is closed")
	ErrNoActive        = errors.New("no active creation")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrStaleResult     = errors.New("stale transform result discarded")
	ErrUnknownCreation = errors.New("creation not found")
)

// UndoCapacity bounds the undo stack. Pushing past it evicts the
// oldest frame; popping always takes the newest.
const UndoCapacity = 20

const insertGatePrompt = "component-injection"

// archivePrompts maps each named archive action to the refinement
// instruction it replays through the engine.
var archivePrompts = map[models.ArchiveAction]string{
	models.ActionRemix:   "Completely remix architecture.",
	models.ActionEdit:    "Enable 'High-Fidelity' mode.",
	models.ActionAnalyze: "Perform audit.",
	models.ActionRoadmap: "Build roadmap HUD.",
}

// HistoryStore mirrors creations to a durable backend for owners and a
// local fallback cache for anonymous sessions.
type HistoryStore interface {
	SaveCreation(ctx context.Context, ownerID string, c *models.Creation) error
	LoadCreations(ctx context.Context, ownerID string) ([]*models.Creation, error)
}

// AccessGate admits or blocks each mutating request.
type AccessGate interface {
	Authorize(ctx context.Context, ownerID, promptText, existingContent string) (models.Decision, error)
}

// UsageCounter consumes quota after a gated operation succeeds.
type UsageCounter interface {
	Increment(ctx context.Context, ownerID string) (int, error)
}

// Studio holds the shared collaborators behind every session. It is
// stateless itself; all mutable creation state lives on the Session.
type Studio struct {
	gate    AccessGate
	engine  transform.Service
	usage   UsageCounter
	history HistoryStore
	log     *slog.Logger
}

func NewStudio(g AccessGate, engine transform.Service, usage UsageCounter, history HistoryStore, log *slog.Logger) *Studio {
	if log == nil {
		log = slog.Default()
	}
	return &Studio{gate: g, engine: engine, usage: usage, history: history, log: log}
}

// Session owns the mutable state of one user's workspace: the active
// creation, its undo frames and the history list. All mutating calls
// are serialized by the busy flag; the engine call is the only point
// where the lock is released.
type Session struct {
	studio  *Studio
	ownerID string

	mu      sync.Mutex
	closed  bool
	busy    bool
	seq     uint64
	active  *models.Creation
	undo    []string
	history []*models.Creation
}

// Open creates a session for the given owner (empty for anonymous) and
// loads its persisted history, newest first.
func (s *Studio) Open(ctx context.Context, ownerID string) (*Session, error) {
	list, err := s.history.LoadCreations(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return &Session{studio: s, ownerID: ownerID, history: list}, nil
}

// Close releases the session. Further calls fail with
// ErrSessionClosed; an in-flight transform resolves as stale.
func (sess *Session) Close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	sess.seq++
	sess.active = nil
	sess.undo = nil
}

func (sess *Session) OwnerID() string { return sess.ownerID }

func (sess *Session) Active() *models.Creation {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.active.Clone()
}

func (sess *Session) Busy() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.busy
}

func (sess *Session) UndoDepth() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.undo)
}

// History returns the session's list, newest first. Entries are
// cloned; callers cannot mutate session state through them.
func (sess *Session) History() []*models.Creation {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]*models.Creation, len(sess.history))
	for i, c := range sess.history {
		out[i] = c.Clone()
	}
	return out
}

// Create generates a brand-new creation from a prompt and/or a
// screenshot. An engine result with no content yields (nil, nil): the
// engine declined, nothing changed and no quota was consumed.
func (sess *Session) Create(ctx context.Context, prompt string, image *models.ImageInput) (*models.Creation, error) {
	if strings.TrimSpace(prompt) == "" && image == nil {
		return nil, models.ErrEmptyPrompt
	}
	if err := image.Validate(); err != nil {
		return nil, err
	}

	seq, err := sess.begin(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	content, genErr := sess.studio.engine.Generate(ctx, prompt, image)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.busy = false

	if genErr != nil {
		return nil, fmt.Errorf("%w: %v", transform.ErrTransformFailed, genErr)
	}
	if sess.seq != seq {
		return nil, ErrStaleResult
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	c := &models.Creation{
		ID:        uuid.New().String(),
		OwnerID:   sess.ownerID,
		Name:      creationName(prompt, image),
		Content:   content,
		UpdatedAt: time.Now(),
	}
	sess.active = c
	sess.undo = nil
	sess.history = append([]*models.Creation{c}, sess.history...)
	sess.persist(ctx, c)
	sess.consume(ctx)
	return c.Clone(), nil
}

// Edit rewrites the active creation per the instruction. The prior
// content is pushed as an undo frame before the engine runs, and stays
// pushed even if the engine fails, so a user can always roll back to
// the state the edit started from.
func (sess *Session) Edit(ctx context.Context, instruction string) (*models.Creation, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, models.ErrEmptyPrompt
	}

	sess.mu.Lock()
	if sess.active == nil {
		sess.mu.Unlock()
		return nil, ErrNoActive
	}
	current := sess.active.Content
	targetID := sess.active.ID
	sess.mu.Unlock()

	seq, err := sess.begin(ctx, instruction, current)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.seq != seq {
		sess.busy = false
		sess.mu.Unlock()
		return nil, ErrStaleResult
	}
	sess.pushUndo(current)
	sess.mu.Unlock()

	result, refineErr := sess.studio.engine.Refine(ctx, current, instruction)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.busy = false

	if refineErr != nil {
		return nil, refineErr
	}
	if sess.seq != seq || sess.active == nil || sess.active.ID != targetID {
		return nil, ErrStaleResult
	}

	sess.applyContent(result)
	sess.persist(ctx, sess.active)
	sess.consume(ctx)
	return sess.active.Clone(), nil
}

// PreviewComponent renders a standalone snippet for inspection. It is
// not gated; only inserting the snippet into a creation is.
func (sess *Session) PreviewComponent(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", models.ErrEmptyPrompt
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return "", ErrSessionClosed
	}
	if sess.busy {
		sess.mu.Unlock()
		return "", ErrBusy
	}
	sess.busy = true
	sess.mu.Unlock()

	snippet, err := sess.studio.engine.Component(ctx, description)

	sess.mu.Lock()
	sess.busy = false
	sess.mu.Unlock()

	if err != nil {
		return "", err
	}
	return snippet, nil
}

// InsertComponent splices a previewed snippet into the active
// creation, just before the closing body tag when one exists. The
// splice is local but still gated and still consumes quota.
func (sess *Session) InsertComponent(ctx context.Context, snippet string) (*models.Creation, error) {
	if strings.TrimSpace(snippet) == "" {
		return nil, models.ErrEmptyContent
	}

	sess.mu.Lock()
	if sess.active == nil {
		sess.mu.Unlock()
		return nil, ErrNoActive
	}
	current := sess.active.Content
	targetID := sess.active.ID
	sess.mu.Unlock()

	seq, err := sess.begin(ctx, insertGatePrompt, current)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.busy = false

	if sess.seq != seq || sess.active == nil || sess.active.ID != targetID {
		return nil, ErrStaleResult
	}

	sess.pushUndo(sess.active.Content)
	sess.applyContent(spliceSnippet(sess.active.Content, snippet))
	sess.persist(ctx, sess.active)
	sess.consume(ctx)
	return sess.active.Clone(), nil
}

// ApplyArchiveAction selects a history entry and replays the action's
// canned refinement against it.
func (sess *Session) ApplyArchiveAction(ctx context.Context, id string, action models.ArchiveAction) (*models.Creation, error) {
	prompt, ok := archivePrompts[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownAction, action)
	}
	if err := sess.Select(id); err != nil {
		return nil, err
	}
	return sess.Edit(ctx, prompt)
}

// Undo rolls the active creation back one frame. It is local and
// instantaneous, never touches the engine, and never consumes quota.
func (sess *Session) Undo(ctx context.Context) (*models.Creation, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, ErrSessionClosed
	}
	if sess.busy {
		return nil, ErrBusy
	}
	if sess.active == nil {
		return nil, ErrNoActive
	}
	if len(sess.undo) == 0 {
		return nil, ErrNothingToUndo
	}

	top := sess.undo[len(sess.undo)-1]
	sess.undo = sess.undo[:len(sess.undo)-1]
	sess.applyContent(top)
	sess.persist(ctx, sess.active)
	return sess.active.Clone(), nil
}

// Select makes a history entry the active creation. Undo frames
// belong to the previous selection and are discarded.
func (sess *Session) Select(id string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return ErrSessionClosed
	}
	for _, c := range sess.history {
		if c.ID == id {
			sess.active = c
			sess.undo = nil
			sess.seq++
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCreation, id)
}

// Reset clears the active creation without touching history. A
// transform still in flight resolves as stale.
func (sess *Session) Reset() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.active = nil
	sess.undo = nil
	sess.seq++
}

// Install adopts a ready-made creation, such as a gallery template,
// as the active one. No engine call is involved, so it is neither
// gated nor counted against quota.
func (sess *Session) Install(ctx context.Context, name, content string) (*models.Creation, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.ErrEmptyContent
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, ErrSessionClosed
	}
	if sess.busy {
		return nil, ErrBusy
	}

	c := &models.Creation{
		ID:        uuid.New().String(),
		OwnerID:   sess.ownerID,
		Name:      name,
		Content:   content,
		UpdatedAt: time.Now(),
	}
	sess.active = c
	sess.undo = nil
	sess.seq++
	sess.history = append([]*models.Creation{c}, sess.history...)
	sess.persist(ctx, c)
	return c.Clone(), nil
}

// Reload refreshes the history list from the backend, e.g. after
// signing in on another device.
func (sess *Session) Reload(ctx context.Context) error {
	list, err := sess.studio.history.LoadCreations(ctx, sess.ownerID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.history = list
	return nil
}

// begin runs the shared admission sequence for a mutating operation:
// reject when closed or busy, authorize through the gate, then mark
// the session busy and snapshot the sequence number for the staleness
// check at commit time.
func (sess *Session) begin(ctx context.Context, promptText, existingContent string) (uint64, error) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return 0, ErrSessionClosed
	}
	if sess.busy {
		sess.mu.Unlock()
		return 0, ErrBusy
	}
	sess.busy = true
	seq := sess.seq
	sess.mu.Unlock()

	decision, err := sess.studio.gate.Authorize(ctx, sess.ownerID, promptText, existingContent)
	if err != nil {
		sess.clearBusy()
		return 0, err
	}
	if !decision.Admitted {
		sess.clearBusy()
		return 0, &gate.DeniedError{Decision: decision}
	}
	return seq, nil
}

func (sess *Session) clearBusy() {
	sess.mu.Lock()
	sess.busy = false
	sess.mu.Unlock()
}

// pushUndo appends a frame, evicting the oldest once the stack is at
// capacity. Callers hold the session lock.
func (sess *Session) pushUndo(content string) {
	if len(sess.undo) >= UndoCapacity {
		sess.undo = append(sess.undo[:0], sess.undo[len(sess.undo)-(UndoCapacity-1):]...)
	}
	sess.undo = append(sess.undo, content)
}

// applyContent updates the active creation and its history entry in
// place, by id, without reordering the list. Callers hold the lock.
func (sess *Session) applyContent(content string) {
	sess.active.Content = content
	sess.active.UpdatedAt = time.Now()
	for _, c := range sess.history {
		if c.ID == sess.active.ID {
			if c != sess.active {
				c.Content = content
				c.UpdatedAt = sess.active.UpdatedAt
			}
			return
		}
	}
}

// persist mirrors the creation to the backend. Best-effort once the
// in-memory state has changed; a failure is logged, not propagated, so
// the user never loses a result the engine already produced. Callers
// hold the lock.
func (sess *Session) persist(ctx context.Context, c *models.Creation) {
	if err := sess.studio.history.SaveCreation(ctx, sess.ownerID, c); err != nil {
		sess.studio.log.Error("failed to persist creation", "id", c.ID, "error", err)
	}
}

// consume charges one generation against the owner's quota. Called
// only after a gated operation succeeds; local operations like undo
// are free.
func (sess *Session) consume(ctx context.Context) {
	if sess.ownerID == "" {
		return
	}
	if _, err := sess.studio.usage.Increment(ctx, sess.ownerID); err != nil {
		sess.studio.log.Error("failed to record usage", "owner", sess.ownerID, "error", err)
	}
}

func creationName(prompt string, image *models.ImageInput) string {
	switch {
	case image != nil:
		return "Visual Blueprint"
	case security.IsRepoPrompt(prompt):
		return "GitHub MVP"
	default:
		return "Neural Artifact"
	}
}

func spliceSnippet(content, snippet string) string {
	if i := strings.LastIndex(content, "</body>"); i >= 0 {
		return content[:i] + snippet + "\n" + content[i:]
	}
	return content + "\n" + snippet
}
