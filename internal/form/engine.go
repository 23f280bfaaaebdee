// Package form drives the five-step artist submission workflow.
//
// An Engine owns one in-progress Submission. Navigation between steps never
// validates anything; required fields are only enforced when the record is
// submitted, and ValidateStep offers opt-in partial checks. A successful
// Submit hands the flattened record to a Transport in exactly one request.
package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
	"github.com/trinestudio/trine-server/internal/id"
	"github.com/trinestudio/trine-server/internal/validation"
)

// User-facing outcome messages.
const (
	SuccessMessage = "Your submission has been received! We will review your music and get back to you within 4-6 weeks."
	FailureMessage = "Failed to submit form. Please try again."
)

// State is the position of an engine in the workflow.
type State string

// Workflow states.
const (
	StateStep1     State = "step1"
	StateStep2     State = "step2"
	StateStep3     State = "step3"
	StateStep4     State = "step4"
	StateStep5     State = "step5"
	StateSubmitted State = "submitted"
	StateFailed    State = "failed"
)

var stepStates = [...]State{StateStep1, StateStep2, StateStep3, StateStep4, StateStep5}

// StepState returns the state for step n (1-5).
func StepState(n int) (State, bool) {
	if n < 1 || n > len(stepStates) {
		return "", false
	}
	return stepStates[n-1], true
}

// Step returns the step number for step states and 0 for terminal states.
func (s State) Step() int {
	for i, st := range stepStates {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s.Step() > 0 || s == StateSubmitted || s == StateFailed
}

// Receipt confirms a submission accepted by the form backend.
type Receipt struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Snapshot is a consistent copy of an engine's observable state.
type Snapshot struct {
	ID         string            `json:"id"`
	State      State             `json:"state"`
	Step       int               `json:"step"`
	Submitting bool              `json:"submitting"`
	Error      string            `json:"error,omitempty"`
	Receipt    *Receipt          `json:"receipt,omitempty"`
	Submission domain.Submission `json:"submission"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithID sets the session identifier instead of generating one.
func WithID(sessionID string) Option {
	return func(e *Engine) { e.id = sessionID }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithChangeHook registers fn to receive a snapshot after every change.
// fn runs outside the engine lock.
func WithChangeHook(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine is a single submission session.
type Engine struct {
	mu        sync.Mutex
	id        string
	state     State
	record    domain.Submission
	lastError string
	receipt   *Receipt
	createdAt time.Time
	updatedAt time.Time

	// in-flight submit bookkeeping; attempt changes whenever the current
	// request is superseded so a late response cannot overwrite newer state.
	inFlight bool
	cancel   context.CancelFunc
	attempt  uint64

	// discarded engines reject every change; hookMu orders change hooks
	// against Discard so no draft is written after it returns.
	discarded bool
	hookMu    sync.Mutex

	transport Transport
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
	onChange  func(Snapshot)
}

// New creates an engine at step 1 with an empty record.
func New(transport Transport, opts ...Option) *Engine {
	e := &Engine{
		state:     StateStep1,
		transport: transport,
		validator: validation.New(),
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = id.MustGenerate(id.PrefixFormSession)
	}
	e.createdAt = e.now()
	e.updatedAt = e.createdAt
	e.logger = e.logger.With("session_id", e.id)
	return e
}

// Restore rebuilds an engine from a saved snapshot. An in-flight submit is
// never restored; a session saved mid-request resumes where it was.
func Restore(snap Snapshot, transport Transport, opts ...Option) *Engine {
	e := New(transport, append([]Option{WithID(snap.ID)}, opts...)...)
	if snap.State.Valid() {
		e.state = snap.State
	}
	e.record = snap.Submission
	e.lastError = snap.Error
	if snap.Receipt != nil {
		r := *snap.Receipt
		e.receipt = &r
	}
	if !snap.CreatedAt.IsZero() {
		e.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		e.updatedAt = snap.UpdatedAt
	}
	return e
}

// ID returns the session identifier.
func (e *Engine) ID() string {
	return e.id
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a copy of the engine's state and record.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:         e.id,
		State:      e.state,
		Step:       e.state.Step(),
		Submitting: e.inFlight,
		Error:      e.lastError,
		Submission: e.record,
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.updatedAt,
	}
	if e.receipt != nil {
		r := *e.receipt
		snap.Receipt = &r
	}
	return snap
}

// Set updates one field by its wire name. Fields may be edited on any step
// and are never discarded by navigation.
func (e *Engine) Set(field, value string) error {
	return e.SetFields(map[string]string{field: value})
}

// SetFields applies several edits atomically: either every field is
// accepted or none is.
func (e *Engine) SetFields(fields map[string]string) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	next := e.record
	problems := make(map[string]string)
	for name, value := range fields {
		if err := next.Set(name, value); err != nil {
			problems[name] = err.Error()
		}
	}
	if len(problems) > 0 {
		e.mu.Unlock()
		return errors.ValidationWithDetails("invalid field update", problems)
	}

	e.record = next
	e.touchLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

// Next advances one step. At step 5 it is a no-op; from failed it returns to
// step 5 so the user can correct and retry.
func (e *Engine) Next() (State, error) {
	return e.navigate(func(s State) State {
		switch {
		case s == StateFailed:
			return StateStep5
		case s.Step() > 0 && s.Step() < len(stepStates):
			return stepStates[s.Step()]
		default:
			return s
		}
	})
}

// Previous goes back one step. At step 1 it is a no-op; from failed it goes
// to step 4.
func (e *Engine) Previous() (State, error) {
	return e.navigate(func(s State) State {
		switch {
		case s == StateFailed:
			return StateStep4
		case s.Step() > 1:
			return stepStates[s.Step()-2]
		default:
			return s
		}
	})
}

func (e *Engine) navigate(transition func(State) State) (State, error) {
	e.mu.Lock()
	if e.discarded {
		state := e.state
		e.mu.Unlock()
		return state, errDiscarded()
	}
	if e.state == StateSubmitted {
		e.mu.Unlock()
		return StateSubmitted, errors.Conflict("submission already sent")
	}

	from := e.state
	e.cancelLocked()
	e.state = transition(from)
	if e.state == from {
		e.mu.Unlock()
		return from, nil
	}
	if from == StateFailed {
		e.lastError = ""
	}
	e.touchLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("form step changed", "from", from, "to", snap.State)
	e.notify(snap)
	return snap.State, nil
}

// ValidateStep checks the required fields declared for one step without
// changing state.
func (e *Engine) ValidateStep(step int) error {
	e.mu.Lock()
	record := e.record
	e.mu.Unlock()

	section := record.Section(step)
	if section == nil {
		return errors.Validationf("step must be between 1 and %d", domain.SubmissionSteps)
	}
	return e.validator.Validate(section)
}

// Submit validates the whole record and sends it. It is only available on
// step 5 or after a failed attempt.
//
// A validation failure leaves the state unchanged. A transport failure moves
// the engine to failed and keeps the record for a retry. Navigating away or
// discarding the session cancels the request.
func (e *Engine) Submit(ctx context.Context) (*Receipt, error) {
	e.mu.Lock()
	if e.discarded {
		e.mu.Unlock()
		return nil, errDiscarded()
	}
	if e.inFlight {
		e.mu.Unlock()
		return nil, errors.Conflict("a submission is already in progress")
	}
	if e.state != StateStep5 && e.state != StateFailed {
		state := e.state
		e.mu.Unlock()
		if state == StateSubmitted {
			return nil, errors.Conflict("submission already sent")
		}
		return nil, errors.Conflictf("submit is only available on the final step (currently %s)", state)
	}

	if err := e.validator.Validate(&e.record); err != nil {
		e.mu.Unlock()
		e.logger.Debug("submission rejected", "fields", validation.FieldErrors(err))
		return nil, err
	}

	record := e.record.Flatten()
	sendCtx, cancel := context.WithCancel(ctx)
	e.inFlight = true
	e.cancel = cancel
	e.attempt++
	attempt := e.attempt
	e.mu.Unlock()

	start := e.now()
	sendErr := e.transport.Send(sendCtx, record)
	cancel()

	e.mu.Lock()
	if e.attempt != attempt {
		// Superseded by navigation or discard; the new state stands.
		e.mu.Unlock()
		e.logger.Info("submission cancelled", "attempt", attempt)
		return nil, errors.TransportFailed("submission cancelled", context.Canceled)
	}
	e.inFlight = false
	e.cancel = nil

	if sendErr != nil {
		e.state = StateFailed
		e.lastError = FailureMessage
		e.touchLocked()
		snap := e.snapshotLocked()
		e.mu.Unlock()

		e.logger.Warn("submission failed", "attempt", attempt, "error", sendErr)
		e.notify(snap)
		return nil, errors.TransportFailed(FailureMessage, sendErr)
	}

	receipt := &Receipt{
		ID:          id.MustGenerate(id.PrefixSubmission),
		Message:     SuccessMessage,
		SubmittedAt: e.now(),
	}
	e.state = StateSubmitted
	e.lastError = ""
	e.receipt = receipt
	e.touchLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("submission sent",
		"receipt_id", receipt.ID,
		"attempt", attempt,
		"duration", e.now().Sub(start),
	)
	e.notify(snap)

	r := *receipt
	return &r, nil
}

// Cancel aborts an in-flight submit, if any, without changing state.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

// Discard cancels any in-flight submit and retires the engine: later edits,
// navigation and submits return a conflict and no further change hooks run.
func (e *Engine) Discard() {
	e.mu.Lock()
	e.cancelLocked()
	e.discarded = true
	e.mu.Unlock()

	// Wait out a hook that is already running.
	e.hookMu.Lock()
	e.hookMu.Unlock()
}

func (e *Engine) cancelLocked() {
	if !e.inFlight {
		return
	}
	e.cancel()
	e.cancel = nil
	e.inFlight = false
	e.attempt++
}

func (e *Engine) editableLocked() error {
	switch {
	case e.discarded:
		return errDiscarded()
	case e.inFlight:
		return errors.Conflict("cannot edit while the submission is being sent")
	case e.state == StateSubmitted:
		return errors.Conflict("submission already sent")
	default:
		return nil
	}
}

func (e *Engine) touchLocked() {
	e.updatedAt = e.now()
}

func (e *Engine) notify(snap Snapshot) {
	if e.onChange == nil {
		return
	}
	e.hookMu.Lock()
	defer e.hookMu.Unlock()

	e.mu.Lock()
	discarded := e.discarded
	e.mu.Unlock()
	if !discarded {
		e.onChange(snap)
	}
}

func errDiscarded() error {
	return errors.Conflict("form session was discarded")
}
