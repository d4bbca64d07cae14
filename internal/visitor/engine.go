package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"estatewatch/internal/auth"
)

// Attempts before giving up on a collision-free access code.
const maxCodeAttempts = 5

// Notifier delivers the freshly generated access code to the resident.
// Failures are logged, never propagated; notification is best-effort.
type Notifier interface {
	AccessCodeIssued(ctx context.Context, v Visitor, recipient string) error
}

// CreateInput is a pre-authorization request.
type CreateInput struct {
	Name      string
	Purpose   string
	VisitDate time.Time

	// Optional address to send the generated access code to.
	NotifyEmail string
}

// Engine owns the visitor record lifecycle. All read-check-write cycles
// are serialized through a single mutex so concurrent security stations
// cannot lose updates on the same access code.
type Engine struct {
	mu       sync.Mutex
	store    Store
	now      func() time.Time
	notifier Notifier
	logger   *slog.Logger
	stop     chan struct{}
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:  store,
		now:    time.Now,
		logger: slog.With("component", "lifecycle"),
		stop:   make(chan struct{}),
	}
}

// SetNotifier attaches an access-code notifier. Nil disables delivery.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) validate(input CreateInput) error {
	// Counted in runes, not bytes, so multibyte names are measured the
	// way a person would count them.
	if utf8.RuneCountInString(strings.TrimSpace(input.Name)) < 2 {
		return &ValidationError{Field: "name", Message: "visitor name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Purpose)) < 3 {
		return &ValidationError{Field: "purpose", Message: "purpose of visit is required"}
	}
	if input.VisitDate.IsZero() {
		return &ValidationError{Field: "visitDate", Message: "a visit date is required"}
	}
	if startOfDay(input.VisitDate).Before(startOfDay(e.now())) {
		return &ValidationError{Field: "visitDate", Message: "visit date must not be in the past"}
	}
	return nil
}

// uniqueCode generates an access code not used by any non-Expired record.
func (e *Engine) uniqueCode(records []Visitor) (string, error) {
	taken := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Status != StatusExpired {
			taken[r.AccessCode] = true
		}
	}

	for range maxCodeAttempts {
		code, err := GenerateAccessCode()
		if err != nil {
			return "", err
		}
		if !taken[code] {
			return code, nil
		}
	}
	return "", ErrCodeCollision
}

// Create validates input, generates a record with a fresh unique access
// code and Pending status, and prepends it to the store. On validation
// failure nothing is persisted.
func (e *Engine) Create(ctx context.Context, input CreateInput, authorizedBy string) (*Visitor, error) {
	if err := e.validate(input); err != nil {
		return nil, err
	}

	v, err := e.insert(ctx, input, authorizedBy)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Visitor pre-authorized", "id", v.ID, "name", v.Name, "authorized_by", authorizedBy)

	// Delivery happens outside the engine lock; a slow mail server must
	// not block the gate.
	if e.notifier != nil && input.NotifyEmail != "" {
		if err := e.notifier.AccessCodeIssued(ctx, *v, input.NotifyEmail); err != nil {
			e.logger.Warn("Failed to send access code notification", "id", v.ID, "error", err)
		}
	}

	return v, nil
}

func (e *Engine) insert(ctx context.Context, input CreateInput, authorizedBy string) (*Visitor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	code, err := e.uniqueCode(records)
	if err != nil {
		return nil, err
	}

	v := Visitor{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(input.Name),
		Purpose:           strings.TrimSpace(input.Purpose),
		AccessCode:        code,
		AuthorizedBy:      authorizedBy,
		Status:            StatusPending,
		AuthorizationDate: e.now(),
		VisitDate:         input.VisitDate,
	}

	if err := e.store.Insert(ctx, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &v, nil
}

// List returns all records, newest first.
func (e *Engine) List(ctx context.Context) ([]Visitor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}

// Revoke removes the record with the given id. Absent ids are a no-op.
// Only the authorizing identity or an administrative role may revoke.
func (e *Engine) Revoke(ctx context.Context, id string, requestedBy string, role auth.Role) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if record == nil {
		// Idempotent: revoking a missing record is not an error
		return nil
	}

	if record.AuthorizedBy != requestedBy && !role.Administrative() {
		return ErrNotAuthorized
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	e.logger.Info("Visitor authorization revoked", "id", id, "requested_by", requestedBy)
	return nil
}

// Verify looks up the first record matching code whose status is neither
// Checked-Out nor Expired. Pending records additionally require the
// visit date to be today; otherwise a WrongDateError is returned, which
// is distinct from ErrNotFound. Verify never mutates anything.
func (e *Engine) Verify(ctx context.Context, code string) (*Visitor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	for i := range records {
		r := records[i]
		if r.AccessCode != code || r.Status == StatusCheckedOut || r.Status == StatusExpired {
			continue
		}
		if r.Status == StatusPending && !SameCalendarDay(r.VisitDate, e.now()) {
			return nil, &WrongDateError{VisitDate: r.VisitDate}
		}
		return &r, nil
	}
	return nil, ErrNotFound
}

// CheckIn transitions Pending -> Checked-In and stamps the entry time.
func (e *Engine) CheckIn(ctx context.Context, id string) (*Visitor, error) {
	return e.transition(ctx, id, StatusPending, StatusCheckedIn)
}

// CheckOut transitions Checked-In -> Checked-Out and stamps the exit time.
func (e *Engine) CheckOut(ctx context.Context, id string) (*Visitor, error) {
	return e.transition(ctx, id, StatusCheckedIn, StatusCheckedOut)
}

func (e *Engine) transition(ctx context.Context, id string, from Status, to Status) (*Visitor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if record.Status != from {
		return nil, &InvalidTransitionError{From: record.Status, To: to}
	}

	stamp := e.now()
	record.Status = to
	switch to {
	case StatusCheckedIn:
		record.EntryTime = &stamp
	case StatusCheckedOut:
		record.ExitTime = &stamp
	}

	if err := e.store.Update(ctx, *record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	e.logger.Info("Visitor status updated", "id", id, "status", to)
	return record, nil
}

// ExpireOverdue marks Pending records whose visit day has passed as
// Expired. Returns the number of records expired.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	today := startOfDay(e.now())
	expired := 0
	for i := range records {
		r := records[i]
		if r.Status != StatusPending || !startOfDay(r.VisitDate).Before(today) {
			continue
		}
		r.Status = StatusExpired
		if err := e.store.Update(ctx, r); err != nil {
			return expired, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		expired++
	}

	if expired > 0 {
		e.logger.Info("Expired overdue authorizations", "count", expired)
	}
	return expired, nil
}

// StartJanitor runs ExpireOverdue on the given interval until Close.
func (e *Engine) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := e.ExpireOverdue(context.Background()); err != nil {
					e.logger.Error("Expiry sweep failed", "error", err)
				}
			case <-e.stop:
				return
			}
		}
	}()
}

// Close stops the janitor.
func (e *Engine) Close() {
	close(e.stop)
}
