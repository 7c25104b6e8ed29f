// Package hr implements the record operations behind every HR collection:
// employees, recruitment, trainings, reviews, time tracking and disciplinary
// processes. Inputs are validated before anything is written.
package hr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/documents"
	"hrdesk/internal/domain/fields"
	"hrdesk/internal/domain/records"
	"hrdesk/internal/domain/session"
	"hrdesk/internal/requestctx"
)

type DocumentPolicy struct {
	AllowedMimes []string
	MaxBytes     int
}

type Service struct {
	Store     *records.Store
	Auth      *auth.Service
	Audit     *audit.Service
	Checker   *fields.Checker
	Documents DocumentPolicy
}

type Option func(*Service)

func WithAudit(svc *audit.Service) Option {
	return func(s *Service) { s.Audit = svc }
}

func WithDocumentPolicy(policy DocumentPolicy) Option {
	return func(s *Service) { s.Documents = policy }
}

func NewService(store *records.Store, authSvc *auth.Service, opts ...Option) *Service {
	s := &Service{
		Store:     store,
		Auth:      authSvc,
		Checker:   fields.NewChecker(store.Now),
		Documents: DocumentPolicy{AllowedMimes: documents.DefaultMimes},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record appends to the audit trail. Failures are logged and never undo the
// mutation that already committed.
func (s *Service) record(ctx context.Context, sess session.Session, action, entityType, entityID string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, sess.Actor(), action, entityType, entityID, requestctx.GetRequestID(ctx)); err != nil {
		slog.Warn("audit record failed", "action", action, "entityType", entityType, "entityId", entityID, "err", err)
	}
}

func (s *Service) newDocument(up documents.Upload, existing []records.Document) (records.Document, error) {
	return documents.New(up, s.Store.NextStamp(), existing, s.Documents.AllowedMimes, s.Documents.MaxBytes)
}

func newID() records.RecordID {
	return records.RecordID(uuid.NewString())
}

// load reads a collection for listing. Records without an id get one, and
// the back-fill is persisted so ids stay stable between reads.
func load[T any](ctx context.Context, store *records.Store, name string, id func(*T) *records.RecordID) ([]T, error) {
	items, changed, err := backfill(ctx, store, name, id)
	if err != nil || !changed {
		return items, err
	}
	ctx, unlock := store.Lock(ctx)
	defer unlock()
	items, changed, err = backfill(ctx, store, name, id)
	if err != nil || !changed {
		return items, err
	}
	if err := records.Set(ctx, store, name, items); err != nil {
		return items, err
	}
	return items, nil
}

func backfill[T any](ctx context.Context, store *records.Store, name string, id func(*T) *records.RecordID) ([]T, bool, error) {
	items, err := records.Get[T](ctx, store, name)
	if err != nil {
		return items, false, err
	}
	changed := false
	for i := range items {
		if ref := id(&items[i]); *ref == "" {
			*ref = newID()
			changed = true
		}
	}
	return items, changed, nil
}

// lenient turns a corrupt-collection error into an empty read. It is used by
// list operations only; writes never run on top of a corrupt collection.
func lenient[T any](items []T, err error) ([]T, error) {
	if err != nil && errors.Is(err, records.ErrCorrupt) {
		return []T{}, nil
	}
	return items, err
}

func indexOf[T any](items []T, id string, key func(*T) *records.RecordID) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if key(&items[i]).String() == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, idx int) []T {
	return append(items[:idx], items[idx+1:]...)
}

func (s *Service) employee(ctx context.Context, id string) (records.Employee, error) {
	emp, ok, err := s.Store.FindEmployeeByID(ctx, id)
	if err != nil {
		return records.Employee{}, err
	}
	if !ok {
		return records.Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func employeeKey(e *records.Employee) *records.RecordID { return &e.ID }
func candidateKey(c *records.Candidate) *records.RecordID { return &c.ID }
func vacancyKey(v *records.Vacancy) *records.RecordID { return &v.ID }
func trainingKey(t *records.Training) *records.RecordID { return &t.ID }
func performanceKey(p *records.Performance) *records.RecordID { return &p.ID }
func timeEntryKey(t *records.TimeEntry) *records.RecordID { return &t.ID }
func processKey(p *records.Process) *records.RecordID { return &p.ID }
