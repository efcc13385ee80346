package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)
var _ repository.AuditRepository = (*AuditRepo)(nil)

// DocumentRepo is the in-memory DocumentRepository.
type DocumentRepo struct {
	access
}

func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	r.lock()
	defer r.unlock()
	c := *doc
	r.s.documents[doc.ID] = &c
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	r.lock()
	defer r.unlock()
	doc, ok := r.s.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	c := *doc
	return &c, nil
}

func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.Document
	for _, doc := range r.s.documents {
		if filter.Type != "" && doc.Type != filter.Type {
			continue
		}
		if filter.WorksheetID != "" && (doc.WorksheetID == nil || *doc.WorksheetID != filter.WorksheetID) {
			continue
		}
		if filter.InvoiceID != "" && (doc.InvoiceID == nil || *doc.InvoiceID != filter.InvoiceID) {
			continue
		}
		c := *doc
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GeneratedAt.After(list[j].GeneratedAt) })
	return page(list, filter.Limit, filter.Offset), nil
}

// AuditRepo is the in-memory AuditRepository. The store's FailAudit flag makes
// inserts fail, for exercising the best-effort ledger path.
type AuditRepo struct {
	access
}

func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	r.lock()
	defer r.unlock()
	if r.s.FailAudit {
		return errors.New("audit insert failed (injected)")
	}
	c := *e
	r.s.auditLog = append(r.s.auditLog, &c)
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditEntry, error) {
	r.lock()
	defer r.unlock()
	var list []*entity.AuditEntry
	for _, e := range r.s.auditLog {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.CreatedAt.Before(*filter.To) {
			continue
		}
		c := *e
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, filter.Limit, filter.Offset), nil
}
