// Package memory implements every repository port over plain maps, plus
// transaction runners that snapshot the whole store and restore it on
// rollback. The application tests run against this package; semantics mirror
// the postgres adapters, including FIFO ordering, soft-delete visibility and
// the one-sheet-per-order constraint. The single store mutex stands in for
// both row locks and the invoice year lock: a transaction owns the store for
// its whole duration.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ inventory.TxRunner = (*InventoryTxRunner)(nil)
var _ production.TxRunner = (*ProductionTxRunner)(nil)
var _ billing.TxRunner = (*BillingTxRunner)(nil)

// Store holds all state behind one mutex.
type Store struct {
	mu sync.Mutex

	orders       map[string]*entity.Order
	worksheets   map[string]*entity.WorkSheet
	sheetLines   map[string][]*entity.WorksheetProduct
	materials    map[string]*entity.Material
	lots         map[string]*entity.MaterialLot
	consumptions []*entity.WorksheetMaterial
	qcs          map[string]*entity.QualityControl // keyed by worksheet ID
	invoices     map[string]*entity.Invoice
	invoiceLines map[string][]*entity.InvoiceLineItem
	dentists     map[string]*entity.Dentist
	products     map[string]*entity.Product
	documents    map[string]*entity.Document
	emailLogs    []*entity.EmailLog
	auditLog     []*entity.AuditEntry
	counters     map[string]int
	labConfig    *entity.LabConfig

	// FailAudit makes every ledger insert fail while set, to exercise the
	// best-effort audit path.
	FailAudit bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		orders:       make(map[string]*entity.Order),
		worksheets:   make(map[string]*entity.WorkSheet),
		sheetLines:   make(map[string][]*entity.WorksheetProduct),
		materials:    make(map[string]*entity.Material),
		lots:         make(map[string]*entity.MaterialLot),
		qcs:          make(map[string]*entity.QualityControl),
		invoices:     make(map[string]*entity.Invoice),
		invoiceLines: make(map[string][]*entity.InvoiceLineItem),
		dentists:     make(map[string]*entity.Dentist),
		products:     make(map[string]*entity.Product),
		documents:    make(map[string]*entity.Document),
		counters:     make(map[string]int),
	}
}

// Standalone repository views. These lock the store per call; the views the
// transaction runners hand to callbacks skip the lock because the runner
// already holds it.

func (s *Store) Orders() repository.OrderRepository { return &OrderRepo{access{s, false}} }

func (s *Store) WorkSheets() repository.WorkSheetRepository { return &WorkSheetRepo{access{s, false}} }

func (s *Store) Materials() repository.MaterialRepository { return &MaterialRepo{access{s, false}} }

func (s *Store) Lots() repository.MaterialLotRepository { return &MaterialLotRepo{access{s, false}} }

func (s *Store) Consumptions() repository.ConsumptionRepository {
	return &ConsumptionRepo{access{s, false}}
}

func (s *Store) QCs() repository.QCRepository { return &QCRepo{access{s, false}} }

func (s *Store) Invoices() repository.InvoiceRepository { return &InvoiceRepo{access{s, false}} }

func (s *Store) Dentists() repository.DentistRepository { return &DentistRepo{access{s, false}} }

func (s *Store) Products() repository.ProductRepository { return &ProductRepo{access{s, false}} }

func (s *Store) Documents() repository.DocumentRepository { return &DocumentRepo{access{s, false}} }

func (s *Store) EmailLogs() repository.EmailLogRepository { return &EmailLogRepo{access{s, false}} }

func (s *Store) Audit() repository.AuditRepository { return &AuditRepo{access{s, false}} }

func (s *Store) Counters() repository.CounterRepository { return &CounterRepo{access{s, false}} }

func (s *Store) LabConfig() repository.LabConfigRepository { return &LabConfigRepo{access{s, false}} }

// access couples a repository view to the store. Standalone views lock per
// call; transactional views skip the lock the runner already holds.
type access struct {
	s    *Store
	inTx bool
}

func (a access) lock() {
	if !a.inTx {
		a.s.mu.Lock()
	}
}

func (a access) unlock() {
	if !a.inTx {
		a.s.mu.Unlock()
	}
}

// state is a deep copy of everything a rollback must restore. FailAudit is
// test configuration, not data, and survives rollbacks.
type state struct {
	orders       map[string]*entity.Order
	worksheets   map[string]*entity.WorkSheet
	sheetLines   map[string][]*entity.WorksheetProduct
	materials    map[string]*entity.Material
	lots         map[string]*entity.MaterialLot
	consumptions []*entity.WorksheetMaterial
	qcs          map[string]*entity.QualityControl
	invoices     map[string]*entity.Invoice
	invoiceLines map[string][]*entity.InvoiceLineItem
	dentists     map[string]*entity.Dentist
	products     map[string]*entity.Product
	documents    map[string]*entity.Document
	emailLogs    []*entity.EmailLog
	auditLog     []*entity.AuditEntry
	counters     map[string]int
	labConfig    *entity.LabConfig
}

func (s *Store) snapshot() *state {
	st := &state{
		orders:       cloneMap(s.orders),
		worksheets:   cloneMap(s.worksheets),
		sheetLines:   cloneLists(s.sheetLines),
		materials:    cloneMap(s.materials),
		lots:         cloneMap(s.lots),
		consumptions: cloneSlice(s.consumptions),
		qcs:          cloneMap(s.qcs),
		invoices:     cloneMap(s.invoices),
		invoiceLines: cloneLists(s.invoiceLines),
		dentists:     cloneMap(s.dentists),
		products:     cloneMap(s.products),
		documents:    cloneMap(s.documents),
		emailLogs:    cloneSlice(s.emailLogs),
		auditLog:     cloneSlice(s.auditLog),
		counters:     maps.Clone(s.counters),
	}
	if s.labConfig != nil {
		c := *s.labConfig
		st.labConfig = &c
	}
	return st
}

func (s *Store) restore(st *state) {
	s.orders = st.orders
	s.worksheets = st.worksheets
	s.sheetLines = st.sheetLines
	s.materials = st.materials
	s.lots = st.lots
	s.consumptions = st.consumptions
	s.qcs = st.qcs
	s.invoices = st.invoices
	s.invoiceLines = st.invoiceLines
	s.dentists = st.dentists
	s.products = st.products
	s.documents = st.documents
	s.emailLogs = st.emailLogs
	s.auditLog = st.auditLog
	s.counters = st.counters
	s.labConfig = st.labConfig
}

func cloneMap[K comparable, V any](src map[K]*V) map[K]*V {
	dst := make(map[K]*V, len(src))
	for k, v := range src {
		c := *v
		dst[k] = &c
	}
	return dst
}

func cloneSlice[V any](src []*V) []*V {
	dst := make([]*V, len(src))
	for i, v := range src {
		c := *v
		dst[i] = &c
	}
	return dst
}

func cloneLists[K comparable, V any](src map[K][]*V) map[K][]*V {
	dst := make(map[K][]*V, len(src))
	for k, list := range src {
		dst[k] = cloneSlice(list)
	}
	return dst
}

// page mirrors LIMIT/OFFSET. A non-positive limit means no limit; no caller
// passes zero in practice.
func page[V any](list []V, limit, offset int) []V {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// InventoryTxRunner runs inventory callbacks atomically on the store.
type InventoryTxRunner struct {
	s *Store
}

// NewInventoryTxRunner builds the runner on the store.
func NewInventoryTxRunner(s *Store) *InventoryTxRunner {
	return &InventoryTxRunner{s: s}
}

func (r *InventoryTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.MaterialLotRepository,
	consumptionRepo repository.ConsumptionRepository,
	worksheetRepo repository.WorkSheetRepository,
	auditRepo repository.AuditRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	err := fn(
		&MaterialLotRepo{access{r.s, true}},
		&ConsumptionRepo{access{r.s, true}},
		&WorkSheetRepo{access{r.s, true}},
		&AuditRepo{access{r.s, true}},
	)
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ProductionTxRunner runs order and work sheet callbacks atomically on the store.
type ProductionTxRunner struct {
	s *Store
}

// NewProductionTxRunner builds the runner on the store.
func NewProductionTxRunner(s *Store) *ProductionTxRunner {
	return &ProductionTxRunner{s: s}
}

func (r *ProductionTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	qcRepo repository.QCRepository,
	counterRepo repository.CounterRepository,
	auditRepo repository.AuditRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	err := fn(
		&OrderRepo{access{r.s, true}},
		&WorkSheetRepo{access{r.s, true}},
		&QCRepo{access{r.s, true}},
		&CounterRepo{access{r.s, true}},
		&AuditRepo{access{r.s, true}},
	)
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// BillingTxRunner runs invoice callbacks atomically on the store.
type BillingTxRunner struct {
	s *Store
}

// NewBillingTxRunner builds the runner on the store.
func NewBillingTxRunner(s *Store) *BillingTxRunner {
	return &BillingTxRunner{s: s}
}

func (r *BillingTxRunner) Run(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	emailLogRepo repository.EmailLogRepository,
	auditRepo repository.AuditRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	err := fn(
		&InvoiceRepo{access{r.s, true}},
		&OrderRepo{access{r.s, true}},
		&WorkSheetRepo{access{r.s, true}},
		&EmailLogRepo{access{r.s, true}},
		&AuditRepo{access{r.s, true}},
	)
	if err != nil {
		r.s.restore(snap)
	}
	return err
}
