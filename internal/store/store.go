// Package store persists invoice documents and gives each one a stable
// identity.
//
// The whole collection is kept as one JSON array under KeyInvoices and is
// rewritten on every change. A write either replaces the collection
// completely or fails and leaves the previous collection in place.
package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"invoicer/internal/clock"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Well-known backend keys.
const (
	KeyInvoices     = "invoices"
	KeyBusinessInfo = "businessInfo"
)

// IDGenerator hands out invoice identifiers.
type IDGenerator interface {
	NewID() models.ID
}

// ULIDGenerator produces lexically sortable ids that stay unique when many
// are created within the same millisecond.
type ULIDGenerator struct {
	mu      sync.Mutex
	clock   clock.Clock
	entropy io.Reader
}

func NewULIDGenerator(c clock.Clock) *ULIDGenerator {
	return &ULIDGenerator{
		clock:   c,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ULIDGenerator) NewID() models.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.clock.Now()), g.entropy)
	if err != nil {
		// Monotonic entropy overflowed within one millisecond.
		return models.ID(ulid.Make().String())
	}
	return models.ID(id.String())
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for createdAt and updatedAt.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator replaces the default ULID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// Store is the keyed collection of invoice documents.
type Store struct {
	backend Backend
	clock   clock.Clock
	ids     IDGenerator
	log     zerolog.Logger

	// mu serializes read-modify-write cycles on the collection.
	mu sync.Mutex
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   clock.Real(),
		log:     logger.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewULIDGenerator(s.clock)
	}
	return s
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Save persists doc. Item amounts and totals are recomputed first, so the
// store never holds stale derived values. A document whose id matches a
// stored one replaces that entry entirely, keeping its createdAt and stamping
// updatedAt. Any other document is appended with a new id and createdAt set
// to now. The persisted document is returned.
func (s *Store) Save(ctx context.Context, doc models.Invoice) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx)
	if err != nil {
		return models.Invoice{}, err
	}

	now := s.clock.Now()
	doc = invoice.Recalculate(doc)

	if doc.ID != "" {
		if idx := indexOf(docs, doc.ID); idx >= 0 {
			doc.CreatedAt = docs[idx].CreatedAt
			doc.UpdatedAt = &now
			docs[idx] = doc
			if err := s.persist(ctx, docs); err != nil {
				return models.Invoice{}, wrapStorageError("Save", KeyInvoices, err)
			}
			s.log.Info().
				Str("invoice_id", doc.ID.String()).
				Str("invoice_number", doc.InvoiceNumber).
				Msg("Invoice updated")
			return doc.Clone(), nil
		}
	}

	doc.ID = s.uniqueID(docs)
	doc.CreatedAt = now
	doc.UpdatedAt = nil
	docs = append(docs, doc)
	if err := s.persist(ctx, docs); err != nil {
		return models.Invoice{}, wrapStorageError("Save", KeyInvoices, err)
	}

	s.log.Info().
		Str("invoice_id", doc.ID.String()).
		Str("invoice_number", doc.InvoiceNumber).
		Int("collection_size", len(docs)).
		Msg("Invoice created")
	return doc.Clone(), nil
}

// List returns every document, newest createdAt first. Documents created at
// the same instant keep their insertion order.
func (s *Store) List(ctx context.Context) ([]models.Invoice, error) {
	s.mu.Lock()
	docs, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// Snapshot returns every document in insertion order.
func (s *Store) Snapshot(ctx context.Context) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the document with id. found is false when no document has it.
func (s *Store) Get(ctx context.Context, id models.ID) (doc models.Invoice, found bool, err error) {
	s.mu.Lock()
	docs, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return models.Invoice{}, false, err
	}
	if idx := indexOf(docs, id); idx >= 0 {
		return docs[idx], true, nil
	}
	return models.Invoice{}, false, nil
}

// Delete removes the document with id. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(docs, id)
	if idx < 0 {
		s.log.Debug().Str("invoice_id", id.String()).Msg("Delete of unknown invoice ignored")
		return nil
	}
	docs = append(docs[:idx], docs[idx+1:]...)
	if err := s.persist(ctx, docs); err != nil {
		return wrapStorageError("Delete", KeyInvoices, err)
	}
	s.log.Info().Str("invoice_id", id.String()).Msg("Invoice deleted")
	return nil
}

// Search returns the documents whose invoice number, client name or
// business name contains term, ignoring case, in List order. A blank term
// returns the full list.
func (s *Store) Search(ctx context.Context, term string) ([]models.Invoice, error) {
	docs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return docs, nil
	}
	matches := make([]models.Invoice, 0, len(docs))
	for _, doc := range docs {
		if containsFold(doc.InvoiceNumber, term) ||
			containsFold(doc.ClientName, term) ||
			containsFold(doc.BusinessName, term) {
			matches = append(matches, doc)
		}
	}
	return matches, nil
}

// ReplaceAll discards the stored collection and writes docs in its place.
// Documents without an id get one; documents without createdAt get now.
// Duplicate ids are rejected before anything is written.
func (s *Store) ReplaceAll(ctx context.Context, docs []models.Invoice) error {
	return s.Restore(ctx, docs, nil, false)
}

// Merge upserts docs by id into the stored collection in a single write.
// A matching entry is replaced but keeps its createdAt; other documents are
// appended. Duplicate ids within docs are rejected.
func (s *Store) Merge(ctx context.Context, docs []models.Invoice) error {
	return s.Restore(ctx, docs, nil, true)
}

// Restore writes a backup into the store. With merge, docs are upserted as
// in Merge; otherwise they replace the collection as in ReplaceAll. A
// non-nil businessInfo replaces the stored business profile. Either every
// key changes or none does: if the business profile cannot be written the
// previous collection is put back.
func (s *Store) Restore(ctx context.Context, docs []models.Invoice, businessInfo *string, merge bool) error {
	op := "ReplaceAll"
	if merge {
		op = "Merge"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, prev, err := s.loadRaw(ctx)
	if err != nil {
		return err
	}

	var next []models.Invoice
	updated, created := 0, 0
	if merge {
		incoming, err := s.normalize(docs, current)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		next = current
		for _, doc := range incoming {
			if idx := indexOf(next, doc.ID); idx >= 0 {
				doc.CreatedAt = next[idx].CreatedAt
				doc.UpdatedAt = &now
				next[idx] = doc
				updated++
				continue
			}
			next = append(next, doc)
			created++
		}
	} else {
		if next, err = s.normalize(docs, nil); err != nil {
			return err
		}
		created = len(next)
	}

	if err := s.persist(ctx, next); err != nil {
		return wrapStorageError(op, KeyInvoices, err)
	}

	if businessInfo != nil {
		if err := s.backend.Write(ctx, KeyBusinessInfo, []byte(*businessInfo)); err != nil {
			if rbErr := s.rollback(ctx, prev); rbErr != nil {
				s.log.Error().
					Err(rbErr).
					Msg("Failed to put back the previous invoice collection")
				return newStorageError(op, KeyBusinessInfo, err,
					fmt.Sprintf("previous collection could not be restored: %v", rbErr))
			}
			return wrapStorageError(op, KeyBusinessInfo, err)
		}
	}

	s.log.Info().
		Str("op", op).
		Int("updated", updated).
		Int("created", created).
		Int("collection_size", len(next)).
		Bool("business_info", businessInfo != nil).
		Msg("Invoice collection restored")
	return nil
}

// BusinessInfo returns the stored business profile blob, if any.
func (s *Store) BusinessInfo(ctx context.Context) (info string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Read(ctx, KeyBusinessInfo)
	if errors.Is(err, ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapStorageError("BusinessInfo", KeyBusinessInfo, err)
	}
	return string(data), true, nil
}

// SetBusinessInfo stores the business profile blob.
func (s *Store) SetBusinessInfo(ctx context.Context, info string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Write(ctx, KeyBusinessInfo, []byte(info)); err != nil {
		return wrapStorageError("SetBusinessInfo", KeyBusinessInfo, err)
	}
	return nil
}

// rollback writes back the raw collection read before a failed change. A
// collection that did not exist is written back as empty.
func (s *Store) rollback(ctx context.Context, prev []byte) error {
	if prev == nil {
		prev = []byte("[]")
	}
	return s.backend.Write(ctx, KeyInvoices, prev)
}

func (s *Store) load(ctx context.Context) ([]models.Invoice, error) {
	docs, _, err := s.loadRaw(ctx)
	return docs, err
}

// loadRaw returns the decoded collection together with the bytes it was
// decoded from. raw is nil when nothing is stored yet.
func (s *Store) loadRaw(ctx context.Context) (docs []models.Invoice, raw []byte, err error) {
	raw, err = s.backend.Read(ctx, KeyInvoices)
	if errors.Is(err, ErrKeyNotFound) {
		return []models.Invoice{}, nil, nil
	}
	if err != nil {
		return nil, nil, wrapStorageError("Load", KeyInvoices, err)
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, nil, newStorageError("Load", KeyInvoices, ErrCorruptCollection, err.Error())
	}
	if docs == nil {
		docs = []models.Invoice{}
	}
	return docs, raw, nil
}

func (s *Store) persist(ctx context.Context, docs []models.Invoice) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return newStorageError("Persist", KeyInvoices, ErrSerialization, err.Error())
	}
	return s.backend.Write(ctx, KeyInvoices, data)
}

// normalize copies docs, assigning ids and createdAt where missing.
// Generated ids avoid every id in docs and in existing.
func (s *Store) normalize(docs, existing []models.Invoice) ([]models.Invoice, error) {
	used := make(map[models.ID]bool, len(docs)+len(existing))
	for _, doc := range existing {
		used[doc.ID] = true
	}
	seen := make(map[models.ID]bool, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		if seen[doc.ID] {
			return nil, newStorageError("Normalize", KeyInvoices, ErrDuplicateID, doc.ID.String())
		}
		seen[doc.ID] = true
		used[doc.ID] = true
	}

	now := s.clock.Now()
	out := make([]models.Invoice, 0, len(docs))
	for _, doc := range docs {
		doc = invoice.Recalculate(doc)
		if doc.ID == "" {
			doc.ID = s.freshID(used)
			used[doc.ID] = true
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = now
		}
		out = append(out, doc)
	}
	return out, nil
}

// uniqueID generates an id not used by any of docs.
func (s *Store) uniqueID(docs []models.Invoice) models.ID {
	used := make(map[models.ID]bool, len(docs))
	for _, doc := range docs {
		used[doc.ID] = true
	}
	return s.freshID(used)
}

func (s *Store) freshID(used map[models.ID]bool) models.ID {
	for {
		if id := s.ids.NewID(); !used[id] {
			return id
		}
	}
}

func indexOf(docs []models.Invoice, id models.ID) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
