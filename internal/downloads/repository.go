package downloads

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/identity"
)

func NewRequestRepository(db *bun.DB) repository.Repository[*Request] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Request]{
		NewRecord:          func() *Request { return &Request{} },
		GetID:              func(r *Request) uuid.UUID { return r.ID },
		SetID:              func(r *Request, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "email" },
		GetIdentifierValue: func(r *Request) string { return r.Email },
	})
}

func NewMappingRepository(db *bun.DB) repository.Repository[*FileSegmentMapping] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FileSegmentMapping]{
		NewRecord:          func() *FileSegmentMapping { return &FileSegmentMapping{} },
		GetID:              func(m *FileSegmentMapping) uuid.UUID { return m.ID },
		SetID:              func(m *FileSegmentMapping, id uuid.UUID) { m.ID = id },
		GetIdentifier:      func() string { return "file_key" },
		GetIdentifierValue: func(m *FileSegmentMapping) string { return m.FileKey },
	})
}

// BunRepository stores download requests and mappings through bun.
type BunRepository struct {
	requests repository.Repository[*Request]
	mappings repository.Repository[*FileSegmentMapping]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{requests: NewRequestRepository(db), mappings: NewMappingRepository(db)}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Create(ctx context.Context, req *Request) (*Request, error) {
	record := cloneRequest(req)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.requests.Create(ctx, record)
}

func (r *BunRepository) List(ctx context.Context, limit int) ([]*Request, error) {
	records, _, err := r.requests.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.OrderExpr("?TableAlias.created_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	}))
	return records, err
}

func (r *BunRepository) Mapping(ctx context.Context, fileKey string) (*FileSegmentMapping, error) {
	record, err := r.mappings.GetByIdentifier(ctx, strings.TrimSpace(fileKey))
	if err != nil {
		if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrMappingNotFound, fileKey)
		}
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) SaveMapping(ctx context.Context, mapping *FileSegmentMapping) (*FileSegmentMapping, error) {
	record := cloneMapping(mapping)
	existing, err := r.mappings.GetByIdentifier(ctx, record.FileKey)
	if err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("mapping lookup: %w", err)
		}
		if record.ID == uuid.Nil {
			record.ID = identity.FileMappingUUID(record.FileKey)
		}
		return r.mappings.Create(ctx, record)
	}
	record.ID = existing.ID
	return r.mappings.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("segment_id", "campaign_id", "tags", "points"),
	)
}

type MemoryRepository struct {
	mu       sync.RWMutex
	requests []*Request
	mappings map[string]*FileSegmentMapping
	// FailCreate, when set, fails every Create.
	FailCreate error
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{mappings: make(map[string]*FileSegmentMapping)}
}

func (m *MemoryRepository) Create(_ context.Context, req *Request) (*Request, error) {
	if m.FailCreate != nil {
		return nil, m.FailCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneRequest(req)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.requests = append(m.requests, record)
	return cloneRequest(record), nil
}

func (m *MemoryRepository) List(_ context.Context, limit int) ([]*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Request, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, cloneRequest(req))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Mapping(_ context.Context, fileKey string) (*FileSegmentMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.mappings[strings.TrimSpace(fileKey)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMappingNotFound, fileKey)
	}
	return cloneMapping(mapping), nil
}

func (m *MemoryRepository) SaveMapping(_ context.Context, mapping *FileSegmentMapping) (*FileSegmentMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneMapping(mapping)
	if existing, ok := m.mappings[record.FileKey]; ok {
		record.ID = existing.ID
	} else if record.ID == uuid.Nil {
		record.ID = identity.FileMappingUUID(record.FileKey)
	}
	m.mappings[record.FileKey] = record
	return cloneMapping(record), nil
}
