package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
)

// MemoryMemberRepository keeps members in process memory. Used for local runs and tests.
type MemoryMemberRepository struct {
	mu      sync.RWMutex
	members map[string]domain.MemberRecord
}

func NewMemoryMemberRepository(seed ...*domain.MemberRecord) *MemoryMemberRepository {
	r := &MemoryMemberRepository{members: make(map[string]domain.MemberRecord, len(seed))}
	for _, m := range seed {
		r.members[m.ID] = clone(m)
	}
	return r
}

func (r *MemoryMemberRepository) GetByID(_ context.Context, id string) (*domain.MemberRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	out := clone(&m)
	return &out, nil
}

func (r *MemoryMemberRepository) Create(_ context.Context, member *domain.MemberRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	r.members[member.ID] = clone(member)
	return nil
}

func (r *MemoryMemberRepository) Update(_ context.Context, member *domain.MemberRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.members[member.ID]
	if !ok {
		return domain.ErrMemberNotFound
	}
	member.CreatedAt = existing.CreatedAt
	member.UpdatedAt = time.Now()
	r.members[member.ID] = clone(member)
	return nil
}

func (r *MemoryMemberRepository) UpdateRemaining(_ context.Context, id string, remaining *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	m.Remaining = nil
	if remaining != nil {
		n := *remaining
		m.Remaining = &n
	}
	m.UpdatedAt = time.Now()
	r.members[id] = m
	return nil
}

func (r *MemoryMemberRepository) List(_ context.Context) ([]*domain.MemberRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.MemberRecord, 0, len(r.members))
	for _, m := range r.members {
		c := clone(&m)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func clone(m *domain.MemberRecord) domain.MemberRecord {
	c := *m
	if m.Remaining != nil {
		n := *m.Remaining
		c.Remaining = &n
	}
	return c
}
