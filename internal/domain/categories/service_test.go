package categories

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	byID  map[string]*Category
	inUse map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:  make(map[string]*Category),
		inUse: make(map[string]bool),
	}
}

func (r *fakeRepo) nameTakenLocked(name, slug, exceptID string) bool {
	for _, c := range r.byID {
		if c.ID == exceptID {
			continue
		}
		if strings.EqualFold(c.Name, name) || c.Slug == slug {
			return true
		}
	}
	return false
}

func (r *fakeRepo) Create(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTakenLocked(c.Name, c.Slug, "") {
		return ErrDuplicateName
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(_ context.Context) ([]*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Category, 0, len(r.byID))
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	if r.nameTakenLocked(c.Name, c.Slug, c.ID) {
		return ErrDuplicateName
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	if r.inUse[id] {
		return ErrInUse
	}
	delete(r.byID, id)
	return nil
}

func TestCreateSlugifiesName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	c, err := svc.Create(context.Background(), "  Seni & Budaya  ")
	require.NoError(t, err)
	require.Equal(t, "Seni & Budaya", c.Name)
	require.Equal(t, "seni-budaya", c.Slug)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Create(context.Background(), "Olahraga")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "olahraga")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateValidatesName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Create(context.Background(), "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)

	_, err = svc.Create(context.Background(), strings.Repeat("a", 101))
	require.ErrorAs(t, err, &verr)
}

func TestRenameUpdatesSlug(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	c, err := svc.Create(context.Background(), "Akademik")
	require.NoError(t, err)

	renamed, err := svc.Rename(context.Background(), c.ID, "Seminar Akademik")
	require.NoError(t, err)
	require.Equal(t, "seminar-akademik", renamed.Slug)

	_, err = svc.GetBySlug(context.Background(), "akademik")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenameUnknownCategory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Rename(context.Background(), "missing", "Baru")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRefusesCategoryInUse(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	c, err := svc.Create(context.Background(), "Kewirausahaan")
	require.NoError(t, err)
	repo.inUse[c.ID] = true

	require.ErrorIs(t, svc.Delete(context.Background(), c.ID), ErrInUse)

	repo.inUse[c.ID] = false
	require.NoError(t, svc.Delete(context.Background(), c.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), c.ID), ErrNotFound)
}
