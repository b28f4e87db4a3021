package storage

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.FavoritesStore = (*MemoryFavorites)(nil)

// MemoryFavorites is an in-memory favorites store. Safe for concurrent access.
type MemoryFavorites struct {
	mu        sync.RWMutex
	favorites map[domain.RecipeSignature]*domain.Favorite
	log       *logger.Logger
}

// NewMemoryFavorites creates an empty in-memory favorites store.
func NewMemoryFavorites(log *logger.Logger) *MemoryFavorites {
	return &MemoryFavorites{
		favorites: make(map[domain.RecipeSignature]*domain.Favorite),
		log:       log,
	}
}

// Save persists a favorite. Overwrites if it already exists.
func (s *MemoryFavorites) Save(ctx context.Context, fav *domain.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving favorite %s (%d steps)", fav.Signature, len(fav.Steps))
	s.favorites[fav.Signature] = cloneFavorite(fav)
	return nil
}

// Get retrieves a favorite by signature.
func (s *MemoryFavorites) Get(ctx context.Context, sig domain.RecipeSignature) (*domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fav, ok := s.favorites[sig]
	if !ok {
		s.log.Debug("favorite not found: %s", sig)
		return nil, domain.ErrNotFound
	}
	return cloneFavorite(fav), nil
}

// List returns all favorites, newest first.
func (s *MemoryFavorites) List(ctx context.Context) ([]*domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Favorite, 0, len(s.favorites))
	for _, fav := range s.favorites {
		out = append(out, cloneFavorite(fav))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

// Delete removes a favorite by signature.
func (s *MemoryFavorites) Delete(ctx context.Context, sig domain.RecipeSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[sig]; !ok {
		return domain.ErrNotFound
	}
	delete(s.favorites, sig)
	s.log.Debug("deleted favorite %s", sig)
	return nil
}

func cloneFavorite(f *domain.Favorite) *domain.Favorite {
	c := *f
	c.Ingredients = slices.Clone(f.Ingredients)
	c.Steps = domain.CloneSteps(f.Steps)
	return &c
}
