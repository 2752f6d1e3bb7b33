// Package memory keeps the application state in process memory. It backs offline use
// (CLI reports over a backup file, running without MongoDB) and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

// Store is a concurrency-safe in-memory repository.Store.
type Store struct {
	mu          sync.RWMutex
	owners      map[string]models.Owner
	rentals     map[string]models.Rental
	occurrences map[string]models.Occurrence
	pix         *models.PixConfig
}

var _ repository.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		owners:      make(map[string]models.Owner),
		rentals:     make(map[string]models.Rental),
		occurrences: make(map[string]models.Occurrence),
	}
}

// NewStoreFromSnapshot creates a store preloaded with a backup.
func NewStoreFromSnapshot(snapshot models.Snapshot) (*Store, error) {
	s := NewStore()
	if err := s.ReplaceAll(context.Background(), snapshot); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) SaveOwner(_ context.Context, owner models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner.ID] = owner
	return nil
}

func (s *Store) GetOwner(_ context.Context, id string) (models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[id]
	if !ok {
		return models.Owner{}, repository.ErrNotFound
	}
	return owner, nil
}

func (s *Store) ListOwners(_ context.Context) ([]models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteOwner(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.owners, id)
	return nil
}

func (s *Store) SaveRental(_ context.Context, rental models.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rentals[rental.ID] = cloneRental(rental)
	return nil
}

func (s *Store) GetRental(_ context.Context, id string) (models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rental, ok := s.rentals[id]
	if !ok {
		return models.Rental{}, repository.ErrNotFound
	}
	return cloneRental(rental), nil
}

func (s *Store) ListRentals(_ context.Context, filter models.RentalFilter) ([]models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rental, 0)
	for _, r := range s.rentals {
		if filter.Matches(r) {
			out = append(out, cloneRental(r))
		}
	}
	models.SortByRef(out)
	return out, nil
}

func (s *Store) DeleteRental(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rentals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rentals, id)
	return nil
}

func (s *Store) DeleteRentals(_ context.Context, filter models.RentalFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.rentals {
		if filter.Matches(r) {
			delete(s.rentals, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) SaveOccurrence(_ context.Context, occurrence models.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.occurrences[occurrence.ID] = occurrence
	return nil
}

func (s *Store) GetOccurrence(_ context.Context, id string) (models.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occ, ok := s.occurrences[id]
	if !ok {
		return models.Occurrence{}, repository.ErrNotFound
	}
	return occ, nil
}

func (s *Store) ListOccurrences(_ context.Context) ([]models.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Occurrence, 0, len(s.occurrences))
	for _, o := range s.occurrences {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) GetPixConfig(_ context.Context) (*models.PixConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pix == nil {
		return nil, nil
	}
	cfg := *s.pix
	return &cfg, nil
}

func (s *Store) SavePixConfig(_ context.Context, cfg models.PixConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pix = &cfg
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, snapshot models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners = make(map[string]models.Owner, len(snapshot.Owners))
	for _, o := range snapshot.Owners {
		s.owners[o.ID] = o
	}
	s.rentals = make(map[string]models.Rental, len(snapshot.Rentals))
	for _, r := range snapshot.Rentals {
		s.rentals[r.ID] = cloneRental(r)
	}
	s.occurrences = make(map[string]models.Occurrence, len(snapshot.Occurrences))
	for _, o := range snapshot.Occurrences {
		s.occurrences[o.ID] = o
	}
	s.pix = nil
	if snapshot.PixConfig != nil {
		cfg := *snapshot.PixConfig
		s.pix = &cfg
	}
	return nil
}

func cloneRental(r models.Rental) models.Rental {
	r.OtherItems = cloneItems(r.OtherItems)
	r.OwnerItems = cloneItems(r.OwnerItems)
	return r
}

func cloneItems(items []models.LineItem) []models.LineItem {
	if items == nil {
		return nil
	}
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}
