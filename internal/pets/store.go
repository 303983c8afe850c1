package pets

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePet = errors.New("pets: duplicate pet id")
	ErrUnknownPet   = errors.New("pets: unknown pet")
)

// Store owns pet fields keyed by id and remembers insertion order so
// listings are stable. It is not safe for concurrent use; the owner
// serialises access.
type Store struct {
	pets  map[string]*Pet
	order []string
}

func NewStore() *Store {
	return &Store{pets: make(map[string]*Pet)}
}

// Add inserts a new pet.
func (s *Store) Add(p Pet) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownPet)
	}
	if _, exists := s.pets[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePet, p.ID)
	}
	stored := p.Clone()
	s.pets[p.ID] = &stored
	s.order = append(s.order, p.ID)
	return nil
}

// Get returns a copy of the pet.
func (s *Store) Get(id string) (Pet, bool) {
	p, ok := s.pets[id]
	if !ok {
		return Pet{}, false
	}
	return p.Clone(), true
}

// Ref returns the stored pet for in-place mutation by the owner.
func (s *Store) Ref(id string) (*Pet, bool) {
	p, ok := s.pets[id]
	return p, ok
}

// Put replaces an existing pet.
func (s *Store) Put(p Pet) error {
	if _, ok := s.pets[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPet, p.ID)
	}
	stored := p.Clone()
	s.pets[p.ID] = &stored
	return nil
}

func (s *Store) Remove(id string) (Pet, bool) {
	p, ok := s.pets[id]
	if !ok {
		return Pet{}, false
	}
	delete(s.pets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *p, true
}

func (s *Store) Len() int {
	return len(s.pets)
}

// IDs lists pet ids in insertion order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// All returns copies of every pet in insertion order.
func (s *Store) All() []Pet {
	out := make([]Pet, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pets[id].Clone())
	}
	return out
}
