package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
)

// ContractRepository abstracts contract storage so a real database can
// replace the in-memory store without touching workflow or view logic.
type ContractRepository interface {
	GetAll() []*model.Contract
	GetByID(id string) (*model.Contract, error)
	Upsert(c *model.Contract)
	NextID() string
}

// UserRepository abstracts user lookup.
type UserRepository interface {
	GetByID(id string) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	List() []*model.User
	Upsert(u *model.User)
}

// ContractStore is an in-memory contract repository. Insertion order is
// preserved so view derivation has a stable tie-break.
type ContractStore struct {
	mu        sync.RWMutex
	contracts map[string]*model.Contract
	order     []string
	idPrefix  string
	seq       int
}

// NewContractStore creates an empty store. idPrefix feeds the sequential
// human-readable ids, e.g. "CTR" yields CTR-2025-001.
func NewContractStore(idPrefix string) *ContractStore {
	return &ContractStore{
		contracts: make(map[string]*model.Contract),
		idPrefix:  idPrefix,
	}
}

// GetAll returns copies of all contracts in insertion order.
func (s *ContractStore) GetAll() []*model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Contract, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.contracts[id].Clone())
	}
	return result
}

// GetByID returns a copy of the contract, or ErrNotFound.
func (s *ContractStore) GetByID(id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

// Upsert stores a copy of the contract, keeping first-insertion order.
func (s *ContractStore) Upsert(c *model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now()
	if _, ok := s.contracts[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.contracts[c.ID] = c.Clone()
}

// NextID issues the next sequential contract id.
func (s *ContractStore) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := time.Now().Year()
	for {
		s.seq++
		id := fmt.Sprintf("%s-%d-%03d", s.idPrefix, year, s.seq)
		if _, taken := s.contracts[id]; !taken {
			return id
		}
	}
}

// Count returns the number of contracts in the store.
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

// UserStore is an in-memory user repository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if s.users[id].Username == username {
			cp := *s.users[id]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
}

func (s *UserStore) List() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.User, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.users[id]
		result = append(result, &cp)
	}
	return result
}

func (s *UserStore) Upsert(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		s.order = append(s.order, u.ID)
	}
	cp := *u
	s.users[u.ID] = &cp
}
