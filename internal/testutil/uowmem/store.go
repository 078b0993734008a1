// Package uowmem is an in-memory UnitOfWork for usecase tests: real
// transactional semantics (serialized sections, snapshot rollback on
// error) without a database. The gateway side is a balance map, so tests
// can assert actual asset movement and force transfer failures.
package uowmem

import (
	"context"
	"sort"
	"sync"

	"loan-ledger-backend/internal/domain/gateway"
	domain "loan-ledger-backend/internal/domain/loan"
	"loan-ledger-backend/internal/domain/uow"
)

type balanceKey struct {
	account string
	asset   gateway.Asset
}

type Store struct {
	mu       sync.Mutex
	nextID   uint64
	loans    map[uint64]*domain.Loan
	active   []uint64
	balances map[balanceKey]uint64

	// TransferErr, when set, is consulted before every transfer; a non-nil
	// return aborts the transfer (and with it the enclosing transaction).
	TransferErr func(asset gateway.Asset, from, to string, amount uint64) error
}

func New() *Store {
	return &Store{
		nextID:   1,
		loans:    make(map[uint64]*domain.Loan),
		balances: make(map[balanceKey]uint64),
	}
}

// Seed credits an account outside any transaction.
func (s *Store) Seed(account string, asset gateway.Asset, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{account, asset}] += amount
}

func (s *Store) Balance(account string, asset gateway.Asset) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[balanceKey{account, asset}]
}

// Loan returns a copy of the stored record for assertions.
func (s *Store) Loan(id uint64) (*domain.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, false
	}
	return copyLoan(l), true
}

// ---- uow.UnitOfWork ----

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(s.repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, id uint64, fn func(r uow.Repos, l *domain.Loan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return domain.ErrNotFound
	}
	snap := s.snapshot()
	if err := fn(s.repos(), copyLoan(l)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{Loans: (*txRepo)(s), Gateway: (*txGateway)(s)}
}

// ---- snapshot / restore ----

type snapshotState struct {
	nextID   uint64
	loans    map[uint64]*domain.Loan
	active   []uint64
	balances map[balanceKey]uint64
}

func (s *Store) snapshot() snapshotState {
	loans := make(map[uint64]*domain.Loan, len(s.loans))
	for id, l := range s.loans {
		loans[id] = copyLoan(l)
	}
	return snapshotState{
		nextID:   s.nextID,
		loans:    loans,
		active:   append([]uint64(nil), s.active...),
		balances: copyBalances(s.balances),
	}
}

func (s *Store) restore(snap snapshotState) {
	s.nextID = snap.nextID
	s.loans = snap.loans
	s.active = snap.active
	s.balances = snap.balances
}

func copyLoan(l *domain.Loan) *domain.Loan {
	c := *l
	if l.StartedAt != nil {
		t := *l.StartedAt
		c.StartedAt = &t
	}
	return &c
}

func copyBalances(in map[balanceKey]uint64) map[balanceKey]uint64 {
	out := make(map[balanceKey]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ---- loan.Repository bound to the store ----
//
// The Store is also usable directly as the registry's read-side
// repository: the read methods take the lock themselves.

type txRepo Store

func (r *txRepo) Create(ctx context.Context, l *domain.Loan) error {
	l.ID = r.nextID
	r.nextID++
	r.loans[l.ID] = copyLoan(l)
	return nil
}

func (r *txRepo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	l, ok := r.loans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyLoan(l), nil
}

func (r *txRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *txRepo) Save(ctx context.Context, l *domain.Loan) error {
	if _, ok := r.loans[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.loans[l.ID] = copyLoan(l)
	return nil
}

func (r *txRepo) AppendActive(ctx context.Context, id uint64) error {
	r.active = append(r.active, id)
	return nil
}

func (r *txRepo) RemoveActive(ctx context.Context, id uint64) error {
	for i, v := range r.active {
		if v == id {
			r.active = append(r.active[:i], r.active[i+1:]...)
			break
		}
	}
	return nil
}

func (r *txRepo) ListActiveIDs(ctx context.Context) ([]uint64, error) {
	out := append([]uint64(nil), r.active...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---- locked read-side repository ----

func (s *Store) Create(ctx context.Context, l *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).Create(ctx, l)
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).GetByID(ctx, id)
}

func (s *Store) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) Save(ctx context.Context, l *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).Save(ctx, l)
}

func (s *Store) AppendActive(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).AppendActive(ctx, id)
}

func (s *Store) RemoveActive(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).RemoveActive(ctx, id)
}

func (s *Store) ListActiveIDs(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*txRepo)(s).ListActiveIDs(ctx)
}

// ---- gateway.AssetGateway bound to the store ----

type txGateway Store

func (g *txGateway) Transfer(ctx context.Context, asset gateway.Asset, from, to string, amount uint64) error {
	if g.TransferErr != nil {
		if err := g.TransferErr(asset, from, to, amount); err != nil {
			return err
		}
	}
	fromKey := balanceKey{from, asset}
	if g.balances[fromKey] < amount {
		return gateway.ErrInsufficientFunds
	}
	g.balances[fromKey] -= amount
	g.balances[balanceKey{to, asset}] += amount
	return nil
}
