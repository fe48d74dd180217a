// Package memory is a process-local implementation of the repository ports.
// Units of work are serialized and run against a copy of the data that
// replaces the live copy only when the work succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/utils/pagination"
)

type state struct {
	users        map[string]domain.User
	instances    map[string]domain.WorkflowInstance
	ledger       map[string][]domain.ApprovalLedgerRow // by instance ID, position order
	history      map[string][]domain.HistoryEntry
	sequences    map[string]int64
	accounts     map[string]domain.Account
	transactions map[string][]domain.Transaction // by account ID, append order
}

func newState() *state {
	return &state{
		users:        map[string]domain.User{},
		instances:    map[string]domain.WorkflowInstance{},
		ledger:       map[string][]domain.ApprovalLedgerRow{},
		history:      map[string][]domain.HistoryEntry{},
		sequences:    map[string]int64{},
		accounts:     map[string]domain.Account{},
		transactions: map[string][]domain.Transaction{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range s.instances {
		c.instances[k] = copyInstance(v)
	}
	for k, v := range s.ledger {
		c.ledger[k] = append([]domain.ApprovalLedgerRow(nil), v...)
	}
	for k, v := range s.history {
		c.history[k] = append([]domain.HistoryEntry(nil), v...)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = append([]domain.Transaction(nil), v...)
	}
	return c
}

func copyInstance(w domain.WorkflowInstance) domain.WorkflowInstance {
	if w.Attributes != nil {
		attrs := make(map[string]string, len(w.Attributes))
		for k, v := range w.Attributes {
			attrs[k] = v
		}
		w.Attributes = attrs
	}
	return w
}

func copyUser(u domain.User) domain.User {
	u.Roles = append([]domain.Role(nil), u.Roles...)
	return u
}

// Store holds all data in memory. The zero value is not usable; call NewStore.
type Store struct {
	txMu   sync.Mutex   // held for the whole of a unit of work
	dataMu sync.RWMutex // guards the data pointer
	data   *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// Repos returns repositories that read the committed data and commit each write on its own.
func (s *Store) Repos() portsrepo.RepositoryProvider {
	return provider(&view{store: s})
}

// WithinTx runs fn against a private copy of the data and publishes the copy if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) error {
	return s.commit(func(st *state) error {
		return fn(ctx, provider(&view{store: s, tx: st}))
	})
}

func (s *Store) commit(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	working := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(working); err != nil {
		return err
	}

	s.dataMu.Lock()
	s.data = working
	s.dataMu.Unlock()
	return nil
}

func provider(v *view) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InstanceRepo:    v,
		LedgerRepo:      v,
		HistoryRepo:     v,
		SequenceRepo:    v,
		AccountRepo:     v,
		TransactionRepo: v,
		UserRepo:        v,
	}
}

// view implements every repository port over either the committed data or a unit of work's copy.
type view struct {
	store *Store
	tx    *state
}

var (
	_ portsrepo.WorkflowInstanceRepositoryFacade = (*view)(nil)
	_ portsrepo.ApprovalLedgerRepository         = (*view)(nil)
	_ portsrepo.WorkflowHistoryRepository        = (*view)(nil)
	_ portsrepo.SequenceRepository               = (*view)(nil)
	_ portsrepo.AccountRepositoryFacade          = (*view)(nil)
	_ portsrepo.TransactionRepository            = (*view)(nil)
	_ portsrepo.UserRepositoryFacade             = (*view)(nil)
)

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.dataMu.RLock()
	defer v.store.dataMu.RUnlock()
	return fn(v.store.data)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	return v.store.commit(fn)
}

// --- workflow instances ---

func (v *view) FindInstanceByID(_ context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	var out *domain.WorkflowInstance
	err := v.read(func(st *state) error {
		w, ok := st.instances[instanceID]
		if !ok {
			return domain.ErrInstanceNotFound
		}
		c := copyInstance(w)
		out = &c
		return nil
	})
	return out, err
}

// FindInstanceByIDForUpdate needs no row lock: units of work are already serialized.
func (v *view) FindInstanceByIDForUpdate(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	return v.FindInstanceByID(ctx, instanceID)
}

func pageInstances(all []domain.WorkflowInstance, limit int, key func(domain.WorkflowInstance) time.Time, after func(t time.Time, id string, w domain.WorkflowInstance) bool, nextToken *string) ([]domain.WorkflowInstance, *string, error) {
	if nextToken != nil && *nextToken != "" {
		t, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filtered := all[:0]
		for _, w := range all {
			if after(t, id, w) {
				filtered = append(filtered, w)
			}
		}
		all = filtered
	}
	var next *string
	if len(all) > limit {
		all = all[:limit]
		last := all[limit-1]
		token := pagination.EncodeToken(key(last), last.InstanceID)
		next = &token
	}
	return all, next, nil
}

func (v *view) ListInstancesByOwner(_ context.Context, wfType domain.WorkflowType, ownerID string, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error) {
	var matched []domain.WorkflowInstance
	_ = v.read(func(st *state) error {
		for _, w := range st.instances {
			if w.Type == wfType && w.OwnerID == ownerID {
				matched = append(matched, copyInstance(w))
			}
		}
		return nil
	})
	// created_at DESC, instance_id DESC
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].InstanceID > matched[j].InstanceID
	})
	return pageInstances(matched, limit,
		func(w domain.WorkflowInstance) time.Time { return w.CreatedAt },
		func(t time.Time, id string, w domain.WorkflowInstance) bool {
			return w.CreatedAt.Before(t) || (w.CreatedAt.Equal(t) && w.InstanceID < id)
		}, nextToken)
}

func submittedKey(w domain.WorkflowInstance) time.Time {
	if w.SubmittedAt == nil {
		return w.CreatedAt
	}
	return *w.SubmittedAt
}

func (v *view) ListInstancesAwaitingSteps(_ context.Context, wfType domain.WorkflowType, steps []domain.Step, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error) {
	wanted := make(map[domain.Step]bool, len(steps))
	for _, s := range steps {
		wanted[s] = true
	}
	var matched []domain.WorkflowInstance
	_ = v.read(func(st *state) error {
		for _, w := range st.instances {
			if w.Type == wfType && w.CurrentStep != nil && wanted[*w.CurrentStep] {
				matched = append(matched, copyInstance(w))
			}
		}
		return nil
	})
	sort.Slice(matched, func(i, j int) bool {
		ki, kj := submittedKey(matched[i]), submittedKey(matched[j])
		if !ki.Equal(kj) {
			return ki.Before(kj)
		}
		return matched[i].InstanceID < matched[j].InstanceID
	})
	if matched == nil {
		matched = []domain.WorkflowInstance{}
	}
	return pageInstances(matched, limit, submittedKey,
		func(t time.Time, id string, w domain.WorkflowInstance) bool {
			k := submittedKey(w)
			return k.After(t) || (k.Equal(t) && w.InstanceID > id)
		}, nextToken)
}

func (v *view) SaveInstance(_ context.Context, instance domain.WorkflowInstance) error {
	return v.write(func(st *state) error {
		if _, exists := st.instances[instance.InstanceID]; exists {
			return fmt.Errorf("%w: workflow instance %s", apperrors.ErrDuplicate, instance.InstanceID)
		}
		for _, w := range st.instances {
			if w.HumanNumber == instance.HumanNumber {
				return fmt.Errorf("%w: human number %s", apperrors.ErrDuplicate, instance.HumanNumber)
			}
		}
		st.instances[instance.InstanceID] = copyInstance(instance)
		return nil
	})
}

func (v *view) UpdateInstance(_ context.Context, instance domain.WorkflowInstance, expectedVersion int64) error {
	return v.write(func(st *state) error {
		current, ok := st.instances[instance.InstanceID]
		if !ok || current.Version != expectedVersion {
			return domain.ErrConcurrentUpdate
		}
		st.instances[instance.InstanceID] = copyInstance(instance)
		return nil
	})
}

func (v *view) DeleteInstance(_ context.Context, instanceID string) error {
	return v.write(func(st *state) error {
		if _, ok := st.instances[instanceID]; !ok {
			return domain.ErrInstanceNotFound
		}
		delete(st.instances, instanceID)
		delete(st.ledger, instanceID)
		return nil
	})
}

// --- approval ledger ---

func (v *view) SaveLedgerRows(_ context.Context, rows []domain.ApprovalLedgerRow) error {
	return v.write(func(st *state) error {
		for _, row := range rows {
			if _, ok := st.instances[row.InstanceID]; !ok {
				return fmt.Errorf("%w: ledger row references unknown instance %s", apperrors.ErrValidation, row.InstanceID)
			}
			for _, existing := range st.ledger[row.InstanceID] {
				if existing.Step == row.Step {
					return fmt.Errorf("%w: ledger row %s/%s", apperrors.ErrDuplicate, row.InstanceID, row.Step)
				}
			}
			st.ledger[row.InstanceID] = append(st.ledger[row.InstanceID], row)
		}
		for id := range st.ledger {
			sort.SliceStable(st.ledger[id], func(i, j int) bool { return st.ledger[id][i].Position < st.ledger[id][j].Position })
		}
		return nil
	})
}

func (v *view) FindLedgerRows(_ context.Context, instanceID string) ([]domain.ApprovalLedgerRow, error) {
	var out []domain.ApprovalLedgerRow
	err := v.read(func(st *state) error {
		out = append([]domain.ApprovalLedgerRow{}, st.ledger[instanceID]...)
		return nil
	})
	return out, err
}

func (v *view) FindLedgerRow(_ context.Context, instanceID string, step domain.Step) (*domain.ApprovalLedgerRow, error) {
	var out *domain.ApprovalLedgerRow
	err := v.read(func(st *state) error {
		for _, row := range st.ledger[instanceID] {
			if row.Step == step {
				r := row
				out = &r
				return nil
			}
		}
		return fmt.Errorf("approval ledger row %s/%s: %w", instanceID, step, apperrors.ErrNotFound)
	})
	return out, err
}

func (v *view) RecordDecision(_ context.Context, row domain.ApprovalLedgerRow) error {
	return v.write(func(st *state) error {
		rows := st.ledger[row.InstanceID]
		for i := range rows {
			if rows[i].Step != row.Step {
				continue
			}
			if !rows[i].IsPending() {
				return domain.ErrStepAlreadyProcessed
			}
			rows[i].Decision = row.Decision
			rows[i].ApproverID = row.ApproverID
			rows[i].DecidedAt = row.DecidedAt
			rows[i].Notes = row.Notes
			return nil
		}
		return fmt.Errorf("approval ledger row %s/%s: %w", row.InstanceID, row.Step, apperrors.ErrNotFound)
	})
}

func (v *view) DeleteLedgerRows(_ context.Context, instanceID string) error {
	return v.write(func(st *state) error {
		delete(st.ledger, instanceID)
		return nil
	})
}

// --- history ---

func (v *view) AppendHistory(_ context.Context, entry domain.HistoryEntry) error {
	return v.write(func(st *state) error {
		st.history[entry.InstanceID] = append(st.history[entry.InstanceID], entry)
		return nil
	})
}

func (v *view) ListHistory(_ context.Context, instanceID string) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := v.read(func(st *state) error {
		out = append([]domain.HistoryEntry{}, st.history[instanceID]...)
		return nil
	})
	return out, err
}

func (v *view) DeleteHistory(_ context.Context, instanceID string) error {
	return v.write(func(st *state) error {
		delete(st.history, instanceID)
		return nil
	})
}

// --- sequences ---

func (v *view) NextSequence(_ context.Context, prefix string, day string) (int64, error) {
	var next int64
	err := v.write(func(st *state) error {
		key := prefix + "|" + day
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	return next, err
}

// --- accounts ---

func (v *view) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := v.read(func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (v *view) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return v.FindAccountByID(ctx, accountID)
}

func (v *view) FindAccountByOwnerAndTypeForUpdate(_ context.Context, ownerID string, accountType domain.AccountType) (*domain.Account, error) {
	var out *domain.Account
	err := v.read(func(st *state) error {
		for _, a := range st.accounts {
			if a.OwnerID != ownerID || a.AccountType != accountType || !a.IsActive() {
				continue
			}
			if out == nil || a.CreatedAt.Before(out.CreatedAt) {
				c := a
				out = &c
			}
		}
		if out == nil {
			return domain.ErrAccountNotFound
		}
		return nil
	})
	return out, err
}

func (v *view) FindAccountsByOwner(_ context.Context, ownerID string) ([]domain.Account, error) {
	out := []domain.Account{}
	err := v.read(func(st *state) error {
		for _, a := range st.accounts {
			if a.OwnerID == ownerID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountType != out[j].AccountType {
			return out[i].AccountType < out[j].AccountType
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (v *view) SaveAccount(_ context.Context, account domain.Account) error {
	return v.write(func(st *state) error {
		if _, exists := st.accounts[account.AccountID]; exists {
			return domain.ErrDuplicateAccount
		}
		if account.AccountType != domain.Deposito && account.IsActive() {
			for _, a := range st.accounts {
				if a.OwnerID == account.OwnerID && a.AccountType == account.AccountType && a.IsActive() {
					return domain.ErrDuplicateAccount
				}
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (v *view) UpdateAccount(_ context.Context, account domain.Account) error {
	return v.write(func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; !ok {
			return domain.ErrAccountNotFound
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

// --- transactions ---

func (v *view) AppendTransaction(_ context.Context, txn domain.Transaction) error {
	return v.write(func(st *state) error {
		if _, ok := st.accounts[txn.AccountID]; !ok {
			return fmt.Errorf("%w: transaction references unknown account %s", apperrors.ErrValidation, txn.AccountID)
		}
		st.transactions[txn.AccountID] = append(st.transactions[txn.AccountID], txn)
		return nil
	})
}

func (v *view) ListTransactionsByAccountID(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var all []domain.Transaction
	_ = v.read(func(st *state) error {
		all = append([]domain.Transaction{}, st.transactions[accountID]...)
		return nil
	})
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].TransactionID > all[j].TransactionID
	})
	if nextToken != nil && *nextToken != "" {
		t, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filtered := all[:0]
		for _, txn := range all {
			if txn.CreatedAt.Before(t) || (txn.CreatedAt.Equal(t) && txn.TransactionID < id) {
				filtered = append(filtered, txn)
			}
		}
		all = filtered
	}
	var next *string
	if len(all) > limit {
		all = all[:limit]
		last := all[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
	}
	return all, next, nil
}

// --- users ---

func (v *view) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := v.read(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		c := copyUser(u)
		out = &c
		return nil
	})
	return out, err
}

func (v *view) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := v.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				c := copyUser(u)
				out = &c
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (v *view) FindUsersByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	out := []domain.User{}
	err := v.read(func(st *state) error {
		for _, u := range st.users {
			if u.IsActive && u.HasRole(role) {
				out = append(out, copyUser(u))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, err
}

func (v *view) SaveUser(_ context.Context, user domain.User) error {
	return v.write(func(st *state) error {
		for _, u := range st.users {
			if u.UserID == user.UserID || strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, user.Email)
			}
		}
		st.users[user.UserID] = copyUser(user)
		return nil
	})
}

func (v *view) AddUserRole(_ context.Context, userID string, role domain.Role) error {
	return v.write(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if u.HasRole(role) {
			return nil
		}
		u = copyUser(u)
		u.Roles = append(u.Roles, role)
		st.users[userID] = u
		return nil
	})
}
