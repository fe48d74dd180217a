package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstance(id, number string, createdAt time.Time) domain.WorkflowInstance {
	return domain.WorkflowInstance{
		InstanceID:  id,
		Type:        domain.DepositApplication,
		HumanNumber: number,
		Status:      domain.StatusDraft,
		OwnerID:     "owner-1",
		Amount:      decimal.NewFromInt(1000),
		Attributes:  map[string]string{"source": "test"},
		Version:     1,
		AuditFields: domain.NewAuditFields("owner-1", createdAt),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, newInstance("i-1", "DEP-20260101-0001", time.Now())))
		_, err := repos.SequenceRepo.NextSequence(ctx, "DEP", "20260101")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Repos().InstanceRepo.FindInstanceByID(ctx, "i-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	next, err := store.Repos().SequenceRepo.NextSequence(ctx, "DEP", "20260101")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "rolled back increment must not be visible")
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		return repos.InstanceRepo.SaveInstance(ctx, newInstance("i-1", "DEP-20260101-0001", time.Now()))
	})
	require.NoError(t, err)

	got, err := store.Repos().InstanceRepo.FindInstanceByID(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, "DEP-20260101-0001", got.HumanNumber)

	// Returned values are copies
	got.Attributes["source"] = "mutated"
	again, _ := store.Repos().InstanceRepo.FindInstanceByID(ctx, "i-1")
	assert.Equal(t, "test", again.Attributes["source"])
}

func TestSaveInstance_DuplicateHumanNumber(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()

	require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, newInstance("i-1", "DEP-20260101-0001", time.Now())))
	err := repos.InstanceRepo.SaveInstance(ctx, newInstance("i-2", "DEP-20260101-0001", time.Now()))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestUpdateInstance_VersionGuard(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	inst := newInstance("i-1", "DEP-20260101-0001", time.Now())
	require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, inst))

	inst.Status = domain.ReviewStatus(domain.StepDivisiSimpanPinjam)
	inst.Version = 2
	require.NoError(t, repos.InstanceRepo.UpdateInstance(ctx, inst, 1))

	inst.Version = 3
	err := repos.InstanceRepo.UpdateInstance(ctx, inst, 1)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRecordDecision_OnlyOnce(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, newInstance("i-1", "DEP-20260101-0001", time.Now())))
	require.NoError(t, repos.LedgerRepo.SaveLedgerRows(ctx, []domain.ApprovalLedgerRow{
		{RowID: "r-2", InstanceID: "i-1", Step: domain.StepKetua, Position: 1},
		{RowID: "r-1", InstanceID: "i-1", Step: domain.StepDivisiSimpanPinjam, Position: 0},
	}))

	err := repos.LedgerRepo.SaveLedgerRows(ctx, []domain.ApprovalLedgerRow{{RowID: "r-3", InstanceID: "i-1", Step: domain.StepKetua, Position: 1}})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	rows, err := repos.LedgerRepo.FindLedgerRows(ctx, "i-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StepDivisiSimpanPinjam, rows[0].Step)

	decision := domain.DecisionApproved
	approver := "approver-1"
	now := time.Now()
	row := domain.ApprovalLedgerRow{InstanceID: "i-1", Step: domain.StepDivisiSimpanPinjam, Decision: &decision, ApproverID: &approver, DecidedAt: &now}

	require.NoError(t, repos.LedgerRepo.RecordDecision(ctx, row))
	err = repos.LedgerRepo.RecordDecision(ctx, row)
	assert.ErrorIs(t, err, domain.ErrStepAlreadyProcessed)
	assert.Equal(t, "Step ini sudah diproses sebelumnya", err.Error())

	row.Step = domain.StepShopkeeper
	assert.ErrorIs(t, repos.LedgerRepo.RecordDecision(ctx, row), apperrors.ErrNotFound)
}

func TestDeleteInstance_RemovesLedgerRows(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, newInstance("i-1", "MBR-20260101-0001", time.Now())))
	require.NoError(t, repos.LedgerRepo.SaveLedgerRows(ctx, []domain.ApprovalLedgerRow{{RowID: "r-1", InstanceID: "i-1", Step: domain.StepDivisiSimpanPinjam}}))

	require.NoError(t, repos.InstanceRepo.DeleteInstance(ctx, "i-1"))
	rows, err := repos.LedgerRepo.FindLedgerRows(ctx, "i-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.ErrorIs(t, repos.InstanceRepo.DeleteInstance(ctx, "i-1"), apperrors.ErrNotFound)
}

func TestListInstancesByOwner_Paginates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repos.InstanceRepo.SaveInstance(ctx, newInstance(id, "DEP-"+id, base.Add(time.Duration(i)*time.Minute))))
	}

	page1, next, err := repos.InstanceRepo.ListInstancesByOwner(ctx, domain.DepositApplication, "owner-1", 2, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Len(t, page1, 2)
	assert.Equal(t, "c", page1[0].InstanceID)
	assert.Equal(t, "b", page1[1].InstanceID)

	page2, next, err := repos.InstanceRepo.ListInstancesByOwner(ctx, domain.DepositApplication, "owner-1", 2, next)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page2, 1)
	assert.Equal(t, "a", page2[0].InstanceID)

	bad := "%%%"
	_, _, err = repos.InstanceRepo.ListInstancesByOwner(ctx, domain.DepositApplication, "owner-1", 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSaveAccount_OneActivePerType(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	acc := domain.Account{AccountID: "acc-1", OwnerID: "owner-1", AccountType: domain.SimpananSukarela, Status: domain.AccountActive}
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, acc))

	acc.AccountID = "acc-2"
	assert.ErrorIs(t, repos.AccountRepo.SaveAccount(ctx, acc), domain.ErrDuplicateAccount)

	deposit := domain.Account{AccountID: "dep-1", OwnerID: "owner-1", AccountType: domain.Deposito, Status: domain.AccountActive}
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, deposit))
	deposit.AccountID = "dep-2"
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, deposit), "members may hold several deposits")
}

func TestUsers_RolesAndLookup(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repos()
	require.NoError(t, repos.UserRepo.SaveUser(ctx, domain.User{UserID: "u-1", Email: "Ketua@Koperasi.id", IsActive: true, Roles: []domain.Role{domain.RoleKetua}}))
	assert.ErrorIs(t, repos.UserRepo.SaveUser(ctx, domain.User{UserID: "u-2", Email: "ketua@koperasi.id"}), apperrors.ErrDuplicate)

	u, err := repos.UserRepo.FindUserByEmail(ctx, "ketua@koperasi.id")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.UserID)

	require.NoError(t, repos.UserRepo.AddUserRole(ctx, "u-1", domain.RoleAnggota))
	require.NoError(t, repos.UserRepo.AddUserRole(ctx, "u-1", domain.RoleAnggota))
	u, _ = repos.UserRepo.FindUserByID(ctx, "u-1")
	assert.Equal(t, []domain.Role{domain.RoleKetua, domain.RoleAnggota}, u.Roles)

	holders, err := repos.UserRepo.FindUsersByRole(ctx, domain.RoleAnggota)
	require.NoError(t, err)
	assert.Len(t, holders, 1)
}
