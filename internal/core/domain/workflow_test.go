package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStepTable_Next(t *testing.T) {
	tests := []struct {
		name     string
		table    domain.StepTable
		step     domain.Step
		wantNext domain.Step
		wantOK   bool
	}{
		{"two step chain first", domain.TwoStepChain, domain.StepDivisiSimpanPinjam, domain.StepKetua, true},
		{"two step chain last", domain.TwoStepChain, domain.StepKetua, "", false},
		{"disbursement ketua", domain.DisbursementChain, domain.StepKetua, domain.StepShopkeeper, true},
		{"disbursement shopkeeper", domain.DisbursementChain, domain.StepShopkeeper, domain.StepKetuaAuth, true},
		{"disbursement last", domain.DisbursementChain, domain.StepKetuaAuth, "", false},
		{"unknown step", domain.TwoStepChain, domain.StepShopkeeper, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.table.Next(tt.step)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}

func TestStepTable_StatusRoundTrip(t *testing.T) {
	for _, step := range domain.DisbursementChain {
		status := domain.DisbursementChain.StatusFor(step)
		assert.True(t, status.IsReviewing(), status)
		assert.False(t, status.IsTerminal(), status)

		back, ok := domain.DisbursementChain.StepForStatus(status)
		assert.True(t, ok)
		assert.Equal(t, step, back)
	}

	_, ok := domain.TwoStepChain.StepForStatus(domain.ReviewStatus(domain.StepShopkeeper))
	assert.False(t, ok)
	assert.Equal(t, domain.WorkflowStatus("UNDER_REVIEW_KETUA_AUTH"), domain.ReviewStatus(domain.StepKetuaAuth))
}

func TestStepTable_Bounds(t *testing.T) {
	assert.Equal(t, domain.StepDivisiSimpanPinjam, domain.DisbursementChain.First())
	assert.Equal(t, domain.StepKetuaAuth, domain.DisbursementChain.Last())
	assert.True(t, domain.TwoStepChain.IsLast(domain.StepKetua))
	assert.False(t, domain.DisbursementChain.IsLast(domain.StepKetua))
	assert.Equal(t, -1, domain.TwoStepChain.IndexOf(domain.StepKetuaAuth))
}

func TestWorkflowStatus_IsTerminal(t *testing.T) {
	terminal := []domain.WorkflowStatus{domain.StatusApproved, domain.StatusCompleted, domain.StatusRejected, domain.StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsReviewing(), s)
	}
	assert.False(t, domain.StatusDraft.IsTerminal())
	assert.False(t, domain.StatusDraft.IsReviewing())
}

func TestDefinition_Authorizes(t *testing.T) {
	def, ok := domain.LookupDefinition(domain.SavingsWithdrawal)
	assert.True(t, ok)

	// KETUA acts on two steps of the disbursement chain.
	assert.True(t, def.Authorizes([]domain.Role{domain.RoleKetua}, domain.StepKetua))
	assert.True(t, def.Authorizes([]domain.Role{domain.RoleKetua}, domain.StepKetuaAuth))
	assert.False(t, def.Authorizes([]domain.Role{domain.RoleKetua}, domain.StepShopkeeper))
	assert.False(t, def.Authorizes([]domain.Role{domain.RoleAnggota, domain.RoleEmployee}, domain.StepDivisiSimpanPinjam))
	assert.False(t, def.Authorizes(nil, domain.StepKetua))

	assert.Equal(t, []domain.Step{domain.StepKetua, domain.StepKetuaAuth}, def.StepsFor([]domain.Role{domain.RoleKetua}))
	assert.Equal(t,
		[]domain.Step{domain.StepDivisiSimpanPinjam, domain.StepShopkeeper},
		def.StepsFor([]domain.Role{domain.RoleShopkeeper, domain.RoleDivisiSimpanPinjam}))
	assert.Empty(t, def.StepsFor([]domain.Role{domain.RolePayroll}))
}

func TestDefinition_CanCancelAt(t *testing.T) {
	dwd, _ := domain.LookupDefinition(domain.DepositWithdrawal)
	assert.True(t, dwd.CanCancelAt(domain.StepDivisiSimpanPinjam))
	assert.True(t, dwd.CanCancelAt(domain.StepKetua))
	assert.False(t, dwd.CanCancelAt(domain.StepShopkeeper))
	assert.False(t, dwd.CanCancelAt(domain.StepKetuaAuth))

	dep, _ := domain.LookupDefinition(domain.DepositApplication)
	assert.True(t, dep.CanCancelAt(domain.StepKetua))
}

func TestDefinitions_Registry(t *testing.T) {
	types := domain.WorkflowTypes()
	assert.Len(t, types, 6)

	prefixes := map[string]bool{}
	for _, wfType := range types {
		def, ok := domain.LookupDefinition(wfType)
		assert.True(t, ok, wfType)
		assert.Equal(t, wfType, def.Type)
		assert.NotEmpty(t, def.Steps, wfType)
		assert.False(t, prefixes[def.Prefix], "duplicate prefix %s", def.Prefix)
		prefixes[def.Prefix] = true
		for _, step := range def.Steps {
			_, ok := def.RoleFor(step)
			assert.True(t, ok, "%s has no role for %s", wfType, step)
		}

		back, ok := domain.WorkflowTypeFromSlug(wfType.Slug())
		assert.True(t, ok)
		assert.Equal(t, wfType, back)
	}

	_, ok := domain.LookupDefinition("CAR_LOAN")
	assert.False(t, ok)
	_, ok = domain.WorkflowTypeFromSlug("car-loans")
	assert.False(t, ok)
	assert.Equal(t, "deposit-applications", domain.DepositApplication.Slug())
}

func TestDecision_IsValid(t *testing.T) {
	assert.True(t, domain.DecisionApproved.IsValid())
	assert.True(t, domain.DecisionRejected.IsValid())
	assert.False(t, domain.Decision("approved").IsValid())
	assert.False(t, domain.Decision("").IsValid())
}

func TestMaturityDate(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)

	tests := []struct {
		name  string
		start time.Time
		tenor int
		want  time.Time
	}{
		{"twelve months", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 12, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"six months", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 6, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)},
		{"end of january into february", time.Date(2026, 1, 31, 10, 0, 0, 0, wib), 1, time.Date(2026, 2, 28, 10, 0, 0, 0, wib)},
		{"end of january into leap february", time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"thirty first into thirty day month", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), 6, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)},
		{"across year end", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), 6, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"zero tenor", time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), 0, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.MaturityDate(tt.start, tt.tenor)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
