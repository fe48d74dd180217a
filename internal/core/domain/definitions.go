package domain

import "sort"

// Definition is the static configuration of one workflow type: its step table,
// which role acts on each step, and the lifecycle rules around it.
type Definition struct {
	Type   WorkflowType
	Prefix string
	Steps  StepTable
	// StepRoles maps each step to the single role authorized to decide it.
	StepRoles map[Step]Role
	// TerminalStatus is the success status reached after the last step is approved.
	TerminalStatus WorkflowStatus
	RequiresTerms  bool
	// LedgerAtDraft creates the approval ledger rows when the draft is created
	// instead of at submission.
	LedgerAtDraft bool
	// CancellableSteps are the steps during which the owner may still cancel.
	CancellableSteps []Step
	// InterestedRoles are notified, besides the owner, when the instance completes.
	InterestedRoles []Role
}

// RoleFor returns the role required to act on step.
func (d Definition) RoleFor(step Step) (Role, bool) {
	r, ok := d.StepRoles[step]
	return r, ok
}

// Authorizes reports whether any of roles may act on step.
func (d Definition) Authorizes(roles []Role, step Step) bool {
	required, ok := d.RoleFor(step)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == required {
			return true
		}
	}
	return false
}

// StepsFor returns the steps any of roles may act on, in step table order.
func (d Definition) StepsFor(roles []Role) []Step {
	steps := make([]Step, 0, len(d.Steps))
	for _, s := range d.Steps {
		if d.Authorizes(roles, s) {
			steps = append(steps, s)
		}
	}
	return steps
}

// CanCancelAt reports whether the owner may cancel while the instance awaits step.
func (d Definition) CanCancelAt(step Step) bool {
	for _, s := range d.CancellableSteps {
		if s == step {
			return true
		}
	}
	return false
}

var standardStepRoles = map[Step]Role{
	StepDivisiSimpanPinjam: RoleDivisiSimpanPinjam,
	StepKetua:              RoleKetua,
	StepShopkeeper:         RoleShopkeeper,
	StepKetuaAuth:          RoleKetua,
}

// definitions is initialized once at package init and never mutated.
var definitions = map[WorkflowType]Definition{
	DepositApplication: {
		Type:             DepositApplication,
		Prefix:           "DEP",
		Steps:            TwoStepChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusApproved,
		RequiresTerms:    true,
		CancellableSteps: TwoStepChain,
		InterestedRoles:  []Role{RolePayroll},
	},
	DepositChange: {
		Type:             DepositChange,
		Prefix:           "DCR",
		Steps:            TwoStepChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusApproved,
		RequiresTerms:    true,
		CancellableSteps: TwoStepChain,
		InterestedRoles:  []Role{RolePayroll},
	},
	DepositWithdrawal: {
		Type:             DepositWithdrawal,
		Prefix:           "DWD",
		Steps:            DisbursementChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusCompleted,
		CancellableSteps: []Step{StepDivisiSimpanPinjam, StepKetua},
	},
	SavingsWithdrawal: {
		Type:             SavingsWithdrawal,
		Prefix:           "SWD",
		Steps:            DisbursementChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusCompleted,
		CancellableSteps: []Step{StepDivisiSimpanPinjam, StepKetua},
	},
	LoanRepayment: {
		Type:             LoanRepayment,
		Prefix:           "REP",
		Steps:            TwoStepChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusApproved,
		CancellableSteps: TwoStepChain,
		InterestedRoles:  []Role{RolePayroll},
	},
	MemberApplication: {
		Type:             MemberApplication,
		Prefix:           "MBR",
		Steps:            TwoStepChain,
		StepRoles:        standardStepRoles,
		TerminalStatus:   StatusApproved,
		RequiresTerms:    true,
		LedgerAtDraft:    true,
		CancellableSteps: TwoStepChain,
		InterestedRoles:  []Role{RolePayroll},
	},
}

// LookupDefinition returns the definition registered for t.
func LookupDefinition(t WorkflowType) (Definition, bool) {
	d, ok := definitions[t]
	return d, ok
}

// WorkflowTypes lists every registered workflow type in a stable order.
func WorkflowTypes() []WorkflowType {
	types := make([]WorkflowType, 0, len(definitions))
	for t := range definitions {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
