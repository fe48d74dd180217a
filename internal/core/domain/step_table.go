package domain

// StepTable is the fixed, ordered list of approval steps of a workflow type.
type StepTable []Step

var (
	// TwoStepChain is the review chain used by applications and repayments.
	TwoStepChain = StepTable{StepDivisiSimpanPinjam, StepKetua}
	// DisbursementChain adds the cash-out confirmation and final authorization steps.
	DisbursementChain = StepTable{StepDivisiSimpanPinjam, StepKetua, StepShopkeeper, StepKetuaAuth}
)

// First returns the first step. The table must not be empty.
func (t StepTable) First() Step {
	return t[0]
}

// Last returns the last step. The table must not be empty.
func (t StepTable) Last() Step {
	return t[len(t)-1]
}

// IndexOf returns the zero-based position of step, or -1 if it is not in the table.
func (t StepTable) IndexOf(step Step) int {
	for i, s := range t {
		if s == step {
			return i
		}
	}
	return -1
}

// Contains reports whether step is part of the table.
func (t StepTable) Contains(step Step) bool {
	return t.IndexOf(step) >= 0
}

// IsLast reports whether step is the final step.
func (t StepTable) IsLast(step Step) bool {
	return len(t) > 0 && t.Last() == step
}

// Next returns the step following step. ok is false when step is last or unknown.
func (t StepTable) Next(step Step) (next Step, ok bool) {
	i := t.IndexOf(step)
	if i < 0 || i == len(t)-1 {
		return "", false
	}
	return t[i+1], true
}

// StatusFor returns the reviewing status associated with awaiting step.
func (t StepTable) StatusFor(step Step) WorkflowStatus {
	return ReviewStatus(step)
}

// StepForStatus maps a reviewing status back to its step.
func (t StepTable) StepForStatus(status WorkflowStatus) (Step, bool) {
	for _, s := range t {
		if ReviewStatus(s) == status {
			return s, true
		}
	}
	return "", false
}
