package mapping

import (
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/shopspring/decimal"
)

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// ToModelWorkflowInstance converts a domain instance to its row. Attributes is never nil
// so the JSONB column always holds an object.
func ToModelWorkflowInstance(d domain.WorkflowInstance) models.WorkflowInstance {
	attrs := d.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return models.WorkflowInstance{
		InstanceID:      d.InstanceID,
		WorkflowType:    string(d.Type),
		HumanNumber:     d.HumanNumber,
		Status:          string(d.Status),
		CurrentStep:     stepString(d.CurrentStep),
		OwnerID:         d.OwnerID,
		Amount:          d.Amount,
		TenorMonths:     d.TenorMonths,
		InterestRate:    d.InterestRate,
		TargetAccountID: d.TargetAccountID,
		PenaltyAmount:   toNullDecimal(d.PenaltyAmount),
		NetAmount:       toNullDecimal(d.NetAmount),
		MaturityDate:    d.MaturityDate,
		TermsAgreed:     d.TermsAgreed,
		Attributes:      attrs,
		SubmittedAt:     d.SubmittedAt,
		ApprovedAt:      d.ApprovedAt,
		CompletedAt:     d.CompletedAt,
		RejectedAt:      d.RejectedAt,
		RejectionReason: d.RejectionReason,
		CancelledAt:     d.CancelledAt,
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainWorkflowInstance(m models.WorkflowInstance) domain.WorkflowInstance {
	return domain.WorkflowInstance{
		InstanceID:      m.InstanceID,
		Type:            domain.WorkflowType(m.WorkflowType),
		HumanNumber:     m.HumanNumber,
		Status:          domain.WorkflowStatus(m.Status),
		CurrentStep:     stepPtr(m.CurrentStep),
		OwnerID:         m.OwnerID,
		Amount:          m.Amount,
		TenorMonths:     m.TenorMonths,
		InterestRate:    m.InterestRate,
		TargetAccountID: m.TargetAccountID,
		PenaltyAmount:   fromNullDecimal(m.PenaltyAmount),
		NetAmount:       fromNullDecimal(m.NetAmount),
		MaturityDate:    m.MaturityDate,
		TermsAgreed:     m.TermsAgreed,
		Attributes:      m.Attributes,
		SubmittedAt:     m.SubmittedAt,
		ApprovedAt:      m.ApprovedAt,
		CompletedAt:     m.CompletedAt,
		RejectedAt:      m.RejectedAt,
		RejectionReason: m.RejectionReason,
		CancelledAt:     m.CancelledAt,
		Version:         m.Version,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainWorkflowInstanceSlice(ms []models.WorkflowInstance) []domain.WorkflowInstance {
	ds := make([]domain.WorkflowInstance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWorkflowInstance(m)
	}
	return ds
}

func ToModelLedgerRow(d domain.ApprovalLedgerRow) models.ApprovalLedgerRow {
	var decision *string
	if d.Decision != nil {
		v := string(*d.Decision)
		decision = &v
	}
	return models.ApprovalLedgerRow{
		RowID:      d.RowID,
		InstanceID: d.InstanceID,
		Step:       string(d.Step),
		Position:   d.Position,
		Decision:   decision,
		ApproverID: d.ApproverID,
		DecidedAt:  d.DecidedAt,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
	}
}

func ToDomainLedgerRow(m models.ApprovalLedgerRow) domain.ApprovalLedgerRow {
	var decision *domain.Decision
	if m.Decision != nil {
		v := domain.Decision(*m.Decision)
		decision = &v
	}
	return domain.ApprovalLedgerRow{
		RowID:      m.RowID,
		InstanceID: m.InstanceID,
		Step:       domain.Step(m.Step),
		Position:   m.Position,
		Decision:   decision,
		ApproverID: m.ApproverID,
		DecidedAt:  m.DecidedAt,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

func ToDomainLedgerRowSlice(ms []models.ApprovalLedgerRow) []domain.ApprovalLedgerRow {
	ds := make([]domain.ApprovalLedgerRow, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerRow(m)
	}
	return ds
}

func ToModelHistoryEntry(d domain.HistoryEntry) models.HistoryEntry {
	return models.HistoryEntry{
		HistoryID:  d.HistoryID,
		InstanceID: d.InstanceID,
		Action:     string(d.Action),
		FromStatus: string(d.FromStatus),
		ToStatus:   string(d.ToStatus),
		Step:       stepString(d.Step),
		ActorID:    d.ActorID,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
	}
}

func ToDomainHistoryEntry(m models.HistoryEntry) domain.HistoryEntry {
	return domain.HistoryEntry{
		HistoryID:  m.HistoryID,
		InstanceID: m.InstanceID,
		Action:     domain.HistoryAction(m.Action),
		FromStatus: domain.WorkflowStatus(m.FromStatus),
		ToStatus:   domain.WorkflowStatus(m.ToStatus),
		Step:       stepPtr(m.Step),
		ActorID:    m.ActorID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

func ToDomainHistorySlice(ms []models.HistoryEntry) []domain.HistoryEntry {
	ds := make([]domain.HistoryEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainHistoryEntry(m)
	}
	return ds
}
