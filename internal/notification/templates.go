package notification

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
)

// Audience tells a template whether it addresses approvers or the applicant.
type Audience string

const (
	AudienceApprover Audience = "approver"
	AudienceOwner    Audience = "owner"
)

// TemplateData is what every template can refer to.
type TemplateData struct {
	RecipientName string
	Workflow      string
	HumanNumber   string
	Step          string
	Status        string
	Notes         string
}

var workflowLabels = map[domain.WorkflowType]string{
	domain.DepositApplication: "Pengajuan Deposito",
	domain.DepositChange:      "Perubahan Deposito",
	domain.DepositWithdrawal:  "Penarikan Deposito",
	domain.SavingsWithdrawal:  "Penarikan Simpanan Sukarela",
	domain.LoanRepayment:      "Pembayaran Angsuran Pinjaman",
	domain.MemberApplication:  "Pendaftaran Anggota",
}

// WorkflowLabel returns the Indonesian display name of t.
func WorkflowLabel(t domain.WorkflowType) string {
	if l, ok := workflowLabels[t]; ok {
		return l
	}
	return string(t)
}

type templatePair struct {
	subject *template.Template
	body    *template.Template
}

type templateKey struct {
	kind     domain.EventKind
	audience Audience
}

func mustPair(name, subject, body string) templatePair {
	return templatePair{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

var templates = map[templateKey]templatePair{
	{domain.EventSubmitted, AudienceApprover}: mustPair("submitted",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} menunggu persetujuan Anda`,
		`Yth. {{.RecipientName}},

{{.Workflow}} dengan nomor {{.HumanNumber}} telah diajukan dan menunggu persetujuan Anda pada tahap {{.Step}}.

Silakan masuk ke aplikasi koperasi untuk meninjau pengajuan ini.
`),
	{domain.EventStepAdvanced, AudienceApprover}: mustPair("step_advanced",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} menunggu persetujuan Anda`,
		`Yth. {{.RecipientName}},

{{.Workflow}} dengan nomor {{.HumanNumber}} telah disetujui pada tahap sebelumnya dan kini menunggu persetujuan Anda pada tahap {{.Step}}.
{{if .Notes}}
Catatan: {{.Notes}}
{{end}}
Silakan masuk ke aplikasi koperasi untuk meninjau pengajuan ini.
`),
	{domain.EventCancelled, AudienceApprover}: mustPair("cancelled",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} dibatalkan`,
		`Yth. {{.RecipientName}},

{{.Workflow}} dengan nomor {{.HumanNumber}} yang menunggu persetujuan Anda pada tahap {{.Step}} telah dibatalkan oleh pemohon. Tidak ada tindakan yang diperlukan.
`),
	{domain.EventRejected, AudienceOwner}: mustPair("rejected",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} ditolak`,
		`Yth. {{.RecipientName}},

Mohon maaf, {{.Workflow}} Anda dengan nomor {{.HumanNumber}} ditolak pada tahap {{.Step}}.
{{if .Notes}}
Alasan: {{.Notes}}
{{end}}`),
	{domain.EventCompleted, AudienceOwner}: mustPair("completed",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} telah disetujui`,
		`Yth. {{.RecipientName}},

{{.Workflow}} dengan nomor {{.HumanNumber}} telah disetujui seluruhnya dan berstatus {{.Status}}.
`),
	{domain.EventCompleted, AudienceApprover}: mustPair("completed_staff",
		`[Koperasi] {{.Workflow}} {{.HumanNumber}} selesai diproses`,
		`Yth. {{.RecipientName}},

{{.Workflow}} dengan nomor {{.HumanNumber}} telah selesai diproses dengan status {{.Status}}. Mohon sesuaikan data pada sistem penggajian bila diperlukan.
`),
}

// Render produces the subject and body for kind addressed to audience.
func Render(kind domain.EventKind, audience Audience, data TemplateData) (subject, body string, err error) {
	pair, ok := templates[templateKey{kind, audience}]
	if !ok {
		return "", "", fmt.Errorf("no %s template for %s", audience, kind)
	}
	var sb, bb bytes.Buffer
	if err := pair.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := pair.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return strings.TrimSpace(sb.String()), bb.String(), nil
}

func stepLabel(step *domain.Step) string {
	if step == nil {
		return "-"
	}
	return strings.ReplaceAll(string(*step), "_", " ")
}
