package domain

import "github.com/SscSPs/koperasi_backend/internal/apperrors"

// Workflow errors. Messages are shown to users verbatim.
var (
	ErrUnknownWorkflow      = apperrors.New(apperrors.ErrNotFound, "Jenis pengajuan tidak dikenal")
	ErrInstanceNotFound     = apperrors.New(apperrors.ErrNotFound, "Pengajuan tidak ditemukan")
	ErrNotInReview          = apperrors.New(apperrors.ErrInvalidState, "Pengajuan tidak sedang dalam proses review")
	ErrStepAlreadyProcessed = apperrors.New(apperrors.ErrInvalidState, "Step ini sudah diproses sebelumnya")
	ErrStepForbidden        = apperrors.New(apperrors.ErrForbidden, "Anda tidak berwenang memproses step ini")
	ErrNotDraft             = apperrors.New(apperrors.ErrInvalidState, "Hanya pengajuan berstatus draft yang dapat diubah")
	ErrTermsNotAgreed       = apperrors.New(apperrors.ErrValidation, "Anda harus menyetujui syarat dan ketentuan")
	ErrCancelNotAllowed     = apperrors.New(apperrors.ErrInvalidState, "Pengajuan tidak dapat dibatalkan pada tahap ini")
	ErrInvalidDecision      = apperrors.New(apperrors.ErrValidation, "Keputusan harus APPROVED atau REJECTED")
	ErrConcurrentUpdate     = apperrors.New(apperrors.ErrConflict, "Pengajuan sedang diproses oleh pengguna lain, silakan coba lagi")
	ErrEmptyBatch           = apperrors.New(apperrors.ErrValidation, "Daftar pengajuan tidak boleh kosong")
	ErrBatchTooLarge        = apperrors.New(apperrors.ErrValidation, "Jumlah pengajuan melebihi batas pemrosesan massal")
)

// Financial precondition errors.
var (
	ErrAmountNotPositive      = apperrors.New(apperrors.ErrValidation, "Nominal harus lebih besar dari nol")
	ErrTenorNotPositive       = apperrors.New(apperrors.ErrValidation, "Jangka waktu harus lebih besar dari nol")
	ErrInterestRateNegative   = apperrors.New(apperrors.ErrValidation, "Suku bunga tidak boleh negatif")
	ErrTargetAccountMissing   = apperrors.New(apperrors.ErrValidation, "Rekening tujuan wajib diisi")
	ErrAccountNotFound        = apperrors.New(apperrors.ErrNotFound, "Rekening tidak ditemukan")
	ErrAccountTypeMismatch    = apperrors.New(apperrors.ErrValidation, "Jenis rekening tidak sesuai dengan pengajuan")
	ErrAccountInactive        = apperrors.New(apperrors.ErrValidation, "Rekening tidak aktif")
	ErrInsufficientBalance    = apperrors.New(apperrors.ErrValidation, "Saldo tidak mencukupi")
	ErrAmountExceedsLoan      = apperrors.New(apperrors.ErrValidation, "Nominal pembayaran melebihi sisa pinjaman")
	ErrDepositChangeNoop      = apperrors.New(apperrors.ErrValidation, "Tidak ada perubahan pada deposito")
	ErrNotMember              = apperrors.New(apperrors.ErrValidation, "Hanya anggota koperasi yang dapat mengajukan permohonan ini")
	ErrAlreadyMember          = apperrors.New(apperrors.ErrDuplicate, "Anda sudah terdaftar sebagai anggota")
	ErrMemberAccountsExist    = apperrors.New(apperrors.ErrConflict, "Rekening simpanan anggota sudah ada")
	ErrDuplicateAccount       = apperrors.New(apperrors.ErrDuplicate, "Rekening dengan jenis yang sama sudah ada")
	ErrInvalidAccountType     = apperrors.New(apperrors.ErrValidation, "Jenis rekening tidak valid")
	ErrAccountOwnerMissing    = apperrors.New(apperrors.ErrValidation, "Pemilik rekening wajib diisi")
	ErrWithdrawalNotPermitted = apperrors.New(apperrors.ErrValidation, "Rekening ini tidak dapat ditarik")
	ErrInvalidCredentials     = apperrors.New(apperrors.ErrUnauthorized, "Email atau kata sandi salah")
	ErrUserNotFound           = apperrors.New(apperrors.ErrNotFound, "Pengguna tidak ditemukan")
	ErrAccountAccessForbidden = apperrors.New(apperrors.ErrForbidden, "Anda tidak berwenang melihat rekening ini")
	ErrAccountOpenForbidden   = apperrors.New(apperrors.ErrForbidden, "Anda tidak berwenang membuka rekening")
)
