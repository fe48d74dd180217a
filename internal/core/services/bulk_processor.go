package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"golang.org/x/sync/errgroup"
)

const bulkFailureFallback = "Terjadi kesalahan saat memproses pengajuan"

// BulkProcess applies ProcessApproval to every id independently: each item commits or
// rolls back on its own and one failure never affects the others. Duplicate ids are
// processed once. Both result lists keep the order of the request.
func (s *workflowService) BulkProcess(ctx context.Context, wfType domain.WorkflowType, ids []string, approver domain.Actor, decision domain.Decision, notes *string) (*dto.BulkApprovalResult, error) {
	if _, _, err := s.lookup(wfType); err != nil {
		return nil, err
	}
	if !decision.IsValid() {
		return nil, domain.ErrInvalidDecision
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(unique) > s.bulkMaxItems {
		return nil, domain.ErrBatchTooLarge
	}

	outcomes := make([]error, len(unique))
	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, id := range unique {
		g.Go(func() error {
			_, outcomes[i] = s.ProcessApproval(ctx, wfType, id, approver, decision, notes)
			// Item failures are reported per id, never through the group.
			return nil
		})
	}
	_ = g.Wait()

	result := &dto.BulkApprovalResult{
		Success: make([]string, 0, len(unique)),
		Failed:  make([]dto.BulkFailure, 0),
	}
	for i, id := range unique {
		err := outcomes[i]
		s.metrics.BulkItem(string(wfType), err == nil)
		if err == nil {
			result.Success = append(result.Success, id)
			continue
		}
		result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: apperrors.UserMessage(err, bulkFailureFallback)})
	}

	s.LogInfo(ctx, "Bulk approval processed",
		slog.String("workflow", string(wfType)),
		slog.String("approver_id", approver.UserID),
		slog.Int("succeeded", len(result.Success)),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}
