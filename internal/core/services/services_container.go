package services

import (
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/platform/config"
	"github.com/SscSPs/koperasi_backend/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, uow portsrepo.UnitOfWork, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Workflow = NewWorkflowService(uow, repos,
		WithLocation(cfg.Location),
		WithBulkLimits(cfg.BulkConcurrency, cfg.BulkMaxItems),
		WithEarlyWithdrawalPenalty(cfg.EarlyWithdrawalPenaltyRate),
		WithEventPublisher(publisher),
		WithMetrics(m),
	)
	container.Account = NewAccountService(uow, repos)
	container.Auth = NewAuthService(cfg, repos.UserRepo)

	return container
}
