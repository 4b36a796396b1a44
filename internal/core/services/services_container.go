package services

import (
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Optional infrastructure (cache, lock, localizer) is passed through options.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...JournalServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The gate goes first since every journal operation consults it
	container.Access = NewAccessGateService(repos.GroupRepo)

	opts := []JournalServiceOption{
		WithAccessGate(container.Access),
		WithPassThreshold(cfg.PassThreshold),
	}
	opts = append(opts, options...)
	container.Journal = NewJournalService(repos.GroupRepo, repos.JournalRepo, opts...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccessGateSvc    = (*accessGateService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
)
