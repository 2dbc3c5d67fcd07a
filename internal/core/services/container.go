package services

import (
	portsrepo "github.com/sebenza-books/sebenza_ledger/internal/core/ports/repositories"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
)

// NewServiceContainer creates the service container with properly initialized dependencies.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Entry:   NewEntryService(repos.EntryRepo, repos.AccountRepo),
		Account: NewAccountService(repos.AccountRepo),
	}
}
