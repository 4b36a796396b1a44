package pgsql

import (
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		GroupRepo:   newPgxGroupRepository(dbPool),
		JournalRepo: newPgxJournalRepository(dbPool),
	}
}
