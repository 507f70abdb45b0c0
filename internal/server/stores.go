package server

import (
	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/repository"
	"github.com/rpattn/liftdesk/internal/store/sqlite"
)

// Stores bundles the repositories of one backend. Every repository joins
// the transaction opened by UnitOfWork.
type Stores struct {
	UnitOfWork repository.UnitOfWork
	Tenants    repository.TenantRepository
	Lookups    repository.LookupRepository
	Sequences  repository.SequenceRepository
	Records    repository.RecordRepository
	Runs       repository.ImportRunRepository

	close func() error
}

func PostgresStores(conn *db.Connection) Stores {
	return Stores{
		UnitOfWork: conn,
		Tenants:    repository.NewTenantRepository(conn),
		Lookups:    repository.NewLookupRepository(conn),
		Sequences:  repository.NewSequenceRepository(conn),
		Records:    repository.NewRecordRepository(conn),
		Runs:       repository.NewImportRunRepository(conn),
		close: func() error {
			conn.Close()
			return nil
		},
	}
}

func SQLiteStores(store *sqlite.Store) Stores {
	return Stores{
		UnitOfWork: store,
		Tenants:    store.Tenants(),
		Lookups:    store.Lookups(),
		Sequences:  store.Sequences(),
		Records:    store.Records(),
		Runs:       store.ImportRuns(),
		close:      store.Close,
	}
}

// Close releases the backend connection.
func (s Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
