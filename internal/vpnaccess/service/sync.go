package service

import (
	"context"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
)

// SyncService is the thin facade the API layer calls into. It adds nothing
// over Reconciler and Scheduler except routing: manual full syncs go through
// the scheduler so they share the in-flight guard with timer-fired runs.
type SyncService struct {
	Reconciler *Reconciler
	Scheduler  *Scheduler
}

// FullSync triggers a reconciliation run now, honouring the at-most-one
// guard. Returns ErrAlreadySyncing if a run is in flight.
func (s *SyncService) FullSync(ctx context.Context, opts domain.SyncOptions) (domain.SyncRun, error) {
	return s.Scheduler.RunNow(ctx, opts)
}

// SyncUser provisions or refreshes one directory user in the external store.
func (s *SyncService) SyncUser(ctx context.Context, id int64) (domain.UserSyncResult, error) {
	return s.Reconciler.SyncUser(ctx, id)
}

// RemoveUser removes a username from the external store unconditionally.
func (s *SyncService) RemoveUser(ctx context.Context, username string) error {
	return s.Reconciler.RemoveUser(ctx, username)
}

// Status reports how far apart the two stores currently are, along with the
// scheduler snapshot and recent run history. Purely read-only.
func (s *SyncService) Status(ctx context.Context) (domain.SyncStatus, error) {
	directoryTotal, external, d, err := s.Reconciler.Preview(ctx)
	if err != nil {
		return domain.SyncStatus{}, err
	}

	missing := make([]string, 0, len(d.toCreate))
	for _, u := range d.toCreate {
		missing = append(missing, *u.Username)
	}

	orphaned := d.orphaned
	if orphaned == nil {
		orphaned = []string{}
	}

	return domain.SyncStatus{
		DirectoryTotal:     directoryTotal,
		ExternalTotal:      len(external),
		InSync:             len(d.toUpdate),
		MissingInExternal:  missing,
		OrphanedInExternal: orphaned,
		Scheduler:          s.Scheduler.State(),
		RecentHistory:      s.Scheduler.History(),
	}, nil
}
