package registry

import (
	"context"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

var log = logging.Logger("registry")

// Manager keeps the set of registered trading modules and the per-user
// approval bits that let a module move the user's assets through the
// gateways.
type Manager struct {
	approvals repo.ApprovalRepo
	registrar types.Address
}

func NewManager(r repo.Repo, registrar types.Address) *Manager {
	return &Manager{approvals: r.ApprovalRepo(), registrar: registrar}
}

// RegisterModule admits a module to the registry. Only the registrar may
// call it; registering an already-registered module is a no-op.
func (m *Manager) RegisterModule(ctx context.Context, caller, module types.Address) error {
	if caller != m.registrar {
		return xerrors.Errorf("%s is not the registrar: %w", caller, types.ErrNotAuthorized)
	}
	if err := m.approvals.RegisterModule(ctx, module); err != nil {
		return err
	}
	log.Infow("module registered", "module", module)
	return nil
}

func (m *Manager) IsRegistered(ctx context.Context, module types.Address) (bool, error) {
	return m.approvals.IsModuleRegistered(ctx, module)
}

// SetApproval flips the user's approval bit for one module. Users mutate
// only their own bits; `user` is the authenticated caller.
func (m *Manager) SetApproval(ctx context.Context, user, module types.Address, approved bool) error {
	return m.SetBatchApproval(ctx, user, []types.Address{module}, approved)
}

// SetBatchApproval flips the user's approval bit for several modules at
// once. The batch applies atomically: either every bit updates or none.
func (m *Manager) SetBatchApproval(ctx context.Context, user types.Address, modules []types.Address, approved bool) error {
	var merr *multierror.Error
	for _, module := range modules {
		registered, err := m.approvals.IsModuleRegistered(ctx, module)
		if err != nil {
			return err
		}
		if !registered {
			merr = multierror.Append(merr, xerrors.Errorf("module %s is not registered: %w", module, types.ErrNotAuthorized))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return err
	}

	if err := m.approvals.SetApprovals(ctx, user, modules, approved); err != nil {
		return err
	}
	log.Infow("module approvals updated", "user", user, "modules", modules, "approved", approved)
	return nil
}

func (m *Manager) IsApproved(ctx context.Context, user, module types.Address) (bool, error) {
	return m.approvals.IsApproved(ctx, user, module)
}
