package badger

import (
	"context"
	"encoding/json"

	"github.com/ipfs/go-datastore"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

type badgerApprovalRepo struct {
	approvalDS datastore.Batching
	moduleDS   datastore.Batching
}

var _ repo.ApprovalRepo = (*badgerApprovalRepo)(nil)

func NewApprovalRepo(approvalDS ApprovalDS, moduleDS ModuleDS) repo.ApprovalRepo {
	return &badgerApprovalRepo{approvalDS: approvalDS, moduleDS: moduleDS}
}

func approvalKey(user, module types.Address) datastore.Key {
	return datastore.KeyWithNamespaces([]string{user.String(), module.String()})
}

func (r *badgerApprovalRepo) RegisterModule(ctx context.Context, module types.Address) error {
	data, err := json.Marshal(true)
	if err != nil {
		return err
	}
	return r.moduleDS.Put(ctx, datastore.NewKey(module.String()), data)
}

func (r *badgerApprovalRepo) IsModuleRegistered(ctx context.Context, module types.Address) (bool, error) {
	has, err := r.moduleDS.Has(ctx, datastore.NewKey(module.String()))
	if err != nil {
		return false, err
	}
	return has, nil
}

// SetApprovals writes the whole batch through one datastore batch so a
// partial update is never visible.
func (r *badgerApprovalRepo) SetApprovals(ctx context.Context, user types.Address, modules []types.Address, approved bool) error {
	batch, err := r.approvalDS.Batch(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(approved)
	if err != nil {
		return err
	}
	for _, module := range modules {
		if err := batch.Put(ctx, approvalKey(user, module), data); err != nil {
			return err
		}
	}
	return batch.Commit(ctx)
}

func (r *badgerApprovalRepo) IsApproved(ctx context.Context, user types.Address, module types.Address) (bool, error) {
	data, err := r.approvalDS.Get(ctx, approvalKey(user, module))
	if err != nil {
		if err == datastore.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	var approved bool
	if err := json.Unmarshal(data, &approved); err != nil {
		return false, err
	}
	return approved, nil
}
