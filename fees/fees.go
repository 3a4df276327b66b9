package fees

import (
	"context"
	"errors"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

var log = logging.Logger("fees")

// Settings holds the protocol fee charged per trading module, taken off
// the top of gross proceeds before royalties.
type Settings struct {
	fees  repo.FeeRepo
	admin types.Address
}

func NewSettings(r repo.Repo, admin types.Address) *Settings {
	return &Settings{fees: r.FeeRepo(), admin: admin}
}

func (s *Settings) SetFeeParams(ctx context.Context, caller, module, recipient types.Address, bps uint16) error {
	if caller != s.admin {
		return xerrors.Errorf("%s is not the market admin: %w", caller, types.ErrNotAuthorized)
	}
	if bps > types.MaxBps {
		return xerrors.Errorf("fee of %d bps exceeds %d", bps, types.MaxBps)
	}
	if bps > 0 && recipient.Empty() {
		return xerrors.Errorf("fee recipient is empty")
	}

	err := s.fees.SetFeeParams(ctx, &types.FeeParams{Module: module, Recipient: recipient, Bps: bps})
	if err != nil {
		return err
	}
	log.Infow("fee params updated", "module", module, "recipient", recipient, "bps", bps)
	return nil
}

// FeeParams returns a zero fee for modules that were never configured.
func (s *Settings) FeeParams(ctx context.Context, module types.Address) (*types.FeeParams, error) {
	params, err := s.fees.GetFeeParams(ctx, module)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &types.FeeParams{Module: module}, nil
		}
		return nil, err
	}
	return params, nil
}
