package proceeds

import (
	"context"

	fbig "github.com/filecoin-project/go-state-types/big"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/modular-market/market/fees"
	"github.com/modular-market/market/gateway"
	"github.com/modular-market/market/metrics"
	"github.com/modular-market/market/royalty"
	"github.com/modular-market/market/types"
)

var log = logging.Logger("proceeds")

// Split is the exact decomposition of a distributed gross amount:
// Fee + Finder + ΣRoyaltyAmounts + Residual == gross.
type Split struct {
	Fee                  types.Amount
	FeeRecipient         types.Address
	Finder               types.Amount
	RoyaltyBeneficiaries []types.Address
	RoyaltyAmounts       []types.Amount
	Residual             types.Amount
}

// Distributor runs the shared payout pipeline: protocol fee and finders
// fee off the gross, royalties off the remainder, residual (with all
// rounding dust) to the seller's funds recipient.
type Distributor struct {
	funds     *gateway.FungibleGateway
	royalties *royalty.Table
	fees      *fees.Settings
}

func NewDistributor(funds *gateway.FungibleGateway, royalties *royalty.Table, feeSettings *fees.Settings) *Distributor {
	return &Distributor{funds: funds, royalties: royalties, fees: feeSettings}
}

// Distribute pays out a sale. Every share is computed and validated
// against the payer's balance before the first transfer, so a failing
// distribution moves nothing.
func (d *Distributor) Distribute(ctx context.Context, module, payer types.Address, collection types.Collection, tokenID types.TokenID,
	currency types.Address, gross types.Amount, finder types.Address, finderBps uint16, recipient types.Address) (*Split, error) {
	gross = types.SafeAmount(gross)

	params, err := d.fees.FeeParams(ctx, module)
	if err != nil {
		return nil, err
	}
	fee := types.ShareOf(gross, params.Bps)

	finderCut := types.ZeroAmount()
	if !finder.Empty() && finderBps > 0 {
		finderCut = types.ShareOf(gross, finderBps)
	}

	remainder := fbig.Sub(gross, fbig.Add(fee, finderCut))
	if remainder.LessThan(types.ZeroAmount()) {
		return nil, xerrors.Errorf("fee %s and finders fee %s exceed gross %s", fee, finderCut, gross)
	}

	beneficiaries, royaltyAmounts, err := d.royalties.GetRoyalty(ctx, collection, tokenID, remainder)
	if err != nil {
		return nil, err
	}

	residual := remainder
	for _, amount := range royaltyAmounts {
		residual = fbig.Sub(residual, amount)
	}
	if residual.LessThan(types.ZeroAmount()) {
		return nil, xerrors.Errorf("royalties exceed remainder %s of gross %s", remainder, gross)
	}

	balance, err := d.funds.BalanceOf(ctx, currency, payer)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(gross) {
		return nil, xerrors.Errorf("payer %s holds %s, distributing %s: %w", payer, balance, gross, types.ErrInsufficientBalance)
	}

	split := &Split{
		Fee:                  fee,
		FeeRecipient:         params.Recipient,
		Finder:               finderCut,
		RoyaltyBeneficiaries: beneficiaries,
		RoyaltyAmounts:       royaltyAmounts,
		Residual:             residual,
	}

	if err := d.pay(ctx, module, payer, currency, params.Recipient, fee); err != nil {
		return nil, err
	}
	if err := d.pay(ctx, module, payer, currency, finder, finderCut); err != nil {
		return nil, err
	}
	for i, beneficiary := range beneficiaries {
		if err := d.pay(ctx, module, payer, currency, beneficiary, royaltyAmounts[i]); err != nil {
			return nil, err
		}
	}
	if err := d.pay(ctx, module, payer, currency, recipient, residual); err != nil {
		return nil, err
	}

	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.CurrencyTag, currency.String())},
		metrics.ProceedsSplitCount.M(1))
	log.Infow("proceeds distributed", "module", module, "collection", collection, "tokenId", tokenID,
		"gross", gross, "fee", fee, "finder", finderCut, "residual", residual)
	return split, nil
}

func (d *Distributor) pay(ctx context.Context, module, payer, currency, to types.Address, amount types.Amount) error {
	if amount.IsZero() || to.Empty() {
		return nil
	}
	return d.funds.Transfer(ctx, module, currency, payer, to, amount)
}
