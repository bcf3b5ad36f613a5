package ledger

import (
	"time"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

const (
	// MinShares is the smallest total supply a package may have.
	MinShares uint64 = 1_000

	// SplitDenominator is the basis-point denominator (six decimal digits).
	SplitDenominator uint64 = 1_000_000

	// MaxInvestorSplit caps the sellable fraction at 95%.
	MaxInvestorSplit uint64 = 950_000
)

// Package is the shared ledger record of one tokenized loan package.
type Package struct {
	ID                    id.ID                 `json:"id"`
	NotarizationID        id.ID                 `json:"notarization_id"`
	Name                  string                `json:"name"`
	DocumentHash          registry.DocumentHash `json:"document_hash"`
	TotalShares           uint64                `json:"total_shares"`
	InvestorSplit         uint64                `json:"investor_split"`
	MaxSellableSupply     uint64                `json:"max_sellable_supply"`
	TokensSold            uint64                `json:"tokens_sold"`
	UnitPrice             uint64                `json:"unit_price"`
	NominalValue          uint64                `json:"nominal_value"`
	FundingPool           coin.Balance          `json:"funding_pool"`
	RevenuePool           coin.Balance          `json:"revenue_pool"`
	TotalRevenueDeposited uint64                `json:"total_revenue_deposited"`
	RevenuePaidOut        uint64                `json:"revenue_paid_out"`
	OwnerLegacyRevenue    uint64                `json:"owner_legacy_revenue"`
	SalesOpen             bool                  `json:"sales_open"`
	BondID                id.ID                 `json:"bond_id"`
	CreatedAt             time.Time             `json:"created_at"`
	MetadataURI           string                `json:"metadata_uri"`
}

// RemainingSupply returns the number of shares still for sale.
func (p *Package) RemainingSupply() uint64 {
	return p.MaxSellableSupply - p.TokensSold
}

// OwnershipBond is the owner's position in a package. Exactly one exists
// per package.
type OwnershipBond struct {
	ID             id.ID           `json:"id"`
	PackageID      id.ID           `json:"package_id"`
	Owner          account.Address `json:"owner"`
	ClaimedRevenue uint64          `json:"claimed_revenue"`
}

// Share is an investor position.
type Share struct {
	ID             id.ID           `json:"id"`
	PackageID      id.ID           `json:"package_id"`
	Owner          account.Address `json:"owner"`
	Balance        uint64          `json:"balance"`
	ClaimedRevenue uint64          `json:"claimed_revenue"`
}

// Params describes a package to create.
type Params struct {
	Name          string
	TotalShares   uint64
	UnitPrice     uint64
	NominalValue  uint64
	InvestorSplit uint64 // out of SplitDenominator
	MetadataURI   string
	SalesOpen     bool
}
