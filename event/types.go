package event

import (
	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

// Registry events.
const (
	NotarizationRegisteredEventType     EventType = "notarization.registered"
	NotarizationRevokedEventType        EventType = "notarization.revoked"
	NotarizationUnrevokedEventType      EventType = "notarization.unrevoked"
	NotarizationCreatorUpdatedEventType EventType = "notarization.creator_updated"
	ExecutorAddedEventType              EventType = "executor.added"
	ExecutorRemovedEventType            EventType = "executor.removed"
	TransferAuthorizedEventType         EventType = "ticket.transfer_authorized"
	SalesAuthorizedEventType            EventType = "ticket.sales_authorized"
	TransferCancelledEventType          EventType = "ticket.transfer_cancelled"
	SalesCancelledEventType             EventType = "ticket.sales_cancelled"
)

// Ledger events.
const (
	PackageCreatedEventType      EventType = "package.created"
	SharesPurchasedEventType     EventType = "shares.purchased"
	FundingWithdrawnEventType    EventType = "funding.withdrawn"
	RevenueDepositedEventType    EventType = "revenue.deposited"
	RevenueClaimedEventType      EventType = "revenue.claimed"
	OwnerRevenueClaimedEventType EventType = "revenue.owner_claimed"
	BondTransferredEventType     EventType = "bond.transferred"
	SalesToggledEventType        EventType = "sales.toggled"
	ShareTransferredEventType    EventType = "share.transferred"
)

// Fractional events.
const (
	ShareFractionalizedEventType EventType = "share.fractionalized"
	UnitsRedeemedEventType       EventType = "units.redeemed"
	UnitsMergedEventType         EventType = "units.merged"
	UnitsTransferredEventType    EventType = "units.transferred"
	VaultDestroyedEventType      EventType = "vault.destroyed"
	ControllerCreatedEventType   EventType = "controller.created"
)

type NotarizationRegisteredEvent struct {
	NotarizationID    id.ID
	DocumentHash      registry.DocumentHash
	Auditor           account.Address
	AuthorizedCreator account.Address
}

// NotarizationEvent covers revoke and unrevoke.
type NotarizationEvent struct {
	NotarizationID id.ID
	Actor          account.Address
}

type NotarizationCreatorUpdatedEvent struct {
	NotarizationID    id.ID
	AuthorizedCreator account.Address
}

// ExecutorEvent covers add and remove. Changed is false for no-op calls.
type ExecutorEvent struct {
	Kind    registry.ExecutorKind
	Changed bool
}

type TransferAuthorizedEvent struct {
	PackageID      id.ID
	NewOwner       account.Address
	NotarizationID id.ID
	Replaced       bool
}

type SalesAuthorizedEvent struct {
	PackageID      id.ID
	Open           bool
	NotarizationID id.ID
	Replaced       bool
}

// TicketCancelledEvent covers both ticket kinds.
type TicketCancelledEvent struct {
	PackageID id.ID
}

type PackageCreatedEvent struct {
	PackageID         id.ID
	NotarizationID    id.ID
	BondID            id.ID
	Owner             account.Address
	TotalShares       uint64
	MaxSellableSupply uint64
	UnitPrice         uint64
	SalesOpen         bool
}

type SharesPurchasedEvent struct {
	PackageID id.ID
	ShareID   id.ID
	Buyer     account.Address
	Amount    uint64
	Cost      uint64
	PreCharge uint64
	Change    uint64
}

type FundingWithdrawnEvent struct {
	PackageID id.ID
	BondID    id.ID
	Owner     account.Address
	Amount    uint64
}

type RevenueDepositedEvent struct {
	PackageID      id.ID
	BondID         id.ID
	Amount         uint64
	TotalDeposited uint64
}

type RevenueClaimedEvent struct {
	PackageID id.ID
	ShareID   id.ID
	Holder    account.Address
	Amount    uint64
}

type OwnerRevenueClaimedEvent struct {
	PackageID id.ID
	BondID    id.ID
	Owner     account.Address
	Amount    uint64
}

type BondTransferredEvent struct {
	PackageID id.ID
	BondID    id.ID
	From      account.Address
	To        account.Address
}

type SalesToggledEvent struct {
	PackageID id.ID
	Open      bool
}

type ShareTransferredEvent struct {
	PackageID id.ID
	ShareID   id.ID
	From      account.Address
	To        account.Address
}

type ShareFractionalizedEvent struct {
	PackageID    id.ID
	ShareID      id.ID
	VaultID      id.ID
	Kind         id.ID
	Amount       uint64
	ClaimedSplit uint64
}

// UnitsBurnedEvent covers redemption and merge back.
type UnitsBurnedEvent struct {
	PackageID id.ID
	VaultID   id.ID
	ShareID   id.ID
	Holder    account.Address
	Amount    uint64
	Claimed   uint64
}

type UnitsTransferredEvent struct {
	Kind   id.ID
	From   account.Address
	To     account.Address
	Amount uint64
}

type VaultDestroyedEvent struct {
	PackageID    id.ID
	VaultID      id.ID
	ControllerID id.ID
}

type ControllerCreatedEvent struct {
	ControllerID id.ID
	Owner        account.Address
}
