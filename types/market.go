package types

import (
	"fmt"
	"time"
)

const MaxBps = uint16(10000)

// Ask is a seller-posted fixed-price listing. Nothing is escrowed at
// creation: the seller keeps the items and the asset-level approval until
// the ask fills.
//
// Single-owner collections carry exactly one ask slot per token (Index 1,
// overwritten on re-list). Multi-quantity collections append 1-based
// indexes; cancelled asks keep their index so later asks never collide.
type Ask struct {
	Collection Collection `json:"collection"`
	TokenID    TokenID    `json:"tokenId"`
	Index      uint64     `json:"index"`

	Seller         Address `json:"seller"`
	Quantity       uint64  `json:"quantity"`
	Price          Amount  `json:"price"`
	Currency       Address `json:"currency"`
	FundsRecipient Address `json:"fundsRecipient"`
	FindersFeeBps  uint16  `json:"findersFeeBps"`
	Active         bool    `json:"active"`
}

// Offer is a buyer-posted bid with the funds escrowed up front.
type Offer struct {
	Collection Collection `json:"collection"`
	TokenID    TokenID    `json:"tokenId"`
	Index      uint64     `json:"index"`

	Buyer         Address `json:"buyer"`
	Currency      Address `json:"currency"`
	Amount        Amount  `json:"amount"`
	FindersFeeBps uint16  `json:"findersFeeBps"`
	Escrowed      bool    `json:"escrowed"`
	Active        bool    `json:"active"`
}

type AuctionStatus uint64

const (
	// AuctionCreated: items escrowed, no bid accepted yet. The only state
	// from which cancellation is permitted.
	AuctionCreated AuctionStatus = iota
	// AuctionActive: at least one bid stands; exactly one bidder's funds
	// are escrowed.
	AuctionActive
	AuctionSettled
	AuctionBoughtNow
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionCreated:
		return "Created"
	case AuctionActive:
		return "Active"
	case AuctionSettled:
		return "Settled"
	case AuctionBoughtNow:
		return "BoughtNow"
	case AuctionCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("AuctionStatus(%d)", uint64(s))
}

func (s AuctionStatus) Terminal() bool {
	return s == AuctionSettled || s == AuctionBoughtNow || s == AuctionCancelled
}

// Auction is a reserve auction with an optional buy-now price. The traded
// items are held by the auction module from creation until settlement or a
// pre-bid cancellation.
type Auction struct {
	Collection Collection `json:"collection"`
	TokenID    TokenID    `json:"tokenId"`
	Index      uint64     `json:"index"`

	Seller         Address       `json:"seller"`
	Quantity       uint64        `json:"quantity"`
	Duration       time.Duration `json:"duration"`
	ReservePrice   Amount        `json:"reservePrice"`
	BuyNowPrice    Amount        `json:"buyNowPrice"` // zero disables buy-now
	FundsRecipient Address       `json:"fundsRecipient"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"` // start+duration, pushed out by late bids
	Currency       Address       `json:"currency"`

	HighestBidder Address       `json:"highestBidder"`
	HighestBid    Amount        `json:"highestBid"`
	Status        AuctionStatus `json:"status"`
	Escrowed      bool          `json:"escrowed"`
}

func (a *Auction) BuyNowEnabled() bool {
	return !IsZeroAmount(a.BuyNowPrice)
}

func (a *Auction) HasBid() bool {
	return !a.HighestBidder.Empty()
}

// RoyaltyPiece is one beneficiary's share of an item's sale proceeds.
type RoyaltyPiece struct {
	Beneficiary Address `json:"beneficiary"`
	Bps         uint16  `json:"bps"`
}

// FeeParams is the protocol fee taken off the top of a module's proceeds.
type FeeParams struct {
	Module    Address `json:"module"`
	Recipient Address `json:"recipient"`
	Bps       uint16  `json:"bps"`
}

// FloorPrice is the minimum unit price accepted for listings and reserves
// of a collection in a given currency. Absence of an entry means zero.
type FloorPrice struct {
	Collection Collection `json:"collection"`
	Currency   Address    `json:"currency"`
	Price      Amount     `json:"price"`
}
