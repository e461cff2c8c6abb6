package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/auction"
	"github.com/openlot/sealedbid/auctionapi"
	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// handleRequest decodes one request envelope and dispatches it.
func (s *HostServer) handleRequest(raw []byte) auctionapi.Response {
	var req auctionapi.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Printf("ERROR: Failed to decode request: %v", err)
		return failure("", fmt.Errorf("failed to decode request: %w", err))
	}

	log.Printf("INFO: Received request type: %s", req.Type)

	switch req.Type {
	case auctionapi.TypePing:
		return auctionapi.Response{Type: "pong", Success: true, Message: "auction host is healthy"}
	case auctionapi.TypeOpenAccount:
		return s.handleOpenAccount(req)
	case auctionapi.TypeMintAsset:
		return s.handleMintAsset(req)
	case auctionapi.TypeApproveAsset:
		return s.handleApproveAsset(req)
	case auctionapi.TypePostAsset:
		return s.handlePostAsset(req)
	case auctionapi.TypeCreateAuction:
		return s.handleCreateAuction(req)
	case auctionapi.TypeCommitBid, auctionapi.TypeAdvanceReveal, auctionapi.TypeRevealBid,
		auctionapi.TypeAdvanceEnded, auctionapi.TypeWithdraw, auctionapi.TypeClaimAsset:
		return s.handleInstanceCall(req)
	case auctionapi.TypeBalance:
		return s.handleBalance(req)
	case auctionapi.TypeAuctionStatus:
		return s.handleStatus(req)
	case auctionapi.TypeEvents:
		return s.handleEvents(req)
	default:
		return failure(req.Type, fmt.Errorf("unknown request type: %s", req.Type))
	}
}

func (s *HostServer) handleOpenAccount(req auctionapi.Request) auctionapi.Response {
	account := ledger.Account(req.Account)
	if account == "" {
		account = ledger.NewAccount()
	}
	s.bank.Open(account)

	if req.Fund != "" {
		amount, err := parseAmount(req.Fund)
		if err != nil {
			return failure(req.Type, err)
		}
		if err := s.bank.Fund(account, amount); err != nil {
			return failure(req.Type, err)
		}
	}
	return auctionapi.Response{
		Type:    req.Type,
		Success: true,
		Account: string(account),
		Balance: s.bank.BalanceOf(account).String(),
	}
}

func (s *HostServer) handleMintAsset(req auctionapi.Request) auctionapi.Response {
	if req.Account == "" {
		return failure(req.Type, fmt.Errorf("account is required"))
	}
	assetID := s.registry.MintAsset(ledger.Account(req.Account))
	return auctionapi.Response{Type: req.Type, Success: true, Account: req.Account, AssetID: assetID}
}

func (s *HostServer) handleApproveAsset(req auctionapi.Request) auctionapi.Response {
	err := s.registry.Approve(ledger.Account(req.Account), ledger.Account(req.Operator), req.AssetID)
	if err != nil {
		return failure(req.Type, err)
	}
	return auctionapi.Response{Type: req.Type, Success: true, AssetID: req.AssetID}
}

// handlePostAsset transfers the seller's asset into the auction's custody,
// which synchronously fires the instance's custody callback.
func (s *HostServer) handlePostAsset(req auctionapi.Request) auctionapi.Response {
	seller := ledger.Account(req.Account)
	err := s.registry.TransferAsset(seller, seller, ledger.Account(req.Auction), req.AssetID)
	if err != nil {
		return failure(req.Type, err)
	}
	return auctionapi.Response{Type: req.Type, Success: true, Auction: req.Auction, AssetID: req.AssetID}
}

func (s *HostServer) handleCreateAuction(req auctionapi.Request) auctionapi.Response {
	paid, err := parseAmount(req.Value)
	if err != nil {
		return failure(req.Type, err)
	}
	reserve, err := parseAmount(req.ReservePrice)
	if err != nil {
		return failure(req.Type, err)
	}
	commitRevealFee, err := parseAmount(req.CommitRevealFee)
	if err != nil {
		return failure(req.Type, err)
	}
	revealEndFee, err := parseAmount(req.RevealEndFee)
	if err != nil {
		return failure(req.Type, err)
	}
	postingFee, err := parseAmount(req.PostingFee)
	if err != nil {
		return failure(req.Type, err)
	}

	params := auction.Params{
		ReservePrice:    reserve,
		RevealDeadline:  req.RevealDeadline,
		EndDeadline:     req.EndDeadline,
		CommitRevealFee: commitRevealFee,
		RevealEndFee:    revealEndFee,
		PostingFee:      postingFee,
		AssetRegistry:   s.registry.Account(),
	}
	a, err := s.factory.CreateAuction(ledger.Account(req.Account), paid, params)
	if err != nil {
		return failure(req.Type, err)
	}
	return auctionapi.Response{Type: req.Type, Success: true, Auction: string(a.Address())}
}

// handleInstanceCall dispatches the five state-changing operations plus the
// asset claim against one instance.
func (s *HostServer) handleInstanceCall(req auctionapi.Request) auctionapi.Response {
	a := s.factory.Lookup(ledger.Account(req.Auction))
	if a == nil {
		return failure(req.Type, fmt.Errorf("unknown auction: %s", req.Auction))
	}
	caller := ledger.Account(req.Account)
	paid, err := parseAmount(req.Value)
	if err != nil {
		return failure(req.Type, err)
	}

	switch req.Type {
	case auctionapi.TypeCommitBid:
		err = a.CommitBid(caller, paid, req.Commitment)
	case auctionapi.TypeAdvanceReveal:
		err = a.AdvanceToReveal(caller, paid)
	case auctionapi.TypeRevealBid:
		var amount decimal.Decimal
		amount, err = parseAmount(req.Amount)
		if err == nil {
			err = a.RevealBid(caller, paid, amount, req.Salt)
		}
	case auctionapi.TypeAdvanceEnded:
		err = a.AdvanceToEnded(caller, paid)
	case auctionapi.TypeWithdraw:
		err = a.Withdraw(caller, paid)
	case auctionapi.TypeClaimAsset:
		err = a.ClaimAsset(caller, paid)
	}
	if err != nil {
		return failure(req.Type, err)
	}
	return auctionapi.Response{Type: req.Type, Success: true, Auction: req.Auction}
}

func (s *HostServer) handleBalance(req auctionapi.Request) auctionapi.Response {
	account := ledger.Account(req.Account)
	resp := auctionapi.Response{
		Type:    req.Type,
		Success: true,
		Account: req.Account,
		Balance: s.bank.BalanceOf(account).String(),
	}
	if req.Auction != "" {
		a := s.factory.Lookup(ledger.Account(req.Auction))
		if a == nil {
			return failure(req.Type, fmt.Errorf("unknown auction: %s", req.Auction))
		}
		resp.Auction = req.Auction
		resp.PendingBalance = a.PendingBalance(account).String()
	}
	return resp
}

func (s *HostServer) handleStatus(req auctionapi.Request) auctionapi.Response {
	a := s.factory.Lookup(ledger.Account(req.Auction))
	if a == nil {
		return failure(req.Type, fmt.Errorf("unknown auction: %s", req.Auction))
	}
	params := a.Params()
	snapshot := a.ConservationSnapshot()
	status := &auctionapi.AuctionStatus{
		Address:        string(a.Address()),
		Seller:         string(a.Seller()),
		Stage:          a.Stage().String(),
		ReservePrice:   params.ReservePrice.String(),
		RevealDeadline: params.RevealDeadline,
		EndDeadline:    params.EndDeadline,
		TopBidder:      string(a.TopBidder()),
		TopBid:         a.TopBid().String(),
		SecondTopBid:   a.SecondTopBid().String(),
		AssetHeld:      a.AssetHeld(),
		AssetID:        a.AssetID(),
		TotalReceived:  snapshot.TotalReceived.String(),
		TotalWithdrawn: snapshot.TotalWithdrawn.String(),
		PendingTotal:   snapshot.PendingTotal.String(),
		Forfeited:      snapshot.Forfeited.String(),
		Unallocated:    snapshot.Unallocated.String(),
	}
	return auctionapi.Response{Type: req.Type, Success: true, Auction: req.Auction, Status: status}
}

func (s *HostServer) handleEvents(req auctionapi.Request) auctionapi.Response {
	var events []audit.Event
	if req.Auction != "" {
		events = s.recorder.ForAuction(req.Auction)
	} else {
		events = s.recorder.Events()
	}
	encoded, err := audit.EncodeCBOR(events)
	if err != nil {
		return failure(req.Type, err)
	}
	return auctionapi.Response{
		Type:             req.Type,
		Success:          true,
		Auction:          req.Auction,
		Events:           events,
		EventsCBORBase64: base64.StdEncoding.EncodeToString(encoded),
	}
}

// failure builds an error response, surfacing the machine-checkable guard
// code when the error is a guard failure.
func failure(reqType string, err error) auctionapi.Response {
	return auctionapi.Response{
		Type:    reqType,
		Success: false,
		Message: err.Error(),
		Code:    string(core.CodeOf(err)),
	}
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return amount, nil
}
