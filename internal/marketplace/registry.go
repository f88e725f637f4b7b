package marketplace

import (
	"math/big"
	"sync"

	"github.com/mintbay/nft-marketplace/internal/custodian"
	"github.com/mintbay/nft-marketplace/internal/entity"
	"github.com/mintbay/nft-marketplace/internal/event"
	"github.com/mintbay/nft-marketplace/internal/ledger"
	"go.uber.org/zap"
)

// Registry is the marketplace contract surface. Every operation runs
// all-or-nothing: a failed precondition or a failed call out to a custodian
// or the ledger leaves listings, custody and balances as they were, and no
// event is emitted.
type Registry interface {
	Address() string
	Owner() string

	FeePercentage() uint
	SetFeePercentage(caller string, percentage uint) error

	List(caller, contract string, tokenId uint64, price *big.Int) error
	ChangePrice(caller, contract string, tokenId uint64, newPrice *big.Int) error
	Unlist(caller, contract string, tokenId uint64) error
	Buy(caller, contract string, tokenId uint64, value *big.Int) error
	GetListing(contract string, tokenId uint64) Listing

	custodian.Receiver
}

type registry struct {
	mu            sync.Mutex
	address       string
	owner         string
	feePercentage uint
	listings      *ListingStore
	custodians    custodian.Resolver
	funds         ledger.Ledger
}

func NewRegistry(
	address string,
	owner string,
	feePercentage uint,
	listings *ListingStore,
	custodians custodian.Resolver,
	funds ledger.Ledger,
) Registry {
	if feePercentage > 100 {
		zap.L().With(zap.Uint("feePercentage", feePercentage)).Warn("Marketplace: Fee percentage above 100, clamping")
		feePercentage = 100
	}

	return &registry{
		address:       address,
		owner:         owner,
		feePercentage: feePercentage,
		listings:      listings,
		custodians:    custodians,
		funds:         funds,
	}
}

func (r *registry) Address() string {
	return r.address
}

func (r *registry) Owner() string {
	return r.owner
}

func (r *registry) FeePercentage() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.feePercentage
}

func (r *registry) SetFeePercentage(caller string, percentage uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrUnauthorized
	}
	if percentage > 100 {
		return ErrInvalidArgument
	}

	previous := r.feePercentage
	r.feePercentage = percentage

	zap.L().With(
		zap.Uint("previous", previous),
		zap.Uint("current", percentage),
	).Info("Marketplace: Fee percentage changed")

	event.EmitEvent(event.FeePercentageChangedEvent, entity.FeePercentageChanged{
		Previous: previous,
		Current:  percentage,
	})

	return nil
}

func (r *registry) List(caller, contract string, tokenId uint64, price *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if price == nil || price.Sign() <= 0 {
		return ErrInvalidArgument
	}

	cust, err := r.custodians.Custodian(contract)
	if err != nil {
		return err
	}

	holder, err := cust.OwnerOf(tokenId)
	if err != nil {
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).
			Error("Marketplace: Ownership query failed")
		return err
	}
	if holder != caller {
		return ErrUnauthorized
	}

	previous := r.listings.Get(contract, tokenId)
	if previous.Active {
		return ErrConflict
	}

	r.listings.Put(contract, tokenId, Listing{
		Seller:  caller,
		TokenId: tokenId,
		Price:   new(big.Int).Set(price),
		Active:  true,
	})

	// Escrow happens after the listing write; a failing transfer unwinds it.
	if err := cust.SafeTransferFrom(caller, r.address, tokenId); err != nil {
		if previous == (Listing{}) {
			r.listings.Delete(contract, tokenId)
		} else {
			r.listings.Put(contract, tokenId, previous)
		}

		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).
			Error("Marketplace: Escrow transfer failed")
		return err
	}

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
		zap.String("price", price.String()),
	).Info("Marketplace: Listing created")

	event.EmitEvent(event.ListingCreatedEvent, entity.ListingCreated{
		Seller:   caller,
		Contract: contract,
		TokenId:  tokenId,
		Price:    price.String(),
	})

	return nil
}

func (r *registry) ChangePrice(caller, contract string, tokenId uint64, newPrice *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing := r.listings.Get(contract, tokenId)
	if !listing.Active {
		return ErrInvalidState
	}
	if caller != listing.Seller {
		return ErrUnauthorized
	}
	if newPrice == nil || newPrice.Sign() <= 0 {
		return ErrInvalidArgument
	}

	listing.Price = new(big.Int).Set(newPrice)
	r.listings.Put(contract, tokenId, listing)

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("price", newPrice.String()),
	).Info("Marketplace: Listing price changed")

	event.EmitEvent(event.ListingPriceChangedEvent, entity.ListingPriceChanged{
		Seller:   listing.Seller,
		Contract: contract,
		TokenId:  tokenId,
		Price:    newPrice.String(),
	})

	return nil
}

func (r *registry) Unlist(caller, contract string, tokenId uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing := r.listings.Get(contract, tokenId)
	if !listing.Active {
		return ErrInvalidState
	}
	if caller != listing.Seller {
		return ErrUnauthorized
	}

	cust, err := r.custodians.Custodian(contract)
	if err != nil {
		return err
	}

	if err := cust.SafeTransferFrom(r.address, listing.Seller, tokenId); err != nil {
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).
			Error("Marketplace: Escrow return failed")
		return err
	}

	r.listings.Delete(contract, tokenId)

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", listing.Seller),
	).Info("Marketplace: Listing removed")

	event.EmitEvent(event.ListingRemovedEvent, entity.ListingRemoved{
		Seller:   listing.Seller,
		Contract: contract,
		TokenId:  tokenId,
	})

	return nil
}

func (r *registry) Buy(caller, contract string, tokenId uint64, value *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing := r.listings.Get(contract, tokenId)
	if !listing.Active {
		return ErrInvalidState
	}

	if value == nil {
		value = big.NewInt(0)
	}
	if value.Cmp(listing.Price) < 0 {
		return ErrInsufficientFunds
	}

	cust, err := r.custodians.Custodian(contract)
	if err != nil {
		return err
	}

	holder, err := cust.OwnerOf(tokenId)
	if err != nil {
		return err
	}
	if holder != r.address {
		return ErrInvalidState
	}

	fee := new(big.Int).Mul(listing.Price, big.NewInt(int64(r.feePercentage)))
	fee.Div(fee, big.NewInt(100))
	revenue := new(big.Int).Sub(listing.Price, fee)
	excess := new(big.Int).Sub(value, listing.Price)

	// The attached value is pulled into the registry first, then settled
	// outwards. Every later failure compensates the moves already made so
	// the operation stays all-or-nothing.
	if err := r.funds.Transfer(caller, r.address, value); err != nil {
		zap.L().With(zap.String("buyer", caller), zap.Error(err)).Error("Marketplace: Payment failed")
		return err
	}

	if err := r.funds.Transfer(r.address, listing.Seller, revenue); err != nil {
		r.compensate(r.address, caller, value)
		zap.L().With(zap.String("seller", listing.Seller), zap.Error(err)).Error("Marketplace: Revenue transfer failed")
		return err
	}

	if fee.Sign() > 0 {
		if err := r.funds.Transfer(r.address, r.owner, fee); err != nil {
			r.compensate(listing.Seller, r.address, revenue)
			r.compensate(r.address, caller, value)
			zap.L().With(zap.String("owner", r.owner), zap.Error(err)).Error("Marketplace: Fee transfer failed")
			return err
		}
	}

	if excess.Sign() > 0 {
		if err := r.funds.Transfer(r.address, caller, excess); err != nil {
			r.compensate(r.owner, r.address, fee)
			r.compensate(listing.Seller, r.address, revenue)
			r.compensate(r.address, caller, value)
			zap.L().With(zap.String("buyer", caller), zap.Error(err)).Error("Marketplace: Excess refund failed")
			return err
		}
	}

	if err := cust.SafeTransferFrom(r.address, caller, tokenId); err != nil {
		r.compensate(caller, r.address, excess)
		r.compensate(r.owner, r.address, fee)
		r.compensate(listing.Seller, r.address, revenue)
		r.compensate(r.address, caller, value)
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Error(err)).
			Error("Marketplace: Custody transfer failed")
		return err
	}

	// Local state is finalized only after every external call has succeeded.
	listing.Active = false
	r.listings.Put(contract, tokenId, listing)

	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", listing.Seller),
		zap.String("buyer", caller),
		zap.String("price", listing.Price.String()),
		zap.String("fee", fee.String()),
	).Info("Marketplace: Listing sold")

	event.EmitEvent(event.ListingSoldEvent, entity.ListingSold{
		Seller:   listing.Seller,
		Buyer:    caller,
		Contract: contract,
		TokenId:  tokenId,
		Price:    listing.Price.String(),
	})

	return nil
}

func (r *registry) GetListing(contract string, tokenId uint64) Listing {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.listings.Get(contract, tokenId)
}

// OnTokenReceived accepts every incoming safe transfer. The real validation
// happens in List, not here. Must not take the registry lock, the hook runs
// inside the escrow transfer List itself issues.
func (r *registry) OnTokenReceived(operator, from string, tokenId uint64) string {
	zap.L().With(
		zap.String("operator", operator),
		zap.String("from", from),
		zap.Uint64("tokenId", tokenId),
	).Debug("Marketplace: Token received")

	return custodian.Ack
}

// compensate reverses an earlier fund move during rollback. A reversal that
// fails is a broken settlement invariant and is only loggable.
func (r *registry) compensate(from, to string, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	if err := r.funds.Transfer(from, to, amount); err != nil {
		zap.L().With(
			zap.String("from", from),
			zap.String("to", to),
			zap.String("amount", amount.String()),
			zap.Error(err),
		).Error("Marketplace: Compensating transfer failed")
	}
}
