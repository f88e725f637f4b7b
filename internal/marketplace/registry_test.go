package marketplace_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintbay/nft-marketplace/internal/custodian"
	"github.com/mintbay/nft-marketplace/internal/ledger"
	"github.com/mintbay/nft-marketplace/internal/marketplace"
)

const (
	market     = "0x00000000000000000000000000000000000ma4e7"
	owner      = "0xd8f4b5e7a2c91f03b6ae5c3d7e829b1a4f60c1e2"
	seller     = "0x1111111111111111111111111111111111111111"
	buyer      = "0x2222222222222222222222222222222222222222"
	collection = "0x8d329a47bf148c7d63d52b75fb2028adc10a3d2f"

	tokenId = uint64(7)
)

type testMarket struct {
	registry  marketplace.Registry
	directory *custodian.Directory
	bank      *ledger.Bank
	token     *custodian.Token
}

func newTestMarket(t *testing.T, feePercentage uint) testMarket {
	directory := custodian.NewDirectory()
	bank := ledger.NewBank()

	registry := marketplace.NewRegistry(market, owner, feePercentage, marketplace.NewListingStore(), directory, bank)
	directory.RegisterReceiver(market, registry)

	token, err := directory.AddCollection(collection)
	require.NoError(t, err)
	require.NoError(t, token.Mint(seller, tokenId))

	return testMarket{registry, directory, bank, token}
}

func (m testMarket) list(t *testing.T, price int64) {
	require.NoError(t, m.registry.List(seller, collection, tokenId, big.NewInt(price)))
}

func Test_List_CreatesListingAndEscrowsToken(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	listing := m.registry.GetListing(collection, tokenId)
	assert.Equal(t, seller, listing.Seller)
	assert.Equal(t, tokenId, listing.TokenId)
	assert.Equal(t, int64(100), listing.Price.Int64())
	assert.True(t, listing.Active)

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, market, holder)
}

func Test_List_RejectsNonPositivePrice(t *testing.T) {
	m := newTestMarket(t, 1)

	assert.ErrorIs(t, m.registry.List(seller, collection, tokenId, big.NewInt(0)), marketplace.ErrInvalidArgument)
	assert.ErrorIs(t, m.registry.List(seller, collection, tokenId, big.NewInt(-5)), marketplace.ErrInvalidArgument)
	assert.ErrorIs(t, m.registry.List(seller, collection, tokenId, nil), marketplace.ErrInvalidArgument)
}

func Test_List_RejectsNonOwner(t *testing.T) {
	m := newTestMarket(t, 1)

	assert.ErrorIs(t, m.registry.List(buyer, collection, tokenId, big.NewInt(100)), marketplace.ErrUnauthorized)
}

func Test_List_RejectsDuplicateActiveListing(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	err := m.registry.List(seller, collection, tokenId, big.NewInt(200))
	assert.ErrorIs(t, err, marketplace.ErrConflict)
}

func Test_List_UnknownCollectionFails(t *testing.T) {
	m := newTestMarket(t, 1)

	err := m.registry.List(seller, "0xunknown", tokenId, big.NewInt(100))
	assert.ErrorIs(t, err, custodian.ErrCollectionNotFound)
}

func Test_List_EscrowFailureUnwindsListing(t *testing.T) {
	directory := custodian.NewDirectory()
	bank := ledger.NewBank()

	registry := marketplace.NewRegistry(market, owner, 1, marketplace.NewListingStore(), directory, bank)
	token, err := directory.AddCollection(collection)
	require.NoError(t, err)
	require.NoError(t, token.Mint(seller, tokenId))

	// A receiver that refuses the acknowledgment makes the escrow transfer
	// fail after the listing has been written.
	directory.RegisterReceiver(market, badAckReceiver{})

	err = registry.List(seller, collection, tokenId, big.NewInt(100))
	require.ErrorIs(t, err, custodian.ErrTransferNotAcked)

	assert.Equal(t, marketplace.Listing{}, registry.GetListing(collection, tokenId))

	holder, err := token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, seller, holder)
}

type badAckReceiver struct{}

func (badAckReceiver) OnTokenReceived(operator, from string, tokenId uint64) string {
	return "nope"
}

// The seller keeps control of an active listing even though the custodian
// reports the marketplace, not the seller, as the token holder during
// escrow. Authorization is decided by the recorded seller alone.
func Test_ChangePrice_SellerCanRepriceWhileTokenEscrowed(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	require.Equal(t, market, holder)

	require.NoError(t, m.registry.ChangePrice(seller, collection, tokenId, big.NewInt(250)))
	assert.Equal(t, int64(250), m.registry.GetListing(collection, tokenId).Price.Int64())
}

func Test_ChangePrice_RejectsNonSeller(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	err := m.registry.ChangePrice(buyer, collection, tokenId, big.NewInt(250))
	assert.ErrorIs(t, err, marketplace.ErrUnauthorized)
}

func Test_ChangePrice_RejectsAbsentListing(t *testing.T) {
	m := newTestMarket(t, 1)

	err := m.registry.ChangePrice(seller, collection, tokenId, big.NewInt(250))
	assert.ErrorIs(t, err, marketplace.ErrInvalidState)
}

func Test_ChangePrice_RejectsInactiveListing(t *testing.T) {
	m := newTestMarket(t, 0)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(100)))
	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(100)))

	err := m.registry.ChangePrice(seller, collection, tokenId, big.NewInt(250))
	assert.ErrorIs(t, err, marketplace.ErrInvalidState)
}

// A listing can never be repriced to zero, even though it could at creation
// time only be created with a positive price.
func Test_ChangePrice_RejectsNonPositivePrice(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	assert.ErrorIs(t, m.registry.ChangePrice(seller, collection, tokenId, big.NewInt(0)), marketplace.ErrInvalidArgument)
	assert.ErrorIs(t, m.registry.ChangePrice(seller, collection, tokenId, nil), marketplace.ErrInvalidArgument)
}

func Test_Unlist_ReturnsCustodyAndDeletesListing(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.registry.Unlist(seller, collection, tokenId))

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, seller, holder)

	assert.Equal(t, marketplace.Listing{}, m.registry.GetListing(collection, tokenId))
}

func Test_Unlist_RejectsNonSeller(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)

	assert.ErrorIs(t, m.registry.Unlist(buyer, collection, tokenId), marketplace.ErrUnauthorized)
}

func Test_Unlist_RejectsAbsentListing(t *testing.T) {
	m := newTestMarket(t, 1)

	assert.ErrorIs(t, m.registry.Unlist(seller, collection, tokenId), marketplace.ErrInvalidState)
}

func Test_Buy_RejectsUnderpayment(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(1000)))

	err := m.registry.Buy(buyer, collection, tokenId, big.NewInt(99))
	require.ErrorIs(t, err, marketplace.ErrInsufficientFunds)

	assert.True(t, m.registry.GetListing(collection, tokenId).Active)
	assert.Equal(t, int64(1000), m.bank.BalanceOf(buyer).Int64())

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, market, holder)
}

func Test_Buy_SettlesFundsAndTransfersCustody(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(100)))

	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(100)))

	// price=100 at 1% gives fee=1, revenue=99
	assert.Equal(t, int64(99), m.bank.BalanceOf(seller).Int64())
	assert.Equal(t, int64(1), m.bank.BalanceOf(owner).Int64())
	assert.Equal(t, int64(0), m.bank.BalanceOf(buyer).Int64())
	assert.Equal(t, int64(0), m.bank.BalanceOf(market).Int64())

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, buyer, holder)

	listing := m.registry.GetListing(collection, tokenId)
	assert.False(t, listing.Active)
	assert.Equal(t, seller, listing.Seller)
	assert.Equal(t, int64(100), listing.Price.Int64())
}

func Test_Buy_FloorRoundsFeeDownToZero(t *testing.T) {
	m := newTestMarket(t, 50)

	m.list(t, 1)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(1)))

	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(1)))

	// price=1 at 50% floors the fee to zero
	assert.Equal(t, int64(1), m.bank.BalanceOf(seller).Int64())
	assert.Equal(t, int64(0), m.bank.BalanceOf(owner).Int64())
}

// Overpayment is returned to the buyer rather than stranded in the
// marketplace, which would otherwise hold it with no withdrawal path.
func Test_Buy_RefundsExcessPayment(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(150)))

	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(150)))

	assert.Equal(t, int64(50), m.bank.BalanceOf(buyer).Int64())
	assert.Equal(t, int64(99), m.bank.BalanceOf(seller).Int64())
	assert.Equal(t, int64(1), m.bank.BalanceOf(owner).Int64())
	assert.Equal(t, int64(0), m.bank.BalanceOf(market).Int64())
}

func Test_Buy_RejectsSoldListing(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(200)))
	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(100)))

	err := m.registry.Buy(buyer, collection, tokenId, big.NewInt(100))
	assert.ErrorIs(t, err, marketplace.ErrInvalidState)
}

func Test_Buy_RejectsWhenRegistryLacksCustody(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(100)))

	// Break the escrow invariant behind the registry's back.
	require.NoError(t, m.token.SafeTransferFrom(market, seller, tokenId))

	err := m.registry.Buy(buyer, collection, tokenId, big.NewInt(100))
	assert.ErrorIs(t, err, marketplace.ErrInvalidState)
}

func Test_Buy_FailedPaymentLeavesEverythingUntouched(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	// Buyer never funded.

	err := m.registry.Buy(buyer, collection, tokenId, big.NewInt(100))
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	assert.True(t, m.registry.GetListing(collection, tokenId).Active)

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, market, holder)
}

func Test_Buy_FailedRevenueTransferRollsBack(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(100)))
	m.bank.RejectIncoming(seller)

	err := m.registry.Buy(buyer, collection, tokenId, big.NewInt(100))
	require.ErrorIs(t, err, ledger.ErrTransferRejected)

	assert.Equal(t, int64(100), m.bank.BalanceOf(buyer).Int64())
	assert.Equal(t, int64(0), m.bank.BalanceOf(market).Int64())
	assert.True(t, m.registry.GetListing(collection, tokenId).Active)

	holder, err := m.token.OwnerOf(tokenId)
	require.NoError(t, err)
	assert.Equal(t, market, holder)
}

func Test_Buy_FailedCustodyTransferRollsBackFunds(t *testing.T) {
	bank := ledger.NewBank()
	custodians := &stubResolver{&stubCustodian{holder: seller}}

	registry := marketplace.NewRegistry(market, owner, 1, marketplace.NewListingStore(), custodians, bank)

	require.NoError(t, registry.List(seller, collection, tokenId, big.NewInt(100)))

	custodians.stub.transferErr = errors.New("custodian offline")
	require.NoError(t, bank.Deposit(buyer, big.NewInt(150)))

	err := registry.Buy(buyer, collection, tokenId, big.NewInt(150))
	require.EqualError(t, err, "custodian offline")

	assert.Equal(t, int64(150), bank.BalanceOf(buyer).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(seller).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(owner).Int64())
	assert.Equal(t, int64(0), bank.BalanceOf(market).Int64())
	assert.True(t, registry.GetListing(collection, tokenId).Active)
}

type stubCustodian struct {
	holder      string
	transferErr error
}

func (s *stubCustodian) OwnerOf(tokenId uint64) (string, error) {
	return s.holder, nil
}

func (s *stubCustodian) SafeTransferFrom(from, to string, tokenId uint64) error {
	if s.transferErr != nil {
		return s.transferErr
	}
	s.holder = to
	return nil
}

type stubResolver struct {
	stub *stubCustodian
}

func (s *stubResolver) Custodian(contract string) (custodian.Custodian, error) {
	return s.stub, nil
}

func Test_SetFeePercentage(t *testing.T) {
	m := newTestMarket(t, 1)

	assert.ErrorIs(t, m.registry.SetFeePercentage(seller, 5), marketplace.ErrUnauthorized)
	assert.ErrorIs(t, m.registry.SetFeePercentage(owner, 101), marketplace.ErrInvalidArgument)

	require.NoError(t, m.registry.SetFeePercentage(owner, 100))
	assert.Equal(t, uint(100), m.registry.FeePercentage())

	require.NoError(t, m.registry.SetFeePercentage(owner, 0))
	assert.Equal(t, uint(0), m.registry.FeePercentage())
}

func Test_GetListing_NeverListedReturnsZeroTuple(t *testing.T) {
	m := newTestMarket(t, 1)

	listing := m.registry.GetListing(collection, 999)
	assert.Equal(t, "", listing.Seller)
	assert.Nil(t, listing.Price)
	assert.False(t, listing.Active)
}

func Test_Registry_AcknowledgesIncomingTokens(t *testing.T) {
	m := newTestMarket(t, 1)

	assert.Equal(t, custodian.Ack, m.registry.OnTokenReceived(buyer, buyer, 123))
}

func Test_Relisting_AfterSaleByNewOwner(t *testing.T) {
	m := newTestMarket(t, 1)

	m.list(t, 100)
	require.NoError(t, m.bank.Deposit(buyer, big.NewInt(100)))
	require.NoError(t, m.registry.Buy(buyer, collection, tokenId, big.NewInt(100)))

	// The inactive entry does not block the new owner from listing again.
	require.NoError(t, m.registry.List(buyer, collection, tokenId, big.NewInt(500)))

	listing := m.registry.GetListing(collection, tokenId)
	assert.Equal(t, buyer, listing.Seller)
	assert.Equal(t, int64(500), listing.Price.Int64())
	assert.True(t, listing.Active)
}
