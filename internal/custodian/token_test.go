package custodian_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintbay/nft-marketplace/internal/custodian"
)

const (
	collection = "0x8d329a47bf148c7d63d52b75fb2028adc10a3d2f"
	alice      = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob        = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	vault      = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func Test_Token_MintAndOwnerOf(t *testing.T) {
	token := custodian.NewToken(collection, nil)

	require.NoError(t, token.Mint(alice, 1))
	assert.ErrorIs(t, token.Mint(bob, 1), custodian.ErrTokenExists)

	owner, err := token.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	_, err = token.OwnerOf(2)
	assert.ErrorIs(t, err, custodian.ErrTokenNotFound)
}

func Test_Token_SafeTransferFrom(t *testing.T) {
	token := custodian.NewToken(collection, nil)
	require.NoError(t, token.Mint(alice, 1))

	assert.ErrorIs(t, token.SafeTransferFrom(bob, alice, 1), custodian.ErrNotTokenOwner)
	assert.ErrorIs(t, token.SafeTransferFrom(alice, bob, 2), custodian.ErrTokenNotFound)

	require.NoError(t, token.SafeTransferFrom(alice, bob, 1))
	owner, err := token.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

type ackReceiver struct {
	ack   string
	calls int
}

func (r *ackReceiver) OnTokenReceived(operator, from string, tokenId uint64) string {
	r.calls++
	return r.ack
}

func Test_Token_SafeTransferInvokesReceiverHook(t *testing.T) {
	directory := custodian.NewDirectory()
	receiver := &ackReceiver{ack: custodian.Ack}
	directory.RegisterReceiver(vault, receiver)

	token, err := directory.AddCollection(collection)
	require.NoError(t, err)
	require.NoError(t, token.Mint(alice, 1))

	require.NoError(t, token.SafeTransferFrom(alice, vault, 1))
	assert.Equal(t, 1, receiver.calls)

	owner, err := token.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, vault, owner)
}

func Test_Token_SafeTransferFailsWithoutAcknowledgment(t *testing.T) {
	directory := custodian.NewDirectory()
	directory.RegisterReceiver(vault, &ackReceiver{ack: "wrong"})

	token, err := directory.AddCollection(collection)
	require.NoError(t, err)
	require.NoError(t, token.Mint(alice, 1))

	assert.ErrorIs(t, token.SafeTransferFrom(alice, vault, 1), custodian.ErrTransferNotAcked)

	owner, err := token.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func Test_Directory_Collections(t *testing.T) {
	directory := custodian.NewDirectory()

	_, err := directory.Custodian(collection)
	assert.ErrorIs(t, err, custodian.ErrCollectionNotFound)

	_, err = directory.AddCollection(collection)
	require.NoError(t, err)

	_, err = directory.AddCollection(collection)
	assert.ErrorIs(t, err, custodian.ErrCollectionExists)

	cust, err := directory.Custodian(collection)
	require.NoError(t, err)
	assert.NotNil(t, cust)
}
