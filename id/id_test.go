package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger/id"
)

func TestNewAndParseRoundTrip(t *testing.T) {
	acct := id.NewAccountID()
	require.False(t, acct.IsNil())
	assert.Equal(t, id.PrefixAccount, acct.Prefix())

	parsed, err := id.Parse(acct.String())
	require.NoError(t, err)
	assert.Equal(t, acct, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := id.Parse("")
	require.Error(t, err)

	_, err = id.Parse("not a typeid")
	require.Error(t, err)
}

func TestParseWithPrefixEnforcesType(t *testing.T) {
	txn := id.NewTransactionID()

	_, err := id.ParseWithPrefix(txn.String(), id.PrefixTransaction)
	require.NoError(t, err)

	_, err = id.ParseWithPrefix(txn.String(), id.PrefixAccount)
	require.Error(t, err)
}

func TestNilID(t *testing.T) {
	assert.True(t, id.Nil.IsNil())
	assert.Empty(t, id.Nil.String())

	v, err := id.Nil.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestScanAndValue(t *testing.T) {
	original := id.NewReportID()

	v, err := original.Value()
	require.NoError(t, err)

	var scanned id.ID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)

	var fromNull id.ID
	require.NoError(t, fromNull.Scan(nil))
	assert.True(t, fromNull.IsNil())
}

func TestMarshalText(t *testing.T) {
	original := id.NewTaxRateID()

	text, err := original.MarshalText()
	require.NoError(t, err)

	var decoded id.ID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)

	var empty id.ID
	require.NoError(t, empty.UnmarshalText(nil))
	assert.True(t, empty.IsNil())
}
