package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("banker")
	require.NoError(t, err)
	assert.Equal(t, RoleBanker, role)

	_, err = ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestParseAccountStatus(t *testing.T) {
	for _, valid := range []string{"active", "inactive", "suspended"} {
		status, err := ParseAccountStatus(valid)
		require.NoError(t, err)
		assert.EqualValues(t, valid, status)
	}
	_, err := ParseAccountStatus("frozen")
	assert.Error(t, err)
}

func TestParseAccountType(t *testing.T) {
	_, err := ParseAccountType("savings")
	require.NoError(t, err)
	_, err = ParseAccountType("money-market")
	assert.Error(t, err)
}

func TestSignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("25.50")

	deposit := Transaction{Type: TypeDeposit, Amount: amount}
	assert.True(t, deposit.SignedAmount().Equal(amount))

	withdrawal := Transaction{Type: TypeWithdrawal, Amount: amount}
	assert.True(t, withdrawal.SignedAmount().Equal(amount.Neg()))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	token := AccessToken{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, token.Expired(now))
	assert.True(t, token.Expired(now.Add(time.Hour)), "expiry instant itself counts as expired")
	assert.True(t, token.Expired(now.Add(2*time.Hour)))
}
