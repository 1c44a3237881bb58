package ledgerfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbook/internal/model"
)

func TestAccounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, []model.Account{
		{ID: 1, Name: "Checking", Type: model.AccountTypeBank, OpeningBalance: dec("1000")},
		{ID: 2, Name: "Old Visa", Type: model.AccountTypeCreditCard, OpeningBalance: dec("-50.5"), Archived: true},
	}))
	assert.Equal(t, "account_id,name,type,opening_balance,archived\n"+
		"1,Checking,bank,1000.00,false\n"+
		"2,Old Visa,credit_card,-50.50,true\n", buf.String())

	got, err := ReadAccounts(&buf, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[1].BusinessID)
	assert.True(t, got[1].Archived)
	assert.Equal(t, "-50.50", got[1].OpeningBalance.StringFixed(2))
}

func TestReadAccounts_Errors(t *testing.T) {
	_, err := ReadAccounts(strings.NewReader("account_id,name,type,opening_balance,archived\n1,Cash box,wallet,0.00,false\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown account type "wallet"`)

	_, err = ReadAccounts(strings.NewReader("account_id,name,type,opening_balance,archived\n1,Checking,bank,0.001,false\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening_balance")

	_, err = ReadAccounts(strings.NewReader("account_id,name\n1,Checking\n"), 1)
	require.Error(t, err)
}

func TestReadCategories_DuplicateCode(t *testing.T) {
	_, err := ReadCategories(strings.NewReader("category_id,code,name,type,report,archived\n"+
		"1,head_1,Sales,income,pl,false\n"+
		"2,head_1,Other,income,pl,false\n"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate code "head_1"`)
}

func TestTaxRates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTaxRates(&buf, []model.TaxRate{{ID: 1, Name: "VAT 8.1%", Rate: dec("0.081"), Default: true}}))
	assert.Equal(t, "tax_rate_id,name,rate,default\n1,VAT 8.1%,0.081,true\n", buf.String())

	_, err := ReadTaxRates(strings.NewReader("tax_rate_id,name,rate,default\n1,Bad,1.0,false\n"), 1)
	require.ErrorIs(t, err, model.ErrRateOutOfRange)
}
