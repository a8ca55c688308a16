package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	t.Parallel()

	headers := []string{"Row Labels", "Sum of Units", "Sum of Dollars"}
	k := NewKey("/tmp/uploads/SPINS ending 01-26-25.xlsx", "Ret_Brand_Pivot", headers)

	assert.Len(t, k, 40)
	assert.Equal(t, k, NewKey("SPINS ending 01-26-25.xlsb", "Ret_Brand_Pivot", headers), "directory and extension are ignored")
	assert.Equal(t, k, NewKey("SPINS ending 01-26-25.xlsx", "Ret_Brand_Pivot", []string{" row  labels", "SUM OF UNITS", "sum of dollars "}))

	assert.NotEqual(t, k, NewKey("SPINS ending 02-23-25.xlsx", "Ret_Brand_Pivot", headers))
	assert.NotEqual(t, k, NewKey("SPINS ending 01-26-25.xlsx", "Retailer", headers))
	assert.NotEqual(t, k, NewKey("SPINS ending 01-26-25.xlsx", "Ret_Brand_Pivot", headers[:2]))
}

func TestNewKey_OnlyFirstColumnsCount(t *testing.T) {
	t.Parallel()

	long := make([]string, 35)
	for i := range long {
		long[i] = "col"
	}
	changed := append([]string(nil), long...)
	changed[FingerprintColumns] = "different"

	assert.Equal(t, NewKey("f.xlsx", "s", long), NewKey("f.xlsx", "s", changed))

	changed[FingerprintColumns-1] = "different"
	assert.NotEqual(t, NewKey("f.xlsx", "s", long), NewKey("f.xlsx", "s", changed))
}
