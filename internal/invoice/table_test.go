package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWithTables(t *testing.T) {
	tables := []Table{{
		{"Sl No", "Particulars", "HSN/SAC", "Qty", "Rate", "Amount"},
		{"1", "Lenovo ThinkPad E14 Laptop", "8471", "3", "55,000.00", "1,65,000.00"},
		{"2", "Logitech Keyboard K120", "8471", "10", "", "4,500.00"},
		{"", "Total", "", "", "", "1,69,500.00"},
		{"", "nan", "", "", "", ""},
	}}

	bill := ExtractWithTables("Invoice No: INV-77\nKumar Infotech Pvt Ltd", tables)
	assert.Equal(t, "INV-77", deref(bill.BillNumber))
	assert.Equal(t, "Kumar Infotech Pvt Ltd", deref(bill.VendorName))

	require.Len(t, bill.Assets, 2)

	lap := bill.Assets[0]
	assert.Equal(t, "Lenovo ThinkPad E14 Laptop", lap.Name)
	assert.Equal(t, "laptop", lap.Category)
	assert.Equal(t, "Lenovo", deref(lap.Brand))
	assert.Equal(t, "E14", deref(lap.Model))
	assert.Equal(t, 3, lap.Quantity)
	assert.Equal(t, 55000.0, lap.UnitPrice)
	assert.Equal(t, 165000.0, lap.TotalPrice)
	assert.Equal(t, "8471", deref(lap.HSNCode))

	kb := bill.Assets[1]
	assert.Equal(t, "keyboard", kb.Category)
	assert.Equal(t, 10, kb.Quantity)
	assert.Equal(t, 450.0, kb.UnitPrice)
	assert.Equal(t, 4500.0, kb.TotalPrice)
}

func TestExtractWithTablesFallsBackToText(t *testing.T) {
	tables := []Table{{{"Description", "Amount"}, {"nan", ""}}, {{"only a header"}}}
	text := "| 1 | Dell Laptop Inspiron | 8471 | 2.00 Pcs | 45000.00 | Pcs | 90000.00 |"

	bill := ExtractWithTables(text, tables)
	require.Len(t, bill.Assets, 1)
	assert.Equal(t, "Dell Laptop Inspiron", bill.Assets[0].Name)
}

func TestMapColumns(t *testing.T) {
	cols := mapColumns([]string{"Item Description", "HSN", "Quantity", "Unit Price", "Total Amount"})
	assert.Equal(t, map[column]int{
		colDescription: 0,
		colHSN:         1,
		colQuantity:    2,
		colRate:        3,
		colAmount:      4,
	}, cols)
}

func TestTableRowQuantityWithUnit(t *testing.T) {
	cols := map[column]int{colDescription: 0, colQuantity: 1, colAmount: 2}
	a, ok := tableRow([]string{"Epson Projector EB-X51", "2.00 Pcs", "Rs. 80,000.00"}, cols)
	require.True(t, ok)
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, 40000.0, a.UnitPrice)
	assert.Equal(t, "projector", a.Category)
	assert.Equal(t, "EB-X51", deref(a.Model))
}
