package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRowShapes(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		shape    string
		desc     string
		hsn      string
		qty      int
		unit     float64
		total    float64
		category string
	}{
		{
			name:  "hsn before description",
			line:  "| 1 | 8471 | Acer Veriton Desktop | 5 | 38,000.00 | 1,90,000.00 |",
			shape: "indexed-hsn-first", desc: "Acer Veriton Desktop", hsn: "8471",
			qty: 5, unit: 38000, total: 190000, category: "computer",
		},
		{
			name:  "unit column after rate",
			line:  "| 1 | Dell Laptop Inspiron | 8471 | 2.00 Pcs | 45000.00 | Pcs | 90000.00 |",
			shape: "sl-desc-hsn-qty-unit-rate-unit-amount", desc: "Dell Laptop Inspiron", hsn: "8471",
			qty: 2, unit: 45000, total: 90000, category: "laptop",
		},
		{
			name:  "tax rate column",
			line:  "| 1 | HP Printer | 8443 | 2 | 12,000.00 | 18% | 24,000.00 |",
			shape: "sl-desc-hsn-qty-rate-tax-amount", desc: "HP Printer", hsn: "8443",
			qty: 2, unit: 12000, total: 24000, category: "printer",
		},
		{
			name:  "hsn column without unit or tax",
			line:  "| 1 | Dell Laptop Inspiron | 8471 | 2 | 45,000.00 | 90,000.00 |",
			shape: "sl-desc-hsn-qty-rate-amount", desc: "Dell Laptop Inspiron", hsn: "8471",
			qty: 2, unit: 45000, total: 90000, category: "laptop",
		},
		{
			name:  "plain columns",
			line:  "| 3 | Logitech Mouse M90 | 4 Nos | 450.00 | 1,800.00 |",
			shape: "sl-desc-qty-rate-amount", desc: "Logitech Mouse M90",
			qty: 4, unit: 450, total: 1800, category: "mouse",
		},
		{
			name:  "free text",
			line:  "1. HP Laser Printer 1 Nos 15,500.00 15,500.00",
			shape: "free-text-product", desc: "HP Laser Printer",
			qty: 1, unit: 15500, total: 15500, category: "printer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, shape, ok := matchRow(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.shape, shape.name)
			assert.Equal(t, tt.desc, a.Description)
			assert.Equal(t, tt.hsn, deref(a.HSNCode))
			assert.Equal(t, tt.qty, a.Quantity)
			assert.Equal(t, tt.unit, a.UnitPrice)
			assert.Equal(t, tt.total, a.TotalPrice)
			assert.Equal(t, tt.category, a.Category)
		})
	}
}

func TestMatchRowRejectsFreeTextWithoutProduct(t *testing.T) {
	_, _, ok := matchRow("Freight charges 1 500.00 500.00")
	assert.False(t, ok)
}

func TestMatchRowRejectsInconsistentPrices(t *testing.T) {
	_, _, ok := matchRow("| 1 | Dell Laptop | 2 | 500.00 | 90,000.00 |")
	assert.False(t, ok)

	a, shape, ok := matchRow("| 1 | Dell Laptop | 3 | 33,333.33 | 1,00,000.00 |")
	require.True(t, ok)
	assert.Equal(t, "sl-desc-qty-rate-amount", shape.name)
	assert.Equal(t, 3, a.Quantity)
}

func TestExtractAssetsHSNColumnRow(t *testing.T) {
	items := ExtractAssets("| Sl | Description | HSN/SAC | Qty | Rate | Amount |\n| 1 | Dell Laptop Inspiron | 8471 | 2 | 45,000.00 | 90,000.00 |")
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 45000.0, items[0].UnitPrice)
	assert.Equal(t, "8471", deref(items[0].HSNCode))
}

func TestCollectingRowGathersSerialsAndDetails(t *testing.T) {
	text := `| 1 | Computer System Branded-HP | 847150 | 2.00 Pcs | 40,000.00 | Pcs | 80,000.00 |
| CORE i5 12th Gen 8GB RAM 512GB SSD |
| CORE i5 12th Gen 8GB RAM 512GB SSD |
| Part no: 6D7K8PA |
| Warranty: 3 Years Onsite |
| Batch : 4CE212C3F6 |
| Batch : 4CE212C3F7 |`

	assets := ExtractAssets(text)
	require.Len(t, assets, 1)

	a := assets[0]
	assert.Equal(t, "Computer System Branded-HP", a.Name)
	assert.Equal(t, "Computer System Branded-HP\nCORE i5 12th Gen 8GB RAM 512GB SSD", a.Description)
	assert.Equal(t, "4CE212C3F6,4CE212C3F7", deref(a.SerialNumber))
	assert.Equal(t, "6D7K8PA", deref(a.Model))
	assert.Equal(t, "Warranty: 3 Years Onsite", deref(a.WarrantyPeriod))
	assert.Equal(t, "Hp", deref(a.Brand))
	assert.Equal(t, "PC", a.DeviceType)
}

func TestBatchLineWithoutPipes(t *testing.T) {
	text := "| 1 | Dell Laptop Inspiron | 8471 | 2.00 Pcs | 45000.00 | Pcs | 90000.00 |\nBatch : 4CE212C3F6"

	assets := ExtractAssets(text)
	require.Len(t, assets, 1)
	assert.Equal(t, "4CE212C3F6", deref(assets[0].SerialNumber))
}

func TestEndOfTableStopsCollecting(t *testing.T) {
	text := `| 1 | Dell Laptop Inspiron | 8471 | 1.00 Pcs | 45000.00 | Pcs | 45000.00 |
| CGST @ 9% | 4,050.00 |
| Warranty: 1 Year |
| Batch : ZZ9999 |`

	assets := ExtractAssets(text)
	require.Len(t, assets, 1)
	assert.Nil(t, assets[0].WarrantyPeriod)
	assert.Nil(t, assets[0].SerialNumber)
}

func TestCompleteRowDoesNotCollect(t *testing.T) {
	text := "| 1 | Dell Laptop | 1 | 50,000.00 | 50,000.00 |\n| Batch : XYZ123 |"

	assets := ExtractAssets(text)
	require.Len(t, assets, 1)
	assert.Nil(t, assets[0].SerialNumber)
	assert.Equal(t, 50000.0, assets[0].TotalPrice)
}

func TestAssetsKeepDocumentOrder(t *testing.T) {
	text := `| 1 | Dell Monitor E2422H | 852852 | 1.00 Pcs | 9,500.00 | Pcs | 9,500.00 |
| Batch : CN0ABC123 |
| 2 | Dell Laptop Inspiron | 8471 | 2.00 Pcs | 45000.00 | Pcs | 90000.00 |
| 3 | Logitech Mouse M90 | 4 Nos | 450.00 | 1,800.00 |`

	assets := ExtractAssets(text)
	require.Len(t, assets, 3)
	assert.Equal(t, "Dell Monitor E2422H", assets[0].Name)
	assert.Equal(t, "CN0ABC123", deref(assets[0].SerialNumber))
	assert.Equal(t, "Dell Laptop Inspiron", assets[1].Name)
	assert.Nil(t, assets[1].SerialNumber)
	assert.Equal(t, "Logitech Mouse M90", assets[2].Name)
}

func TestFallbackRunsOnlyWithoutRows(t *testing.T) {
	text := "Quotation\nDell Laptop Inspiron - Rs. 45,000.00\nWireless Mouse | 2 | 650.00 | 1,300.00\nGoods once sold"

	assets := ExtractAssets(text)
	require.Len(t, assets, 2)

	assert.Equal(t, "Dell Laptop Inspiron", assets[0].Name)
	assert.Equal(t, "laptop", assets[0].Category)
	assert.Equal(t, 1, assets[0].Quantity)
	assert.Equal(t, 45000.0, assets[0].UnitPrice)
	assert.Equal(t, 45000.0, assets[0].TotalPrice)

	assert.Equal(t, "Wireless Mouse", assets[1].Name)
	assert.Equal(t, "mouse", assets[1].Category)
	assert.Equal(t, 2, assets[1].Quantity)
	assert.Equal(t, 650.0, assets[1].UnitPrice)
	assert.Equal(t, 1300.0, assets[1].TotalPrice)

	withRow := text + "\n| 1 | Dell Laptop | 1 | 50,000.00 | 50,000.00 |"
	assert.Len(t, ExtractAssets(withRow), 1)
}

func TestFallbackSkipsLinesWithoutPrice(t *testing.T) {
	assert.Empty(t, ExtractAssets("Laptop bag included\nPrinter cartridge to follow"))
}

func TestDerivePrices(t *testing.T) {
	unit, total := derivePrices(4, 0, 1800, false, true)
	assert.Equal(t, 450.0, unit)
	assert.Equal(t, 1800.0, total)

	unit, total = derivePrices(3, 200, 0, true, false)
	assert.Equal(t, 200.0, unit)
	assert.Equal(t, 600.0, total)
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 2, parseQuantity("2.00"))
	assert.Equal(t, 1, parseQuantity("0.5"))
	assert.Equal(t, 1, parseQuantity("many"))
	assert.Equal(t, 12, parseQuantity("12"))
}
