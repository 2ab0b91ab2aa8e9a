package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

const (
	assetsSheet = "Assets"
	billsSheet  = "Bills"
)

var (
	assetHeaders = []string{
		"Asset ID", "Name", "Category", "Device Type", "Brand", "Model", "Serial Number",
		"Unit Price", "Warranty", "Status", "Bill Number", "Vendor", "Bill Date",
	}
	billHeaders = []string{
		"Bill Number", "Bill Date", "Due Date", "Vendor", "GSTIN", "Phone", "Email",
		"Total Amount", "Tax Amount", "Discount", "Warranty", "Assets",
	}
)

// Service produces the asset register workbook.
type Service struct {
	assetsRepo repository.AssetRepository
	billsRepo  repository.BillRepository
	logger     *slog.Logger
}

func NewService(assets repository.AssetRepository, bills repository.BillRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{assetsRepo: assets, billsRepo: bills, logger: logger}
}

// ExportAssetsXLSX returns the register as XLSX bytes: one row per unit on
// the Assets sheet and one row per bill on the Bills sheet.
func (s *Service) ExportAssetsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	units, err := s.assetsRepo.ListWithBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	bills, err := s.billsRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", assetsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(billsSheet); err != nil {
		return nil, err
	}

	writeRow(f, assetsSheet, 1, toAny(assetHeaders))
	for i, a := range units {
		writeRow(f, assetsSheet, i+2, []any{
			a.AssetID, a.Name, a.Category, a.DeviceType, str(a.Brand), str(a.Model), str(a.SerialNumber),
			a.UnitPrice, str(a.WarrantyPeriod), a.Status, str(a.BillNumber), str(a.VendorName), str(a.BillDate),
		})
	}

	perBill := make(map[string]int, len(bills))
	for _, a := range units {
		perBill[a.BillID.String()]++
	}
	writeRow(f, billsSheet, 1, toAny(billHeaders))
	for i, b := range bills {
		writeRow(f, billsSheet, i+2, []any{
			str(b.BillNumber), str(b.BillDate), str(b.DueDate), str(b.VendorName), str(b.VendorGSTIN),
			str(b.VendorPhone), str(b.VendorEmail), b.TotalAmount, b.TaxAmount, b.Discount,
			truncate(str(b.WarrantyInfo), 140), perBill[b.ID.String()],
		})
	}

	_ = f.SetColWidth(assetsSheet, "A", "A", 12) // asset id
	_ = f.SetColWidth(assetsSheet, "B", "B", 40) // name
	_ = f.SetColWidth(assetsSheet, "C", "G", 16)
	_ = f.SetColWidth(assetsSheet, "L", "L", 32) // vendor
	_ = f.SetColWidth(billsSheet, "A", "C", 16)
	_ = f.SetColWidth(billsSheet, "D", "D", 32) // vendor
	_ = f.SetPanes(assetsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"assets", len(units),
		"bills", len(bills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile exports into dir and returns the workbook path.
func (s *Service) WriteFile(ctx context.Context, dir string) (string, error) {
	b, err := s.ExportAssetsXLSX(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("asset-register-%s.xlsx", time.Now().UTC().Format("20060102-150405")))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
