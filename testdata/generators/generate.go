// Command generate produces sample invoice and ledger fixtures for
// manual testing of the CLI and the HTTP API.
//
// Usage:
//
//	go run ./testdata/generators -output testdata/sample -records 25
//
// It writes three files into the output directory: invoice.json,
// ledger.csv and ledger.xlsx, all describing the same purchase order so
// a reconciliation run over them produces a mix of matches and
// discrepancies.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"invoice-reconciliation-service/internal/models"
)

var products = []struct {
	code, name string
	price      float64
}{
	{"WIDGET-A", "Premium widget", 25.50},
	{"WIDGET-B", "Standard widget", 12.75},
	{"BOLT-M8", "Hex bolt M8", 0.45},
	{"GEAR-10", "Spur gear 10T", 8.20},
	{"SHAFT-5", "Drive shaft 5mm", 14.00},
	{"CAP-22", "End cap 22mm", 2.10},
	{"PLATE-XL", "Mounting plate XL", 31.90},
	{"SPRING-C", "Compression spring", 1.15},
}

func main() {
	var (
		outputDir = flag.String("output", "testdata/sample", "directory to write fixtures into")
		records   = flag.Int("records", 20, "number of ledger records to generate")
		seed      = flag.Int64("seed", 42, "random seed, fixed for reproducible fixtures")
		poNumber  = flag.String("po", "PO-1001", "purchase order number shared by all fixtures")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	ledger := buildLedger(rng, *poNumber, *records)
	invoice := buildInvoice(rng, *poNumber, ledger)

	if err := writeInvoiceJSON(filepath.Join(*outputDir, "invoice.json"), invoice); err != nil {
		log.Fatalf("failed to write invoice.json: %v", err)
	}
	if err := writeLedgerCSV(filepath.Join(*outputDir, "ledger.csv"), ledger); err != nil {
		log.Fatalf("failed to write ledger.csv: %v", err)
	}
	if err := writeLedgerXLSX(filepath.Join(*outputDir, "ledger.xlsx"), ledger); err != nil {
		log.Fatalf("failed to write ledger.xlsx: %v", err)
	}

	fmt.Printf("Wrote %d ledger records and %d invoice line items to %s\n",
		len(ledger), len(invoice.LineItems), *outputDir)
}

func buildLedger(rng *rand.Rand, poNumber string, count int) []models.PurchaseOrderRecord {
	ledger := make([]models.PurchaseOrderRecord, 0, count)
	for i := 0; i < count; i++ {
		p := products[i%len(products)]
		qty := int64(rng.Intn(50) + 1)
		day := rng.Intn(28) + 1
		ledger = append(ledger, models.PurchaseOrderRecord{
			PONumber:     poNumber,
			Quantity:     decimal.NewFromInt(qty),
			UnitPrice:    decimal.NewFromFloat(p.price),
			DateRequired: fmt.Sprintf("2024-03-%02d", day),
			ItemCode:     fmt.Sprintf("%s-%02d", p.code, i),
			Description:  p.name,
		})
	}
	return ledger
}

// buildInvoice derives line items from the ledger, perturbing some rows
// so reconciliation produces discrepancies and unmatched items.
func buildInvoice(rng *rand.Rand, poNumber string, ledger []models.PurchaseOrderRecord) *models.InvoiceDocument {
	doc := &models.InvoiceDocument{
		PONumber:    poNumber,
		InvoiceDate: "2024-03-15",
	}

	for i, record := range ledger {
		qty := record.Quantity
		price := record.UnitPrice

		switch i % 5 {
		case 1:
			// Over-delivered quantity
			qty = qty.Add(decimal.NewFromInt(int64(rng.Intn(3) + 1)))
		case 3:
			// Unit price drift
			price = price.Add(decimal.NewFromFloat(0.50))
		}

		doc.LineItems = append(doc.LineItems, models.InvoiceLineItem{
			ProductName:  fmt.Sprintf("%s %02d", record.Description, i),
			Quantity:     models.FlexFromDecimal(qty),
			UnitPrice:    models.FlexFromDecimal(price),
			TotalPrice:   models.FlexFromDecimal(qty.Mul(price)),
			DeliveryDate: record.DateRequired,
		})
	}

	// One invoice-only line with no ledger counterpart.
	doc.LineItems = append(doc.LineItems, models.InvoiceLineItem{
		ProductName: "Expedited shipping surcharge",
		Quantity:    models.FlexFromFloat(1),
		UnitPrice:   models.FlexFromFloat(45),
		TotalPrice:  models.FlexFromFloat(45),
	})

	return doc
}

func writeInvoiceJSON(path string, doc *models.InvoiceDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var ledgerHeader = []string{
	"PurchaseOrderID", "PurchaseQty", "PurchasePrice", "DateRequired", "PurchaseSupplierItem", "PurchaseSupplierDescription",
}

func ledgerRow(record models.PurchaseOrderRecord) []string {
	return []string{
		record.PONumber,
		record.Quantity.String(),
		record.UnitPrice.String(),
		record.DateRequired,
		record.ItemCode,
		record.Description,
	}
}

func writeLedgerCSV(path string, ledger []models.PurchaseOrderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}
	for _, record := range ledger {
		if err := w.Write(ledgerRow(record)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeLedgerXLSX(path string, ledger []models.PurchaseOrderRecord) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for col, name := range ledgerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := wb.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for i, record := range ledger {
		for col, value := range ledgerRow(record) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			// Numeric columns go in as numbers so spreadsheet apps
			// treat them as such.
			if col == 1 || col == 2 {
				n, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return err
				}
				if err := wb.SetCellValue(sheet, cell, n); err != nil {
					return err
				}
				continue
			}
			if err := wb.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return wb.SaveAs(path)
}
