// Package testing provides testing utilities and fixtures for the valveprice project.
package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/aristath/valveprice/internal/refdata"
)

// Vendors used by the BC order fixtures
const (
	MainVendor   = "Acme Bronze"
	SecondVendor = "Harbor Casting"
)

// NewLMEFixture returns twelve months of commodity prices rising linearly
// from Cu 10,000 / Sn 20,000 in January to Cu 13,000 / Sn 28,000 in December.
func NewLMEFixture() []domain.CommodityPoint {
	points := make([]domain.CommodityPoint, refdata.MonthsPerYear)
	for i := range points {
		points[i] = domain.CommodityPoint{
			Month:         i + 1,
			CuPricePerTon: 10000 + float64(i)*3000/11,
			SnPricePerTon: 20000 + float64(i)*8000/11,
		}
	}
	return points
}

// NewReferenceTables returns a small but complete reference data set.
//
// Quote expectations under the tiered policy:
//   - 1: recent 125,000, quote 120,000 -> normal
//   - 2: recent 90,000, quote 80,000 -> excellent
//   - 3: history only 40,000, quote 50,000 -> inadequate
//   - 4: unmapped material -> normal (no baseline)
func NewReferenceTables() refdata.Tables {
	return refdata.Tables{
		PriceTable: []domain.PriceTableEntry{
			{ValveType: "VGBASW3A0X", ValveTypeBase: "VGBASW3A0", BodyPrice: 1_000_000, Quantity: 10,
				OptionIP: 5000, OptionOP: 7000, OptionLock: 20000, OptionDiscSCS13: 4000, Vendor: MainVendor},
			{ValveType: "VGCX12", ValveTypeBase: "VGCX1", BodyPrice: 1_200_000, Quantity: 10, Vendor: SecondVendor},
			{ValveType: "VGCX13", ValveTypeBase: "VGCX1", BodyPrice: 9_999_999, Quantity: 1, Vendor: SecondVendor},
		},
		Quotes: []domain.QuoteRecord{
			{No: 1, MaterialNo: "Q-0001", MaterialCore: "C-GLOBE", Description: "GLOBE VALVE 50A I/O-P LOCK", Quantity: 2, QuotePrice: 120000},
			{No: 2, MaterialNo: "Q-0002", MaterialCore: "C-GATE", Description: "GATE VALVE 80A", Quantity: 1, QuotePrice: 80000},
			{No: 3, MaterialNo: "Q-0003", MaterialCore: "C-CHECK", Description: "CHECK VALVE 25A", Quantity: 4, QuotePrice: 50000},
			{No: 4, MaterialNo: "Q-0004", MaterialCore: "C-UNKNOWN", Description: "BUTTERFLY VALVE 100A", Quantity: 1, QuotePrice: 70000},
		},
		Orders: []domain.OrderRecord{
			{MaterialNo: "M-1001", MaterialCore: "C-GLOBE", Description: "GLOBE VALVE 50A I/O-P LOCK", Vendor: MainVendor, OrderDate: "2024-03-15", OrderAmount: 125000, Quantity: 2, ValveType: "VGBASW3A0AT"},
			{MaterialNo: "M-1002", MaterialCore: "C-GLOBE", Description: "GLOBE VALVE 50A", Vendor: SecondVendor, OrderDate: "2024-06-01", OrderAmount: 118000, Quantity: 1, ValveType: "VGBASW3A0AT"},
			{MaterialNo: "M-2001", MaterialCore: "C-GATE", Description: "GATE VALVE 80A", Vendor: SecondVendor, OrderDate: "2024-02-10", OrderAmount: 90000, Quantity: 1, ValveType: "VGCX12"},
			{MaterialNo: "M-3001", MaterialCore: "C-CHECK", Description: "CHECK VALVE 25A", Vendor: MainVendor, OrderDate: "2024-05-20", OrderAmount: 40000, Quantity: 4, ValveType: "VNOTABLE1"},
		},
		BCOrders: newBCOrders(),
		MaterialValveMap: domain.MaterialValveMap{
			"C-GLOBE": "VGBASW3A0AT",
			"C-GATE":  "VGCX12",
			"C-CHECK": "VNOTABLE1",
		},
		LME: NewLMEFixture(),
	}
}

// newBCOrders returns qualifying orders for every month from the main vendor,
// every other month from the second vendor, and two rows the trend filter drops.
func newBCOrders() []domain.BCOrderRecord {
	var out []domain.BCOrderRecord
	for m := 1; m <= 12; m++ {
		out = append(out, domain.BCOrderRecord{
			PRNo: prNo(len(out)), MaterialNo: "B-100", Description: "BC GLOBE VALVE 25A TR",
			Vendor: MainVendor, OrderDate: monthDate(m), OrderAmount: 4 * (1000 + float64(m-1)*30), Quantity: 4,
		})
		if m%2 == 0 {
			out = append(out, domain.BCOrderRecord{
				PRNo: prNo(len(out)), MaterialNo: "B-200", Description: "BC GATE VALVE 40A TR",
				Vendor: SecondVendor, OrderDate: monthDate(m), OrderAmount: 2000, Quantity: 1,
			})
		}
	}
	out = append(out,
		domain.BCOrderRecord{PRNo: prNo(len(out)), Description: "BC GLOBE VALVE LOCK TR", Vendor: MainVendor, OrderDate: monthDate(3), OrderAmount: 99999, Quantity: 1},
		domain.BCOrderRecord{PRNo: prNo(len(out) + 1), Description: "BC GLOBE VALVE 25A", Vendor: MainVendor, OrderDate: monthDate(3), OrderAmount: 99999, Quantity: 1},
	)
	return out
}

func monthDate(m int) string {
	return fmt.Sprintf("2024-%02d-15", m)
}

func prNo(i int) string {
	return fmt.Sprintf("PR-%03d", i)
}

// NewStore builds a validated Store from NewReferenceTables
func NewStore(t *testing.T) *refdata.Store {
	t.Helper()
	store, err := refdata.NewStore(NewReferenceTables(), "fixture")
	if err != nil {
		t.Fatalf("Failed to build fixture store: %v", err)
	}
	return store
}

// WriteJSONDir writes the tables as <table>.json files into dir
func WriteJSONDir(t *testing.T, dir string, tables refdata.Tables) {
	t.Helper()
	docs := map[string]interface{}{
		refdata.TablePriceTable:       tables.PriceTable,
		refdata.TableQuotes:           tables.Quotes,
		refdata.TableOrders:           tables.Orders,
		refdata.TableBCOrders:         tables.BCOrders,
		refdata.TableMaterialValveMap: tables.MaterialValveMap,
		refdata.TableLME:              tables.LME,
	}
	for name, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Failed to encode %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}
