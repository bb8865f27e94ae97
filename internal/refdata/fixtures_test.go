package refdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/valveprice/internal/domain"
	"github.com/stretchr/testify/require"
)

func fixtureLME() []domain.CommodityPoint {
	points := make([]domain.CommodityPoint, MonthsPerYear)
	for i := range points {
		m := i + 1
		points[i] = domain.CommodityPoint{
			Month:         m,
			CuPricePerTon: 10000 + float64(i)*3000/11,
			SnPricePerTon: 20000 + float64(i)*8000/11,
		}
	}
	return points
}

func fixtureTables() Tables {
	return Tables{
		PriceTable: []domain.PriceTableEntry{
			{ValveType: "VGBASW3A0A", ValveTypeBase: "VGBASW3A0", BodyPrice: 1_000_000, Quantity: 10, OptionIP: 5000, OptionOP: 7000, OptionLock: 20000},
			{ValveType: "VGBASW3A0B", ValveTypeBase: "VGBASW3A0", BodyPrice: 2_000_000, Quantity: 10},
		},
		Quotes: []domain.QuoteRecord{
			{No: 1, MaterialNo: "M-001", MaterialCore: "C001", Description: "GLOBE VALVE I/O-P LOCK", QuotePrice: 110000},
			{No: 2, MaterialNo: "M-002", MaterialCore: "C002", Description: "GATE VALVE", QuotePrice: 80000},
		},
		Orders: []domain.OrderRecord{
			{MaterialNo: "M-001", Description: "GLOBE VALVE I/O-P LOCK", Vendor: "Acme", OrderDate: "2024-03-15", OrderAmount: 100000, Quantity: 1, ValveType: "VGBASW3A0AT"},
			{MaterialNo: "M-009", Description: "GLOBE VALVE", Vendor: "Bronze Works", OrderDate: "2024-05", OrderAmount: 95000, Quantity: 1, ValveType: "VGBASW3A0AX"},
		},
		BCOrders: []domain.BCOrderRecord{
			{PRNo: "PR-1", MaterialNo: "B-1", Description: "BC VALVE TR", Vendor: "Acme", OrderDate: "2024-01-10", OrderAmount: 4000, Quantity: 4},
		},
		MaterialValveMap: domain.MaterialValveMap{"C001": "VGBASW3A0AT"},
		LME:              fixtureLME(),
	}
}

func writeJSONTables(t *testing.T, dir string, tables Tables) {
	t.Helper()
	docs := map[string]interface{}{
		TablePriceTable:       tables.PriceTable,
		TableQuotes:           tables.Quotes,
		TableOrders:           tables.Orders,
		TableBCOrders:         tables.BCOrders,
		TableMaterialValveMap: tables.MaterialValveMap,
		TableLME:              tables.LME,
	}
	for name, doc := range docs {
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
	}
}

// jsonDocs renders every table as the bytes a JSON source would fetch
func jsonDocs(t *testing.T, tables Tables) map[string][]byte {
	t.Helper()
	dir := t.TempDir()
	writeJSONTables(t, dir, tables)
	out := make(map[string][]byte, len(RequiredTables))
	for _, name := range RequiredTables {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		require.NoError(t, err)
		out[name] = data
	}
	return out
}

type sheet struct {
	header []string
	rows   [][]interface{}
}

// fixtureSheets renders the tables as header+rows, the shape of workbook and SQL tables
func fixtureSheets(tables Tables) map[string]sheet {
	out := map[string]sheet{}

	price := sheet{header: []string{"valveType", "valveTypeBase", "bodyPrice", "quantity", "optionIP", "optionOP", "optionLock", "description"}}
	for _, e := range tables.PriceTable {
		price.rows = append(price.rows, []interface{}{e.ValveType, e.ValveTypeBase, e.BodyPrice, e.Quantity, e.OptionIP, e.OptionOP, e.OptionLock, e.Description})
	}
	out[TablePriceTable] = price

	quotes := sheet{header: []string{"no", "materialNo", "materialCore", "description", "innerPaint", "outerPaint", "spec", "quotePrice"}}
	for _, q := range tables.Quotes {
		quotes.rows = append(quotes.rows, []interface{}{q.No, q.MaterialNo, q.MaterialCore, q.Description, q.InnerPaint, q.OuterPaint, q.Spec, q.QuotePrice})
	}
	out[TableQuotes] = quotes

	orders := sheet{header: []string{"materialNo", "materialCore", "description", "vendor", "orderDate", "orderAmount", "quantity", "valveType"}}
	for _, o := range tables.Orders {
		orders.rows = append(orders.rows, []interface{}{o.MaterialNo, o.MaterialCore, o.Description, o.Vendor, o.OrderDate, o.OrderAmount, o.Quantity, o.ValveType})
	}
	out[TableOrders] = orders

	bc := sheet{header: []string{"prNo", "materialNo", "description", "vendor", "orderDate", "orderAmount", "quantity", "valveType"}}
	for _, o := range tables.BCOrders {
		bc.rows = append(bc.rows, []interface{}{o.PRNo, o.MaterialNo, o.Description, o.Vendor, o.OrderDate, o.OrderAmount, o.Quantity, o.ValveType})
	}
	out[TableBCOrders] = bc

	mapping := sheet{header: []string{"materialCore", "valveType"}}
	for k, v := range tables.MaterialValveMap {
		mapping.rows = append(mapping.rows, []interface{}{k, v})
	}
	out[TableMaterialValveMap] = mapping

	lme := sheet{header: []string{"month", "monthLabel", "cuPricePerTon", "snPricePerTon"}}
	for _, p := range tables.LME {
		lme.rows = append(lme.rows, []interface{}{p.Month, p.MonthLabel, p.CuPricePerTon, p.SnPricePerTon})
	}
	out[TableLME] = lme

	return out
}
