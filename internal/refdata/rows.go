package refdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/valveprice/internal/domain"
)

// rowSet is a header plus string cells, the common shape of sheet and SQL tables
type rowSet struct {
	table  string
	cols   map[string]int
	values [][]string
}

func newRowSet(table string, header []string, values [][]string) *rowSet {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return &rowSet{table: table, cols: cols, values: values}
}

// row reads typed cells from one record and keeps the first conversion error
type row struct {
	set   *rowSet
	index int
	err   error
}

func (r *row) cell(col string) string {
	i, ok := r.set.cols[strings.ToLower(col)]
	if !ok {
		return ""
	}
	cells := r.set.values[r.index]
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func (r *row) str(col string) string {
	return r.cell(col)
}

func (r *row) num(col string) float64 {
	raw := strings.ReplaceAll(r.cell(col), ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && r.err == nil {
		r.err = malformed(r.set.table, r.index, fmt.Sprintf("column %s: %q is not a number", col, raw))
	}
	return v
}

func (r *row) integer(col string) int {
	return int(r.num(col))
}

// each visits every record, stopping on the first conversion error
func (s *rowSet) each(fn func(r *row)) error {
	for i := range s.values {
		r := &row{set: s, index: i}
		fn(r)
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

func (s *rowSet) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := s.cols[strings.ToLower(c)]; !ok {
			return fmt.Errorf("%w: %s: missing column %s", ErrMalformedTable, s.table, c)
		}
	}
	return nil
}

// tablesFromRows converts row sets, keyed by table name, into typed tables
func tablesFromRows(sets map[string]*rowSet) (*Tables, error) {
	for _, table := range RequiredTables {
		if sets[table] == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, table)
		}
	}

	var t Tables
	var err error

	if err = sets[TablePriceTable].require("valveType", "bodyPrice"); err != nil {
		return nil, err
	}
	err = sets[TablePriceTable].each(func(r *row) {
		t.PriceTable = append(t.PriceTable, domain.PriceTableEntry{
			ValveType:       r.str("valveType"),
			ValveTypeBase:   r.str("valveTypeBase"),
			BodyPrice:       r.num("bodyPrice"),
			Quantity:        r.num("quantity"),
			OptionOP:        r.num("optionOP"),
			OptionIP:        r.num("optionIP"),
			OptionNP:        r.num("optionNP"),
			OptionLock:      r.num("optionLock"),
			OptionInd:       r.num("optionInd"),
			OptionLSW:       r.num("optionLSW"),
			OptionExt:       r.num("optionExt"),
			OptionDiscSCS13: r.num("optionDiscSCS13"),
			OptionDiscSCS14: r.num("optionDiscSCS14"),
			OptionDiscSCS16: r.num("optionDiscSCS16"),
			OptionDiscNBC:   r.num("optionDiscNBC"),
			Description:     r.str("description"),
			Spec:            r.str("spec"),
			Vendor:          r.str("vendor"),
		})
	})
	if err != nil {
		return nil, err
	}

	if err = sets[TableQuotes].require("no", "quotePrice"); err != nil {
		return nil, err
	}
	err = sets[TableQuotes].each(func(r *row) {
		t.Quotes = append(t.Quotes, domain.QuoteRecord{
			No:            r.integer("no"),
			MaterialNo:    r.str("materialNo"),
			MaterialCore:  r.str("materialCore"),
			Description:   r.str("description"),
			Project:       r.str("project"),
			Quantity:      r.num("quantity"),
			InnerPaint:    r.str("innerPaint"),
			OuterPaint:    r.str("outerPaint"),
			Spec:          r.str("spec"),
			QuotePrice:    r.num("quotePrice"),
			UnitPrice:     r.num("unitPrice"),
			Weight:        r.num("weight"),
			ReviewComment: r.str("reviewComment"),
		})
	})
	if err != nil {
		return nil, err
	}

	if err = sets[TableOrders].require("valveType", "orderDate", "orderAmount"); err != nil {
		return nil, err
	}
	err = sets[TableOrders].each(func(r *row) {
		t.Orders = append(t.Orders, domain.OrderRecord{
			MaterialNo:   r.str("materialNo"),
			MaterialCore: r.str("materialCore"),
			Description:  r.str("description"),
			Vendor:       r.str("vendor"),
			OrderDate:    r.str("orderDate"),
			OrderAmount:  r.num("orderAmount"),
			Quantity:     r.num("quantity"),
			ValveType:    r.str("valveType"),
		})
	})
	if err != nil {
		return nil, err
	}

	if err = sets[TableBCOrders].require("orderDate", "orderAmount", "quantity"); err != nil {
		return nil, err
	}
	err = sets[TableBCOrders].each(func(r *row) {
		t.BCOrders = append(t.BCOrders, domain.BCOrderRecord{
			PRNo:        r.str("prNo"),
			MaterialNo:  r.str("materialNo"),
			Description: r.str("description"),
			Vendor:      r.str("vendor"),
			OrderDate:   r.str("orderDate"),
			OrderAmount: r.num("orderAmount"),
			Quantity:    r.num("quantity"),
			ValveType:   r.str("valveType"),
		})
	})
	if err != nil {
		return nil, err
	}

	if err = sets[TableMaterialValveMap].require("materialCore", "valveType"); err != nil {
		return nil, err
	}
	t.MaterialValveMap = make(domain.MaterialValveMap)
	err = sets[TableMaterialValveMap].each(func(r *row) {
		if core := r.str("materialCore"); core != "" {
			t.MaterialValveMap[core] = r.str("valveType")
		}
	})
	if err != nil {
		return nil, err
	}

	if err = sets[TableLME].require("month", "cuPricePerTon", "snPricePerTon"); err != nil {
		return nil, err
	}
	err = sets[TableLME].each(func(r *row) {
		t.LME = append(t.LME, domain.CommodityPoint{
			Month:         r.integer("month"),
			MonthLabel:    r.str("monthLabel"),
			CuPricePerTon: r.num("cuPricePerTon"),
			SnPricePerTon: r.num("snPricePerTon"),
		})
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}
