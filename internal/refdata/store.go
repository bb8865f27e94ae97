// Package refdata loads the immutable reference tables the pricing engine reads.
package refdata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/valveprice/internal/domain"
)

var (
	// ErrMissingTable is returned when a required table cannot be found in the source
	ErrMissingTable = errors.New("reference table missing")
	// ErrMalformedTable is returned when a table cannot be decoded or violates its invariants
	ErrMalformedTable = errors.New("reference table malformed")
)

// Table names, shared by every source
const (
	TablePriceTable       = "price_table"
	TableQuotes           = "quote_sample"
	TableOrders           = "order_history_all"
	TableBCOrders         = "order_history_bc"
	TableMaterialValveMap = "material_valve_map"
	TableLME              = "lme_data"
)

// RequiredTables lists every table a source must provide
var RequiredTables = []string{
	TablePriceTable,
	TableQuotes,
	TableOrders,
	TableBCOrders,
	TableMaterialValveMap,
	TableLME,
}

// MonthsPerYear is the number of commodity points a complete LME table carries
const MonthsPerYear = 12

// Tables holds raw reference rows as read from a source
type Tables struct {
	PriceTable       []domain.PriceTableEntry
	Quotes           []domain.QuoteRecord
	Orders           []domain.OrderRecord
	BCOrders         []domain.BCOrderRecord
	MaterialValveMap domain.MaterialValveMap
	LME              []domain.CommodityPoint
}

// Counts reports the number of rows per table
type Counts struct {
	PriceTable       int `json:"priceTable"`
	Quotes           int `json:"quotes"`
	Orders           int `json:"orders"`
	BCOrders         int `json:"bcOrders"`
	MaterialValveMap int `json:"materialValveMap"`
	LME              int `json:"lme"`
}

// Store is the validated, read-only reference data set.
// Nothing mutates it after NewStore returns; slices handed out must be treated as read-only.
type Store struct {
	priceTable  []domain.PriceTableEntry
	quotes      []domain.QuoteRecord
	quoteByNo   map[int]int
	orders      []domain.OrderRecord
	bcOrders    []domain.BCOrderRecord
	materialMap domain.MaterialValveMap
	lme         []domain.CommodityPoint
	source      string
	loadedAt    time.Time
}

// NewStore validates raw tables and freezes them into a Store.
// Order records get their load sequence number and parsed date here.
func NewStore(t Tables, source string) (*Store, error) {
	priceTable, err := validatePriceTable(t.PriceTable)
	if err != nil {
		return nil, err
	}

	quoteByNo := make(map[int]int, len(t.Quotes))
	for i, q := range t.Quotes {
		if _, dup := quoteByNo[q.No]; dup {
			return nil, malformed(TableQuotes, i, fmt.Sprintf("duplicate quote no %d", q.No))
		}
		quoteByNo[q.No] = i
	}

	orders := make([]domain.OrderRecord, len(t.Orders))
	for i, o := range t.Orders {
		d, err := domain.ParseOrderDate(o.OrderDate)
		if err != nil {
			return nil, malformed(TableOrders, i, err.Error())
		}
		if o.Quantity <= 0 {
			return nil, malformed(TableOrders, i, "quantity must be positive")
		}
		o.Seq = i
		o.Date = d
		orders[i] = o
	}

	bcOrders := make([]domain.BCOrderRecord, len(t.BCOrders))
	for i, o := range t.BCOrders {
		d, err := domain.ParseOrderDate(o.OrderDate)
		if err != nil {
			return nil, malformed(TableBCOrders, i, err.Error())
		}
		if o.Quantity <= 0 {
			return nil, malformed(TableBCOrders, i, "quantity must be positive")
		}
		o.Seq = i
		o.Date = d
		bcOrders[i] = o
	}

	lme, err := validateLME(t.LME)
	if err != nil {
		return nil, err
	}

	materialMap := make(domain.MaterialValveMap, len(t.MaterialValveMap))
	for k, v := range t.MaterialValveMap {
		materialMap[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return &Store{
		priceTable:  priceTable,
		quotes:      append([]domain.QuoteRecord(nil), t.Quotes...),
		quoteByNo:   quoteByNo,
		orders:      orders,
		bcOrders:    bcOrders,
		materialMap: materialMap,
		lme:         lme,
		source:      source,
		loadedAt:    time.Now(),
	}, nil
}

func validatePriceTable(rows []domain.PriceTableEntry) ([]domain.PriceTableEntry, error) {
	out := make([]domain.PriceTableEntry, len(rows))
	for i, e := range rows {
		e.ValveType = strings.TrimSpace(e.ValveType)
		e.ValveTypeBase = strings.TrimSpace(e.ValveTypeBase)
		if e.ValveType == "" {
			return nil, malformed(TablePriceTable, i, "empty valveType")
		}
		if e.ValveTypeBase == "" {
			e.ValveTypeBase = domain.StripVariant(e.ValveType)
		}
		if e.BodyPrice < 0 {
			return nil, malformed(TablePriceTable, i, "negative bodyPrice")
		}
		for _, col := range []domain.OptionColumn{
			domain.OptionIP, domain.OptionOP, domain.OptionNP, domain.OptionLock,
			domain.OptionInd, domain.OptionLSW, domain.OptionExt,
			domain.OptionDiscSCS13, domain.OptionDiscSCS14, domain.OptionDiscSCS16, domain.OptionDiscNBC,
		} {
			if e.Option(col) < 0 {
				return nil, malformed(TablePriceTable, i, fmt.Sprintf("negative %s", col))
			}
		}
		out[i] = e
	}
	return out, nil
}

func validateLME(points []domain.CommodityPoint) ([]domain.CommodityPoint, error) {
	if len(points) != MonthsPerYear {
		return nil, fmt.Errorf("%w: %s: expected %d months, got %d",
			ErrMalformedTable, TableLME, MonthsPerYear, len(points))
	}

	seen := make(map[int]bool, MonthsPerYear)
	for i, p := range points {
		if p.Month < 1 || p.Month > MonthsPerYear {
			return nil, malformed(TableLME, i, fmt.Sprintf("month %d out of range", p.Month))
		}
		if seen[p.Month] {
			return nil, malformed(TableLME, i, fmt.Sprintf("duplicate month %d", p.Month))
		}
		if p.CuPricePerTon <= 0 || p.SnPricePerTon <= 0 {
			return nil, malformed(TableLME, i, "commodity prices must be positive")
		}
		seen[p.Month] = true
	}

	out := append([]domain.CommodityPoint(nil), points...)
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	for i := range out {
		if out[i].MonthLabel == "" {
			out[i].MonthLabel = time.Month(out[i].Month).String()[:3]
		}
	}
	return out, nil
}

func malformed(table string, row int, reason string) error {
	return fmt.Errorf("%w: %s row %d: %s", ErrMalformedTable, table, row, reason)
}

// PriceTable returns the price table rows in load order
func (s *Store) PriceTable() []domain.PriceTableEntry { return s.priceTable }

// Quotes returns all quote lines in load order
func (s *Store) Quotes() []domain.QuoteRecord { return s.quotes }

// Quote finds a quote by its sequence number
func (s *Store) Quote(no int) (domain.QuoteRecord, bool) {
	i, ok := s.quoteByNo[no]
	if !ok {
		return domain.QuoteRecord{}, false
	}
	return s.quotes[i], true
}

// Orders returns the general order history in load order
func (s *Store) Orders() []domain.OrderRecord { return s.orders }

// BCOrders returns the bronze-casting order subset in load order
func (s *Store) BCOrders() []domain.BCOrderRecord { return s.bcOrders }

// MaterialValveMap returns the material-core to valve-type lookup
func (s *Store) MaterialValveMap() domain.MaterialValveMap { return s.materialMap }

// LME returns the twelve commodity points ordered by month
func (s *Store) LME() []domain.CommodityPoint { return s.lme }

// Source names where the data was loaded from
func (s *Store) Source() string { return s.source }

// LoadedAt returns when the store was built
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// Counts returns the row count of every table
func (s *Store) Counts() Counts {
	return Counts{
		PriceTable:       len(s.priceTable),
		Quotes:           len(s.quotes),
		Orders:           len(s.orders),
		BCOrders:         len(s.bcOrders),
		MaterialValveMap: len(s.materialMap),
		LME:              len(s.lme),
	}
}
