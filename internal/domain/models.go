// Package domain provides the reference data model shared by the pricing modules.
package domain

import "time"

// OptionColumn names one surcharge column of a price table entry
type OptionColumn string

const (
	OptionIP        OptionColumn = "optionIP" // paint-in / inlet tap
	OptionOP        OptionColumn = "optionOP" // paint-out / outlet tap
	OptionNP        OptionColumn = "optionNP"
	OptionLock      OptionColumn = "optionLock"
	OptionInd       OptionColumn = "optionInd"
	OptionLSW       OptionColumn = "optionLSW"
	OptionExt       OptionColumn = "optionExt"
	OptionDiscSCS13 OptionColumn = "optionDiscSCS13"
	OptionDiscSCS14 OptionColumn = "optionDiscSCS14"
	OptionDiscSCS16 OptionColumn = "optionDiscSCS16"
	OptionDiscNBC   OptionColumn = "optionDiscNBC"
)

// PriceTableEntry is one contracted price row for a valve-type variant.
// BodyPrice covers Quantity units, never a single unit.
type PriceTableEntry struct {
	ValveType       string  `json:"valveType"`
	ValveTypeBase   string  `json:"valveTypeBase"`
	BodyPrice       float64 `json:"bodyPrice"`
	Quantity        float64 `json:"quantity"`
	OptionOP        float64 `json:"optionOP"`
	OptionIP        float64 `json:"optionIP"`
	OptionNP        float64 `json:"optionNP"`
	OptionLock      float64 `json:"optionLock"`
	OptionInd       float64 `json:"optionInd"`
	OptionLSW       float64 `json:"optionLSW"`
	OptionExt       float64 `json:"optionExt"`
	OptionDiscSCS13 float64 `json:"optionDiscSCS13"`
	OptionDiscSCS14 float64 `json:"optionDiscSCS14"`
	OptionDiscSCS16 float64 `json:"optionDiscSCS16"`
	OptionDiscNBC   float64 `json:"optionDiscNBC"`
	Description     string  `json:"description"`
	Spec            string  `json:"spec"`
	Vendor          string  `json:"vendor"`
}

// TableQuantity returns the lot size the body price covers (1 when unset)
func (e PriceTableEntry) TableQuantity() float64 {
	if e.Quantity > 0 {
		return e.Quantity
	}
	return 1
}

// UnitPrice returns the body price for a single unit
func (e PriceTableEntry) UnitPrice() float64 {
	return e.BodyPrice / e.TableQuantity()
}

// Option returns the surcharge amount stored in the given column
func (e PriceTableEntry) Option(col OptionColumn) float64 {
	switch col {
	case OptionIP:
		return e.OptionIP
	case OptionOP:
		return e.OptionOP
	case OptionNP:
		return e.OptionNP
	case OptionLock:
		return e.OptionLock
	case OptionInd:
		return e.OptionInd
	case OptionLSW:
		return e.OptionLSW
	case OptionExt:
		return e.OptionExt
	case OptionDiscSCS13:
		return e.OptionDiscSCS13
	case OptionDiscSCS14:
		return e.OptionDiscSCS14
	case OptionDiscSCS16:
		return e.OptionDiscSCS16
	case OptionDiscNBC:
		return e.OptionDiscNBC
	}
	return 0
}

// QuoteRecord is a vendor-submitted quotation line
type QuoteRecord struct {
	No            int     `json:"no"`
	MaterialNo    string  `json:"materialNo"`
	MaterialCore  string  `json:"materialCore"`
	Description   string  `json:"description"`
	Project       string  `json:"project"`
	Quantity      float64 `json:"quantity"`
	InnerPaint    string  `json:"innerPaint"`
	OuterPaint    string  `json:"outerPaint"`
	Spec          string  `json:"spec"`
	QuotePrice    float64 `json:"quotePrice"`
	UnitPrice     float64 `json:"unitPrice"`
	Weight        float64 `json:"weight"`
	ReviewComment string  `json:"reviewComment"`
}

// OrderRecord is a completed historical purchase.
// Seq and Date are assigned by the loader.
type OrderRecord struct {
	Seq          int       `json:"-"`
	Date         time.Time `json:"-"`
	MaterialNo   string    `json:"materialNo"`
	MaterialCore string    `json:"materialCore"`
	Description  string    `json:"description"`
	Vendor       string    `json:"vendor"`
	OrderDate    string    `json:"orderDate"`
	OrderAmount  float64   `json:"orderAmount"`
	Quantity     float64   `json:"quantity"`
	ValveType    string    `json:"valveType"`
}

// BCOrderRecord is a bronze-casting valve order carrying a purchase requisition
type BCOrderRecord struct {
	Seq         int       `json:"-"`
	Date        time.Time `json:"-"`
	PRNo        string    `json:"prNo"`
	MaterialNo  string    `json:"materialNo"`
	Description string    `json:"description"`
	Vendor      string    `json:"vendor"`
	OrderDate   string    `json:"orderDate"`
	OrderAmount float64   `json:"orderAmount"`
	Quantity    float64   `json:"quantity"`
	ValveType   string    `json:"valveType"`
}

// UnitPrice returns the realized price per unit, 0 when quantity is missing
func (o BCOrderRecord) UnitPrice() float64 {
	if o.Quantity <= 0 {
		return 0
	}
	return o.OrderAmount / o.Quantity
}

// CommodityPoint is one month of average commodity prices per metric ton
type CommodityPoint struct {
	Month         int     `json:"month"`
	MonthLabel    string  `json:"monthLabel"`
	CuPricePerTon float64 `json:"cuPricePerTon"`
	SnPricePerTon float64 `json:"snPricePerTon"`
}

// MaterialValveMap maps a material-core code to a valve-type code
type MaterialValveMap map[string]string

// ValveType resolves a material core, returning "" when unknown
func (m MaterialValveMap) ValveType(materialCore string) string {
	if m == nil {
		return ""
	}
	return m[materialCore]
}
