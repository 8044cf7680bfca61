package query

// PerPage is the fixed page size for catalog views.
const PerPage = 8

type SortKey string

const (
	SortDateAsc    SortKey = "date_asc"
	SortDateDesc   SortKey = "date_desc"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortPopularity SortKey = "pop_desc"
)

func (s SortKey) Valid() bool {
	switch s {
	case SortDateAsc, SortDateDesc, SortPriceAsc, SortPriceDesc, SortPopularity:
		return true
	}
	return false
}

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

func (v ViewMode) Valid() bool {
	return v == ViewGrid || v == ViewList
}

// Params is the full browse parameter set. The zero value is not valid;
// use DefaultParams.
type Params struct {
	Query    string
	Category string
	City     string
	Sort     SortKey
	Page     int
	View     ViewMode
}

func DefaultParams() Params {
	return Params{
		Sort: SortDateAsc,
		Page: 1,
		View: ViewGrid,
	}
}
