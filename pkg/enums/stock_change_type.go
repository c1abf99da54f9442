package enums

// StockChangeType records the direction of a stock mutation in the audit log.
type StockChangeType string

const (
	StockChangeIn  StockChangeType = "in"
	StockChangeOut StockChangeType = "out"
)

var validStockChangeTypes = []StockChangeType{
	StockChangeIn,
	StockChangeOut,
}

// String implements fmt.Stringer.
func (s StockChangeType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockChangeType.
func (s StockChangeType) IsValid() bool {
	for _, candidate := range validStockChangeTypes {
		if candidate == s {
			return true
		}
	}
	return false
}
