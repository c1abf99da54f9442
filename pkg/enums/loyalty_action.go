package enums

// LoyaltyAction tags a loyalty ledger entry as a credit or a debit.
type LoyaltyAction string

const (
	LoyaltyActionEarn  LoyaltyAction = "earn"
	LoyaltyActionSpend LoyaltyAction = "spend"
)

var validLoyaltyActions = []LoyaltyAction{
	LoyaltyActionEarn,
	LoyaltyActionSpend,
}

// String implements fmt.Stringer.
func (l LoyaltyAction) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LoyaltyAction.
func (l LoyaltyAction) IsValid() bool {
	for _, candidate := range validLoyaltyActions {
		if candidate == l {
			return true
		}
	}
	return false
}
