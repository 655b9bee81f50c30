package accounts

// Side is the normal side of an account.
type Side string

const (
	SideDebit  Side = "D"
	SideCredit Side = "C"
)

// Account is a chart-of-accounts entry. Code prefixes encode the report
// classification (1- assets, 2- liabilities, 3- equity, 4-01- revenue,
// 4-02- returns, 5- COGS, 6- opex, 7-01- other income, 7-02- other expense);
// this is a fixed convention, not configurable per account.
type Account struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Side Side   `json:"side"`
}
