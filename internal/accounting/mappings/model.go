// Package mappings resolves an item category to its GL account codes.
package mappings

// AccountSet is the account triple a posting needs for an item.
type AccountSet struct {
	Inventory string `json:"inv"`
	Sales     string `json:"sales"`
	COGS      string `json:"cogs"`
}

// Mapping associates an item category with its accounts.
type Mapping struct {
	Category string `json:"category"`
	Accounts AccountSet
}

// DefaultCategory is the fallback category consulted when an item's own
// category has no mapping row.
const DefaultCategory = "general"

// FallbackAccounts is the hard-coded last resort when even the default
// category is unmapped. The resolver must always produce accounts to post to;
// that availability is traded for silently using a default mapping.
var FallbackAccounts = AccountSet{
	Inventory: "1-03-02-010-000",
	Sales:     "4-01-02-001-000",
	COGS:      "5-01-02-001-000",
}
