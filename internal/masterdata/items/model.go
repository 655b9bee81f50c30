package items

// Item is an item master record. Cat5 is the category consulted for GL
// account mapping.
type Item struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	UOM  string `json:"uom"`
	Cat4 string `json:"cat4"`
	Cat5 string `json:"cat5"`
}
