package product

// Product maps to the `products` table. Cart rows join against it for live
// snapshots, and order placement copies the fields it needs so later catalog
// edits never alter a placed order.
type Product struct {
	ID             int     `json:"id"`
	VendorID       int     `json:"vendorId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"imageUrl"`
	InventoryCount int     `json:"inventoryCount"`
	Status         string  `json:"status"`
}

// Statuses a catalog entry can carry. Only active products are listed
// publicly; cart joins still resolve archived ones so existing carts render.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)
