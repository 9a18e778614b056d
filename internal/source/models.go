package source

import "time"

// EntityType identifies one synchronized source table.
type EntityType string

const (
	EntityItem     EntityType = "item"
	EntityStore    EntityType = "store"
	EntityCategory EntityType = "category"
)

// AllEntityTypes lists entity types in the order a pass processes them.
// Categories first so that item documents denormalize fresh names, though
// correctness does not depend on it (lookups are preloaded per pass).
func AllEntityTypes() []EntityType {
	return []EntityType{EntityCategory, EntityStore, EntityItem}
}

// ItemRow is one item row joined with its owning store's columns.
type ItemRow struct {
	ID          int64
	StoreID     int64
	CategoryID  int64
	Name        string
	Description string
	Price       float64
	Discount    float64
	Veg         any    // enum-like in the source: bool, 0/1, "true"/"false"
	InStock     any    // same
	Status      any    // same
	Variations  string // JSON-encoded sub-structure, opaque here
	Addons      string
	Attributes  string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined from the owning store
	StoreName string
	StoreLat  *float64
	StoreLon  *float64
}

// StoreRow is one store row.
type StoreRow struct {
	ID          int64
	Name        string
	Description string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Active      any
	OpenTime    string // HH:MM:SS
	CloseTime   string // HH:MM:SS
	Rating      string // JSON-encoded breakdown
	Schedule    string // JSON-encoded slots
	GST         string // JSON-encoded tax structure
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryRow is one category row.
type CategoryRow struct {
	ID        int64
	Name      string
	Status    any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lookups holds the side tables loaded once per pass for denormalization.
type Lookups struct {
	CategoryNames map[int64]string
	StoreNames    map[int64]string
}

// CategoryName resolves a category id, empty when unknown.
func (l *Lookups) CategoryName(id int64) string {
	if l == nil {
		return ""
	}
	return l.CategoryNames[id]
}

// StoreName resolves a store id, empty when unknown.
func (l *Lookups) StoreName(id int64) string {
	if l == nil {
		return ""
	}
	return l.StoreNames[id]
}
