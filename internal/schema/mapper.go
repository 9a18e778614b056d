package schema

import (
	"strconv"
	"time"

	"github.com/DreamCats/searchsync/internal/source"
)

// Document is one index document, keyed by the stringified source primary
// key. Heterogeneous per-row JSON forbids a rigid struct.
type Document map[string]any

// VectorField is the dense vector field name shared by every index; each
// index's mapping fixes its dimension at creation time.
const VectorField = "combined_text_vector"

// CombinedTextField carries the deterministic embedding input.
const CombinedTextField = "combined_text"

// DocID stringifies a source primary key. Document identity equals row
// identity; that equality is what makes repeated upserts idempotent.
func DocID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// MapItem translates one joined item row into its index document.
func MapItem(r source.ItemRow, lookups *source.Lookups) Document {
	categoryName := lookups.CategoryName(r.CategoryID)
	storeName := r.StoreName
	if storeName == "" {
		storeName = lookups.StoreName(r.StoreID)
	}

	doc := Document{
		"id":            DocID(r.ID),
		"store_id":      DocID(r.StoreID),
		"category_id":   DocID(r.CategoryID),
		"name":          r.Name,
		"description":   r.Description,
		"price":         r.Price,
		"discount":      r.Discount,
		"veg":           BoolInt(r.Veg),
		"in_stock":      BoolInt(r.InStock),
		"status":        BoolInt(r.Status),
		"variations":    JSONText(r.Variations),
		"addons":        JSONText(r.Addons),
		"attributes":    JSONText(r.Attributes),
		"category_name": categoryName,
		"store_name":    storeName,
		"created_at":    formatTime(r.CreatedAt),
		"updated_at":    formatTime(r.UpdatedAt),
	}
	if geo := GeoPoint(r.StoreLat, r.StoreLon); geo != nil {
		doc["store_location"] = geo
	}
	doc[CombinedTextField] = CombinedText(r.Name, r.Description, categoryName, storeName)
	return doc
}

// MapStore translates one store row into its index document.
func MapStore(r source.StoreRow) Document {
	doc := Document{
		"id":          DocID(r.ID),
		"name":        r.Name,
		"description": r.Description,
		"address":     r.Address,
		"active":      BoolInt(r.Active),
		"rating":      JSONText(r.Rating),
		"schedule":    JSONText(r.Schedule),
		"gst":         JSONText(r.GST),
		"created_at":  formatTime(r.CreatedAt),
		"updated_at":  formatTime(r.UpdatedAt),
	}
	if geo := GeoPoint(r.Latitude, r.Longitude); geo != nil {
		doc["location"] = geo
	}
	if sec, ok := SecondsOfDay(r.OpenTime); ok {
		doc["open_time"] = sec
	}
	if sec, ok := SecondsOfDay(r.CloseTime); ok {
		doc["close_time"] = sec
	}
	doc[CombinedTextField] = CombinedText(r.Name, r.Description, r.Address)
	return doc
}

// MapCategory translates one category row into its index document.
func MapCategory(r source.CategoryRow) Document {
	doc := Document{
		"id":         DocID(r.ID),
		"name":       r.Name,
		"status":     BoolInt(r.Status),
		"created_at": formatTime(r.CreatedAt),
		"updated_at": formatTime(r.UpdatedAt),
	}
	doc[CombinedTextField] = CombinedText(r.Name)
	return doc
}

// ID returns the document key, empty when the mapper never set one.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// CombinedText returns the embedding input for this document.
func (d Document) CombinedText() string {
	text, _ := d[CombinedTextField].(string)
	return text
}

// SetVector attaches the dense vector produced for the combined text.
func (d Document) SetVector(vec []float32) {
	d[VectorField] = vec
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
