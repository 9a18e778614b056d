package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ChangedItems returns item rows created or updated inside the lookback
// window, joined with the owning store's name and coordinates. Ordering is
// newest-first but only completeness within the window matters.
func (db *DB) ChangedItems(ctx context.Context, since time.Time) ([]ItemRow, error) {
	query := db.rebind(`
		SELECT i.id, i.store_id, i.category_id, i.name, i.description,
		       i.price, i.discount, i.veg, i.in_stock, i.status,
		       i.variations, i.addons, i.attributes,
		       i.created_at, i.updated_at,
		       s.name, s.latitude, s.longitude
		FROM items i
		LEFT JOIN stores s ON s.id = i.store_id
		WHERE i.updated_at >= ? OR i.created_at >= ?
		ORDER BY i.updated_at DESC`)

	rows, err := db.sqlDB.QueryContext(ctx, query, since, since)
	if err != nil {
		return nil, fmt.Errorf("query changed items: %w", err)
	}
	defer rows.Close()

	var items []ItemRow
	for rows.Next() {
		var (
			r           ItemRow
			description sql.NullString
			price       sql.NullFloat64
			discount    sql.NullFloat64
			variations  sql.NullString
			addons      sql.NullString
			attributes  sql.NullString
			storeName   sql.NullString
			lat         sql.NullFloat64
			lon         sql.NullFloat64
			createdAt   any
			updatedAt   any
		)
		if err := rows.Scan(
			&r.ID, &r.StoreID, &r.CategoryID, &r.Name, &description,
			&price, &discount, &r.Veg, &r.InStock, &r.Status,
			&variations, &addons, &attributes,
			&createdAt, &updatedAt,
			&storeName, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		if r.CreatedAt, err = parseTimeValue(createdAt); err != nil {
			return nil, fmt.Errorf("item %d created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = parseTimeValue(updatedAt); err != nil {
			return nil, fmt.Errorf("item %d updated_at: %w", r.ID, err)
		}
		r.Description = description.String
		r.Price = price.Float64
		r.Discount = discount.Float64
		r.Variations = variations.String
		r.Addons = addons.String
		r.Attributes = attributes.String
		r.StoreName = storeName.String
		if lat.Valid {
			v := lat.Float64
			r.StoreLat = &v
		}
		if lon.Valid {
			v := lon.Float64
			r.StoreLon = &v
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, nil
}

// ChangedStores returns store rows created or updated inside the lookback window.
func (db *DB) ChangedStores(ctx context.Context, since time.Time) ([]StoreRow, error) {
	query := db.rebind(`
		SELECT id, name, description, address, latitude, longitude, active,
		       open_time, close_time, rating, schedule, gst,
		       created_at, updated_at
		FROM stores
		WHERE updated_at >= ? OR created_at >= ?
		ORDER BY updated_at DESC`)

	rows, err := db.sqlDB.QueryContext(ctx, query, since, since)
	if err != nil {
		return nil, fmt.Errorf("query changed stores: %w", err)
	}
	defer rows.Close()

	var stores []StoreRow
	for rows.Next() {
		var (
			r           StoreRow
			description sql.NullString
			address     sql.NullString
			lat         sql.NullFloat64
			lon         sql.NullFloat64
			openTime    sql.NullString
			closeTime   sql.NullString
			rating      sql.NullString
			schedule    sql.NullString
			gst         sql.NullString
			createdAt   any
			updatedAt   any
		)
		if err := rows.Scan(
			&r.ID, &r.Name, &description, &address, &lat, &lon, &r.Active,
			&openTime, &closeTime, &rating, &schedule, &gst,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		if r.CreatedAt, err = parseTimeValue(createdAt); err != nil {
			return nil, fmt.Errorf("store %d created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = parseTimeValue(updatedAt); err != nil {
			return nil, fmt.Errorf("store %d updated_at: %w", r.ID, err)
		}
		r.Description = description.String
		r.Address = address.String
		if lat.Valid {
			v := lat.Float64
			r.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			r.Longitude = &v
		}
		r.OpenTime = openTime.String
		r.CloseTime = closeTime.String
		r.Rating = rating.String
		r.Schedule = schedule.String
		r.GST = gst.String
		stores = append(stores, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}
	return stores, nil
}

// ChangedCategories returns category rows created or updated inside the
// lookback window.
func (db *DB) ChangedCategories(ctx context.Context, since time.Time) ([]CategoryRow, error) {
	query := db.rebind(`
		SELECT id, name, status, created_at, updated_at
		FROM categories
		WHERE updated_at >= ? OR created_at >= ?
		ORDER BY updated_at DESC`)

	rows, err := db.sqlDB.QueryContext(ctx, query, since, since)
	if err != nil {
		return nil, fmt.Errorf("query changed categories: %w", err)
	}
	defer rows.Close()

	var categories []CategoryRow
	for rows.Next() {
		var r CategoryRow
		var createdAt, updatedAt any
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		if r.CreatedAt, err = parseTimeValue(createdAt); err != nil {
			return nil, fmt.Errorf("category %d created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = parseTimeValue(updatedAt); err != nil {
			return nil, fmt.Errorf("category %d updated_at: %w", r.ID, err)
		}
		categories = append(categories, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// LoadLookups loads the category and store name maps once per pass.
// Categories are resolved through this map rather than a per-row join.
func (db *DB) LoadLookups(ctx context.Context) (*Lookups, error) {
	lookups := &Lookups{
		CategoryNames: make(map[int64]string),
		StoreNames:    make(map[int64]string),
	}

	rows, err := db.sqlDB.QueryContext(ctx, `SELECT id, name FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category lookup: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category lookup: %w", err)
		}
		lookups.CategoryNames[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category lookup: %w", err)
	}

	storeRows, err := db.sqlDB.QueryContext(ctx, `SELECT id, name FROM stores`)
	if err != nil {
		return nil, fmt.Errorf("load store lookup: %w", err)
	}
	defer storeRows.Close()
	for storeRows.Next() {
		var id int64
		var name string
		if err := storeRows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan store lookup: %w", err)
		}
		lookups.StoreNames[id] = name
	}
	if err := storeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store lookup: %w", err)
	}

	return lookups, nil
}
