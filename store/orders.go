package store

import "database/sql"

// Order mirrors a customer delivery order.
type Order struct {
	ID              int64    `json:"id"`
	UUID            string   `json:"uuid"`
	CustomerID      int64    `json:"customer_id"`
	CustomerName    string   `json:"customer_name"`
	PickupAddress   string   `json:"pickup_address"`
	DeliveryAddress string   `json:"delivery_address"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DeliveryLat     *float64 `json:"delivery_lat"`
	DeliveryLng     *float64 `json:"delivery_lng"`
	Status          string   `json:"status"`
	VehicleID       *int64   `json:"vehicle_id"`
	Weight          float64  `json:"weight"`
	Volume          float64  `json:"volume"`
	Dimensions      string   `json:"dimensions"`
	DistanceKm      float64  `json:"distance_km"`
	Price           float64  `json:"price"`
	DeliveryDate    *string  `json:"delivery_date"`
	CompletedAt     *string  `json:"completed_at"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`

	// Joined fields
	VehiclePlate string `json:"vehicle_plate"`
	DriverName   string `json:"driver_name"`
}

// OrderHistory records a status transition.
type OrderHistory struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

const orderSelectCols = `o.id, o.uuid, o.customer_id, o.customer_name, o.pickup_address, o.delivery_address,
	o.pickup_lat, o.pickup_lng, o.delivery_lat, o.delivery_lng,
	o.status, o.vehicle_id, o.weight, o.volume, o.dimensions, o.distance_km, o.price,
	o.delivery_date, o.completed_at, o.created_at, o.updated_at,
	COALESCE(v.plate_number, ''), COALESCE(u.full_name, '')`

const orderJoin = `FROM orders o
	LEFT JOIN vehicles v ON v.id = o.vehicle_id
	LEFT JOIN drivers d ON d.id = v.driver_id
	LEFT JOIN users u ON u.id = d.user_id`

func scanOrders(rows *sql.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UUID, &o.CustomerID, &o.CustomerName, &o.PickupAddress, &o.DeliveryAddress,
			&o.PickupLat, &o.PickupLng, &o.DeliveryLat, &o.DeliveryLng,
			&o.Status, &o.VehicleID, &o.Weight, &o.Volume, &o.Dimensions, &o.DistanceKm, &o.Price,
			&o.DeliveryDate, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt,
			&o.VehiclePlate, &o.DriverName); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// OrderFilter narrows ListOrders. Zero values mean "no filter".
type OrderFilter struct {
	Status     string
	CustomerID int64
	VehicleID  int64
	Limit      int
}

func (db *DB) ListOrders(f OrderFilter) ([]Order, error) {
	query := `SELECT ` + orderSelectCols + ` ` + orderJoin + ` WHERE 1=1`
	var args []interface{}
	if f.Status != "" {
		query += ` AND o.status = ?`
		args = append(args, f.Status)
	}
	if f.CustomerID > 0 {
		query += ` AND o.customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.VehicleID > 0 {
		query += ` AND o.vehicle_id = ?`
		args = append(args, f.VehicleID)
	}
	query += ` ORDER BY o.created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (db *DB) GetOrder(id int64) (*Order, error) {
	o := &Order{}
	err := db.QueryRow(`SELECT `+orderSelectCols+` `+orderJoin+` WHERE o.id = ?`, id).
		Scan(&o.ID, &o.UUID, &o.CustomerID, &o.CustomerName, &o.PickupAddress, &o.DeliveryAddress,
			&o.PickupLat, &o.PickupLng, &o.DeliveryLat, &o.DeliveryLng,
			&o.Status, &o.VehicleID, &o.Weight, &o.Volume, &o.Dimensions, &o.DistanceKm, &o.Price,
			&o.DeliveryDate, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt,
			&o.VehiclePlate, &o.DriverName)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (db *DB) GetOrderByUUID(uuid string) (*Order, error) {
	o := &Order{}
	err := db.QueryRow(`SELECT `+orderSelectCols+` `+orderJoin+` WHERE o.uuid = ?`, uuid).
		Scan(&o.ID, &o.UUID, &o.CustomerID, &o.CustomerName, &o.PickupAddress, &o.DeliveryAddress,
			&o.PickupLat, &o.PickupLng, &o.DeliveryLat, &o.DeliveryLng,
			&o.Status, &o.VehicleID, &o.Weight, &o.Volume, &o.Dimensions, &o.DistanceKm, &o.Price,
			&o.DeliveryDate, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt,
			&o.VehiclePlate, &o.DriverName)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (db *DB) CreateOrder(o *Order) error {
	res, err := db.Exec(`
		INSERT INTO orders (uuid, customer_id, customer_name, pickup_address, delivery_address,
			pickup_lat, pickup_lng, delivery_lat, delivery_lng,
			status, weight, volume, dimensions, distance_km, price, delivery_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UUID, o.CustomerID, o.CustomerName, o.PickupAddress, o.DeliveryAddress,
		o.PickupLat, o.PickupLng, o.DeliveryLat, o.DeliveryLng,
		o.Status, o.Weight, o.Volume, o.Dimensions, o.DistanceKm, o.Price, o.DeliveryDate)
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

func (db *DB) UpdateOrderStatus(id int64, newStatus string) error {
	_, err := db.Exec(`UPDATE orders SET status=?, updated_at=datetime('now','localtime') WHERE id=?`, newStatus, id)
	return err
}

func (db *DB) MarkOrderCompleted(id int64) error {
	_, err := db.Exec(`UPDATE orders SET status=?, completed_at=datetime('now','localtime'),
		updated_at=datetime('now','localtime') WHERE id=?`, "COMPLETED", id)
	return err
}

// AssignOrderVehicle sets the vehicle and moves the order to IN_PROGRESS in one
// transaction; the vehicle goes to IN_PROGRESS with it. Either both rows change
// or neither does.
func (db *DB) AssignOrderVehicle(orderID, vehicleID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE orders SET vehicle_id=?, status='IN_PROGRESS',
		updated_at=datetime('now','localtime') WHERE id=?`, vehicleID, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE vehicles SET status='IN_PROGRESS',
		updated_at=datetime('now','localtime') WHERE id=?`, vehicleID); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) InsertOrderHistory(orderID int64, oldStatus, newStatus, detail string) error {
	_, err := db.Exec(`INSERT INTO order_history (order_id, old_status, new_status, detail) VALUES (?, ?, ?, ?)`,
		orderID, oldStatus, newStatus, detail)
	return err
}

func (db *DB) ListOrderHistory(orderID int64) ([]OrderHistory, error) {
	rows, err := db.Query(`SELECT id, order_id, old_status, new_status, detail, created_at FROM order_history WHERE order_id = ? ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []OrderHistory
	for rows.Next() {
		var h OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.Detail, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// DashboardStats is the aggregate shown on the dashboard landing page.
type DashboardStats struct {
	ActiveVehicles int     `json:"active_vehicles"`
	TotalVehicles  int     `json:"total_vehicles"`
	ActiveOrders   int     `json:"active_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	IssuesCount    int     `json:"issues_count"`
}

func (db *DB) GetDashboardStats() (*DashboardStats, error) {
	s := &DashboardStats{}
	err := db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM vehicles WHERE status IN ('ACTIVE','IN_PROGRESS')),
		(SELECT COUNT(*) FROM vehicles),
		(SELECT COUNT(*) FROM orders WHERE status IN ('NEW','IN_PROGRESS')),
		(SELECT COALESCE(SUM(price), 0) FROM orders WHERE status = 'COMPLETED'),
		(SELECT COUNT(*) FROM vehicles WHERE status IN ('SOS','MAINTENANCE'))`).
		Scan(&s.ActiveVehicles, &s.TotalVehicles, &s.ActiveOrders, &s.TotalRevenue, &s.IssuesCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}
