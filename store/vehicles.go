package store

import "database/sql"

// Vehicle is a fleet vehicle row. Lat/Lng/CurrentSpeed are nullable: a vehicle
// that has never reported telemetry has no position.
type Vehicle struct {
	ID              int64    `json:"id"`
	VIN             string   `json:"vin"`
	PlateNumber     string   `json:"plate_number"`
	Make            string   `json:"make"`
	Model           string   `json:"model"`
	Status          string   `json:"status"`
	DriverID        *int64   `json:"driver_id"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	FuelLevel       float64  `json:"fuel_level"`
	NormConsumption float64  `json:"norm_consumption"`
	CurrentSpeed    *float64 `json:"current_speed"`
	Mileage         float64  `json:"mileage"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`

	// Joined fields
	DriverName string `json:"driver_name"`
}

const vehicleSelectCols = `v.id, v.vin, v.plate_number, v.make, v.model, v.status, v.driver_id,
	v.lat, v.lng, v.fuel_level, v.norm_consumption, v.current_speed, v.mileage,
	v.created_at, v.updated_at, COALESCE(u.full_name, '')`

const vehicleJoin = `FROM vehicles v
	LEFT JOIN drivers d ON d.id = v.driver_id
	LEFT JOIN users u ON u.id = d.user_id`

func scanVehicles(rows *sql.Rows) ([]Vehicle, error) {
	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.VIN, &v.PlateNumber, &v.Make, &v.Model, &v.Status, &v.DriverID,
			&v.Lat, &v.Lng, &v.FuelLevel, &v.NormConsumption, &v.CurrentSpeed, &v.Mileage,
			&v.CreatedAt, &v.UpdatedAt, &v.DriverName); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (db *DB) ListVehicles() ([]Vehicle, error) {
	rows, err := db.Query(`SELECT ` + vehicleSelectCols + ` ` + vehicleJoin + ` ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVehicles(rows)
}

func (db *DB) ListVehiclesByStatus(status string) ([]Vehicle, error) {
	rows, err := db.Query(`SELECT `+vehicleSelectCols+` `+vehicleJoin+` WHERE v.status = ? ORDER BY v.id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVehicles(rows)
}

func (db *DB) GetVehicle(id int64) (*Vehicle, error) {
	v := &Vehicle{}
	err := db.QueryRow(`SELECT `+vehicleSelectCols+` `+vehicleJoin+` WHERE v.id = ?`, id).
		Scan(&v.ID, &v.VIN, &v.PlateNumber, &v.Make, &v.Model, &v.Status, &v.DriverID,
			&v.Lat, &v.Lng, &v.FuelLevel, &v.NormConsumption, &v.CurrentSpeed, &v.Mileage,
			&v.CreatedAt, &v.UpdatedAt, &v.DriverName)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (db *DB) CreateVehicle(vin, plateNumber, make, model, status string, driverID *int64, fuelLevel, normConsumption float64) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO vehicles (vin, plate_number, make, model, status, driver_id, fuel_level, norm_consumption)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		vin, plateNumber, make, model, status, driverID, fuelLevel, normConsumption)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) UpdateVehicleStatus(id int64, status string) error {
	_, err := db.Exec(`UPDATE vehicles SET status=?, updated_at=datetime('now','localtime') WHERE id=?`, status, id)
	return err
}

func (db *DB) UpdateVehicleDriver(id int64, driverID *int64) error {
	_, err := db.Exec(`UPDATE vehicles SET driver_id=?, updated_at=datetime('now','localtime') WHERE id=?`, driverID, id)
	return err
}

// UpdateVehicleTelemetry writes the last-known dynamic fields. Nil pointers
// leave the stored value untouched, matching the field-level delta merge.
func (db *DB) UpdateVehicleTelemetry(id int64, lat, lng, fuelLevel, speed *float64, status *string) error {
	_, err := db.Exec(`UPDATE vehicles SET
		lat = COALESCE(?, lat),
		lng = COALESCE(?, lng),
		fuel_level = COALESCE(?, fuel_level),
		current_speed = COALESCE(?, current_speed),
		status = COALESCE(?, status),
		updated_at = datetime('now','localtime')
		WHERE id = ?`,
		lat, lng, fuelLevel, speed, status, id)
	return err
}

func (db *DB) UpdateVehicleMileage(id int64, mileage float64) error {
	_, err := db.Exec(`UPDATE vehicles SET mileage=?, updated_at=datetime('now','localtime') WHERE id=?`, mileage, id)
	return err
}

func (db *DB) DeleteVehicle(id int64) error {
	_, err := db.Exec(`DELETE FROM vehicles WHERE id = ?`, id)
	return err
}

func (db *DB) CountVehiclesByStatus() (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM vehicles GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
