package store

// Maintenance record statuses.
const (
	MaintenanceScheduled = "SCHEDULED"
	MaintenanceDone      = "COMPLETED"
	MaintenanceCancelled = "CANCELLED"
)

// MaintenanceRecord is a scheduled or completed service visit.
type MaintenanceRecord struct {
	ID            int64   `json:"id"`
	VehicleID     int64   `json:"vehicle_id"`
	ScheduledDate string  `json:"scheduled_date"`
	WorkType      string  `json:"work_type"`
	Cost          float64 `json:"cost"`
	Status        string  `json:"status"`
	CompletedDate *string `json:"completed_date"`
	CreatedAt     string  `json:"created_at"`

	// Joined fields
	PlateNumber string `json:"plate_number"`
}

const maintSelectCols = `m.id, m.vehicle_id, m.scheduled_date, m.work_type, m.cost, m.status,
	m.completed_date, m.created_at, COALESCE(v.plate_number, '')`

const maintJoin = `FROM maintenance_records m LEFT JOIN vehicles v ON v.id = m.vehicle_id`

func (db *DB) CreateMaintenanceRecord(m *MaintenanceRecord) error {
	res, err := db.Exec(`INSERT INTO maintenance_records (vehicle_id, scheduled_date, work_type, cost, status)
		VALUES (?, ?, ?, ?, ?)`,
		m.VehicleID, m.ScheduledDate, m.WorkType, m.Cost, m.Status)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (db *DB) GetMaintenanceRecord(id int64) (*MaintenanceRecord, error) {
	m := &MaintenanceRecord{}
	err := db.QueryRow(`SELECT `+maintSelectCols+` `+maintJoin+` WHERE m.id = ?`, id).
		Scan(&m.ID, &m.VehicleID, &m.ScheduledDate, &m.WorkType, &m.Cost, &m.Status,
			&m.CompletedDate, &m.CreatedAt, &m.PlateNumber)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (db *DB) ListMaintenanceRecords(vehicleID int64) ([]MaintenanceRecord, error) {
	query := `SELECT ` + maintSelectCols + ` ` + maintJoin
	var args []interface{}
	if vehicleID > 0 {
		query += ` WHERE m.vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY m.scheduled_date DESC`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []MaintenanceRecord
	for rows.Next() {
		var m MaintenanceRecord
		if err := rows.Scan(&m.ID, &m.VehicleID, &m.ScheduledDate, &m.WorkType, &m.Cost, &m.Status,
			&m.CompletedDate, &m.CreatedAt, &m.PlateNumber); err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

func (db *DB) CompleteMaintenanceRecord(id int64, cost float64) error {
	_, err := db.Exec(`UPDATE maintenance_records SET status=?, cost=?,
		completed_date=datetime('now','localtime') WHERE id=?`, MaintenanceDone, cost, id)
	return err
}

func (db *DB) CancelMaintenanceRecord(id int64) error {
	_, err := db.Exec(`UPDATE maintenance_records SET status=? WHERE id=?`, MaintenanceCancelled, id)
	return err
}
