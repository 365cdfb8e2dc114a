package store

// FuelLog is a refuelling record entered by a dispatcher or driver.
type FuelLog struct {
	ID        int64   `json:"id"`
	VehicleID int64   `json:"vehicle_id"`
	LoggedAt  string  `json:"logged_at"`
	Liters    float64 `json:"liters"`
	Cost      float64 `json:"cost"`
	Mileage   float64 `json:"mileage"`
	Location  string  `json:"location"`
}

// FuelAnalytics compares actual consumption against the vehicle's norm over a
// window of fuel logs.
type FuelAnalytics struct {
	VehicleID       int64   `json:"vehicle_id"`
	PlateNumber     string  `json:"plate_number"`
	TotalLiters     float64 `json:"total_liters"`
	TotalCost       float64 `json:"total_cost"`
	DistanceKm      float64 `json:"distance_km"`
	ActualPer100    float64 `json:"actual_per_100"`
	NormPer100      float64 `json:"norm_per_100"`
	DeviationPct    float64 `json:"deviation_pct"`
	Verdict         string  `json:"verdict"`
	CurrentFuel     float64 `json:"current_fuel"`
}

// Consumption verdicts.
const (
	FuelNormal   = "NORMAL"
	FuelWarning  = "WARNING"
	FuelCritical = "CRITICAL"
)

func (db *DB) InsertFuelLog(l *FuelLog) error {
	res, err := db.Exec(`INSERT INTO fuel_logs (vehicle_id, liters, cost, mileage, location) VALUES (?, ?, ?, ?, ?)`,
		l.VehicleID, l.Liters, l.Cost, l.Mileage, l.Location)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

func (db *DB) ListFuelLogs(vehicleID int64) ([]FuelLog, error) {
	rows, err := db.Query(`SELECT id, vehicle_id, logged_at, liters, cost, mileage, location
		FROM fuel_logs WHERE vehicle_id = ? ORDER BY logged_at DESC`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []FuelLog
	for rows.Next() {
		var l FuelLog
		if err := rows.Scan(&l.ID, &l.VehicleID, &l.LoggedAt, &l.Liters, &l.Cost, &l.Mileage, &l.Location); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetFuelAnalytics summarises consumption per vehicle. Actual liters/100km is
// derived from the mileage span recorded on the fuel logs; vehicles with fewer
// than two logs get a zero actual and a NORMAL verdict.
func (db *DB) GetFuelAnalytics() ([]FuelAnalytics, error) {
	rows, err := db.Query(`SELECT v.id, v.plate_number, v.norm_consumption, v.fuel_level,
		COALESCE(SUM(f.liters), 0), COALESCE(SUM(f.cost), 0),
		COALESCE(MAX(f.mileage) - MIN(f.mileage), 0), COUNT(f.id)
		FROM vehicles v
		LEFT JOIN fuel_logs f ON f.vehicle_id = v.id
		GROUP BY v.id ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuelAnalytics
	for rows.Next() {
		var a FuelAnalytics
		var logCount int
		if err := rows.Scan(&a.VehicleID, &a.PlateNumber, &a.NormPer100, &a.CurrentFuel,
			&a.TotalLiters, &a.TotalCost, &a.DistanceKm, &logCount); err != nil {
			return nil, err
		}
		if logCount >= 2 && a.DistanceKm > 0 {
			a.ActualPer100 = a.TotalLiters / a.DistanceKm * 100
		}
		if a.NormPer100 > 0 && a.ActualPer100 > 0 {
			a.DeviationPct = (a.ActualPer100 - a.NormPer100) / a.NormPer100 * 100
		}
		switch {
		case a.DeviationPct > 20:
			a.Verdict = FuelCritical
		case a.DeviationPct > 10:
			a.Verdict = FuelWarning
		default:
			a.Verdict = FuelNormal
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
