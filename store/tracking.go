package store

import "fmt"

// TrackingPoint is a single telemetry sample on a vehicle's route.
type TrackingPoint struct {
	ID         int64    `json:"id"`
	VehicleID  int64    `json:"vehicle_id"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Speed      *float64 `json:"speed"`
	FuelLevel  *float64 `json:"fuel_level"`
	Heading    *float64 `json:"heading"`
	RecordedAt string   `json:"recorded_at"`
}

func (db *DB) InsertTrackingPoint(p *TrackingPoint) error {
	res, err := db.Exec(`INSERT INTO tracking_points (vehicle_id, lat, lng, speed, fuel_level, heading) VALUES (?, ?, ?, ?, ?, ?)`,
		p.VehicleID, p.Lat, p.Lng, p.Speed, p.FuelLevel, p.Heading)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// ListTrackingPoints returns the most recent points for a vehicle, oldest
// first, so a polyline can be drawn in order.
func (db *DB) ListTrackingPoints(vehicleID int64, limit int) ([]TrackingPoint, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT id, vehicle_id, lat, lng, speed, fuel_level, heading, recorded_at
		FROM (SELECT * FROM tracking_points WHERE vehicle_id = ? ORDER BY recorded_at DESC, id DESC LIMIT ?)
		ORDER BY recorded_at, id`, vehicleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []TrackingPoint
	for rows.Next() {
		var p TrackingPoint
		if err := rows.Scan(&p.ID, &p.VehicleID, &p.Lat, &p.Lng, &p.Speed, &p.FuelLevel, &p.Heading, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// PruneTrackingPoints deletes samples older than the given number of days.
func (db *DB) PruneTrackingPoints(days int) (int64, error) {
	res, err := db.Exec(`DELETE FROM tracking_points WHERE recorded_at < datetime('now','localtime', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
