package store

// Driver is a driver profile, optionally linked to a user account.
type Driver struct {
	ID            int64  `json:"id"`
	UserID        *int64 `json:"user_id"`
	LicenseNumber string `json:"license_number"`
	Rating        float64 `json:"rating"`
	CreatedAt     string `json:"created_at"`

	// Joined fields
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

const driverSelectCols = `d.id, d.user_id, d.license_number, d.rating, d.created_at,
	COALESCE(u.full_name, ''), COALESCE(u.phone, '')`

const driverJoin = `FROM drivers d LEFT JOIN users u ON u.id = d.user_id`

func (db *DB) CreateDriver(userID *int64, licenseNumber string, rating float64) (int64, error) {
	res, err := db.Exec(`INSERT INTO drivers (user_id, license_number, rating) VALUES (?, ?, ?)`,
		userID, licenseNumber, rating)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) GetDriver(id int64) (*Driver, error) {
	d := &Driver{}
	err := db.QueryRow(`SELECT `+driverSelectCols+` `+driverJoin+` WHERE d.id = ?`, id).
		Scan(&d.ID, &d.UserID, &d.LicenseNumber, &d.Rating, &d.CreatedAt, &d.FullName, &d.Phone)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (db *DB) ListDrivers() ([]Driver, error) {
	rows, err := db.Query(`SELECT ` + driverSelectCols + ` ` + driverJoin + ` ORDER BY d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.LicenseNumber, &d.Rating, &d.CreatedAt, &d.FullName, &d.Phone); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (db *DB) UpdateDriverRating(id int64, rating float64) error {
	_, err := db.Exec(`UPDATE drivers SET rating = ? WHERE id = ?`, rating, id)
	return err
}

func (db *DB) DeleteDriver(id int64) error {
	_, err := db.Exec(`DELETE FROM drivers WHERE id = ?`, id)
	return err
}
