package store

import "time"

// User roles.
const (
	RoleAdmin      = "ADMIN"
	RoleDispatcher = "DISPATCHER"
	RoleDriver     = "DRIVER"
	RoleClient     = "CLIENT"
)

// User is an account that can sign in to the dashboard.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (db *DB) CreateUser(email, passwordHash, fullName, phone, role string) (int64, error) {
	res, err := db.Exec(`INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?, ?, ?, ?, ?)`,
		email, passwordHash, fullName, phone, role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) GetUser(id int64) (*User, error) {
	u := &User{}
	var createdAt string
	err := db.QueryRow(`SELECT id, email, password_hash, full_name, phone, role, is_active, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = scanTime(createdAt)
	return u, nil
}

func (db *DB) GetUserByEmail(email string) (*User, error) {
	u := &User{}
	var createdAt string
	err := db.QueryRow(`SELECT id, email, password_hash, full_name, phone, role, is_active, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = scanTime(createdAt)
	return u, nil
}

func (db *DB) UpdateUserPassword(id int64, passwordHash string) error {
	_, err := db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

func (db *DB) SetUserActive(id int64, active bool) error {
	_, err := db.Exec(`UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	return err
}
