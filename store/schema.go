package store

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'CLIENT',
    is_active     INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS drivers (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id        INTEGER REFERENCES users(id) ON DELETE SET NULL,
    license_number TEXT NOT NULL DEFAULT '',
    rating         REAL NOT NULL DEFAULT 5.0,
    created_at     TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS vehicles (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    vin              TEXT NOT NULL UNIQUE,
    plate_number     TEXT NOT NULL UNIQUE,
    make             TEXT NOT NULL DEFAULT '',
    model            TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'IDLE',
    driver_id        INTEGER REFERENCES drivers(id) ON DELETE SET NULL,
    lat              REAL,
    lng              REAL,
    fuel_level       REAL NOT NULL DEFAULT 100,
    norm_consumption REAL NOT NULL DEFAULT 0,
    current_speed    REAL,
    mileage          REAL NOT NULL DEFAULT 0,
    created_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles(status);

CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid             TEXT NOT NULL UNIQUE,
    customer_id      INTEGER NOT NULL REFERENCES users(id),
    customer_name    TEXT NOT NULL DEFAULT '',
    pickup_address   TEXT NOT NULL DEFAULT '',
    delivery_address TEXT NOT NULL DEFAULT '',
    pickup_lat       REAL,
    pickup_lng       REAL,
    delivery_lat     REAL,
    delivery_lng     REAL,
    status           TEXT NOT NULL DEFAULT 'NEW',
    vehicle_id       INTEGER REFERENCES vehicles(id),
    weight           REAL NOT NULL DEFAULT 0,
    volume           REAL NOT NULL DEFAULT 0,
    dimensions       TEXT NOT NULL DEFAULT '',
    distance_km      REAL NOT NULL DEFAULT 0,
    price            REAL NOT NULL DEFAULT 0,
    delivery_date    TEXT,
    completed_at     TEXT,
    created_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

CREATE TABLE IF NOT EXISTS order_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   INTEGER NOT NULL REFERENCES orders(id),
    old_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS tracking_points (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
    lat        REAL NOT NULL,
    lng        REAL NOT NULL,
    speed      REAL,
    fuel_level REAL,
    heading    REAL,
    recorded_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_tracking_vehicle ON tracking_points(vehicle_id, recorded_at);

CREATE TABLE IF NOT EXISTS fuel_logs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
    logged_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    liters     REAL NOT NULL,
    cost       REAL NOT NULL DEFAULT 0,
    mileage    REAL NOT NULL DEFAULT 0,
    location   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_fuel_vehicle ON fuel_logs(vehicle_id, logged_at);

CREATE TABLE IF NOT EXISTS maintenance_records (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    vehicle_id     INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
    scheduled_date TEXT NOT NULL,
    work_type      TEXT NOT NULL DEFAULT '',
    cost           REAL NOT NULL DEFAULT 0,
    status         TEXT NOT NULL DEFAULT 'SCHEDULED',
    completed_date TEXT,
    created_at     TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS outbox (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    topic      TEXT NOT NULL,
    payload    BLOB NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`

func (db *DB) migrate() error {
	_, err := db.Exec(schema)
	if err != nil {
		return err
	}
	// Graceful migrations for existing DBs
	db.Exec("ALTER TABLE vehicles ADD COLUMN mileage REAL NOT NULL DEFAULT 0")
	db.Exec("ALTER TABLE orders ADD COLUMN dimensions TEXT NOT NULL DEFAULT ''")
	return nil
}
