package repos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "petcare/internal/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// OpenDB connects, applies the schema and seeds the demo tenant.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	// Seed baseline tenant, admin and marketplace data (idempotent; safe to run every start)
	if err := seedDefaultData(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; an in-memory database also only exists on its own connection
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates every table and index that does not exist yet.
func Migrate(db *sqlx.DB) error {
	stmts := strings.Split(schema, ";\n")
	if db.DriverName() == DriverSQLite {
		stmts = append([]string{"PRAGMA foreign_keys = ON"}, stmts...)
	}
	for _, s := range stmts {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w (%s)", err, firstLine(s))
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return s[:i]
	}
	return s
}

const schema = `
-- Tenants & users
CREATE TABLE IF NOT EXISTS businesses(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('CLINIC','PET_SHOP','HOTEL','DAYCARE','GROOMER','PLATFORM')),
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('OWNER','STAFF','ADMIN')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT NOT NULL,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Marketplace
CREATE TABLE IF NOT EXISTS marketplace_sellers(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  name TEXT NOT NULL,
  commission_rate NUMERIC NOT NULL CHECK (commission_rate >= 0 AND commission_rate <= 100),
  average_rating NUMERIC NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sellers_business ON marketplace_sellers(business_id);

CREATE TABLE IF NOT EXISTS marketplace_listings(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES marketplace_sellers(id),
  title TEXT NOT NULL,
  sku TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  sales_count INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL CHECK (status IN ('DRAFT','PENDING_REVIEW','ACTIVE','REJECTED')),
  average_rating NUMERIC NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_seller ON marketplace_listings(seller_id);
CREATE INDEX IF NOT EXISTS idx_listings_title  ON marketplace_listings(LOWER(title));

CREATE TABLE IF NOT EXISTS marketplace_orders(
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  seller_id TEXT NOT NULL REFERENCES marketplace_sellers(id),
  buyer_name TEXT NOT NULL,
  buyer_email TEXT NOT NULL,
  buyer_phone TEXT NOT NULL DEFAULT '',
  shipping_address TEXT NOT NULL DEFAULT '',
  subtotal NUMERIC NOT NULL,
  shipping_cost NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  commission NUMERIC NOT NULL,
  seller_payout NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('PENDING','SHIPPED','DELIVERED','CANCELLED')),
  tracking_code TEXT,
  shipped_at TEXT,
  delivered_at TEXT,
  cancelled_at TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_seller ON marketplace_orders(seller_id);

CREATE TABLE IF NOT EXISTS marketplace_order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES marketplace_orders(id) ON DELETE CASCADE,
  listing_id TEXT NOT NULL REFERENCES marketplace_listings(id),
  title TEXT NOT NULL,
  sku TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON marketplace_order_items(order_id);

CREATE TABLE IF NOT EXISTS marketplace_reviews(
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL REFERENCES marketplace_listings(id),
  seller_id TEXT NOT NULL REFERENCES marketplace_sellers(id),
  author_name TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  is_published BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_listing ON marketplace_reviews(listing_id);
CREATE INDEX IF NOT EXISTS idx_reviews_seller  ON marketplace_reviews(seller_id);

-- Retail & finance
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  name TEXT NOT NULL,
  sku TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  current_stock INTEGER NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
  min_stock INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_business ON products(business_id);

CREATE TABLE IF NOT EXISTS stock_movements(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  product_id TEXT NOT NULL REFERENCES products(id),
  type TEXT NOT NULL CHECK (type IN ('PURCHASE','RETURN','ADJUSTMENT','SALE','SERVICE_USE','LOSS','EXPIRED')),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  previous_stock INTEGER NOT NULL,
  new_stock INTEGER NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  reference_id TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id);

CREATE TABLE IF NOT EXISTS sales(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  sale_number TEXT NOT NULL UNIQUE,
  sale_date TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_business_date ON sales(business_id, sale_date);

CREATE TABLE IF NOT EXISTS sale_items(
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL
);

CREATE TABLE IF NOT EXISTS cash_registers(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  date TEXT NOT NULL,
  sales_count INTEGER NOT NULL,
  total_sales NUMERIC NOT NULL,
  cash_total NUMERIC NOT NULL,
  card_total NUMERIC NOT NULL,
  pix_total NUMERIC NOT NULL,
  other_total NUMERIC NOT NULL,
  is_closed BOOLEAN NOT NULL DEFAULT TRUE,
  closed_at TEXT,
  UNIQUE (business_id, date)
);

-- Boarding
CREATE TABLE IF NOT EXISTS boarding_rooms(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  name TEXT NOT NULL,
  capacity INTEGER NOT NULL DEFAULT 1 CHECK (capacity >= 1),
  daily_rate NUMERIC NOT NULL CHECK (daily_rate >= 0),
  accepted_species TEXT NOT NULL DEFAULT '',
  accepted_sizes TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS boardings(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  room_id TEXT NOT NULL REFERENCES boarding_rooms(id),
  pet_id TEXT NOT NULL,
  pet_species TEXT NOT NULL DEFAULT '',
  pet_size TEXT NOT NULL DEFAULT '',
  check_in_date TEXT NOT NULL,
  check_out_date TEXT NOT NULL,
  occupied_until TEXT NOT NULL,
  total_days INTEGER NOT NULL,
  daily_rate NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  extra_services NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('PENDING','RESERVED','CHECKED_IN','CHECKED_OUT','CANCELLED')),
  actual_check_in TEXT,
  actual_check_out TEXT,
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_boardings_room ON boardings(room_id, check_in_date, occupied_until);

-- Daycare
CREATE TABLE IF NOT EXISTS daycare_packages(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  name TEXT NOT NULL,
  days_included INTEGER NOT NULL CHECK (days_included >= 1),
  price NUMERIC NOT NULL CHECK (price >= 0),
  validity_days INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daycare_enrollments(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  package_id TEXT NOT NULL REFERENCES daycare_packages(id),
  pet_id TEXT NOT NULL,
  total_credits INTEGER NOT NULL,
  used_credits INTEGER NOT NULL DEFAULT 0,
  remaining_credits INTEGER NOT NULL CHECK (remaining_credits >= 0),
  price_paid NUMERIC NOT NULL,
  start_date TEXT NOT NULL,
  expires_at TEXT,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daycare_attendance(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id),
  enrollment_id TEXT NOT NULL REFERENCES daycare_enrollments(id),
  date TEXT NOT NULL,
  check_in_time TEXT NOT NULL,
  check_out_time TEXT,
  status TEXT NOT NULL,
  UNIQUE (enrollment_id, date)
);

-- Pet sitters
CREATE TABLE IF NOT EXISTS pet_sitters(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  daily_rate NUMERIC NOT NULL CHECK (daily_rate >= 0),
  average_rating NUMERIC NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pet_sitter_payouts(
  id TEXT PRIMARY KEY,
  sitter_id TEXT NOT NULL REFERENCES pet_sitters(id),
  amount NUMERIC NOT NULL,
  bookings_count INTEGER NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pet_sitter_bookings(
  id TEXT PRIMARY KEY,
  sitter_id TEXT NOT NULL REFERENCES pet_sitters(id),
  client_name TEXT NOT NULL,
  client_email TEXT NOT NULL,
  pet_id TEXT NOT NULL DEFAULT '',
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  total_days INTEGER NOT NULL,
  daily_rate NUMERIC NOT NULL,
  total_amount NUMERIC NOT NULL,
  platform_fee NUMERIC NOT NULL,
  sitter_payout NUMERIC NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('PENDING','CONFIRMED','COMPLETED','CANCELLED')),
  payout_id TEXT REFERENCES pet_sitter_payouts(id),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_sitter ON pet_sitter_bookings(sitter_id, status);

CREATE TABLE IF NOT EXISTS pet_sitter_reviews(
  id TEXT PRIMARY KEY,
  sitter_id TEXT NOT NULL REFERENCES pet_sitters(id),
  booking_id TEXT NOT NULL UNIQUE REFERENCES pet_sitter_bookings(id),
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`

// seedDefaultData inserts the platform admin, one demo business with an owner,
// a marketplace seller with two active listings and a few service fixtures.
// Safe to run on every startup (idempotent).
func seedDefaultData(db *sqlx.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := get(ctx, tx, &n, `SELECT COUNT(*) FROM businesses WHERE id = 'b-demo'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Logger().Info().Msg("[seed] inserting demo tenant, admin and marketplace data")

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ts := stamp()
	steps := []struct {
		q    string
		args []any
	}{
		{`INSERT INTO businesses(id,name,kind,created_at) VALUES
		  ('b-platform','PetCare Platform','PLATFORM',?),
		  ('b-demo','Happy Paws','PET_SHOP',?)`, []any{ts, ts}},
		{`INSERT INTO users(id,business_id,email,name,phone,password_hash,role,created_at) VALUES
		  ('u-admin','b-platform','admin@petcare.test','Admin',NULL,?,'ADMIN',?),
		  ('u-owner','b-demo','owner@happypaws.test','Olivia','+5511999990000',?,'OWNER',?)`,
			[]any{string(hash), ts, string(hash), ts}},
		{`INSERT INTO marketplace_sellers(id,business_id,name,commission_rate,average_rating,total_reviews,is_active,created_at)
		  VALUES ('s-demo','b-demo','Happy Paws Store',10,0,0,TRUE,?)`, []any{ts}},
		{`INSERT INTO marketplace_listings(id,seller_id,title,sku,description,price,stock,sales_count,status,average_rating,total_reviews,created_at,updated_at) VALUES
		  ('l-kibble','s-demo','Premium Kibble 10kg','KIB-10','Grain free adult formula',50,10,0,'ACTIVE',0,0,?,?),
		  ('l-toy','s-demo','Rope Toy','TOY-01','Cotton rope toy',12.5,3,0,'ACTIVE',0,0,?,?)`, []any{ts, ts, ts, ts}},
		{`INSERT INTO boarding_rooms(id,business_id,name,capacity,daily_rate,accepted_species,accepted_sizes,is_active,created_at)
		  VALUES ('r-suite','b-demo','Suite 1',1,120,'DOG,CAT','',TRUE,?)`, []any{ts}},
		{`INSERT INTO daycare_packages(id,business_id,name,days_included,price,validity_days,is_active,created_at)
		  VALUES ('p-20','b-demo','20 days',20,600,0,TRUE,?)`, []any{ts}},
		{`INSERT INTO products(id,business_id,name,sku,price,current_stock,min_stock,is_active,created_at,updated_at)
		  VALUES ('pr-shampoo','b-demo','Shampoo 500ml','SH-500',25,12,3,TRUE,?,?)`, []any{ts, ts}},
	}
	for _, s := range steps {
		if _, err := exec(ctx, tx, s.q, s.args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---------- helpers shared by every repo ----------

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func sel(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

// execOne runs a conditional statement and reports whether it touched a row.
func execOne(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (bool, error) {
	res, err := exec(ctx, q, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }

// IsUniqueViolation recognises unique constraint failures from both drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique constraint") || strings.Contains(s, "duplicate key") || strings.Contains(s, "sqlstate 23505")
}
