package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/mcclellann/telecare/pkg/clock"
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/mcclellann/telecare/pkg/seed"
	log "github.com/sirupsen/logrus"

	_ "github.com/mattn/go-sqlite3"
)

const (
	segmentPrepaid  = "prepaid"
	segmentPostpaid = "postpaid"
)

// SQLiteStore keeps the same records as JSONStore in SQLite tables.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database, creates the schema and seeds empty tables.
func NewSQLiteStore(dataSourceName string, clk clock.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL;")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	if err := s.seed(clock.Today(clk)); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not seed database: %w", err)
	}
	log.Info("Database connection established and schema initialized.")
	return s, nil
}

// initSchema creates the tables if they don't already exist.
// Decimal fields are TEXT so no precision is lost; dates are YYYY-MM-DD TEXT.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mobile TEXT NOT NULL,
		bill_id TEXT NOT NULL,
		name TEXT NOT NULL,
		plan TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		billing_period TEXT NOT NULL,
		paid_date TEXT,
		UNIQUE(mobile, bill_id)
	);
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mobile TEXT NOT NULL,
		payment_id TEXT NOT NULL UNIQUE,
		bill_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS plans (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id TEXT NOT NULL UNIQUE,
		segment TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		validity TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL,
		unlimited_5g INTEGER NOT NULL DEFAULT 0,
		calls TEXT NOT NULL,
		sms TEXT NOT NULL,
		ott TEXT NOT NULL DEFAULT '[]',
		popular INTEGER NOT NULL DEFAULT 0,
		rollover INTEGER NOT NULL DEFAULT 0,
		connections INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) isEmpty(table string) (bool, error) {
	var n int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n == 0, nil
}

// seed fills each empty table with the sample records, one transaction per table.
func (s *SQLiteStore) seed(today models.Date) error {
	steps := []struct {
		table string
		fill  func(tx *sql.Tx) error
	}{
		{"bills", func(tx *sql.Tx) error {
			bills := seed.Bills(today)
			for _, mobile := range slices.Sorted(maps.Keys(bills)) {
				for _, b := range bills[mobile] {
					if err := insertBill(tx, mobile, &b); err != nil {
						return err
					}
				}
			}
			return nil
		}},
		{"payments", func(tx *sql.Tx) error {
			payments := seed.Payments()
			for _, mobile := range slices.Sorted(maps.Keys(payments)) {
				for _, p := range payments[mobile] {
					if err := insertPayment(tx, mobile, &p); err != nil {
						return err
					}
				}
			}
			return nil
		}},
		{"plans", func(tx *sql.Tx) error {
			catalog := seed.Catalog()
			for _, cat := range catalog.Categories() {
				for _, p := range catalog.Prepaid[cat] {
					if err := insertPlan(tx, segmentPrepaid, cat, &p); err != nil {
						return err
					}
				}
			}
			for _, p := range catalog.Postpaid {
				if err := insertPlan(tx, segmentPostpaid, "", &p); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	for _, step := range steps {
		empty, err := s.isEmpty(step.table)
		if err != nil {
			return err
		}
		if !empty {
			continue
		}
		if err := s.inTx(step.fill); err != nil {
			return fmt.Errorf("failed to seed %s: %w", step.table, err)
		}
		log.WithField("table", step.table).Info("seeded table")
	}
	return nil
}

func (s *SQLiteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertBill(tx *sql.Tx, mobile string, b *models.Bill) error {
	var paid sql.NullString
	if b.PaidDate != nil {
		paid = sql.NullString{String: b.PaidDate.String(), Valid: true}
	}
	_, err := tx.Exec(
		`INSERT INTO bills (mobile, bill_id, name, plan, amount, due_date, status, billing_period, paid_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mobile, b.BillID, b.Name, b.Plan, b.Amount, b.DueDate.String(), string(b.Status), b.BillingPeriod, paid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill %s: %w", b.BillID, err)
	}
	return nil
}

func insertPayment(tx *sql.Tx, mobile string, p *models.Payment) error {
	_, err := tx.Exec(
		`INSERT INTO payments (mobile, payment_id, bill_id, amount, payment_date, payment_method, transaction_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mobile, p.PaymentID, p.BillID, p.Amount, p.PaymentDate.String(), p.PaymentMethod, p.TransactionID, p.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment %s: %w", p.PaymentID, err)
	}
	return nil
}

func insertPlan(tx *sql.Tx, segment string, category models.Category, p *models.Plan) error {
	ott, err := json.Marshal(p.OTT)
	if err != nil {
		return fmt.Errorf("failed to encode ott for %s: %w", p.PlanID, err)
	}
	_, err = tx.Exec(
		`INSERT INTO plans (plan_id, segment, category, name, price, validity, data, unlimited_5g, calls, sms, ott, popular, rollover, connections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PlanID, segment, string(category), p.Name, p.Price, p.Validity, p.Data, p.Unlimited5G, p.Calls, p.SMS, string(ott), p.Popular, p.Rollover, p.Connections,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan %s: %w", p.PlanID, err)
	}
	return nil
}

// GetBills retrieves the bills for mobile in insertion order.
func (s *SQLiteStore) GetBills(mobile string) ([]models.Bill, error) {
	rows, err := s.db.Query(`SELECT bill_id, mobile, name, plan, amount, due_date, status, billing_period, paid_date FROM bills WHERE mobile = ? ORDER BY id ASC`, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills for %s: %w", mobile, err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var b models.Bill
		var due, status string
		var paid sql.NullString
		if err := rows.Scan(&b.BillID, &b.Mobile, &b.Name, &b.Plan, &b.Amount, &due, &status, &b.BillingPeriod, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		if b.DueDate, err = models.ParseDate(due); err != nil {
			return nil, err
		}
		b.Status = models.BillStatus(status)
		if !b.Status.Valid() {
			return nil, fmt.Errorf("bill %s has invalid status %q", b.BillID, status)
		}
		if paid.Valid {
			d, err := models.ParseDate(paid.String)
			if err != nil {
				return nil, err
			}
			b.PaidDate = &d
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return bills, nil
}

// MarkBillPaid updates the matching bill in place.
func (s *SQLiteStore) MarkBillPaid(mobile, billID string, paidOn models.Date) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE bills SET status = ?, paid_date = ? WHERE mobile = ? AND bill_id = ?`,
		string(models.BillStatusPaid), paidOn.String(), mobile, billID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update bill: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetPayments retrieves the payment history for mobile in insertion order.
func (s *SQLiteStore) GetPayments(mobile string) ([]models.Payment, error) {
	rows, err := s.db.Query(`SELECT payment_id, bill_id, amount, payment_date, payment_method, transaction_id, status FROM payments WHERE mobile = ? ORDER BY id ASC`, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for %s: %w", mobile, err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var date string
		if err := rows.Scan(&p.PaymentID, &p.BillID, &p.Amount, &date, &p.PaymentMethod, &p.TransactionID, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		if p.PaymentDate, err = models.ParseDate(date); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for payments: %w", err)
	}
	return payments, nil
}

// CreatePayment inserts a new payment record.
func (s *SQLiteStore) CreatePayment(mobile string, payment *models.Payment) error {
	return s.inTx(func(tx *sql.Tx) error {
		return insertPayment(tx, mobile, payment)
	})
}

// GetCatalog rebuilds the plan tree from the plans table.
func (s *SQLiteStore) GetCatalog() (*models.Catalog, error) {
	rows, err := s.db.Query(`SELECT plan_id, segment, category, name, price, validity, data, unlimited_5g, calls, sms, ott, popular, rollover, connections FROM plans ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get plans: %w", err)
	}
	defer rows.Close()

	catalog := &models.Catalog{
		Prepaid:  map[models.Category][]models.Plan{},
		Postpaid: []models.Plan{},
	}
	for rows.Next() {
		var p models.Plan
		var segment, category, ott string
		if err := rows.Scan(&p.PlanID, &segment, &category, &p.Name, &p.Price, &p.Validity, &p.Data, &p.Unlimited5G, &p.Calls, &p.SMS, &ott, &p.Popular, &p.Rollover, &p.Connections); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		if err := json.Unmarshal([]byte(ott), &p.OTT); err != nil {
			return nil, fmt.Errorf("failed to decode ott for %s: %w", p.PlanID, err)
		}
		switch segment {
		case segmentPrepaid:
			cat := models.Category(category)
			catalog.Prepaid[cat] = append(catalog.Prepaid[cat], p)
		case segmentPostpaid:
			catalog.Postpaid = append(catalog.Postpaid, p)
		default:
			return nil, fmt.Errorf("plan %s has unknown segment %q", p.PlanID, segment)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for plans: %w", err)
	}
	return catalog, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
