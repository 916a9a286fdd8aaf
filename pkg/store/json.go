package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcclellann/telecare/pkg/clock"
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/mcclellann/telecare/pkg/seed"
	log "github.com/sirupsen/logrus"
)

const (
	BillsFile    = "user_bills.json"
	PaymentsFile = "payment_history.json"
	PlansFile    = "recharge_plans.json"
)

// JSONStore keeps each collection in its own JSON document. Every operation
// reads the whole document and every mutation rewrites it. A mutex per file
// serialises read-modify-write cycles within the process; other processes
// writing the same files can still lose updates.
type JSONStore struct {
	billsPath    string
	paymentsPath string
	plansPath    string

	billsMu    sync.Mutex
	paymentsMu sync.Mutex
	plansMu    sync.Mutex
}

// NewJSONStore opens the store under dir, seeding any document that does not exist.
func NewJSONStore(dir string, clk clock.Clock) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data dir: %w", err)
	}
	s := &JSONStore{
		billsPath:    filepath.Join(dir, BillsFile),
		paymentsPath: filepath.Join(dir, PaymentsFile),
		plansPath:    filepath.Join(dir, PlansFile),
	}

	seeds := []struct {
		path string
		data func() any
	}{
		{s.billsPath, func() any { return seed.Bills(clock.Today(clk)) }},
		{s.paymentsPath, func() any { return seed.Payments() }},
		{s.plansPath, func() any { return seed.Catalog() }},
	}
	for _, sd := range seeds {
		seeded, err := seedIfAbsent(sd.path, sd.data)
		if err != nil {
			return nil, err
		}
		if seeded {
			log.WithField("path", sd.path).Info("seeded data file")
		}
	}
	return s, nil
}

func seedIfAbsent(path string, data func() any) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("could not stat %s: %w", path, err)
	}
	if err := writeJSON(path, data()); err != nil {
		return false, fmt.Errorf("could not seed %s: %w", path, err)
	}
	return true, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path through a temp file so readers never see a partial document.
func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *JSONStore) loadBills() (map[string][]models.Bill, error) {
	all := map[string][]models.Bill{}
	if err := readJSON(s.billsPath, &all); err != nil {
		return nil, err
	}
	for mobile, bills := range all {
		for _, b := range bills {
			if !b.Status.Valid() {
				return nil, fmt.Errorf("bill %s for %s has invalid status %q", b.BillID, mobile, b.Status)
			}
		}
	}
	return all, nil
}

// GetBills returns the bills stored for mobile.
func (s *JSONStore) GetBills(mobile string) ([]models.Bill, error) {
	s.billsMu.Lock()
	defer s.billsMu.Unlock()

	all, err := s.loadBills()
	if err != nil {
		return nil, err
	}
	return all[mobile], nil
}

// MarkBillPaid rewrites the bills document with the matching bill paid.
func (s *JSONStore) MarkBillPaid(mobile, billID string, paidOn models.Date) (bool, error) {
	s.billsMu.Lock()
	defer s.billsMu.Unlock()

	all, err := s.loadBills()
	if err != nil {
		return false, err
	}
	bills := all[mobile]
	for i := range bills {
		if bills[i].BillID != billID {
			continue
		}
		bills[i].Status = models.BillStatusPaid
		paid := paidOn
		bills[i].PaidDate = &paid
		if err := writeJSON(s.billsPath, all); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// GetPayments returns the payment history for mobile.
func (s *JSONStore) GetPayments(mobile string) ([]models.Payment, error) {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	all := map[string][]models.Payment{}
	if err := readJSON(s.paymentsPath, &all); err != nil {
		return nil, err
	}
	return all[mobile], nil
}

// CreatePayment appends payment to the history for mobile.
func (s *JSONStore) CreatePayment(mobile string, payment *models.Payment) error {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	all := map[string][]models.Payment{}
	if err := readJSON(s.paymentsPath, &all); err != nil {
		return err
	}
	all[mobile] = append(all[mobile], *payment)
	return writeJSON(s.paymentsPath, all)
}

// GetCatalog reads the plan tree.
func (s *JSONStore) GetCatalog() (*models.Catalog, error) {
	s.plansMu.Lock()
	defer s.plansMu.Unlock()

	var catalog models.Catalog
	if err := readJSON(s.plansPath, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Close is a no-op; files are not held open between calls.
func (s *JSONStore) Close() error {
	return nil
}
