package billing

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mcclellann/telecare/pkg/clock"
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MockStore is a simple in-memory implementation of the BillingStorage interface for testing.
type MockStore struct {
	bills    map[string][]models.Bill
	payments map[string][]models.Payment
	err      error
}

func NewMockStore() *MockStore {
	return &MockStore{
		bills:    make(map[string][]models.Bill),
		payments: make(map[string][]models.Payment),
	}
}

func (m *MockStore) GetBills(mobile string) ([]models.Bill, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bills[mobile], nil
}

func (m *MockStore) MarkBillPaid(mobile, billID string, paidOn models.Date) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for i := range m.bills[mobile] {
		if m.bills[mobile][i].BillID == billID {
			m.bills[mobile][i].Status = models.BillStatusPaid
			m.bills[mobile][i].PaidDate = &paidOn
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) GetPayments(mobile string) ([]models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.payments[mobile], nil
}

func (m *MockStore) CreatePayment(mobile string, p *models.Payment) error {
	if m.err != nil {
		return m.err
	}
	m.payments[mobile] = append(m.payments[mobile], *p)
	return nil
}

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, s *MockStore) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("Failed to create snowflake node: %v", err)
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewService(s, clock.Fixed(testNow), node, l)
}

func sampleStore() *MockStore {
	s := NewMockStore()
	s.bills["9811001234"] = []models.Bill{
		{
			BillID: "BILL001", Mobile: "9811001234", Name: "Rahul Kumar", Plan: "Unlimited 5G - 299",
			Amount: decimal.NewFromInt(299), DueDate: models.MustParseDate("2026-10-19"),
			Status: models.BillStatusPending, BillingPeriod: "Dec 2025",
		},
		{
			BillID: "BILL002", Mobile: "9811001234", Name: "Rahul Kumar", Plan: "Unlimited 5G - 299",
			Amount: decimal.NewFromFloat(149.5), DueDate: models.MustParseDate("2026-11-19"),
			Status: models.BillStatusPending, BillingPeriod: "Jan 2026",
		},
		{
			BillID: "BILL000", Mobile: "9811001234", Name: "Rahul Kumar", Plan: "Unlimited 5G - 299",
			Amount: decimal.NewFromInt(299), DueDate: models.MustParseDate("2025-12-10"),
			Status: models.BillStatusPaid, BillingPeriod: "Nov 2025",
		},
	}
	return s
}

func TestUnknownMobile(t *testing.T) {
	svc := newTestService(t, sampleStore())

	bills := svc.ListBills("9000000000")
	if bills == nil || len(bills) != 0 {
		t.Errorf("Expected empty non-nil bills, got %v", bills)
	}
	if pending := svc.ListPendingBills("9000000000"); len(pending) != 0 {
		t.Errorf("Expected no pending bills, got %d", len(pending))
	}
	want := "No billing information found for mobile number 9000000000."
	if got := svc.Summarize("9000000000"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStorageErrorYieldsEmpty(t *testing.T) {
	s := sampleStore()
	s.err = errors.New("disk gone")
	svc := newTestService(t, s)

	if bills := svc.ListBills("9811001234"); len(bills) != 0 {
		t.Errorf("Expected no bills on storage error, got %d", len(bills))
	}
	if payments := svc.ListPayments("9811001234"); payments == nil || len(payments) != 0 {
		t.Errorf("Expected empty non-nil payments on storage error, got %v", payments)
	}
}

func TestPendingAndTotalDue(t *testing.T) {
	svc := newTestService(t, sampleStore())

	pending := svc.ListPendingBills("9811001234")
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending bills, got %d", len(pending))
	}

	expected := decimal.NewFromFloat(448.5)
	if total := TotalDue(svc.ListBills("9811001234")); !total.Equal(expected) {
		t.Errorf("Expected total due %s, got %s", expected, total)
	}
	if total := TotalDue(pending); !total.Equal(expected) {
		t.Errorf("Expected total due over pending %s, got %s", expected, total)
	}
}

func TestSummarize(t *testing.T) {
	svc := newTestService(t, sampleStore())

	summary := svc.Summarize("9811001234")
	for _, want := range []string{
		"Billing Summary for 9811001234:",
		"Customer Name: Rahul Kumar",
		"Current Plan: Unlimited 5G - 299",
		"PENDING BILLS:",
		"- Bill ID: BILL001",
		"  Amount: ₹299.00",
		"  Due Date: 2026-10-19",
		"  Period: Jan 2026",
		"Total Amount Due: ₹448.50",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "BILL000") {
		t.Error("Paid bill should not be listed as pending")
	}
}

func TestSummarizeAllPaid(t *testing.T) {
	s := NewMockStore()
	s.bills["9876543210"] = []models.Bill{{
		BillID: "BILL003", Mobile: "9876543210", Name: "Suryavamsi", Plan: "Postpaid Plus - 599",
		Amount: decimal.NewFromInt(599), Status: models.BillStatusPaid,
	}}
	svc := newTestService(t, s)

	if summary := svc.Summarize("9876543210"); !strings.Contains(summary, "No pending bills. All bills are paid.") {
		t.Errorf("Expected all-paid message, got:\n%s", summary)
	}
}

func TestPayExistingBill(t *testing.T) {
	s := sampleStore()
	svc := newTestService(t, s)

	result := svc.Pay("9811001234", "BILL001", decimal.NewFromInt(299), "")
	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Message)
	}
	if !result.BillUpdated {
		t.Error("Expected bill to be updated")
	}

	bill := s.bills["9811001234"][0]
	if bill.Status != models.BillStatusPaid {
		t.Errorf("Expected status paid, got %s", bill.Status)
	}
	if bill.PaidDate == nil || bill.PaidDate.String() != "2026-10-14" {
		t.Errorf("Expected paid date 2026-10-14, got %v", bill.PaidDate)
	}

	payments := s.payments["9811001234"]
	if len(payments) != 1 {
		t.Fatalf("Expected 1 payment, got %d", len(payments))
	}
	p := payments[0]
	if !strings.HasPrefix(p.PaymentID, "PAY") || !strings.HasPrefix(p.TransactionID, "TXN20261014093000") {
		t.Errorf("Unexpected ids %s / %s", p.PaymentID, p.TransactionID)
	}
	if p.PaymentMethod != DefaultPaymentMethod {
		t.Errorf("Expected method %s, got %s", DefaultPaymentMethod, p.PaymentMethod)
	}
	if p.PaymentDate.String() != "2026-10-14" || p.Status != models.PaymentStatusSuccess {
		t.Errorf("Unexpected payment %+v", p)
	}
	if result.Payment == nil || result.Payment.PaymentID != p.PaymentID {
		t.Errorf("Expected result to carry the stored payment")
	}
}

func TestPayUnknownBillStillRecordsPayment(t *testing.T) {
	s := sampleStore()
	svc := newTestService(t, s)

	result := svc.Pay("9811001234", "BILL999", decimal.NewFromInt(50), "card")
	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Message)
	}
	if result.BillUpdated {
		t.Error("Expected no bill to be updated")
	}
	for _, b := range s.bills["9811001234"] {
		if b.BillID != "BILL000" && b.Status != models.BillStatusPending {
			t.Errorf("Bill %s should be untouched, got %s", b.BillID, b.Status)
		}
	}
	if len(s.payments["9811001234"]) != 1 {
		t.Errorf("Expected 1 payment, got %d", len(s.payments["9811001234"]))
	}
}

func TestPayFreshIDs(t *testing.T) {
	s := sampleStore()
	svc := newTestService(t, s)

	first := svc.Pay("9811001234", "BILL001", decimal.NewFromInt(299), "UPI")
	second := svc.Pay("9811001234", "BILL002", decimal.NewFromFloat(149.5), "UPI")

	if first.Payment.PaymentID == second.Payment.PaymentID {
		t.Errorf("Expected distinct payment ids, got %s twice", first.Payment.PaymentID)
	}
	if first.Payment.TransactionID == second.Payment.TransactionID {
		t.Errorf("Expected distinct transaction ids, got %s twice", first.Payment.TransactionID)
	}
}

func TestPayStorageFailure(t *testing.T) {
	s := sampleStore()
	s.err = errors.New("permission denied")
	svc := newTestService(t, s)

	result := svc.Pay("9811001234", "BILL001", decimal.NewFromInt(299), "UPI")
	if result.Success {
		t.Fatal("Expected failure")
	}
	if result.Message != "Payment failed: permission denied" {
		t.Errorf("Unexpected message %q", result.Message)
	}
	if result.Payment != nil {
		t.Error("Expected no payment on failure")
	}
}

func TestSearchBills(t *testing.T) {
	svc := newTestService(t, sampleStore())

	if got := svc.SearchBills("what is my due amount"); got != "Please provide a valid 10-digit mobile number to check bills." {
		t.Errorf("Unexpected prompt %q", got)
	}
	if got := svc.SearchBills("due amount for 9811001234 please"); !strings.HasPrefix(got, "Billing Summary for 9811001234:") {
		t.Errorf("Expected summary, got %q", got)
	}
	if _, ok := ExtractMobile("call 98110012345"); ok {
		t.Error("An 11-digit number should not match")
	}
}
