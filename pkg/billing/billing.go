package billing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mcclellann/telecare/pkg/clock"
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/mcclellann/telecare/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultPaymentMethod = "UPI"

var mobilePattern = regexp.MustCompile(`\b\d{10}\b`)

// Service handles bill lookups and payments for subscriber numbers.
type Service struct {
	storage store.BillingStorage
	clock   clock.Clock
	ids     *snowflake.Node
	log     *logrus.Logger
}

// NewService creates a billing Service over the given storage.
func NewService(s store.BillingStorage, clk clock.Clock, ids *snowflake.Node, l *logrus.Logger) *Service {
	return &Service{
		storage: s,
		clock:   clk,
		ids:     ids,
		log:     l,
	}
}

// ListBills returns all bills for mobile. Storage errors are logged and an
// empty list is returned.
func (s *Service) ListBills(mobile string) []models.Bill {
	bills, err := s.storage.GetBills(mobile)
	if err != nil {
		s.log.WithError(err).WithField("mobile", mobile).Error("Error loading bills")
		return []models.Bill{}
	}
	if bills == nil {
		return []models.Bill{}
	}
	return bills
}

// ListPendingBills returns the bills for mobile that are not yet paid.
func (s *Service) ListPendingBills(mobile string) []models.Bill {
	return Pending(s.ListBills(mobile))
}

// Pending filters bills down to status pending.
func Pending(bills []models.Bill) []models.Bill {
	pending := []models.Bill{}
	for _, b := range bills {
		if b.Status == models.BillStatusPending {
			pending = append(pending, b)
		}
	}
	return pending
}

// TotalDue sums the amounts of the pending bills in bills.
func TotalDue(bills []models.Bill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if b.Status == models.BillStatusPending {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// Summarize renders a plain-text billing digest for mobile.
func (s *Service) Summarize(mobile string) string {
	bills := s.ListBills(mobile)
	if len(bills) == 0 {
		return fmt.Sprintf("No billing information found for mobile number %s.", mobile)
	}
	pending := Pending(bills)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Billing Summary for %s:\n", mobile)
	fmt.Fprintf(&sb, "Customer Name: %s\n", bills[0].Name)
	fmt.Fprintf(&sb, "Current Plan: %s\n\n", bills[0].Plan)

	if len(pending) == 0 {
		sb.WriteString("No pending bills. All bills are paid.\n")
		return sb.String()
	}

	sb.WriteString("PENDING BILLS:\n")
	for _, b := range pending {
		fmt.Fprintf(&sb, "- Bill ID: %s\n", b.BillID)
		fmt.Fprintf(&sb, "  Amount: ₹%s\n", b.Amount.StringFixed(2))
		fmt.Fprintf(&sb, "  Due Date: %s\n", b.DueDate)
		fmt.Fprintf(&sb, "  Period: %s\n\n", b.BillingPeriod)
	}
	fmt.Fprintf(&sb, "Total Amount Due: ₹%s\n", TotalDue(pending).StringFixed(2))
	return sb.String()
}

// ExtractMobile returns the first standalone 10-digit number in text.
func ExtractMobile(text string) (string, bool) {
	mobile := mobilePattern.FindString(text)
	return mobile, mobile != ""
}

// SearchBills summarises the bills of the number mentioned in query.
func (s *Service) SearchBills(query string) string {
	mobile, ok := ExtractMobile(query)
	if !ok {
		return "Please provide a valid 10-digit mobile number to check bills."
	}
	return s.Summarize(mobile)
}

// ListPayments returns the payment history for mobile.
func (s *Service) ListPayments(mobile string) []models.Payment {
	payments, err := s.storage.GetPayments(mobile)
	if err != nil {
		s.log.WithError(err).WithField("mobile", mobile).Error("Error loading payments")
		return []models.Payment{}
	}
	if payments == nil {
		return []models.Payment{}
	}
	return payments
}

// Pay marks the bill paid and records a payment. The amount is not checked
// against the bill, and a payment is recorded even when no bill matches
// billID; BillUpdated tells the two cases apart.
func (s *Service) Pay(mobile, billID string, amount decimal.Decimal, method string) models.PaymentResult {
	if method == "" {
		method = DefaultPaymentMethod
	}
	now := s.clock.Now()
	today := models.NewDate(now)
	entry := s.log.WithFields(logrus.Fields{"mobile": mobile, "bill_id": billID})

	s.warnOnAmountMismatch(entry, mobile, billID, amount)

	updated, err := s.storage.MarkBillPaid(mobile, billID, today)
	if err != nil {
		entry.WithError(err).Error("Error updating bill")
		return models.PaymentResult{Success: false, Message: fmt.Sprintf("Payment failed: %v", err)}
	}
	if !updated {
		entry.Warn("No bill matched payment; recording payment anyway")
	}

	payment := &models.Payment{
		PaymentID:     "PAY" + s.ids.Generate().String(),
		BillID:        billID,
		Amount:        amount,
		PaymentDate:   today,
		PaymentMethod: method,
		TransactionID: newTransactionID(now.Format("20060102150405")),
		Status:        models.PaymentStatusSuccess,
	}
	if err := s.storage.CreatePayment(mobile, payment); err != nil {
		entry.WithError(err).Error("Error recording payment")
		return models.PaymentResult{Success: false, Message: fmt.Sprintf("Payment failed: %v", err), BillUpdated: updated}
	}

	entry.WithField("payment_id", payment.PaymentID).Info("Payment recorded")
	return models.PaymentResult{
		Success:     true,
		Message:     "Payment successful",
		Payment:     payment,
		BillUpdated: updated,
	}
}

func (s *Service) warnOnAmountMismatch(entry *logrus.Entry, mobile, billID string, amount decimal.Decimal) {
	for _, b := range s.ListBills(mobile) {
		if b.BillID == billID && !b.Amount.Equal(amount) {
			entry.WithFields(logrus.Fields{
				"bill_amount": b.Amount.String(),
				"paid_amount": amount.String(),
			}).Warn("Payment amount differs from bill amount")
			return
		}
	}
}

func newTransactionID(stamp string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "TXN" + stamp + suffix
}
