package store

import (
	"github.com/mcclellann/telecare/pkg/models"
)

// BillingStorage defines the persistence operations for bills and payments.
// Records are keyed by mobile number.
type BillingStorage interface {
	GetBills(mobile string) ([]models.Bill, error)
	// MarkBillPaid sets the bill's status to paid and stamps paidOn. It reports
	// whether a bill with billID exists for mobile.
	MarkBillPaid(mobile, billID string, paidOn models.Date) (bool, error)

	GetPayments(mobile string) ([]models.Payment, error)
	CreatePayment(mobile string, payment *models.Payment) error
}

// CatalogStorage exposes the plan catalog.
type CatalogStorage interface {
	GetCatalog() (*models.Catalog, error)
}

// Storage is implemented by every backend.
type Storage interface {
	BillingStorage
	CatalogStorage
	Close() error
}
