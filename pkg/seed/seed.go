// Package seed holds the sample records written when a store starts empty.
package seed

import (
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/shopspring/decimal"
)

// Bills returns the sample bill set keyed by mobile. Pending due dates are
// relative to today.
func Bills(today models.Date) map[string][]models.Bill {
	paidOn := models.MustParseDate("2025-12-08")
	return map[string][]models.Bill{
		"9811001234": {
			{
				BillID:        "BILL001",
				Mobile:        "9811001234",
				Name:          "Rahul Kumar",
				Plan:          "Unlimited 5G - 299",
				Amount:        decimal.NewFromInt(299),
				DueDate:       today.AddDays(5),
				Status:        models.BillStatusPending,
				BillingPeriod: "Dec 2025",
			},
			{
				BillID:        "BILL002",
				Mobile:        "9811001234",
				Name:          "Rahul Kumar",
				Plan:          "Unlimited 5G - 299",
				Amount:        decimal.NewFromInt(299),
				DueDate:       models.MustParseDate("2025-12-10"),
				Status:        models.BillStatusPaid,
				BillingPeriod: "Nov 2025",
				PaidDate:      &paidOn,
			},
		},
		"9876543210": {
			{
				BillID:        "BILL003",
				Mobile:        "9876543210",
				Name:          "Suryavamsi",
				Plan:          "Postpaid Plus - 599",
				Amount:        decimal.NewFromInt(599),
				DueDate:       today.AddDays(10),
				Status:        models.BillStatusPending,
				BillingPeriod: "Jan 2026",
			},
		},
	}
}

func Payments() map[string][]models.Payment {
	return map[string][]models.Payment{
		"9811001234": {
			{
				PaymentID:     "PAY001",
				BillID:        "BILL002",
				Amount:        decimal.NewFromInt(299),
				PaymentDate:   models.MustParseDate("2025-12-08"),
				PaymentMethod: "UPI",
				TransactionID: "TXN202512081234",
				Status:        models.PaymentStatusSuccess,
			},
		},
		"9876543210": {},
	}
}
