package seed

import (
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/shopspring/decimal"
)

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Catalog returns the fixed plan catalog: 4 unlimited, 2 data-only and
// 2 long-validity prepaid plans, and 4 postpaid plans.
func Catalog() *models.Catalog {
	return &models.Catalog{
		Prepaid: map[models.Category][]models.Plan{
			models.CategoryUnlimited: {
				{
					PlanID: "UNL299", Name: "Unlimited 5G", Price: price(299),
					Validity: "28 days", Data: "2GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT:     []string{"Disney+ Hotstar Mobile"},
					Popular: true,
				},
				{
					PlanID: "UNL399", Name: "Unlimited Plus", Price: price(399),
					Validity: "28 days", Data: "2.5GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT: []string{"Disney+ Hotstar", "Amazon Prime Lite"},
				},
				{
					PlanID: "UNL666", Name: "Unlimited Premium", Price: price(666),
					Validity: "56 days", Data: "3GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT:     []string{"Netflix Basic", "Disney+ Hotstar", "Amazon Prime"},
					Popular: true,
				},
				{
					PlanID: "UNL839", Name: "Unlimited Ultra", Price: price(839),
					Validity: "84 days", Data: "2GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT: []string{"Disney+ Hotstar", "Amazon Prime"},
				},
			},
			models.CategoryDataOnly: {
				{
					PlanID: "DATA99", Name: "Data Booster", Price: price(99),
					Validity: "7 days", Data: "6GB",
					Calls: "None", SMS: "None", OTT: []string{},
				},
				{
					PlanID: "DATA181", Name: "Data Power", Price: price(181),
					Validity: "28 days", Data: "15GB",
					Calls: "None", SMS: "None", OTT: []string{},
				},
			},
			models.CategoryLongValidity: {
				{
					PlanID: "LV1799", Name: "Annual Unlimited", Price: price(1799),
					Validity: "365 days", Data: "2GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT:     []string{"Disney+ Hotstar"},
					Popular: true,
				},
				{
					PlanID: "LV2999", Name: "Annual Premium", Price: price(2999),
					Validity: "365 days", Data: "2.5GB/day", Unlimited5G: true,
					Calls: "Unlimited", SMS: "100 SMS/day",
					OTT: []string{"Netflix", "Disney+ Hotstar", "Amazon Prime"},
				},
			},
		},
		Postpaid: []models.Plan{
			{
				PlanID: "POST399", Name: "Postpaid Basic", Price: price(399),
				Data: "40GB/month", Rollover: true, Calls: "Unlimited", SMS: "100 SMS/day",
				Connections: 1, OTT: []string{},
			},
			{
				PlanID: "POST599", Name: "Postpaid Plus", Price: price(599),
				Data: "75GB/month", Rollover: true, Calls: "Unlimited", SMS: "100 SMS/day",
				Connections: 2, OTT: []string{"Netflix Basic", "Amazon Prime"},
				Popular: true,
			},
			{
				PlanID: "POST999", Name: "Postpaid Premium", Price: price(999),
				Data: "150GB/month", Rollover: true, Calls: "Unlimited", SMS: "Unlimited",
				Connections: 3, OTT: []string{"Netflix Standard", "Disney+ Hotstar", "Amazon Prime"},
			},
			{
				PlanID: "POST1599", Name: "Postpaid Platinum", Price: price(1599),
				Data: "200GB/month", Rollover: true, Calls: "Unlimited", SMS: "Unlimited",
				Connections: 4, OTT: []string{"Netflix Premium", "Disney+ Hotstar", "Amazon Prime", "YouTube Premium"},
				Popular: true,
			},
		},
	}
}
