package catalog

import (
	"github.com/mcclellann/telecare/pkg/models"
	"github.com/mcclellann/telecare/pkg/store"
	"github.com/sirupsen/logrus"
)

// Service answers plan catalog queries. The catalog is re-read from storage on
// every call.
type Service struct {
	storage store.CatalogStorage
	log     *logrus.Logger
}

func NewService(s store.CatalogStorage, l *logrus.Logger) *Service {
	return &Service{storage: s, log: l}
}

// AllPlans returns the full catalog tree, or an empty tree if it cannot be loaded.
func (s *Service) AllPlans() *models.Catalog {
	catalog, err := s.storage.GetCatalog()
	if err != nil {
		s.log.WithError(err).Error("Error loading plans")
		catalog = &models.Catalog{}
	}
	if catalog.Prepaid == nil {
		catalog.Prepaid = map[models.Category][]models.Plan{}
	}
	if catalog.Postpaid == nil {
		catalog.Postpaid = []models.Plan{}
	}
	return catalog
}

// PrepaidPlans returns the plans in category, or every prepaid plan when
// category is empty.
func (s *Service) PrepaidPlans(category models.Category) []models.Plan {
	return prepaid(s.AllPlans(), category)
}

func prepaid(c *models.Catalog, category models.Category) []models.Plan {
	plans := []models.Plan{}
	if category != "" {
		return append(plans, c.Prepaid[category]...)
	}
	for _, cat := range c.Categories() {
		plans = append(plans, c.Prepaid[cat]...)
	}
	return plans
}

func (s *Service) PostpaidPlans() []models.Plan {
	return s.AllPlans().Postpaid
}

// PopularPlans returns every plan flagged popular, prepaid before postpaid.
func (s *Service) PopularPlans() []models.Plan {
	c := s.AllPlans()
	popular := []models.Plan{}
	for _, p := range prepaid(c, "") {
		if p.Popular {
			popular = append(popular, p)
		}
	}
	for _, p := range c.Postpaid {
		if p.Popular {
			popular = append(popular, p)
		}
	}
	return popular
}

// PlanByID scans prepaid categories, then postpaid plans. The first match wins.
func (s *Service) PlanByID(id string) (*models.Plan, bool) {
	c := s.AllPlans()
	for _, p := range prepaid(c, "") {
		if p.PlanID == id {
			return &p, true
		}
	}
	for _, p := range c.Postpaid {
		if p.PlanID == id {
			return &p, true
		}
	}
	return nil, false
}
