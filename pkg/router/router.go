// Package router classifies customer messages by keyword and gathers the
// billing or plan context that goes with them.
package router

import (
	"fmt"
	"strings"
)

type Intent string

const (
	IntentRecharge Intent = "recharge"
	IntentBilling  Intent = "billing"
	IntentGeneral  Intent = "general"
)

var (
	rechargeKeywords = []string{"recharge", "plan", "prepaid", "postpaid", "topup", "top up", "data", "validity"}
	billingKeywords  = []string{"bill", "payment", "due", "pay", "invoice", "amount", "balance", "pending"}
)

const (
	plansLabel   = "AVAILABLE PLANS:"
	billingLabel = "USER BILLING DATA:"
)

// BillSearcher returns a billing digest for the number mentioned in a query.
type BillSearcher interface {
	SearchBills(query string) string
}

// PlanSearcher returns the plans relevant to a query.
type PlanSearcher interface {
	SearchPlans(query string) string
}

// Routed is a classified message with the context gathered for it.
type Routed struct {
	Intent  Intent `json:"intent"`
	Query   string `json:"query"`
	Context string `json:"context,omitempty"`
	// Prompt is Context and Query combined; for general messages it is Query unchanged.
	Prompt string `json:"prompt"`
}

type Router struct {
	bills BillSearcher
	plans PlanSearcher
}

func New(bills BillSearcher, plans PlanSearcher) *Router {
	return &Router{bills: bills, plans: plans}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Classify matches message against the keyword sets. Recharge keywords are
// checked first, so a message matching both sets routes to recharge.
func Classify(message string) Intent {
	low := strings.ToLower(message)
	switch {
	case containsAny(low, rechargeKeywords):
		return IntentRecharge
	case containsAny(low, billingKeywords):
		return IntentBilling
	default:
		return IntentGeneral
	}
}

// Route classifies message and dispatches it to the matching lookup.
func (r *Router) Route(message string) Routed {
	routed := Routed{Intent: Classify(message), Query: message, Prompt: message}
	switch routed.Intent {
	case IntentRecharge:
		routed.Context = r.plans.SearchPlans(message)
		routed.Prompt = compose(plansLabel, routed.Context, message)
	case IntentBilling:
		routed.Context = r.bills.SearchBills(message)
		routed.Prompt = compose(billingLabel, routed.Context, message)
	}
	return routed
}

func compose(label, context, query string) string {
	return fmt.Sprintf("%s\n%s\n\nUSER QUERY: %s", label, context, query)
}
