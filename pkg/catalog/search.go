package catalog

import (
	"fmt"
	"strings"

	"github.com/mcclellann/telecare/pkg/models"
)

// Intent selects which block of plans SearchPlans renders.
type Intent int

const (
	IntentUnlimited Intent = iota
	IntentDataOnly
	IntentLongValidity
	IntentPostpaid
)

var (
	dataOnlyCues     = []string{"data only", "internet only"}
	longValidityCues = []string{"annual", "yearly", "long term", "365"}
	postpaidCues     = []string{"postpaid", "bill", "monthly"}
)

const searchHeader = "📱 **Available Recharge Plans**\n\n"

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

// ClassifySearch picks the first matching intent in the order data-only,
// long-validity, postpaid; anything else falls back to unlimited plans.
func ClassifySearch(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, dataOnlyCues):
		return IntentDataOnly
	case containsAny(q, longValidityCues):
		return IntentLongValidity
	case containsAny(q, postpaidCues):
		return IntentPostpaid
	default:
		return IntentUnlimited
	}
}

// SearchPlans renders the plans relevant to query as a text block.
func (s *Service) SearchPlans(query string) string {
	c := s.AllPlans()
	var sb strings.Builder
	sb.WriteString(searchHeader)

	switch ClassifySearch(query) {
	case IntentDataOnly:
		sb.WriteString("🌐 **Data Only Plans:**\n")
		for _, p := range c.Prepaid[models.CategoryDataOnly] {
			fmt.Fprintf(&sb, "• **%s** - ₹%s\n", p.Name, p.Price)
			fmt.Fprintf(&sb, "  Data: %s, Validity: %s\n\n", p.Data, p.Validity)
		}
	case IntentLongValidity:
		sb.WriteString("📅 **Long Validity Plans:**\n")
		for _, p := range c.Prepaid[models.CategoryLongValidity] {
			fmt.Fprintf(&sb, "• **%s** - ₹%s\n", p.Name, p.Price)
			fmt.Fprintf(&sb, "  Data: %s, Validity: %s\n", p.Data, p.Validity)
			writeOTT(&sb, p)
			sb.WriteString("\n")
		}
	case IntentPostpaid:
		sb.WriteString("💼 **Postpaid Plans:**\n")
		for _, p := range c.Postpaid {
			fmt.Fprintf(&sb, "• **%s** - ₹%s/month\n", p.Name, p.Price)
			fmt.Fprintf(&sb, "  Data: %s, Connections: %d\n", p.Data, p.Connections)
			writeOTT(&sb, p)
			if p.Popular {
				sb.WriteString("  ⭐ Popular Choice\n")
			}
			sb.WriteString("\n")
		}
	default:
		sb.WriteString("🔥 **Popular Unlimited Plans:**\n")
		for _, p := range c.Prepaid[models.CategoryUnlimited] {
			star := ""
			if p.Popular {
				star = " ⭐"
			}
			fmt.Fprintf(&sb, "• **%s** - ₹%s%s\n", p.Name, p.Price, star)
			fmt.Fprintf(&sb, "  Data: %s, Validity: %s\n", p.Data, p.Validity)
			fmt.Fprintf(&sb, "  5G: %s\n", yesNo(p.Unlimited5G))
			writeOTT(&sb, p)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeOTT(sb *strings.Builder, p models.Plan) {
	if len(p.OTT) > 0 {
		fmt.Fprintf(sb, "  OTT: %s\n", strings.Join(p.OTT, ", "))
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
