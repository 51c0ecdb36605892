// Package plans holds the static subscription plan catalog. Plans are
// configuration data compiled into the binary, not database rows; subscription
// records reference them by string ID and fall back to a placeholder when the
// catalog entry has been retired.
package plans

import "time"

// Plan describes one purchasable subscription tier.
type Plan struct {
	ID       string   `json:"id"`       // Catalog identifier, referenced by subscriptions.
	Name     string   `json:"name"`     // Display name.
	Price    float64  `json:"price"`    // Price in Currency units.
	Days     int      `json:"days"`     // Nominal duration in days, for display.
	Popular  bool     `json:"popular"`  // Highlighted in the storefront.
	Features []string `json:"features"` // Feature labels.
}

// Currency is the settlement currency for all catalog prices.
const Currency = "USDT"

// Catalog plan identifiers.
const (
	PlanWeekly    = "weekly"
	PlanMonthly   = "monthly"
	PlanQuarterly = "quarterly"
	PlanBiannual  = "biannual"
	PlanAnnual    = "annual"
)

// Catalog lists every purchasable plan in display order.
var Catalog = []Plan{
	{
		ID: PlanWeekly, Name: "Weekly", Price: 4.99, Days: 7,
		Features: []string{"highSpeedVPN", "unlimitedBandwidth", "multipleLocations", "basicSupport"},
	},
	{
		ID: PlanMonthly, Name: "Monthly", Price: 15.99, Days: 30, Popular: true,
		Features: []string{"highSpeedVPN", "unlimitedBandwidth", "multipleLocations", "prioritySupport", "advancedSecurity"},
	},
	{
		ID: PlanQuarterly, Name: "Quarterly", Price: 39.99, Days: 90,
		Features: []string{"highSpeedVPN", "unlimitedBandwidth", "multipleLocations", "prioritySupport", "advancedSecurity", "adBlocker"},
	},
	{
		ID: PlanBiannual, Name: "Biannual", Price: 69.99, Days: 180,
		Features: []string{"highSpeedVPN", "unlimitedBandwidth", "multipleLocations", "prioritySupport", "advancedSecurity", "adBlocker", "dedicatedIP"},
	},
	{
		ID: PlanAnnual, Name: "Annual", Price: 119.99, Days: 365,
		Features: []string{"highSpeedVPN", "unlimitedBandwidth", "multipleLocations", "prioritySupport", "advancedSecurity", "adBlocker", "dedicatedIP", "bestValue"},
	},
}

// Find returns the catalog plan with the given ID.
func Find(id string) (Plan, bool) {
	for _, plan := range Catalog {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// Unknown returns the placeholder rendered for subscriptions whose plan ID no
// longer exists in the catalog.
func Unknown(id string) Plan {
	return Plan{ID: id, Name: "Unknown Plan", Price: 0, Days: 0}
}

// AddDuration advances t by the plan's billing period. Week-based plans add
// whole days; the rest use calendar arithmetic with Go's AddDate rollover
// rules (Jan 31 + 1 month lands in early March).
func (p Plan) AddDuration(t time.Time) time.Time {
	switch p.ID {
	case PlanWeekly:
		return t.AddDate(0, 0, 7)
	case PlanMonthly:
		return t.AddDate(0, 1, 0)
	case PlanQuarterly:
		return t.AddDate(0, 3, 0)
	case PlanBiannual:
		return t.AddDate(0, 6, 0)
	case PlanAnnual:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// PaymentMethod describes one accepted settlement rail.
type PaymentMethod struct {
	ID      string `json:"id"`      // Method identifier sent by the client.
	Name    string `json:"name"`    // Display name.
	Network string `json:"network"` // Settlement network label.
}

// PaymentMethods lists the accepted settlement rails.
var PaymentMethods = []PaymentMethod{
	{ID: "usdt-trc20", Name: "USDT (TRC-20)", Network: "TRON"},
	{ID: "usdt-erc20", Name: "USDT (ERC-20)", Network: "Ethereum"},
}

// ValidPaymentMethod reports whether id is an accepted settlement rail.
func ValidPaymentMethod(id string) bool {
	for _, m := range PaymentMethods {
		if m.ID == id {
			return true
		}
	}
	return false
}
