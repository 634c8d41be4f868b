// Package plans maps user input onto the plan catalog: prices from the
// settings table, PIX discount, plan duration and credential expiry.
package plans

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/iptvbot/internal/storage"
)

// Plan keys as stored on subscription and renewal rows.
const (
	Monthly    = "mensal"
	Quarterly  = "trimestral"
	Semiannual = "semestral"
	Annual     = "anual"
)

// ExpiryLayout renders credential expiry timestamps for chat messages.
const ExpiryLayout = "02/01/2006 15:04"

// Plan is one sellable catalog entry.
type Plan struct {
	Key    string
	Label  string
	Months int
	Price  float64
}

var order = []struct {
	key        string
	label      string
	months     int
	settingKey string
	fallback   float64
}{
	{Monthly, "Mensal", 1, storage.SettingMonthlyPrice, 45.00},
	{Quarterly, "Trimestral", 3, storage.SettingQuarterlyPrice, 120.00},
	{Semiannual, "Semestral", 6, storage.SettingSemiannualPrice, 210.00},
	{Annual, "Anual", 12, storage.SettingAnnualPrice, 420.00},
}

// Catalog builds the sellable plans in menu order from the settings map.
func Catalog(settings map[string]string) []Plan {
	out := make([]Plan, 0, len(order))
	for _, o := range order {
		price := o.fallback
		if raw, ok := settings[o.settingKey]; ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				price = v
			}
		}
		out = append(out, Plan{Key: o.key, Label: o.label, Months: o.months, Price: price})
	}
	return out
}

// Resolve matches the user's plan choice, accepting the menu number or the
// plan name anywhere in the message. The second result is false when nothing
// matches.
func Resolve(input string, settings map[string]string) (Plan, bool) {
	catalog := Catalog(settings)
	choice := strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(catalog) {
			return catalog[n-1], true
		}
		return Plan{}, false
	}
	for _, p := range catalog {
		if strings.Contains(choice, p.Key) {
			return p, true
		}
	}
	return Plan{}, false
}

// DurationLabel renders the plan length the way chat messages show it.
func DurationLabel(plan string) string {
	if m := Months(plan); m > 1 {
		return fmt.Sprintf("%d meses", m)
	}
	return "1 mês"
}

// Months returns how many months a plan name buys. Unknown names count as one.
func Months(plan string) int {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case Quarterly:
		return 3
	case Semiannual:
		return 6
	case Annual:
		return 12
	default:
		return 1
	}
}

// PixDiscount applies the 5% PIX discount rounded to cents.
func PixDiscount(price float64) float64 {
	return math.Round(price*0.95*100) / 100
}

// FormatPrice renders a price the way chat messages show it.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// DeviceLabel maps the device menu answer to its canonical label, accepting
// the option number or common device names. Free-form answers pass through
// untouched.
func DeviceLabel(input string) string {
	raw := strings.TrimSpace(input)
	low := strings.ToLower(raw)
	switch {
	case low == "1", strings.Contains(low, "android"):
		return "Android"
	case low == "2", strings.Contains(low, "iphone"), strings.Contains(low, "ios"), strings.Contains(low, "apple"):
		return "iPhone"
	case low == "3", strings.Contains(low, "smart tv"), strings.Contains(low, "samsung"), strings.Contains(low, "lg"):
		return "Smart TV"
	case low == "4", strings.Contains(low, "box"):
		return "TV Box"
	case low == "5", strings.Contains(low, "computador"), strings.Contains(low, "pc"), strings.Contains(low, "notebook"):
		return "Computador"
	default:
		return raw
	}
}

// TestDuration reads the trial length from settings, defaulting to six hours.
func TestDuration(settings map[string]string) time.Duration {
	hours := 6
	if raw, ok := settings[storage.SettingTestDuration]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 {
			hours = v
		}
	}
	return time.Duration(hours) * time.Hour
}

// SubscriptionExpiry computes when a plan bought now runs out.
func SubscriptionExpiry(now time.Time, plan string) time.Time {
	return now.AddDate(0, Months(plan), 0)
}

// FormatExpiry renders an expiry timestamp for chat messages.
func FormatExpiry(t time.Time) string {
	return t.Format(ExpiryLayout)
}
