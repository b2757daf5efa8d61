package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// BillingCycle selects how tuition periods map onto the calendar.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleTermly  BillingCycle = "TERMLY"
)

// ParseBillingCycle normalises the casing variants seen upstream.
func ParseBillingCycle(raw string) (BillingCycle, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(BillingCycleMonthly):
		return BillingCycleMonthly, true
	case string(BillingCycleTermly):
		return BillingCycleTermly, true
	default:
		return BillingCycleMonthly, false
	}
}

// UnmarshalJSON accepts any casing; unknown values fall back to MONTHLY.
func (b *BillingCycle) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*b = BillingCycleMonthly
		return nil
	}
	*b, _ = ParseBillingCycle(raw)
	return nil
}

// ClassGroup is a fee band shared by several classes. StandardFee is a monthly rate.
type ClassGroup struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	StandardFee decimal.Decimal `json:"standardFee"`
}

// ClassGroups indexes class groups by identifier.
type ClassGroups map[string]ClassGroup

// Resolve looks up a class group by identifier.
func (g ClassGroups) Resolve(id string) (ClassGroup, bool) {
	if g == nil || id == "" {
		return ClassGroup{}, false
	}
	group, ok := g[id]
	return group, ok
}

// UnmarshalJSON accepts both the array form written by the desktop app and an
// object keyed by group id.
func (g *ClassGroups) UnmarshalJSON(data []byte) error {
	groups := ClassGroups{}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		for _, raw := range list {
			doc, err := decodeDoc(raw)
			if err != nil {
				continue
			}
			group := ClassGroup{ID: doc.str("id"), Name: doc.str("name"), StandardFee: doc.amount("standardFee")}
			if group.ID != "" {
				groups[group.ID] = group
			}
		}
		*g = groups
		return nil
	}
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err == nil {
		for id, raw := range keyed {
			doc, err := decodeDoc(raw)
			if err != nil {
				continue
			}
			groups[id] = ClassGroup{ID: id, Name: doc.str("name"), StandardFee: doc.amount("standardFee")}
		}
	}
	*g = groups
	return nil
}

// AppSettings is the school-wide billing configuration.
type AppSettings struct {
	ID           string       `json:"id,omitempty"`
	SchoolName   string       `json:"schoolName,omitempty"`
	BillingCycle BillingCycle `json:"billingCycle"`
	ClassGroups  ClassGroups  `json:"classGroups"`
}

func (s *AppSettings) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	cycle, _ := ParseBillingCycle(doc.str("billingCycle"))
	*s = AppSettings{
		ID:           doc.str("id"),
		SchoolName:   doc.str("schoolName"),
		BillingCycle: cycle,
	}
	if raw := doc.raw("classGroups"); raw != nil {
		_ = s.ClassGroups.UnmarshalJSON(raw)
	}
	return nil
}

// DefaultSettings is used until the settings collection has been mirrored.
func DefaultSettings() AppSettings {
	return AppSettings{BillingCycle: BillingCycleMonthly, ClassGroups: ClassGroups{}}
}
