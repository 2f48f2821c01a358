package subscription

import "errors"

var ErrUnknownPlan = errors.New("unknown plan type")

type Plan struct {
	Type              string   `json:"type"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	PriceCents        int64    `json:"price_cents"`
	MaxCheckInsPerDay int      `json:"max_check_ins_per_day"`
	DurationDays      int      `json:"duration_days"`
	Features          []string `json:"features"`
}

func getPlans() []Plan {
	return []Plan{
		{
			Type:              "basic",
			Name:              "Basic",
			Description:       "Gym floor access, one visit a day",
			PriceCents:        15000000,
			MaxCheckInsPerDay: 1,
			DurationDays:      30,
			Features:          []string{"gym_floor", "locker"},
		},
		{
			Type:              "premium",
			Name:              "Premium",
			Description:       "Gym floor and group classes, two visits a day",
			PriceCents:        35000000,
			MaxCheckInsPerDay: 2,
			DurationDays:      30,
			Features:          []string{"gym_floor", "locker", "group_classes", "sauna"},
		},
		{
			Type:              "annual",
			Name:              "Annual",
			Description:       "Everything in Premium for a year, three visits a day",
			PriceCents:        350000000,
			MaxCheckInsPerDay: 3,
			DurationDays:      365,
			Features:          []string{"gym_floor", "locker", "group_classes", "sauna", "personal_trainer"},
		},
	}
}

func findPlan(planType string) (Plan, error) {
	for _, p := range getPlans() {
		if p.Type == planType {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownPlan
}
