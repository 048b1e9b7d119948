package models

import "time"

var catalog = []Booster{
	{
		ID:          "B001",
		Name:        "Minor Boost",
		Description: "A small, temporary increase in earnings.",
		Multiplier:  1.1,
		Price:       5,
		Kind:        Duration{Length: time.Hour},
	},
	{
		ID:          "B002",
		Name:        "Daily Surge",
		Description: "Boost your profits for a full day.",
		Multiplier:  1.3,
		Price:       20,
		Kind:        Duration{Length: 24 * time.Hour},
	},
	{
		ID:          "B003",
		Name:        "Weekly Bonanza",
		Description: "Keep the gains coming for a week.",
		Multiplier:  1.5,
		Price:       75,
		Kind:        Duration{Length: 7 * 24 * time.Hour},
	},
	{
		ID:          "B004",
		Name:        "One-Time Jackpot",
		Description: "A significant one-time profit injection.",
		Multiplier:  5,
		Price:       50,
		Kind:        OneTime{},
	},
	{
		ID:          "B005",
		Name:        "Permanent Advantage",
		Description: "A lasting increase to your base earning rate.",
		Multiplier:  1.05,
		Price:       200,
		Kind:        Permanent{},
	},
}

// Catalog returns a copy of the purchasable boosters in display order.
func Catalog() []Booster {
	out := make([]Booster, len(catalog))
	copy(out, catalog)
	return out
}

// Find looks a catalog entry up by id.
func Find(id string) (Booster, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Booster{}, false
}
