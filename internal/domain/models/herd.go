package models

import (
	"math"
	"time"
)

// Herd is a named group of animals with per-species counts.
type Herd struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Cows      int       `bson:"cows" json:"cows"`
	Chickens  int       `bson:"chickens" json:"chickens"`
	Sheep     int       `bson:"sheep" json:"sheep"`
	Goats     int       `bson:"goats" json:"goats"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// HerdTotals sums animal counts across herds.
type HerdTotals struct {
	Cows     int `json:"cows"`
	Chickens int `json:"chickens"`
	Sheep    int `json:"sheep"`
	Goats    int `json:"goats"`
}

// Totals aggregates the animal counts of all herds.
func Totals(herds []Herd) HerdTotals {
	var t HerdTotals
	for _, h := range herds {
		t.Cows = addCount(t.Cows, h.Cows)
		t.Chickens = addCount(t.Chickens, h.Chickens)
		t.Sheep = addCount(t.Sheep, h.Sheep)
		t.Goats = addCount(t.Goats, h.Goats)
	}
	return t
}

// Productive reports whether any animal that yields a tracked product is present.
// Goats are counted in herds but produce nothing that is tracked.
func (t HerdTotals) Productive() bool {
	return t.Cows > 0 || t.Chickens > 0 || t.Sheep > 0
}

// addCount sums two non-negative counts, saturating at math.MaxInt.
func addCount(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
