package models

import (
	"math"
	"time"
)

// MaxEggs bounds every stored egg count so the float to int conversion stays exact.
const MaxEggs = math.MaxInt32

// DailyRecord captures the actual production of one calendar day. IsCompleted is a
// cached value derived from the record and the goal of the same day.
type DailyRecord struct {
	Day         string    `bson:"day" json:"day"`
	Milk        float64   `bson:"milk" json:"milk"`
	Eggs        int       `bson:"eggs" json:"eggs"`
	Wool        float64   `bson:"wool" json:"wool"`
	IsCompleted bool      `bson:"is_completed" json:"is_completed"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// NewDailyRecord returns an empty, not completed record for the day.
func NewDailyRecord(day string) DailyRecord {
	return DailyRecord{Day: day}
}

// Actual returns the recorded quantity of the product.
func (r DailyRecord) Actual(p ProductType) float64 {
	switch p {
	case ProductMilk:
		return r.Milk
	case ProductEggs:
		return float64(r.Eggs)
	case ProductWool:
		return r.Wool
	default:
		return 0
	}
}

// Set overwrites the product quantity. Eggs are truncated to a whole count and
// saturated to [0, MaxEggs].
func (r *DailyRecord) Set(p ProductType, value float64) error {
	switch p {
	case ProductMilk:
		r.Milk = value
	case ProductEggs:
		r.Eggs = EggCount(value)
	case ProductWool:
		r.Wool = value
	default:
		return ErrUnknownProduct
	}
	return nil
}

// EggCount truncates v to a whole count within [0, MaxEggs]. NaN maps to 0.
func EggCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxEggs:
		return MaxEggs
	default:
		return int(v)
	}
}
