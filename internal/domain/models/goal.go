package models

// DailyGoal holds the required production of one calendar day.
type DailyGoal struct {
	Day  string  `bson:"day" json:"day"`
	Milk float64 `bson:"milk" json:"milk"`
	Eggs int     `bson:"eggs" json:"eggs"`
	Wool float64 `bson:"wool" json:"wool"`
}

// Required returns the goal quantity of the product.
func (g DailyGoal) Required(p ProductType) float64 {
	switch p {
	case ProductMilk:
		return g.Milk
	case ProductEggs:
		return float64(g.Eggs)
	case ProductWool:
		return g.Wool
	default:
		return 0
	}
}
