package models

// Relation identifies one of the four output relations.
type Relation int

const (
	Items Relation = iota
	Categories
	Bids
	Users
)

// AllRelations lists the relations in the order the extractors run.
var AllRelations = []Relation{Items, Categories, Bids, Users}

// Name is the upper-case destination base name, e.g. ITEMS.
func (r Relation) Name() string {
	switch r {
	case Items:
		return "ITEMS"
	case Categories:
		return "CATEGORIES"
	case Bids:
		return "BIDS"
	case Users:
		return "USERS"
	default:
		return "UNKNOWN"
	}
}

// Table is the SQL table the relation loads into.
func (r Relation) Table() string {
	switch r {
	case Items:
		return "items"
	case Categories:
		return "categories"
	case Bids:
		return "bids"
	case Users:
		return "users"
	default:
		return ""
	}
}

// Columns returns the column names in row order.
func (r Relation) Columns() []string {
	switch r {
	case Items:
		return []string{"item_id", "name", "currently", "buy_price", "first_bid",
			"number_of_bids", "started", "ends", "description", "seller_id"}
	case Categories:
		return []string{"category", "item_id"}
	case Bids:
		return []string{"item_id", "bidder_id", "bid_time", "amount"}
	case Users:
		return []string{"user_id", "location", "rating", "country"}
	default:
		return nil
	}
}

func (r Relation) String() string { return r.Name() }

// Row encoding shared by the writers and readers of relation files.
const (
	NullToken = "NULL"
	Delimiter = '|'
)
