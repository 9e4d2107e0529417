package models

// AccountOverview is the buyer's account page: profile, order history and
// suggestions in one round trip.
type AccountOverview struct {
	User            *User     `json:"user"`
	Orders          []Order   `json:"orders"`
	Recommendations []Product `json:"recommendations"`
}

type HomePage struct {
	Popular        []Product  `json:"popular"`
	Trending       []Product  `json:"trending"`
	Categories     []Category `json:"categories"`
	RecentlyViewed []Product  `json:"recently_viewed"`
}

// ProductDetailPage bundles everything the product page renders. Only
// Product is required; the rest degrade to empty values.
type ProductDetailPage struct {
	Product        *Product     `json:"product"`
	ReviewStats    *ReviewStats `json:"review_stats"`
	Reviews        []Review     `json:"reviews"`
	Similar        []Product    `json:"similar"`
	BoughtTogether []Product    `json:"bought_together"`
	SellerOther    []Product    `json:"seller_other"`
}
