package classification

// DefaultRules returns the default keyword rules. Rule order is fixed and
// significant: the first category whose tier matches wins ties.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: "Food & Drink",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"starbucks", "mcdonald", "chipotle", "domino", "subway", "kfc", "burger king", "dunkin"}},
				{Confidence: TierMedium, Keywords: []string{"coffee", "restaurant", "pizza", "sushi", "diner", "bistro", "pub", "bar & grill"}},
				{Confidence: TierLow, Keywords: []string{"market", "bakery", "deli", "cafe", "eatery"}},
			},
		},
		{
			Category: "Groceries",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"whole foods", "trader joe", "safeway", "kroger", "aldi", "albertsons"}},
				{Confidence: TierMedium, Keywords: []string{"grocery", "supermarket"}},
				{Confidence: TierLow, Keywords: []string{"foods", "produce"}},
			},
		},
		{
			Category: "Transportation",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"uber", "lyft", "shell oil", "chevron", "exxon"}},
				{Confidence: TierMedium, Keywords: []string{"gas station", "fuel", "parking", "taxi", "toll"}},
				{Confidence: TierLow, Keywords: []string{"transit", "metro", "bus"}},
			},
		},
		{
			Category: "Shopping",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"amazon", "walmart", "target", "best buy", "ikea"}},
				{Confidence: TierMedium, Keywords: []string{"store", "outlet", "mall"}},
				{Confidence: TierLow, Keywords: []string{"shop", "retail"}},
			},
		},
		{
			Category: "Entertainment",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"netflix", "spotify", "hulu", "steam", "playstation", "disney+"}},
				{Confidence: TierMedium, Keywords: []string{"cinema", "theater", "concert", "streaming"}},
				{Confidence: TierLow, Keywords: []string{"tickets", "games"}},
			},
		},
		{
			Category: "Utilities",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"comcast", "verizon", "at&t", "t-mobile"}},
				{Confidence: TierMedium, Keywords: []string{"electric", "water bill", "internet", "utility"}},
				{Confidence: TierLow, Keywords: []string{"phone", "broadband"}},
			},
		},
		{
			Category: "Health & Fitness",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"cvs pharmacy", "walgreens", "planet fitness"}},
				{Confidence: TierMedium, Keywords: []string{"pharmacy", "gym", "doctor", "dental", "clinic"}},
				{Confidence: TierLow, Keywords: []string{"health", "fitness", "medical"}},
			},
		},
		{
			Category: "Travel",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"airbnb", "booking.com", "expedia", "marriott", "hilton"}},
				{Confidence: TierMedium, Keywords: []string{"hotel", "airline", "flight", "hostel"}},
				{Confidence: TierLow, Keywords: []string{"travel", "resort"}},
			},
		},
		{
			Category: "Housing",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"mortgage", "rent payment"}},
				{Confidence: TierMedium, Keywords: []string{"rent", "landlord", "hoa"}},
				{Confidence: TierLow, Keywords: []string{"housing", "lease"}},
			},
		},
		{
			Category: "Income",
			Tiers: []Tier{
				{Confidence: TierHigh, Keywords: []string{"payroll", "direct deposit", "salary"}},
				{Confidence: TierMedium, Keywords: []string{"refund", "reimbursement", "dividend"}},
				{Confidence: TierLow, Keywords: []string{"deposit", "interest"}},
			},
		},
	}
}
