package domain

// Category is a spending category suggested for a document.
type Category string

const (
	CategoryFood       Category = "food"
	CategoryTransport  Category = "transport"
	CategoryHousing    Category = "housing"
	CategoryHealth     Category = "health"
	CategoryLeisure    Category = "leisure"
	CategoryEducation  Category = "education"
	CategoryClothing   Category = "clothing"
	CategoryTechnology Category = "technology"
	CategoryOther      Category = "other"
)

// CategoryPriority is the tie-break order, highest first.
var CategoryPriority = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryHealth,
	CategoryLeisure,
	CategoryEducation,
	CategoryClothing,
	CategoryTechnology,
	CategoryOther,
}

// CategorySuggestion is the categorizer output.
type CategorySuggestion struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}
