package airquality

// Category is the human-readable band of an air-quality index value.
type Category string

const (
	CategoryGood     Category = "Good"
	CategoryFair     Category = "Fair"
	CategoryModerate Category = "Moderate"
	CategoryPoor     Category = "Poor"
	CategoryVeryPoor Category = "Very Poor"
	CategoryUnknown  Category = "Unknown"
)

var categories = map[int]Category{
	1: CategoryGood,
	2: CategoryFair,
	3: CategoryModerate,
	4: CategoryPoor,
	5: CategoryVeryPoor,
}

// Classify maps the provider's 1-5 index onto its category.
func Classify(aqi int) Category {
	if c, ok := categories[aqi]; ok {
		return c
	}
	return CategoryUnknown
}
