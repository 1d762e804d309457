package tracker

// Mood category names.
const (
	CategoryDeepDepression = "Deep Depression"
	CategoryDepression     = "Depression"
	CategoryEuthymic       = "Euthymic"
	CategoryHypomania      = "Hypomania"
	CategoryMania          = "Mania"
)

// MinScore and MaxScore bound a mood score.
const (
	MinScore = 0
	MaxScore = 10
)

// Category is a named band of the mood score together with its display colour.
type Category struct {
	Name  string
	Color string
	Min   int
	Max   int
}

var categories = []Category{
	{Name: CategoryDeepDepression, Color: "#8B0000", Min: 0, Max: 1},
	{Name: CategoryDepression, Color: "#CD5C5C", Min: 2, Max: 3},
	{Name: CategoryEuthymic, Color: "#4CAF50", Min: 4, Max: 6},
	{Name: CategoryHypomania, Color: "#FFD700", Min: 7, Max: 8},
	{Name: CategoryMania, Color: "#FF4500", Min: 9, Max: 10},
}

// CategoryForScore maps a score to its band: <=1 Deep Depression, <=3
// Depression, <=6 Euthymic, <=8 Hypomania, anything higher Mania.
// Every label and colour in the application is derived from here.
func CategoryForScore(score int) Category {
	switch {
	case score <= 1:
		return categories[0]
	case score <= 3:
		return categories[1]
	case score <= 6:
		return categories[2]
	case score <= 8:
		return categories[3]
	default:
		return categories[4]
	}
}

// Categories returns the legend of all bands, lowest first.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
