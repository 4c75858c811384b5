package models

// Confidence levels for an LLM-derived nutrition estimate
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// NutritionResult is the canonical nutrition analysis shape returned to
// clients, regardless of which upstream provider produced it.
type NutritionResult struct {
	TotalCalories int             `json:"totalCalories"`
	TotalProtein  int             `json:"totalProtein"`
	TotalCarbs    int             `json:"totalCarbs"`
	TotalFat      int             `json:"totalFat"`
	Breakdown     []BreakdownItem `json:"breakdown"`
	ServingSize   string          `json:"servingSize"`
	Confidence    string          `json:"confidence"`
	Summary       string          `json:"summary"`
	Timestamp     string          `json:"timestamp"`
}

// BreakdownItem is a per-food-item line of a nutrition result.
type BreakdownItem struct {
	Item     string  `json:"item"`
	Quantity string  `json:"quantity,omitempty"`
	Calories int     `json:"calories"`
	Protein  int     `json:"protein"`
	Carbs    int     `json:"carbs"`
	Fat      int     `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}
