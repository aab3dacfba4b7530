package mealplan

import (
	"fmt"
	"math"
)

// SlotCategory 餐點時段的類別，在產生時段名稱時一併決定
type SlotCategory int

const (
	SlotNumbered SlotCategory = iota
	SlotBreakfast
	SlotLunchDinner
	SlotSnack
)

func (c SlotCategory) String() string {
	switch c {
	case SlotBreakfast:
		return "breakfast"
	case SlotLunchDinner:
		return "lunch_dinner"
	case SlotSnack:
		return "snack"
	default:
		return "numbered"
	}
}

// MarshalText 以名稱輸出
func (c SlotCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 反序列化，未知名稱視為編號時段
func (c *SlotCategory) UnmarshalText(text []byte) error {
	switch string(text) {
	case "breakfast":
		*c = SlotBreakfast
	case "lunch_dinner":
		*c = SlotLunchDinner
	case "snack":
		*c = SlotSnack
	default:
		*c = SlotNumbered
	}
	return nil
}

// MealCategory 對應到目錄的 MealCat；編號時段沒有對應
func (c SlotCategory) MealCategory() (MealCategory, bool) {
	switch c {
	case SlotBreakfast:
		return MealCategoryBreakfast, true
	case SlotLunchDinner:
		return MealCategoryLunchDinner, true
	case SlotSnack:
		return MealCategorySnacks, true
	}
	return "", false
}

// 時段名稱
const (
	SlotNameBreakfast      = "Breakfast"
	SlotNameLunch          = "Lunch"
	SlotNameDinner         = "Dinner"
	SlotNameSnack          = "Snack"
	SlotNameMidMorning     = "Mid-Morning"
	SlotNameAfternoonSnack = "Afternoon Snack"
	SlotNameEveningSnack   = "Evening Snack"
)

const (
	// DefaultSlotCount 空目錄或平均值無法計算時使用
	DefaultSlotCount = 3
	minSlotCount     = 2
	// MaxSlotCount max_slots 的上限
	MaxSlotCount = 24
	// 一餐約提供平均份量的 80%，偏向多排幾餐
	portionFactor = 0.8
)

var namedSlotCategories = map[string]SlotCategory{
	SlotNameBreakfast:      SlotBreakfast,
	SlotNameLunch:          SlotLunchDinner,
	SlotNameDinner:         SlotLunchDinner,
	SlotNameSnack:          SlotSnack,
	SlotNameMidMorning:     SlotSnack,
	SlotNameAfternoonSnack: SlotSnack,
	SlotNameEveningSnack:   SlotSnack,
}

// Slot 一個餐點時段及其分配到的目標
type Slot struct {
	Name          string       `json:"name"`
	Category      SlotCategory `json:"category"`
	Weight        float64      `json:"weight"`
	CalorieTarget float64      `json:"calorie_target"`
	ProteinTarget float64      `json:"protein_target"`
}

// SlotNames 依數量產生時段名稱
func SlotNames(count int) []string {
	switch {
	case count <= 0:
		return nil
	case count <= 3:
		return []string{SlotNameBreakfast, SlotNameLunch, SlotNameDinner}[:count]
	case count == 4:
		return []string{SlotNameBreakfast, SlotNameLunch, SlotNameSnack, SlotNameDinner}
	case count == 5:
		return []string{SlotNameBreakfast, SlotNameMidMorning, SlotNameLunch, SlotNameAfternoonSnack, SlotNameDinner}
	case count == 6:
		return []string{SlotNameBreakfast, SlotNameMidMorning, SlotNameLunch, SlotNameAfternoonSnack, SlotNameDinner, SlotNameEveningSnack}
	}

	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Meal %d", i+1)
	}
	return names
}

// NewSlots 依數量產生時段，並附上類別
func NewSlots(count int) []Slot {
	names := SlotNames(count)
	slots := make([]Slot, len(names))
	for i, name := range names {
		slots[i] = Slot{Name: name, Category: namedSlotCategories[name]}
	}
	return slots
}

// SlotCount 依平均熱量與蛋白質估算時段數，兩者取大
func SlotCount(catalog *Catalog, targetCalories, targetProtein float64, maxSlots int) int {
	if catalog.Empty() {
		return DefaultSlotCount
	}

	avgCal, avgProtein := catalog.Means()
	if !usableMean(avgCal) || !usableMean(avgProtein) {
		return DefaultSlotCount
	}

	byCal := clampSlots(targetCalories/(avgCal*portionFactor), maxSlots)
	byProtein := clampSlots(targetProtein/(avgProtein*portionFactor), maxSlots)
	if byProtein > byCal {
		return byProtein
	}
	return byCal
}

// PlanSlots 決定時段數量與名稱
func PlanSlots(catalog *Catalog, targetCalories, targetProtein float64, maxSlots int) []Slot {
	return NewSlots(SlotCount(catalog, targetCalories, targetProtein, maxSlots))
}

func usableMean(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clampSlots 先套下限再套上限，與 min(max_slots, max(2, n)) 相同。max_slots 不超過 MaxSlotCount
func clampSlots(estimate float64, maxSlots int) int {
	if maxSlots > MaxSlotCount {
		maxSlots = MaxSlotCount
	}
	n := minSlotCount
	if f := math.Floor(estimate); f > float64(n) {
		if f > MaxSlotCount {
			f = MaxSlotCount
		}
		n = int(f)
	}
	if n > maxSlots {
		n = maxSlots
	}
	return n
}
