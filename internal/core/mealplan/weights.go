package mealplan

import "math"

const defaultSlotWeight = 3.0

var baseSlotWeights = map[string]float64{
	SlotNameBreakfast:      3,
	SlotNameLunch:          4,
	SlotNameDinner:         4,
	SlotNameMidMorning:     2,
	SlotNameAfternoonSnack: 2,
	SlotNameEveningSnack:   2,
	SlotNameSnack:          2,
}

// BaseWeight 時段的基礎權重，未知名稱（含 Meal k）為 3
func BaseWeight(name string) float64 {
	if w, ok := baseSlotWeights[name]; ok {
		return w
	}
	return defaultSlotWeight
}

// AllocateWeights 將基礎權重正規化並四捨五入到小數兩位
func AllocateWeights(names []string) map[string]float64 {
	total := 0.0
	for _, name := range names {
		total += BaseWeight(name)
	}

	weights := make(map[string]float64, len(names))
	if total == 0 {
		return weights
	}
	for _, name := range names {
		weights[name] = roundTo(BaseWeight(name)/total, 2)
	}
	return weights
}

// AssignTargets 依權重把每日目標分配到各時段（固定模式，不回饋）
func AssignTargets(slots []Slot, targetCalories, targetProtein float64) []Slot {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name
	}
	weights := AllocateWeights(names)

	out := make([]Slot, len(slots))
	for i, s := range slots {
		s.Weight = weights[s.Name]
		s.CalorieTarget = s.Weight * targetCalories
		s.ProteinTarget = s.Weight * targetProtein
		out[i] = s
	}
	return out
}

// adaptiveTarget 剩餘目標平均分到剩餘時段，低於 0 時以 0 計
func adaptiveTarget(daily float64, consumed int, slotsLeft int) float64 {
	if slotsLeft <= 0 {
		return 0
	}
	remaining := daily - float64(consumed)
	if remaining < 0 {
		remaining = 0
	}
	return remaining / float64(slotsLeft)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
