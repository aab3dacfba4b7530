package mealplan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateWeights(t *testing.T) {
	weights := AllocateWeights([]string{"Breakfast", "Lunch", "Dinner"})
	assert.Equal(t, map[string]float64{"Breakfast": 0.27, "Lunch": 0.36, "Dinner": 0.36}, weights)

	weights = AllocateWeights([]string{"Breakfast", "Lunch", "Snack", "Dinner"})
	assert.Equal(t, 0.15, weights["Snack"])
	assert.Equal(t, 0.23, weights["Breakfast"])
}

func TestAllocateWeightsUnknownNamesUseDefault(t *testing.T) {
	weights := AllocateWeights(SlotNames(7))
	for _, w := range weights {
		assert.Equal(t, 0.14, w)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	for n := 1; n <= 7; n++ {
		t.Run(fmt.Sprintf("%d slots", n), func(t *testing.T) {
			sum := 0.0
			for _, w := range AllocateWeights(SlotNames(n)) {
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 0.02+1e-9)
		})
	}
}

func TestAssignTargets(t *testing.T) {
	slots := AssignTargets(NewSlots(3), 2400, 120)

	assert.Equal(t, "Breakfast", slots[0].Name)
	assert.InDelta(t, 0.27*2400, slots[0].CalorieTarget, 1e-9)
	assert.InDelta(t, 0.36*120, slots[1].ProteinTarget, 1e-9)
	assert.Equal(t, SlotLunchDinner, slots[2].Category)
}

func TestAdaptiveTarget(t *testing.T) {
	assert.Equal(t, 700.0, adaptiveTarget(2400, 1000, 2))
	assert.Equal(t, 0.0, adaptiveTarget(2400, 3000, 1))
	assert.Equal(t, 0.0, adaptiveTarget(2400, 0, 0))
}
