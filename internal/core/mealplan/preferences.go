package mealplan

import (
	"fmt"
	"strings"

	"meal-planner/internal/pkg/common"
)

// Level 熱量或蛋白質的三分位等級，LevelAny 表示不限制
type Level int

const (
	LevelAny Level = iota
	LevelLow
	LevelModerate
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	default:
		return ""
	}
}

// ParseLevel 接受 low/moderate/high 以及單字母 l/m/h，空字串為不限制
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LevelAny, nil
	case "low", "l":
		return LevelLow, nil
	case "moderate", "m", "medium":
		return LevelModerate, nil
	case "high", "h":
		return LevelHigh, nil
	}
	return LevelAny, common.NewValidationError(fmt.Sprintf("invalid level %q: want low, moderate or high", s))
}

// PrepTime 準備時間分類，PrepAny 表示不限制
type PrepTime int

const (
	PrepAny PrepTime = iota
	PrepQuick
	PrepStandard
	PrepLong
)

func (p PrepTime) String() string {
	switch p {
	case PrepQuick:
		return "quick"
	case PrepStandard:
		return "standard"
	case PrepLong:
		return "long"
	default:
		return ""
	}
}

// ParsePrepTime 接受 quick/standard/long 以及 q/s/l
func ParsePrepTime(s string) (PrepTime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PrepAny, nil
	case "quick", "q":
		return PrepQuick, nil
	case "standard", "s":
		return PrepStandard, nil
	case "long", "l":
		return PrepLong, nil
	}
	return PrepAny, common.NewValidationError(fmt.Sprintf("invalid prep time %q: want quick, standard or long", s))
}

// PreferenceSet 使用者飲食偏好，零值代表沒有任何限制
type PreferenceSet struct {
	Vegetarian  bool
	Vegan       bool
	Pescatarian bool
	Easy        bool
	GlutenFree  bool
	DairyFree   bool
	Calories    Level
	Protein     Level
	PrepTime    PrepTime
}

// Mask 回傳偏好要求的旗標集合
func (p PreferenceSet) Mask() Flags {
	var mask Flags
	if p.Vegetarian {
		mask |= FlagVegetarian
	}
	if p.Vegan {
		mask |= FlagVegan
	}
	if p.Pescatarian {
		mask |= FlagPescatarian
	}
	if p.Easy {
		mask |= FlagEasy
	}
	if p.GlutenFree {
		mask |= FlagGlutenFree
	}
	if p.DairyFree {
		mask |= FlagDairyFree
	}

	switch p.Calories {
	case LevelLow:
		mask |= FlagLowCalorie
	case LevelModerate:
		mask |= FlagModerateCalorie
	case LevelHigh:
		mask |= FlagHighCalorie
	}

	switch p.Protein {
	case LevelLow:
		mask |= FlagLowProtein
	case LevelModerate:
		mask |= FlagModerateProtein
	case LevelHigh:
		mask |= FlagHighProtein
	}

	switch p.PrepTime {
	case PrepQuick:
		mask |= FlagQuick
	case PrepStandard:
		mask |= FlagStandardPrepTime
	case PrepLong:
		mask |= FlagLongPrepTime
	}
	return mask
}

// IsZero 沒有設定任何偏好
func (p PreferenceSet) IsZero() bool {
	return p.Mask() == 0
}

// Filter 保留符合所有偏好的食譜。各條件以 AND 組合，沒有偏好時回傳原目錄
func Filter(catalog *Catalog, prefs PreferenceSet) *Catalog {
	if catalog == nil {
		return view(nil)
	}
	mask := prefs.Mask()
	if mask == 0 {
		return catalog
	}

	kept := make([]*Recipe, 0, catalog.Len()/2)
	for _, r := range catalog.recipes {
		if r.Flags.Has(mask) {
			kept = append(kept, r)
		}
	}
	return view(kept)
}
