package mealplan

import "math/rand"

// Rand 隨機來源，*rand.Rand 即符合。nil 時使用套件層級的亂數
type Rand interface {
	Intn(n int) int
}

// Selection 一個時段的選擇結果
type Selection struct {
	Slot       Slot
	Recipe     *Recipe
	Strategy   string
	Candidates int
}

// Selector 依放寬層級搜尋候選，再以評分與隨機決勝
type Selector struct {
	ladder    []Strategy
	tolerance float64
	rnd       Rand
}

// NewSelector ladder 為空時使用 DefaultLadder
func NewSelector(ladder []Strategy, tolerance float64, rnd Rand) *Selector {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	return &Selector{ladder: ladder, tolerance: tolerance, rnd: rnd}
}

// Select 依序嘗試每個層級，第一個非空的候選集合進入決勝。pool 為空時回傳 false
func (s *Selector) Select(pool []*Recipe, slot Slot) (Selection, bool) {
	target := Target{Slot: slot, Tolerance: s.tolerance}
	for _, strategy := range s.ladder {
		candidates := strategy.Find(pool, target)
		if len(candidates) == 0 {
			continue
		}
		return Selection{
			Slot:       slot,
			Recipe:     TieBreak(candidates, s.rnd),
			Strategy:   strategy.Name,
			Candidates: len(candidates),
		}, true
	}
	return Selection{Slot: slot}, false
}

// TopRated 評分最高的候選；全部沒有評分時全部保留
func TopRated(candidates []*Recipe) []*Recipe {
	var (
		best      []*Recipe
		maxRating float64
		rated     bool
	)
	for _, r := range candidates {
		if !r.HasRating() {
			continue
		}
		switch {
		case !rated || *r.Rating > maxRating:
			maxRating = *r.Rating
			rated = true
			best = append(best[:0], r)
		case *r.Rating == maxRating:
			best = append(best, r)
		}
	}
	if !rated {
		return candidates
	}
	return best
}

// TieBreak 先取最高評分，再在同分中均勻隨機
func TieBreak(candidates []*Recipe, rnd Rand) *Recipe {
	if len(candidates) == 0 {
		return nil
	}
	top := TopRated(candidates)
	if len(top) == 1 {
		return top[0]
	}
	if rnd == nil {
		return top[rand.Intn(len(top))]
	}
	return top[rnd.Intn(len(top))]
}
