// Package leveling maps accumulated experience points to community tiers.
package leveling

import "math"

type Tier struct {
	Level  int    `json:"level"`
	Name   string `json:"name"`
	MinExp int    `json:"min_exp"`
	MaxExp int    `json:"max_exp"`
	Color  string `json:"color"`
}

// Unbounded marks the top tier's MaxExp.
const Unbounded = math.MaxInt

var tiers = []Tier{
	{Level: 1, Name: "Trainee Spotter", MinExp: 0, MaxExp: 99, Color: "#94a3b8"},
	{Level: 2, Name: "Junior Spotter", MinExp: 100, MaxExp: 299, Color: "#22c55e"},
	{Level: 3, Name: "Intermediate Spotter", MinExp: 300, MaxExp: 599, Color: "#3b82f6"},
	{Level: 4, Name: "Senior Spotter", MinExp: 600, MaxExp: 999, Color: "#8b5cf6"},
	{Level: 5, Name: "Veteran Spotter", MinExp: 1000, MaxExp: 1499, Color: "#f59e0b"},
	{Level: 6, Name: "Flight Expert", MinExp: 1500, MaxExp: 2199, Color: "#ef4444"},
	{Level: 7, Name: "Aviation Photographer", MinExp: 2200, MaxExp: 3099, Color: "#ec4899"},
	{Level: 8, Name: "Chief Photographer", MinExp: 3100, MaxExp: 4499, Color: "#06b6d4"},
	{Level: 9, Name: "Legendary Spotter", MinExp: 4500, MaxExp: 6999, Color: "#6366f1"},
	{Level: 10, Name: "Aviation Master", MinExp: 7000, MaxExp: Unbounded, Color: "#fbbf24"},
}

// Experience awarded per community action.
const (
	RewardUpload          = 20
	RewardLikeGiven       = 2
	RewardComment         = 5
	RewardDownload        = 3
	RewardPhotoLiked      = 5
	RewardPhotoDownloaded = 5
	RewardPhotoApproved   = 30
	RewardDailyLogin      = 10
)

// Tiers returns a copy of the tier table in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// ForExp returns the highest tier whose lower bound is at most exp.
// The lower bound is inclusive, so an exact boundary value resolves upward.
func ForExp(exp int) Tier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if exp >= tiers[i].MinExp {
			return tiers[i]
		}
	}
	return tiers[0]
}

func LevelForExp(exp int) int {
	return ForExp(exp).Level
}

// ExpToNext is 0 at the top tier, otherwise the distance to the next tier's lower bound.
func ExpToNext(exp int) int {
	cur := ForExp(exp)
	if cur.Level >= len(tiers) {
		return 0
	}
	return tiers[cur.Level].MinExp - exp
}

// Progress reports how far exp has travelled through its tier, in [0,1].
func Progress(exp int) float64 {
	cur := ForExp(exp)
	if cur.Level >= len(tiers) {
		return 1
	}
	span := tiers[cur.Level].MinExp - cur.MinExp
	done := exp - cur.MinExp
	if done < 0 {
		done = 0
	}
	return float64(done) / float64(span)
}
