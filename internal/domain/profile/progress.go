package profile

import (
	"math"
	"time"
)

// ProgressEntry is one weigh-in. Entries are only ever appended.
type ProgressEntry struct {
	Timestamp time.Time
	Weight    float64
	BMI       float64
}

// TrendStatus classifies a weekly weight change against the goal.
type TrendStatus string

const (
	TrendOnTrack      TrendStatus = "on_track"
	TrendTooFast      TrendStatus = "too_fast"
	TrendOffTrack     TrendStatus = "off_track"
	TrendInsufficient TrendStatus = "insufficient_data"
)

// TrendAdvice pairs a status with a short message for the user.
type TrendAdvice struct {
	Status  TrendStatus
	Message string
}

// WeeklyChange returns the average weight change per week between the first
// and last entries. It reports false when there are fewer than two entries
// or they span less than a day.
func WeeklyChange(history []ProgressEntry) (float64, bool) {
	if len(history) < 2 {
		return 0, false
	}
	first, last := history[0], history[len(history)-1]
	days := last.Timestamp.Sub(first.Timestamp).Hours() / 24
	if days < 1 {
		return 0, false
	}
	return (last.Weight - first.Weight) * 7 / days, true
}

// AdviseTrend turns a weekly change into goal-specific advice.
func AdviseTrend(goal Goal, weekly float64) TrendAdvice {
	switch goal {
	case GoalWeightLoss:
		switch {
		case weekly < -1:
			return TrendAdvice{TrendTooFast, "You're losing weight quickly. Aim for 0.5-1 kg per week for sustainable results."}
		case weekly < 0:
			return TrendAdvice{TrendOnTrack, "You're losing weight at a healthy pace. Keep it up."}
		default:
			return TrendAdvice{TrendOffTrack, "Your weight isn't going down. Review your calorie intake and activity."}
		}
	case GoalWeightGain:
		switch {
		case weekly > 1:
			return TrendAdvice{TrendTooFast, "You're gaining weight quickly. Aim for 0.25-0.5 kg per week to limit fat gain."}
		case weekly > 0:
			return TrendAdvice{TrendOnTrack, "You're gaining weight at a healthy pace."}
		default:
			return TrendAdvice{TrendOffTrack, "You're not gaining weight. Increase your calorie intake."}
		}
	case GoalMuscleGain:
		switch {
		case weekly > 0.5:
			return TrendAdvice{TrendTooFast, "Weight is rising fast. Some of it may be fat, so check your surplus."}
		case weekly < 0:
			return TrendAdvice{TrendOffTrack, "You're losing weight. Eat more protein and calories to support muscle growth."}
		default:
			return TrendAdvice{TrendOnTrack, "Your weight is stable or slowly rising, which suits lean muscle gain."}
		}
	case GoalMaintainWeight:
		if math.Abs(weekly) < 0.2 {
			return TrendAdvice{TrendOnTrack, "You're maintaining your weight successfully."}
		}
		return TrendAdvice{TrendOffTrack, "Your weight is drifting. Adjust intake to stay at maintenance."}
	default:
		return TrendAdvice{TrendInsufficient, "Set a goal in your profile to get trend advice."}
	}
}

// GoalProgress returns how far current has moved from start toward target,
// as a percentage clamped to [0, 100].
func GoalProgress(start, current, target float64) float64 {
	total := math.Abs(target - start)
	if total == 0 {
		return 0
	}
	moved := start - current
	if target > start {
		moved = current - start
	}
	if moved <= 0 {
		return 0
	}
	return math.Min(100, moved/total*100)
}

// EstimateCompletion projects the date target is reached at the given weekly
// rate. It reports false when the rate does not move toward the target.
func EstimateCompletion(current, target, weekly float64, now time.Time) (time.Time, bool) {
	remaining := target - current
	if remaining == 0 {
		return now, true
	}
	if weekly == 0 || (remaining > 0) != (weekly > 0) {
		return time.Time{}, false
	}
	weeks := remaining / weekly
	return now.Add(time.Duration(weeks * 7 * 24 * float64(time.Hour))), true
}
