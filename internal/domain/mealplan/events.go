package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// MealPlanGeneratedEvent is raised when the assembler produces a plan
type MealPlanGeneratedEvent struct {
	PlanID      uuid.UUID
	UserID      uuid.UUID
	Days        int
	GeneratedAt time.Time
}

func (e MealPlanGeneratedEvent) EventName() string {
	return "mealplan.generated"
}

func (e MealPlanGeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}

// DayLoggedEvent is raised when a day is marked as eaten or unmarked
type DayLoggedEvent struct {
	PlanID    uuid.UUID
	UserID    uuid.UUID
	Day       int
	Logged    bool
	ChangedAt time.Time
}

func (e DayLoggedEvent) EventName() string {
	return "mealplan.day.logged"
}

func (e DayLoggedEvent) OccurredAt() time.Time {
	return e.ChangedAt
}
