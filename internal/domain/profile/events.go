package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidWeight is returned when a weigh-in is not a positive number.
var ErrInvalidWeight = errors.New("weight must be greater than 0")

// ProfileCreatedEvent is raised when a profile is completed for the first time
type ProfileCreatedEvent struct {
	UserID    uuid.UUID
	CreatedAt time.Time
}

func (e ProfileCreatedEvent) EventName() string {
	return "profile.created"
}

func (e ProfileCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// ProfileUpdatedEvent is raised when body metrics or preferences change
type ProfileUpdatedEvent struct {
	UserID    uuid.UUID
	UpdatedAt time.Time
}

func (e ProfileUpdatedEvent) EventName() string {
	return "profile.updated"
}

func (e ProfileUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// ProgressRecordedEvent is raised for each weigh-in
type ProgressRecordedEvent struct {
	UserID     uuid.UUID
	Weight     float64
	BMI        float64
	RecordedAt time.Time
}

func (e ProgressRecordedEvent) EventName() string {
	return "profile.progress.recorded"
}

func (e ProgressRecordedEvent) OccurredAt() time.Time {
	return e.RecordedAt
}
