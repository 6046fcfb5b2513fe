// Package profile provides the application layer for user profiles and
// weight progress
package profile

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/domain/shared"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/errors"
)

// ProfileService implements profile management use cases
type ProfileService struct {
	profiles outbound.ProfileRepository
	cache    outbound.CacheRepository
	events   outbound.EventPublisher
	now      func() time.Time
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profiles outbound.ProfileRepository,
	cache outbound.CacheRepository,
	events outbound.EventPublisher,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cache:    cache,
		events:   events,
		now:      time.Now,
		logger:   logger.Named("profile-service"),
	}
}

var _ inbound.ProfileService = (*ProfileService)(nil)

// CreateProfile stores a new profile
func (s *ProfileService) CreateProfile(ctx context.Context, in inbound.ProfileInput) (*inbound.ProfileDTO, error) {
	p := profile.New(in.ToProfile(), s.now())

	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, errors.NewDatabaseError("create profile", err)
	}
	s.publish(ctx, p.Events())

	s.logger.Info("Profile created",
		zap.String("user_id", p.ID.String()),
		zap.String("goal", string(p.Goal)),
	)
	return inbound.NewProfileDTO(p), nil
}

// UpdateProfile replaces a profile's preferences. Zero weight, height or age
// keep the stored values.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in inbound.ProfileInput) (*inbound.ProfileDTO, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if in.Age > 0 {
		p.Age = in.Age
	}
	if in.Sex != "" {
		p.Sex, _ = profile.ParseSex(in.Sex)
	}
	if in.ActivityLevel != "" {
		p.ActivityLevel, _ = profile.ParseActivityLevel(in.ActivityLevel)
	}
	if in.Goal != "" {
		p.Goal, _ = profile.ParseGoal(in.Goal)
	}
	if in.DietPreference != "" {
		p.DietPreference, _ = profile.ParseDietPreference(in.DietPreference)
	}
	p.TargetWeight = in.TargetWeight
	p.Allergies = in.Allergies
	p.PreferredCuisines = in.PreferredCuisines
	p.HealthConditions = in.HealthConditions

	normalized := profile.Normalize(*p)
	normalized.UpdateMetrics(in.Weight, in.Height, s.now())
	if in.HealthStatus != "" {
		normalized.HealthStatus = in.HealthStatus
	}

	if err := s.profiles.Update(ctx, &normalized); err != nil {
		return nil, errors.NewDatabaseError("update profile", err)
	}
	s.invalidate(ctx, userID)
	s.publish(ctx, normalized.Events())

	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	return inbound.NewProfileDTO(&normalized), nil
}

// GetProfile retrieves a profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*inbound.ProfileDTO, error) {
	if dto, ok := s.cached(ctx, userID); ok {
		return dto, nil
	}

	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewProfileDTO(p)
	s.store(ctx, dto)
	return dto, nil
}

// RecordProgress appends a weigh-in and makes it the current weight
func (s *ProfileService) RecordProgress(ctx context.Context, cmd inbound.RecordProgressCommand) (*inbound.ProfileDTO, error) {
	p, err := s.load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := p.RecordProgress(cmd.Weight, s.now())
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.profiles.RecordProgress(ctx, p, entry); err != nil {
		return nil, errors.NewDatabaseError("record progress", err)
	}
	s.invalidate(ctx, cmd.UserID)
	s.publish(ctx, p.Events())

	s.logger.Info("Progress recorded",
		zap.String("user_id", cmd.UserID.String()),
		zap.Float64("weight", entry.Weight),
		zap.Float64("bmi", entry.BMI),
	)
	return inbound.NewProfileDTO(p), nil
}

// ProgressReport summarizes the weigh-in history against the goal
func (s *ProfileService) ProgressReport(ctx context.Context, userID uuid.UUID) (*inbound.ProgressReport, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildReport(p, s.now()), nil
}

func buildReport(p *profile.Profile, now time.Time) *inbound.ProgressReport {
	report := &inbound.ProgressReport{
		UserID:  p.ID,
		Goal:    string(p.Goal),
		History: make([]inbound.ProgressEntryDTO, len(p.ProgressHistory)),
	}
	for i, e := range p.ProgressHistory {
		report.History[i] = inbound.ProgressEntryDTO{Timestamp: e.Timestamp, Weight: e.Weight, BMI: e.BMI}
	}

	weekly, ok := profile.WeeklyChange(p.ProgressHistory)
	if !ok {
		report.TrendStatus = string(profile.TrendInsufficient)
		report.Advice = "Record at least two weigh-ins a day or more apart to see your trend."
	} else {
		weekly = roundTo(weekly, 2)
		advice := profile.AdviseTrend(p.Goal, weekly)
		report.WeeklyChange = &weekly
		report.TrendStatus = string(advice.Status)
		report.Advice = advice.Message
	}

	if p.TargetWeight > 0 && len(p.ProgressHistory) > 0 {
		start := p.ProgressHistory[0].Weight
		pct := roundTo(profile.GoalProgress(start, p.Weight, p.TargetWeight), 1)
		report.GoalProgress = &pct
		if ok {
			if eta, reachable := profile.EstimateCompletion(p.Weight, p.TargetWeight, weekly, now); reachable {
				report.EstimatedCompletion = &eta
			}
		}
	}
	return report
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func (s *ProfileService) load(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeProfileNotFound) {
			return nil, err
		}
		return nil, errors.NewDatabaseError("load profile", err)
	}
	return p, nil
}

// Cache operations

const profileCacheTTL = 5 * time.Minute

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID.String())
}

func (s *ProfileService) cached(ctx context.Context, userID uuid.UUID) (*inbound.ProfileDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, profileKey(userID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Failed to read cached profile", zap.Error(err))
		}
		return nil, false
	}
	var dto inbound.ProfileDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, false
	}
	return &dto, true
}

func (s *ProfileService) store(ctx context.Context, dto *inbound.ProfileDTO) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileKey(dto.ID), data, profileCacheTTL); err != nil {
		s.logger.Warn("Failed to cache profile", zap.Error(err))
	}
}

func (s *ProfileService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *ProfileService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil {
		return
	}
	for _, event := range events {
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}
