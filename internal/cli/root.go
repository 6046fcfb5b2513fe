// Package cli implements planctl, a terminal client for the planner. Without
// --user it works on a throwaway in-memory profile built from flags.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/smartmeals/v2/internal/infrastructure/config"
	"github.com/smartmeals/v2/internal/infrastructure/container"
	"github.com/smartmeals/v2/internal/ports/inbound"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	userID     string
	asJSON     bool
	profile    inbound.ProfileInput
}

// NewRootCommand builds the planctl command tree
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:           "planctl",
		Short:         "planctl builds meal plans and workout recommendations",
		Long:          "planctl computes nutrition targets, assembles meal plans and recommends recipes and exercises from your terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to config file")
	pf.StringVar(&o.logLevel, "log-level", "warn", "Log level")
	pf.StringVar(&o.userID, "user", "", "ID of a stored profile; profile flags are ignored when set")
	pf.BoolVar(&o.asJSON, "json", false, "Print JSON")

	pf.StringVar(&o.profile.Name, "name", "", "Name")
	pf.Float64Var(&o.profile.Weight, "weight", 0, "Weight in kg")
	pf.Float64Var(&o.profile.Height, "height", 0, "Height in cm")
	pf.IntVar(&o.profile.Age, "age", 0, "Age in years")
	pf.StringVar(&o.profile.Sex, "sex", "male", "Sex (male or female)")
	pf.StringVar(&o.profile.ActivityLevel, "activity", "moderately active", "Activity level")
	pf.StringVar(&o.profile.Goal, "goal", "maintain weight", "Goal")
	pf.Float64Var(&o.profile.TargetWeight, "target-weight", 0, "Target weight in kg")
	pf.StringVar(&o.profile.DietPreference, "diet", "both", "Diet preference")
	pf.StringSliceVar(&o.profile.Allergies, "allergies", nil, "Ingredients to avoid")
	pf.StringSliceVar(&o.profile.PreferredCuisines, "cuisines", nil, "Preferred cuisines")

	root.AddCommand(
		newTargetsCommand(o),
		newPlanCommand(o),
		newRecipesCommand(o),
		newExercisesCommand(o),
		newRateCommand(o),
		newFoodsCommand(o),
		newProfileCommand(o),
		newVersionCommand(o),
	)
	return root
}

// session holds the services for one command invocation
type session struct {
	app      *fx.App
	planner  inbound.PlannerService
	profiles inbound.ProfileService
}

// stored reports whether the command works on a persisted profile
func (o *rootOptions) stored() bool {
	return o.userID != ""
}

func (o *rootOptions) loadConfig(persistent bool) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if !persistent {
		cfg.Database.Driver = config.DriverMemory
		cfg.Redis.Enabled = false
	}
	cfg.Monitoring.EnableTracing = false
	cfg.Logging.Level = o.logLevel
	cfg.Logging.OutputPaths = []string{"stderr"}
	return cfg, nil
}

func (o *rootOptions) open(ctx context.Context, persistent bool) (*session, error) {
	cfg, err := o.loadConfig(persistent)
	if err != nil {
		return nil, err
	}

	s := &session{}
	s.app = fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		container.CoreModule,
		fx.Populate(&s.planner, &s.profiles),
	)
	if err := s.app.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.app.Stop(ctx)
}

// withSession opens the services, resolves the acting user and runs fn
func (o *rootOptions) withSession(cmd *cobra.Command, persistent bool, fn func(ctx context.Context, s *session, userID uuid.UUID) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := o.open(ctx, persistent || o.stored())
	if err != nil {
		return err
	}
	defer s.close()

	userID, err := o.resolveUser(ctx, s)
	if err != nil {
		return err
	}
	return fn(ctx, s, userID)
}

func (o *rootOptions) resolveUser(ctx context.Context, s *session) (uuid.UUID, error) {
	if o.stored() {
		id, err := uuid.Parse(o.userID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid --user: %w", err)
		}
		return id, nil
	}
	if err := o.requireMetrics(); err != nil {
		return uuid.Nil, err
	}
	dto, err := s.profiles.CreateProfile(ctx, o.profile)
	if err != nil {
		return uuid.Nil, err
	}
	return dto.ID, nil
}

func (o *rootOptions) requireMetrics() error {
	if o.profile.Weight <= 0 || o.profile.Height <= 0 || o.profile.Age <= 0 {
		return fmt.Errorf("--weight, --height and --age are required without --user")
	}
	return nil
}

func (o *rootOptions) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
