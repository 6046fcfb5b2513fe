package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/ports/inbound"
)

// Version is set at build time
var Version = "dev"

func newTargetsCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Show daily calorie and macro targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, false, func(ctx context.Context, s *session, userID uuid.UUID) error {
				t, err := s.planner.ComputeTargets(ctx, userID)
				if err != nil {
					return err
				}
				if o.asJSON {
					return o.printJSON(cmd.OutOrStdout(), t)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "BMR\t%.0f kcal\n", t.BMR)
				fmt.Fprintf(w, "Maintenance\t%.0f kcal\n", t.DailyCalories)
				fmt.Fprintf(w, "Goal\t%.0f kcal\n", t.CalorieGoal)
				fmt.Fprintf(w, "Protein\t%.0f g\n", t.Protein)
				fmt.Fprintf(w, "Carbs\t%.0f g\n", t.Carbs)
				fmt.Fprintf(w, "Fat\t%.0f g\n", t.Fat)
				fmt.Fprintf(w, "BMI\t%.1f (%s)\n", t.BMI, t.HealthStatus)
				return w.Flush()
			})
		},
	}
}

func newPlanCommand(o *rootOptions) *cobra.Command {
	var (
		days     int
		shopping bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a meal plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, false, func(ctx context.Context, s *session, userID uuid.UUID) error {
				plan, err := s.planner.GenerateMealPlan(ctx, inbound.GeneratePlanCommand{UserID: userID, Days: days})
				if err != nil {
					return err
				}
				if shopping {
					groups := mealplan.ShoppingList(plan)
					if o.asJSON {
						return o.printJSON(cmd.OutOrStdout(), groups)
					}
					_, err := fmt.Fprint(cmd.OutOrStdout(), mealplan.RenderShoppingList(groups))
					return err
				}
				if o.asJSON {
					return o.printJSON(cmd.OutOrStdout(), plan)
				}
				owner := o.profile.Name
				if owner == "" {
					owner = "you"
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), mealplan.RenderText(plan, owner))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (default from config)")
	cmd.Flags().BoolVar(&shopping, "shopping-list", false, "Print the shopping list instead of the plan")
	return cmd
}

func newRecipesCommand(o *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Recommend recipes for the goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, false, func(ctx context.Context, s *session, userID uuid.UUID) error {
				recs, err := s.planner.RecommendRecipes(ctx, userID, limit)
				if err != nil {
					return err
				}
				if o.asJSON {
					return o.printJSON(cmd.OutOrStdout(), recs)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SCORE\tRECIPE\tKCAL\tPROTEIN\tFIBRE")
				for _, r := range recs {
					fmt.Fprintf(w, "%.2f\t%s\t%.0f\t%.1f\t%.1f\n", r.Score, r.Name, r.Calories, r.Protein, r.Fibre)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of recipes (default from config)")
	return cmd
}

func newExercisesCommand(o *rootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Recommend exercises per muscle group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, false, func(ctx context.Context, s *session, userID uuid.UUID) error {
				rec, err := s.planner.RecommendExercises(ctx, userID, count)
				if err != nil {
					return err
				}
				if o.asJSON {
					return o.printJSON(cmd.OutOrStdout(), rec)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Tier %s, %d days a week, %d sets\n", rec.Tier, rec.DaysPerWeek, rec.Sets)
				for _, reason := range rec.Reasons {
					fmt.Fprintf(out, "  * %s\n", reason)
				}

				groups := make([]string, 0, len(rec.Categories))
				for g := range rec.Categories {
					groups = append(groups, g)
				}
				sort.Strings(groups)

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, g := range groups {
					fmt.Fprintf(w, "\n%s (%.0f%%)\n", g, rec.Weights[g]*100)
					for _, ex := range rec.Categories[g] {
						fmt.Fprintf(w, "  %s\t%s\t%s\t%.1f\n", ex.Title, ex.BodyPart, ex.Level, ex.PredictedRating)
					}
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Total number of exercises (default from config)")
	return cmd
}

func newRateCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <exercise title> <rating>",
		Short: "Rate an exercise from 1 to 5 for a stored profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.stored() {
				return fmt.Errorf("rate requires --user")
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			return o.withSession(cmd, true, func(ctx context.Context, s *session, userID uuid.UUID) error {
				err := s.planner.RecordRating(ctx, inbound.RecordRatingCommand{
					UserID:        userID,
					ExerciseTitle: args[0],
					Rating:        rating,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %q %d\n", args[0], rating)
				return nil
			})
		},
	}
}

func newFoodsCommand(o *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "foods [query]",
		Short: "Search the food database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := inbound.FoodSearchQuery{Diet: o.profile.DietPreference, Limit: limit}
			if len(args) == 1 {
				query.Query = args[0]
			}
			s, err := o.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.close()

			foods, err := s.planner.SearchFoods(cmd.Context(), query)
			if err != nil {
				return err
			}
			if o.asJSON {
				return o.printJSON(cmd.OutOrStdout(), foods)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FOOD\tKCAL\tPROTEIN\tCARBS\tFAT")
			for _, f := range foods {
				fmt.Fprintf(w, "%s\t%.0f\t%.1f\t%.1f\t%.1f\n", f.Name, f.Calories, f.Protein, f.Carbs, f.Fat)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (default from config)")
	return cmd
}

func newProfileCommand(o *rootOptions) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored profiles",
	}

	profileCmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Store a profile built from the profile flags",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := o.requireMetrics(); err != nil {
					return err
				}
				s, err := o.open(cmd.Context(), true)
				if err != nil {
					return err
				}
				defer s.close()

				dto, err := s.profiles.CreateProfile(cmd.Context(), o.profile)
				if err != nil {
					return err
				}
				if o.asJSON {
					return o.printJSON(cmd.OutOrStdout(), dto)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dto.ID.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "progress <weight>",
			Short: "Record a weigh-in for a stored profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !o.stored() {
					return fmt.Errorf("progress requires --user")
				}
				weight, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid weight %q", args[0])
				}
				return o.withSession(cmd, true, func(ctx context.Context, s *session, userID uuid.UUID) error {
					dto, err := s.profiles.RecordProgress(ctx, inbound.RecordProgressCommand{UserID: userID, Weight: weight})
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1f kg, BMI %.1f\n", dto.Weight, dto.BMI)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "Show weight progress for a stored profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				if !o.stored() {
					return fmt.Errorf("report requires --user")
				}
				return o.withSession(cmd, true, func(ctx context.Context, s *session, userID uuid.UUID) error {
					report, err := s.profiles.ProgressReport(ctx, userID)
					if err != nil {
						return err
					}
					if o.asJSON {
						return o.printJSON(cmd.OutOrStdout(), report)
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Goal: %s\n", report.Goal)
					for _, e := range report.History {
						fmt.Fprintf(out, "  %s  %.1f kg  BMI %.1f\n", e.Timestamp.Format("2006-01-02"), e.Weight, e.BMI)
					}
					fmt.Fprintf(out, "Trend: %s\n", strings.ReplaceAll(report.TrendStatus, "_", " "))
					fmt.Fprintln(out, report.Advice)
					return nil
				})
			},
		},
	)
	return profileCmd
}

func newVersionCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planctl %s\n", Version)
		},
	}
}
