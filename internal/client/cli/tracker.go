package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/spf13/cobra"
)

func newProfileCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Manage the user profile"}

	var (
		u                models.User
		gender, activity string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			u.Gender = models.ParseGender(gender)
			u.ActivityLevel = models.ParseActivityLevel(activity)
			if err := st.app.tracker.SaveProfile(cmd.Context(), uid, &u); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile saved")
			return nil
		},
	}
	set.Flags().StringVar(&u.Name, "name", "", "display name")
	set.Flags().IntVar(&u.Age, "age", 0, "age in years")
	set.Flags().Float64Var(&u.HeightCm, "height", 0, "height in cm")
	set.Flags().Float64Var(&u.WeightKg, "weight", 0, "weight in kg")
	set.Flags().StringVar(&gender, "gender", string(models.GenderOther), "male, female or other")
	set.Flags().StringVar(&activity, "activity", string(models.ActivityModerate),
		"sedentary, light, moderate, active or very_active")

	cmd.AddCommand(set)
	return cmd
}

func newGoalCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "goal", Short: "Manage goals"}

	var (
		g        models.Goal
		goalType string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Create a goal, or update one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			g.Type = models.ParseGoalType(goalType)
			id, err := st.app.tracker.SetGoal(cmd.Context(), uid, &g)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "goal", id)
			return nil
		},
	}
	set.Flags().StringVar(&g.ID, "id", "", "goal id to update")
	set.Flags().StringVar(&goalType, "type", string(models.GoalGeneralHealth),
		"weight_loss, maintenance, muscle_gain or general_health")
	set.Flags().IntVar(&g.CalorieTarget, "calories", 0, "daily calorie target")
	set.Flags().IntVar(&g.StepTarget, "steps", 0, "daily step target")
	set.Flags().IntVar(&g.WaterTargetMl, "water", 0, "daily water target in ml")
	set.Flags().IntVar(&g.SleepTargetMin, "sleep", 0, "nightly sleep target in minutes")
	set.Flags().StringVar(&g.StartDate, "start", "", "start date (YYYY-MM-DD)")
	set.Flags().StringVar(&g.EndDate, "end", "", "end date (YYYY-MM-DD)")
	set.Flags().StringVar(&g.ReminderTime, "reminder", "", "reminder time (HH:MM)")
	set.Flags().BoolVar(&g.IsActive, "active", true, "make this the active goal")

	cmd.AddCommand(set)
	return cmd
}

func newMealCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "meal", Short: "Log, list and delete meals"}
	cmd.AddCommand(newMealAddCommand(st), newMealFoodCommand(st), newMealDeleteCommand(st), newMealListCommand(st))
	return cmd
}

func newMealAddCommand(st *state) *cobra.Command {
	var (
		mealType, date string
		foods          []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a meal",
		Long: `Log a meal with its foods. Each --food is
name:calories[:protein:carbs:fat[:quantity[:unit]]].

Example:
  healthsync meal add --type breakfast --food "Oatmeal:150:5:27:3:1:cup" --food "Milk:60"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			m := models.Meal{Type: models.ParseMealType(mealType)}
			if date != "" {
				if m.Date, err = time.ParseInLocation(models.DateLayout, date, time.Local); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			parsed := make([]models.Food, 0, len(foods))
			for _, raw := range foods {
				f, err := parseFood(raw)
				if err != nil {
					return err
				}
				parsed = append(parsed, f)
			}
			id, err := st.app.tracker.AddMeal(cmd.Context(), uid, &m, parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "meal %s (%.0f kcal)\n", id, m.TotalCalories)
			return nil
		},
	}
	cmd.Flags().StringVar(&mealType, "type", string(models.MealSnack), "breakfast, lunch, dinner or snack")
	cmd.Flags().StringVar(&date, "date", "", "meal day (YYYY-MM-DD), defaults to now")
	cmd.Flags().StringArrayVar(&foods, "food", nil, "food entry, repeatable")
	return cmd
}

func newMealFoodCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "food <meal-id> <food>",
		Short: "Add a food to a logged meal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			f, err := parseFood(args[1])
			if err != nil {
				return err
			}
			id, err := st.app.tracker.AddFood(cmd.Context(), uid, args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "food", id)
			return nil
		},
	}
}

func newMealDeleteCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <meal-id>",
		Short: "Delete a meal and its foods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.app.tracker.DeleteMeal(cmd.Context(), uid, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	}
}

func newMealListCommand(st *state) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			var fromT, toT time.Time
			if from != "" {
				if fromT, err = time.ParseInLocation(models.DateLayout, from, time.Local); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
			}
			if to != "" {
				if toT, err = time.ParseInLocation(models.DateLayout, to, time.Local); err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
				toT = toT.AddDate(0, 0, 1)
			}
			meals, err := st.app.tracker.ListMeals(cmd.Context(), uid, fromT, toT)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tKCAL\tSYNCED")
			for _, m := range meals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%t\n",
					m.ID, m.Date.Local().Format(time.DateTime), m.Type, m.TotalCalories, m.IsSynced)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	return cmd
}

func newSummaryCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "summary", Short: "Manage daily summaries"}

	var s models.DailySummary
	set := &cobra.Command{
		Use:   "set",
		Short: "Record the totals of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := st.uid(cmd.Context())
			if err != nil {
				return err
			}
			id, err := st.app.tracker.SaveSummary(cmd.Context(), uid, &s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "summary", id, s.Date)
			return nil
		},
	}
	set.Flags().StringVar(&s.Date, "date", "", "day (YYYY-MM-DD), defaults to today")
	set.Flags().Float64Var(&s.CaloriesIn, "calories-in", 0, "calories eaten")
	set.Flags().Float64Var(&s.CaloriesOut, "calories-out", 0, "calories burned")
	set.Flags().IntVar(&s.Steps, "steps", 0, "steps walked")
	set.Flags().IntVar(&s.WaterMl, "water", 0, "water in ml")
	set.Flags().Float64Var(&s.Protein, "protein", 0, "protein in g")
	set.Flags().Float64Var(&s.Carbs, "carbs", 0, "carbs in g")
	set.Flags().Float64Var(&s.Fat, "fat", 0, "fat in g")
	set.Flags().IntVar(&s.SleepMinutes, "sleep", 0, "sleep in minutes")
	set.Flags().StringVar(&s.Mood, "mood", "", "free-form mood")

	cmd.AddCommand(set)
	return cmd
}

// parseFood reads name:calories[:protein:carbs:fat[:quantity[:unit]]].
func parseFood(raw string) (models.Food, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return models.Food{}, fmt.Errorf("invalid food %q: want name:calories[:protein:carbs:fat[:quantity[:unit]]]", raw)
	}
	f := models.Food{Name: strings.TrimSpace(parts[0]), Quantity: 1, Unit: models.UnitServing}

	nums := []*float64{&f.Calories, &f.Protein, &f.Carbs, &f.Fat, &f.Quantity}
	for i, p := range parts[1:] {
		if i >= len(nums) {
			f.Unit = models.ParseFoodUnit(strings.TrimSpace(p))
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Food{}, fmt.Errorf("invalid number %q in food %q", p, raw)
		}
		*nums[i] = v
	}
	return f, nil
}
