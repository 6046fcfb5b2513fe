package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/pkg/errors"
)

// PlannerAPIHandlers handles targets, meal plans and recommendations
type PlannerAPIHandlers struct {
	base
	planner inbound.PlannerService
}

// NewPlannerAPIHandlers creates planner handlers
func NewPlannerAPIHandlers(planner inbound.PlannerService, logger *zap.Logger) *PlannerAPIHandlers {
	return &PlannerAPIHandlers{
		base:    newBase(logger.Named("planner-api")),
		planner: planner,
	}
}

type previewRequest struct {
	Profile inbound.ProfileInput `json:"profile"`
	Days    int                  `json:"days" validate:"gte=0,lte=31"`
}

type generatePlanRequest struct {
	Days int `json:"days" validate:"gte=0,lte=31"`
}

type dayLoggedRequest struct {
	Logged bool `json:"logged"`
}

type ratingRequest struct {
	ExerciseTitle string `json:"exercise_title" validate:"required,max=255"`
	Rating        int    `json:"rating" validate:"required"`
}

// PreviewTargets handles POST /api/v1/targets/preview
func (h *PlannerAPIHandlers) PreviewTargets(w http.ResponseWriter, r *http.Request) {
	var in inbound.ProfileInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := requireMetrics(in); err != nil {
		h.writeError(w, r, err)
		return
	}

	targets, err := h.planner.TargetsForProfile(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, targets, "")
}

// PreviewPlan handles POST /api/v1/plans/preview. Nothing is stored.
func (h *PlannerAPIHandlers) PreviewPlan(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := requireMetrics(req.Profile); err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.planner.PlanForProfile(r.Context(), req.Profile, req.Days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, plan, "")
}

// Targets handles GET /api/v1/profiles/{id}/targets
func (h *PlannerAPIHandlers) Targets(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	targets, err := h.planner.ComputeTargets(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, targets, "")
}

// GenerateMealPlan handles POST /api/v1/profiles/{id}/meal-plans. The body
// is optional; without it the default plan length applies.
func (h *PlannerAPIHandlers) GenerateMealPlan(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req generatePlanRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	plan, err := h.planner.GenerateMealPlan(r.Context(), inbound.GeneratePlanCommand{UserID: id, Days: req.Days})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, plan, "Meal plan generated")
}

// LatestMealPlan handles GET /api/v1/profiles/{id}/meal-plans/latest
func (h *PlannerAPIHandlers) LatestMealPlan(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.planner.LatestMealPlan(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, plan, "")
}

// SetDayLogged handles PUT /api/v1/profiles/{id}/meal-plans/latest/days/{day}/logged
func (h *PlannerAPIHandlers) SetDayLogged(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		h.writeError(w, r, errors.NewBadRequestError(fmt.Sprintf("Invalid day %q", chi.URLParam(r, "day"))))
		return
	}
	var req dayLoggedRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.planner.SetDayLogged(r.Context(), inbound.SetDayLoggedCommand{UserID: id, Day: day, Logged: req.Logged})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, plan, "")
}

// ShoppingList handles GET /api/v1/profiles/{id}/meal-plans/latest/shopping-list
func (h *PlannerAPIHandlers) ShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	groups, err := h.planner.ShoppingList(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, groups, "")
}

// ExportMealPlan handles GET /api/v1/profiles/{id}/meal-plans/latest/export
func (h *PlannerAPIHandlers) ExportMealPlan(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	text, err := h.planner.ExportMealPlan(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meal_plan.txt"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

// RecommendRecipes handles GET /api/v1/profiles/{id}/recipes/recommended
func (h *PlannerAPIHandlers) RecommendRecipes(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	recipes, err := h.planner.RecommendRecipes(r.Context(), id, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, recipes, "")
}

// RecommendExercises handles GET /api/v1/profiles/{id}/exercises/recommended
func (h *PlannerAPIHandlers) RecommendExercises(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	count, err := queryInt(r, "count")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.planner.RecommendExercises(r.Context(), id, count)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, rec, "")
}

// RateExercise handles PUT /api/v1/profiles/{id}/ratings. Rating the same
// exercise again replaces the earlier value.
func (h *PlannerAPIHandlers) RateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ratingRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cmd := inbound.RecordRatingCommand{UserID: id, ExerciseTitle: req.ExerciseTitle, Rating: req.Rating}
	if err := h.planner.RecordRating(r.Context(), cmd); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Rating saved")
}

// SearchFoods handles GET /api/v1/foods?q=&diet=&limit=
func (h *PlannerAPIHandlers) SearchFoods(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	foods, err := h.planner.SearchFoods(r.Context(), inbound.FoodSearchQuery{
		Query: q.Get("q"),
		Diet:  q.Get("diet"),
		Limit: limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, foods, "")
}
