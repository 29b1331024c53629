package recipes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	recipeapp "github.com/astro-web3/recipebox/internal/app/recipe"
	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type Handler struct {
	commandService *recipeapp.CommandService
	queryService   *recipeapp.QueryService
	resolver       *identity.Resolver
}

func NewHandler(
	commandService *recipeapp.CommandService,
	queryService *recipeapp.QueryService,
	resolver *identity.Resolver,
) *Handler {
	return &Handler{
		commandService: commandService,
		queryService:   queryService,
		resolver:       resolver,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/recipes", h.resolver.Require())
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/favorite", h.AddFavorite)
	g.DELETE("/:id/favorite", h.RemoveFavorite)
}

func (h *Handler) List(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.List")
	defer span.End()

	page, ok := intQuery(c, "page")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	result, err := h.queryService.ListRecipes(ctx, identity.UserID(c), recipedomain.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponse(result))
}

func (h *Handler) Create(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.Create")
	defer span.End()

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	r, err := h.commandService.CreateRecipe(ctx, identity.UserID(c), req.toInput())
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.Header("Location", "/recipes/"+r.ID.String())
	c.JSON(http.StatusCreated, toRecipeResponse(r))
}

func (h *Handler) Get(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.Get")
	defer span.End()

	id, ok := recipeID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("recipe.id", id.String()))

	r, err := h.queryService.GetRecipe(ctx, identity.UserID(c), id)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRecipeResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.Update")
	defer span.End()

	id, ok := recipeID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("recipe.id", id.String()))

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	r, err := h.commandService.UpdateRecipe(ctx, identity.UserID(c), id, req.toInput())
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRecipeResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.Delete")
	defer span.End()

	id, ok := recipeID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("recipe.id", id.String()))

	if err := h.commandService.DeleteRecipe(ctx, identity.UserID(c), id); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.AddFavorite")
	defer span.End()

	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.commandService.AddFavorite(ctx, identity.UserID(c), id); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe marked as favorite"})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.recipes.RemoveFavorite")
	defer span.End()

	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.commandService.RemoveFavorite(ctx, identity.UserID(c), id); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed from favorites"})
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}

func writeError(c *gin.Context, err error) {
	var verr *recipedomain.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, recipedomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, recipedomain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		logger.ErrorContext(c.Request.Context(), "recipes request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
