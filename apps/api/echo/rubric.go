package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/rubric"
)

type (
	categoryInfo struct {
		ID       rubric.Category `json:"id"`
		Arabic   string          `json:"arabic"`
		English  string          `json:"english"`
		Criteria int             `json:"criteria"`
		MaxScore int             `json:"maxScore"`
	}

	scoresRequest struct {
		Ratings rubric.Ratings `json:"ratings"`
	}

	scoresResponse struct {
		Scores    rubric.Scores `json:"scores"`
		FourPoint float64       `json:"fourPoint"`
	}
)

func registerRubricAPI(g *echo.Group) {
	rg := g.Group("/rubric")
	rg.GET("", rubricCategories)
	rg.POST("/scores", rubricScores)
}

func rubricCategories(ctx echo.Context) error {
	cats := make([]categoryInfo, 0, len(rubric.Categories))
	for _, c := range rubric.Categories {
		ar, en := c.Titles()
		cats = append(cats, categoryInfo{ID: c, Arabic: ar, English: en, Criteria: rubric.CriteriaPerCategory, MaxScore: rubric.MaxCategoryScore})
	}
	return ctx.JSON(http.StatusOK, cats)
}

// rubricScores previews the scores of a form being filled in; nothing is recorded.
func rubricScores(ctx echo.Context) error {
	data := new(scoresRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	scores, err := data.Ratings.Scores()
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "ratings", Error: err.Error()})
	}
	return ctx.JSON(http.StatusOK, scoresResponse{Scores: scores, FourPoint: scores.FourPoint()})
}
