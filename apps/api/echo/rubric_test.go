package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taqyeem/core/rubric"
)

func Test_rubricApi(t *testing.T) {
	app := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "scores", method: http.MethodPost, path: "/v1/rubric/scores", token: app.token,
			body:     []byte(`{"ratings": {"planning": ["5", "5", "5", "5", "5"], "quality": ["3", "", "abc"]}}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{
				"scores": rubric.Scores{Planning: 25, Quality: 3, Overall: 28},
				"fourPoint": rubric.FourPointScale(28),
			}),
		},
		{
			name: "no ratings", method: http.MethodPost, path: "/v1/rubric/scores", token: app.token,
			body: []byte(`{}`), wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{"scores": rubric.Scores{}, "fourPoint": 0}),
		},
		{
			name: "unknown category", method: http.MethodPost, path: "/v1/rubric/scores", token: app.token,
			body: []byte(`{"ratings": {"charisma": ["5"]}}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"ratings": "charisma: unknown rubric category"}),
		},
		{
			name: "too many criteria", method: http.MethodPost, path: "/v1/rubric/scores", token: app.token,
			body: []byte(`{"ratings": {"planning": ["1", "1", "1", "1", "1", "1"]}}`), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("categories", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/rubric", app.token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var cats []struct {
			ID       string `json:"id"`
			English  string `json:"english"`
			MaxScore int    `json:"maxScore"`
		}
		unmarshal(t, rec, &cats)
		require.Len(t, cats, len(rubric.Categories))
		assert.Equal(t, "planning", cats[0].ID)
		assert.Equal(t, "Planning", cats[0].English)
		assert.Equal(t, 25, cats[5].MaxScore)
	})
}
