package nutrientsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

type loggerStub struct{ warnings int }

func (l *loggerStub) Debug(string, ...interface{}) {}
func (l *loggerStub) Info(string, ...interface{})  {}
func (l *loggerStub) Warn(string, ...interface{})  { l.warnings++ }
func (l *loggerStub) Error(string, ...interface{}) {}
func (l *loggerStub) Fatal(string, ...interface{}) {}

func TestClient_Calculate(t *testing.T) {
	ingredients := []nutrition.Ingredient{
		{Name: "gạo", Quantity: nutrition.Quantity{Amount: 100, Unit: "g"}},
		{Name: "trứng", Quantity: nutrition.Quantity{Amount: 1, Unit: "quả"}},
	}

	var got calculateReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, calculatePath, r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		if got.Dish == "broken" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"unknown dish"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ingredients":[
			{"name":"gạo","calories":130,"protein":2.7,"carbohydrate":28},
			{"name":"trứng","calories":70,"protein":6,"lipid":5}
		]}`))
	}))
	defer srv.Close()

	logger := &loggerStub{}
	c := NewClient(core.NutrientsConfig{BaseURL: srv.URL, ApiKey: "key", Timeout: 5 * time.Second}, logger)

	res, err := c.Calculate(context.Background(), "cơm trứng", ingredients)
	require.NoError(t, err)
	assert.Equal(t, "cơm trứng", got.Dish)
	assert.Equal(t, ingredientReq{Name: "trứng", Amount: 1, Unit: "quả"}, got.Ingredients[1])
	assert.Equal(t, []nutrition.Nutrients{
		{Calories: 130, Protein: 2.7, Carbohydrate: 28},
		{Calories: 70, Protein: 6, Lipid: 5},
	}, res)

	t.Run("count mismatch", func(t *testing.T) {
		_, err := c.Calculate(context.Background(), "cơm", ingredients[:1])
		assert.Error(t, err)
	})

	t.Run("api error", func(t *testing.T) {
		_, err := c.Calculate(context.Background(), "broken", ingredients)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "unknown dish")
		}
		assert.Equal(t, 1, logger.warnings)
	})
}
