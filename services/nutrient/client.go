// Package nutrientsvc asks the nutrient estimation API for the macros of a dish's ingredients.
package nutrientsvc

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/nutrition"
)

const calculatePath = "/v1/nutrients"

type (
	ingredientReq struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	}

	calculateReq struct {
		Dish        string          `json:"dish"`
		Ingredients []ingredientReq `json:"ingredients"`
	}

	calculateRes struct {
		Ingredients []struct {
			Name string `json:"name"`
			nutrition.Nutrients
		} `json:"ingredients"`
	}

	apiError struct {
		Error string `json:"error"`
	}
)

type Client struct {
	http   *resty.Client
	logger core.Logger
}

var _ food.NutrientCalculator = (*Client)(nil)

func NewClient(conf core.NutrientsConfig, logger core.Logger) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if conf.ApiKey != "" {
		hc.SetHeader("X-Api-Key", conf.ApiKey)
	}
	return &Client{http: hc, logger: logger}
}

// Calculate returns the nutrients of every ingredient, in order.
func (c *Client) Calculate(ctx context.Context, dish string, ingredients []nutrition.Ingredient) ([]nutrition.Nutrients, error) {
	body := calculateReq{Dish: dish, Ingredients: make([]ingredientReq, 0, len(ingredients))}
	for _, ing := range ingredients {
		body.Ingredients = append(body.Ingredients, ingredientReq{
			Name:   ing.Name,
			Amount: ing.Quantity.Amount,
			Unit:   ing.Quantity.Unit,
		})
	}

	var (
		out    calculateRes
		apiErr apiError
	)
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(calculatePath)
	if err != nil {
		return nil, errors.Wrap(err, "calling nutrient API")
	}
	if res.StatusCode() != http.StatusOK {
		msg := apiErr.Error
		if msg == "" {
			msg = res.Status()
		}
		c.logger.Warn("nutrient API error", map[string]interface{}{"dish": dish, "status": res.StatusCode(), "error": msg})
		return nil, errors.Errorf("nutrient API error %d: %s", res.StatusCode(), msg)
	}
	if len(out.Ingredients) != len(ingredients) {
		return nil, errors.Errorf("nutrient API returned %d ingredients, expected %d", len(out.Ingredients), len(ingredients))
	}

	results := make([]nutrition.Nutrients, len(out.Ingredients))
	for i, ing := range out.Ingredients {
		results[i] = ing.Nutrients
	}
	return results, nil
}
