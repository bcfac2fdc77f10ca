package menu

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/nutrition"
)

type foodsStub map[string]food.Food

func (s foodsStub) GetByID(_ context.Context, id string) (food.Food, error) {
	if f, ok := s[id]; ok {
		return f, nil
	}
	return food.Food{}, food.ErrNotFound
}

type repoStub struct{ menus map[string]Menu }

func (r *repoStub) CreateMenu(_ context.Context, m Menu) (Menu, error) {
	m.ID = "m1"
	r.menus[m.ID] = m
	return m, nil
}

func (r *repoStub) QueryMenus(context.Context, *QueryFilter, []core.DBOrdering, core.Paging) ([]Menu, int, error) {
	return nil, 0, nil
}

func (r *repoStub) GetMenu(_ context.Context, id string) (Menu, error) {
	if m, ok := r.menus[id]; ok {
		return m, nil
	}
	return Menu{}, ErrNotFound
}

func (r *repoStub) UpdateMenu(_ context.Context, m Menu) (Menu, error) {
	r.menus[m.ID] = m
	return m, nil
}

func (r *repoStub) DeleteMenu(_ context.Context, id string) error {
	delete(r.menus, id)
	return nil
}

func testFoods() foodsStub {
	chao := food.Food{
		ID: "chao", Name: "Cháo gà", Calculated: true,
		Ingredients: []nutrition.Ingredient{
			{Name: "Gạo", Quantity: nutrition.Quantity{Amount: 50, Unit: "g"}, Nutrients: nutrition.Nutrients{Calories: 172, Protein: 3.8, Lipid: 0.5, Carbohydrate: 38}},
			{Name: "Thịt gà", Quantity: nutrition.Quantity{Amount: 50, Unit: "g"}, Nutrients: nutrition.Nutrients{Calories: 100, Protein: 10, Lipid: 6}},
		},
	}
	chao.Recompute()
	sua := food.Food{
		ID: "sua", Name: "Sữa chua", Calculated: true,
		Ingredients: []nutrition.Ingredient{
			{Name: "Sữa chua", Quantity: nutrition.Quantity{Amount: 100, Unit: "g"}, Nutrients: nutrition.Nutrients{Calories: 60, Protein: 3.5, Lipid: 3.2, Carbohydrate: 4.7}},
		},
	}
	sua.Recompute()
	return foodsStub{chao.ID: chao, sua.ID: sua}
}

func TestService_CreateComputesTotals(t *testing.T) {
	ctx := context.Background()
	foods := testFoods()
	svc := NewService(&repoStub{menus: make(map[string]Menu)}, foods)

	start := core.NewDate(2024, time.September, 9)
	nm := NewMenu{
		Name: "Tuần 1", StartDate: start, EndDate: start.AddDays(4), AgeGroup: core.AgeGroup1To2,
		Days: []NewDay{
			{Date: start.AddDays(1), Meals: []NewMeal{
				{Type: MealLunch, Foods: []NewPortion{{FoodID: "chao", Weight: 200}}},
			}},
			{Date: start, Meals: []NewMeal{
				{Type: MealBreakfast, Foods: []NewPortion{{FoodID: "chao", Weight: 50}}},
				{Type: MealSnack, Foods: []NewPortion{{FoodID: "sua", Weight: 100}, {FoodID: "sua", Weight: 50}}},
			}},
		},
	}

	m, err := svc.Create(ctx, nm)
	require.NoError(t, err)
	require.Len(t, m.Days, 2)
	assert.True(t, m.Days[0].Date.Equal(start.Time), "days are sorted")

	breakfast := m.Days[0].Meals[0]
	assert.Equal(t, "Cháo gà", breakfast.Foods[0].Name)
	assert.Equal(t, nutrition.Nutrients{Calories: 136, Protein: 6.9, Lipid: 3.25, Carbohydrate: 19}, breakfast.Totals.Round(2))

	snack := m.Days[0].Meals[1]
	assert.Equal(t, nutrition.Nutrients{Calories: 90, Protein: 5.25, Lipid: 4.8, Carbohydrate: 7.05}, snack.Totals.Round(2))
	assert.Equal(t, nutrition.Sum(breakfast.Totals, snack.Totals), m.Days[0].Totals)

	lunch := m.Days[1].Meals[0]
	assert.Equal(t, nutrition.Nutrients{Calories: 544, Protein: 27.6, Lipid: 13, Carbohydrate: 76}, lunch.Totals.Round(2))

	// bottom-up aggregation equals the flat sum of every portion
	var flat []nutrition.Nutrients
	for _, day := range m.Days {
		for _, meal := range day.Meals {
			for _, p := range meal.Foods {
				flat = append(flat, p.Nutrients)
			}
		}
	}
	assert.Equal(t, nutrition.Sum(flat...).Round(6), m.Totals.Round(6))
	assert.Equal(t, m.Totals.Scale(0.5), m.DailyAverage())
}

func TestService_UnknownFood(t *testing.T) {
	svc := NewService(&repoStub{menus: make(map[string]Menu)}, testFoods())
	start := core.NewDate(2024, time.September, 9)
	_, err := svc.Create(context.Background(), NewMenu{
		Name: "x", StartDate: start, EndDate: start, AgeGroup: core.AgeGroup1To2,
		Days: []NewDay{{Date: start, Meals: []NewMeal{{Type: MealLunch, Foods: []NewPortion{{FoodID: "pho", Weight: 100}}}}}},
	})
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %v", err)
	assert.Equal(t, "food_id", vErr.Fields[0].Field)
}

func TestService_UpdateRederivesNutrients(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&repoStub{menus: make(map[string]Menu)}, testFoods())
	start := core.NewDate(2024, time.September, 9)
	nm := NewMenu{
		Name: "x", StartDate: start, EndDate: start, AgeGroup: core.AgeGroup1To2,
		Days: []NewDay{{Date: start, Meals: []NewMeal{{Type: MealSnack, Foods: []NewPortion{{FoodID: "sua", Weight: 100}}}}}},
	}
	m, err := svc.Create(ctx, nm)
	require.NoError(t, err)
	assert.Equal(t, 60.0, m.Totals.Calories)

	nm.Days[0].Meals[0].Foods[0].Weight = 50
	m, err = svc.Update(ctx, m, nm)
	require.NoError(t, err)
	assert.Equal(t, 30.0, m.Totals.Calories)
	assert.Equal(t, 50.0, m.Days[0].Meals[0].Foods[0].Weight)
}

func TestNewMenu_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	start := core.NewDate(2024, time.September, 1)
	menu := func(end core.Date, days ...core.Date) NewMenu {
		nm := NewMenu{Name: "Tháng 9", StartDate: start, EndDate: end, AgeGroup: core.AgeGroup3To4}
		for _, d := range days {
			nm.Days = append(nm.Days, NewDay{Date: d, Meals: []NewMeal{{Type: MealLunch, Foods: []NewPortion{{FoodID: "f", Weight: 100}}}}})
		}
		return nm
	}

	tests := []struct {
		name    string
		data    NewMenu
		wantErr map[string]string
	}{
		{name: "valid", data: menu(start.AddDays(30), start, start.AddDays(30))},
		{name: "single day", data: menu(start, start)},
		{name: "end before start", data: menu(start.AddDays(-1)), wantErr: map[string]string{"end_date": dateRangeText}},
		{name: "too long", data: menu(start.AddDays(31)), wantErr: map[string]string{"end_date": maxDaysText}},
		{name: "day out of range", data: menu(start.AddDays(6), start.AddDays(7)), wantErr: map[string]string{"days": dayInRangeText}},
		{name: "duplicate day", data: menu(start.AddDays(6), start, start), wantErr: map[string]string{"days": uniqueDaysText}},
		{
			name: "invalid meal",
			data: NewMenu{
				Name: "x", StartDate: start, EndDate: start, AgeGroup: core.AgeGroup3To4,
				Days: []NewDay{{Date: start, Meals: []NewMeal{{Type: "brunch", Foods: []NewPortion{{Weight: 0}}}}}},
			},
			wantErr: map[string]string{"type": "type must be one of [breakfast lunch snack dinner]", "food_id": "this field is required", "weight": "weight must be greater than 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !assert.True(t, ok, "want validator.ValidationErrors, got %v", err) {
				return
			}
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestQueryFilter_Match(t *testing.T) {
	m := Menu{Name: "Tuần 2", AgeGroup: core.AgeGroup2To3, StartDate: core.NewDate(2024, 9, 9), EndDate: core.NewDate(2024, 9, 13)}
	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty", want: true},
		{name: "search", filter: QueryFilter{Search: "TUẦN"}, want: true},
		{name: "age group", filter: QueryFilter{AgeGroup: core.AgeGroup1To2}},
		{name: "overlap", filter: QueryFilter{From: core.NewDate(2024, 9, 13), To: core.NewDate(2024, 9, 20)}, want: true},
		{name: "before", filter: QueryFilter{To: core.NewDate(2024, 9, 8)}},
		{name: "after", filter: QueryFilter{From: core.NewDate(2024, 9, 14)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(m))
		})
	}
}
