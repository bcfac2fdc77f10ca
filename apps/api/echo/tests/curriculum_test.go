package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/user"
	"github.com/trezcool/schoolops/tests"
)

func Test_curriculumApi(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.vn", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "", []string{user.RoleTeacher}, true)
	nurse := testutil.CreateUser(t, usrRepo, "Nurse", "nurse", "nurse@test.vn", "", []string{user.RoleNurse}, true)
	token, teacherToken, nurseToken := getToken(t, admin), getToken(t, teacher), getToken(t, nurse)

	newCurriculum := []byte(`{
		"name": "  Chương trình Lá ",
		"age_group": "5-6 tuổi",
		"school_year": "2026-2027",
		"activities": [
			{"name": "Thể dục sáng", "category": "Phát triển thể chất", "duration_minutes": 20},
			{"name": "Làm quen chữ cái", "category": "Phát triển ngôn ngữ", "duration_minutes": 30}
		]
	}`)
	notFound := marchallObj(t, httpErr{Error: curriculum.ErrNotFound.Error()})

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/curricula", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "teachers read", path: "/v1/curricula", token: teacherToken, wantCode: http.StatusOK},
		{name: "nurses cannot read", path: "/v1/curricula", token: nurseToken, wantCode: http.StatusForbidden},
		{name: "teachers cannot write", method: http.MethodPost, path: "/v1/curricula", token: teacherToken, body: newCurriculum, wantCode: http.StatusForbidden},
		{
			name: "school year", method: http.MethodPost, path: "/v1/curricula", token: token,
			body:     []byte(`{"name": "Lá", "age_group": "5-6 tuổi", "school_year": "2026-2028"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"school_year": "must be a school year formatted as YYYY-YYYY"}),
		},
		{
			name: "age group", method: http.MethodPost, path: "/v1/curricula", token: token,
			body:     []byte(`{"name": "Lá", "age_group": "7-8 tuổi", "school_year": "2026-2027"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"age_group": "invalid age group"}),
		},
		{
			name: "activity category", method: http.MethodPost, path: "/v1/curricula", token: token,
			body:     []byte(`{"name": "Lá", "age_group": "5-6 tuổi", "school_year": "2026-2027", "activities": [{"name": "Vẽ", "category": "Khác"}]}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"category": "invalid activity category"}),
		},
	})

	rec := do(app, http.MethodPost, "/v1/curricula", token, newCurriculum)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c curriculum.Curriculum
	unmarshal(t, rec, &c)
	assert.Equal(t, "Chương trình Lá", c.Name)
	assert.Equal(t, core.AgeGroup5To6, c.AgeGroup)
	assert.Len(t, c.Activities, 2)
	assert.Equal(t, 50, c.TotalMinutes())

	path := "/v1/curricula/" + c.ID
	byAgeGroup := func(group string) string { return "/v1/curricula?age_group=" + url.QueryEscape(group) }
	runHTTPTests(t, app, []httpTest{
		{name: "retrieve", path: path, token: teacherToken, wantCode: http.StatusOK, wantData: marchallObj(t, c)},
		{
			name: "by age group", path: byAgeGroup(core.AgeGroup5To6), token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Page{Items: []interface{}{c}, Total: 1, Page: 1, PageSize: 20}),
		},
		{
			name: "other age group", path: byAgeGroup(core.AgeGroup3To4), token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Page{Items: []interface{}{}, Total: 0, Page: 1, PageSize: 20}),
		},
		{name: "teachers cannot delete", method: http.MethodDelete, path: path, token: teacherToken, wantCode: http.StatusForbidden},
		{name: "unknown curriculum", path: "/v1/curricula/lol", token: teacherToken, wantCode: http.StatusNotFound, wantData: notFound},
	})

	t.Run("replace activities", func(t *testing.T) {
		rec := do(app, http.MethodPut, path, token, []byte(`{
			"name": "Chương trình Lá",
			"age_group": "5-6 tuổi",
			"school_year": "2026-2027",
			"activities": [{"name": "Hát", "category": "Phát triển thẩm mỹ", "duration_minutes": 15}]
		}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated curriculum.Curriculum
		unmarshal(t, rec, &updated)
		assert.Equal(t, c.ID, updated.ID)
		assert.Equal(t, []curriculum.Activity{{Name: "Hát", Category: curriculum.CategoryArt, DurationMinutes: 15}}, updated.Activities)
	})

	runHTTPTests(t, app, []httpTest{
		{name: "delete", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent},
		{name: "deleted", path: path, token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})
}
