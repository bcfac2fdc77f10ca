package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/user"
	"github.com/trezcool/schoolops/tests"
)

func Test_medicalApi(t *testing.T) {
	app := setup(t)

	nurse := testutil.CreateUser(t, usrRepo, "Nurse", "nurse", "nurse@test.vn", "", []string{user.RoleNurse}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "", []string{user.RoleTeacher}, true)
	token, teacherToken := getToken(t, nurse), getToken(t, teacher)
	st := testutil.CreateStudent(t, studRepo, "HS001", "Nguyễn Văn An", "Lá 1")

	exam := func(studentID, examinedAt string) []byte {
		return []byte(`{
			"student_id": "` + studentID + `",
			"examined_at": "` + examinedAt + `",
			"doctor": "  BS. Lan ",
			"height_cm": 105,
			"weight_kg": 17,
			"teeth": "Sâu 2 răng",
			"conclusion": "Đủ sức khỏe"
		}`)
	}
	notFound := marchallObj(t, httpErr{Error: medical.ErrNotFound.Error()})

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/medical-records", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "nurses only", path: "/v1/medical-records", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "nurses only: write", method: http.MethodPost, path: "/v1/medical-records", token: teacherToken, body: exam(st.ID, "2026-09-15"), wantCode: http.StatusForbidden},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/medical-records", token: token, body: exam("lol", "2026-09-15"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "unknown student"}),
		},
		{
			name: "measurements", method: http.MethodPost, path: "/v1/medical-records", token: token,
			body:     []byte(`{"student_id": "` + st.ID + `", "examined_at": "2026-09-15", "height_cm": 0, "weight_kg": 17, "conclusion": "ok"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "no examination yet", path: "/v1/medical-records/latest?student_id=" + st.ID, token: token,
			wantCode: http.StatusNotFound, wantData: notFound,
		},
		{
			name: "latest of whom", path: "/v1/medical-records/latest", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
	})

	rec := do(app, http.MethodPost, "/v1/medical-records", token, exam(st.ID, "2026-09-15"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first medical.Certificate
	unmarshal(t, rec, &first)
	assert.Equal(t, st.ID, first.StudentID)
	assert.Equal(t, "BS. Lan", first.Doctor)
	assert.Equal(t, "2026-09-15", first.ExaminedAt.String())
	assert.InDelta(t, 15.42, first.BMI, 1e-9)

	rec = do(app, http.MethodPost, "/v1/medical-records", token, exam(st.ID, "2026-03-02"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var earlier medical.Certificate
	unmarshal(t, rec, &earlier)

	path := "/v1/medical-records/" + first.ID
	runHTTPTests(t, app, []httpTest{
		{name: "latest", path: "/v1/medical-records/latest?student_id=" + st.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, first)},
		{name: "retrieve", path: "/v1/medical-records/" + earlier.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, earlier)},
		{
			name: "by student", path: "/v1/medical-records?student_id=" + st.ID + "&ordering=examined_at", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Page{Items: []interface{}{earlier, first}, Total: 2, Page: 1, PageSize: 20}),
		},
		{
			name: "other student", path: "/v1/medical-records?student_id=lol", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, core.Page{Items: []interface{}{}, Total: 0, Page: 1, PageSize: 20}),
		},
		{name: "unknown record", path: "/v1/medical-records/lol", token: token, wantCode: http.StatusNotFound, wantData: notFound},
	})

	t.Run("remeasure", func(t *testing.T) {
		rec := do(app, http.MethodPut, path, token, []byte(`{
			"student_id": "`+st.ID+`",
			"examined_at": "2026-09-15",
			"height_cm": 100,
			"weight_kg": 20,
			"conclusion": "Thừa cân"
		}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var c medical.Certificate
		unmarshal(t, rec, &c)
		assert.Equal(t, first.ID, c.ID)
		assert.InDelta(t, 20.0, c.BMI, 1e-9)
		assert.Equal(t, medical.BMIObese, c.BMICategory())
		assert.Empty(t, c.Teeth)
	})

	runHTTPTests(t, app, []httpTest{
		{name: "delete", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent},
		{name: "deleted", path: path, token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "latest after delete", path: "/v1/medical-records/latest?student_id=" + st.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, earlier)},
	})
}
