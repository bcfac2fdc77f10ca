package tests

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/schoolops/apps/api/echo"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
	reportsvc "github.com/trezcool/schoolops/services/report"
	"github.com/trezcool/schoolops/tests"
)

func Test_tuitionApi_billingAndPayment(t *testing.T) {
	app := setup(t)

	accountant := testutil.CreateUser(t, usrRepo, "Kế toán", "accountant", "accountant@test.vn", "", []string{user.RoleAccountant}, true)
	kitchen := testutil.CreateUser(t, usrRepo, "Bếp", "kitchen", "kitchen@test.vn", "", []string{user.RoleKitchen}, true)
	token := getToken(t, accountant)
	st := testutil.CreateStudent(t, studRepo, "HS001", "Nguyễn Văn An", "Lá 1")

	t.Run("accountants only", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/v1/tuition", getToken(t, kitchen))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	rec := do(app, http.MethodPost, "/v1/services", token, []byte(`{"name": "Tiền ăn", "price": 500000, "unit": "tháng"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var meals tuition.SchoolService
	unmarshal(t, rec, &meals)
	assert.True(t, meals.IsActive)

	rec = do(app, http.MethodPost, "/v1/services", token, []byte(`{"name": "Xe đưa đón", "price": 300000, "is_active": false}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bus tuition.SchoolService
	unmarshal(t, rec, &bus)
	assert.False(t, bus.IsActive)

	t.Run("inactive services are not billed", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/tuition/generate", token, marchallObj(t, tuition.GenerateRequest{Month: "2026-09", ServiceIDs: []string{meals.ID, bus.ID}}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "service_ids")
	})

	gen := marchallObj(t, tuition.GenerateRequest{Month: "2026-09", ServiceIDs: []string{meals.ID}})
	rec = do(app, http.MethodPost, "/v1/tuition/generate", token, gen)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res tuition.GenerateResult
	unmarshal(t, rec, &res)
	require.Len(t, res.Created, 1)
	assert.Zero(t, res.Skipped)

	tu := res.Created[0]
	assert.Equal(t, st.ID, tu.StudentID)
	assert.Equal(t, int64(500000), tu.Amount)
	assert.Equal(t, tuition.StatusUnpaid, tu.Status)

	t.Run("students are billed once a month", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/tuition/generate", token, gen)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res tuition.GenerateResult
		unmarshal(t, rec, &res)
		assert.Empty(t, res.Created)
		assert.Equal(t, 1, res.Skipped)
	})

	path := "/v1/tuition/" + tu.ID
	rec = do(app, http.MethodPost, path+"/pay", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid echoapi.PaymentResponse
	unmarshal(t, rec, &paid)
	assert.Equal(t, tuition.StatusProcessing, paid.Tuition.Status)
	assert.Equal(t, "ref-"+tu.ID, paid.Tuition.PaymentRef)
	assert.Equal(t, "https://pay.test/"+tu.ID, paid.Payment.PaymentURL)
	assert.Equal(t, "qr-"+tu.ID, paid.Payment.QRCode)

	t.Run("pay twice", func(t *testing.T) {
		rec := do(app, http.MethodPost, path+"/pay", token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("processing cannot be edited", func(t *testing.T) {
		rec := do(app, http.MethodPut, path, token, []byte(`{"student_id": "`+st.ID+`", "month": "2026-09", "amount": 1}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	rec = do(app, http.MethodGet, path+"/payment-status", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &tu)
	assert.Equal(t, tuition.StatusProcessing, tu.Status, "still pending")

	payments.set("ref-"+tu.ID, tuition.PaymentSucceeded)
	rec = do(app, http.MethodGet, path+"/payment-status", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &tu)
	assert.Equal(t, tuition.StatusPaid, tu.Status)
	assert.NotNil(t, tu.PaidAt)

	rec = do(app, http.MethodGet, "/v1/tuition/revenue?month=2026-09", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep tuition.RevenueReport
	unmarshal(t, rec, &rep)
	assert.Equal(t, 1, rep.Count)
	assert.Equal(t, int64(500000), rep.Total)
	assert.Equal(t, int64(500000), rep.Collected)
	assert.Zero(t, rep.Outstanding)
	require.Len(t, rep.Lines, 1)
	assert.Equal(t, "HS001", rep.Lines[0].StudentCode)

	t.Run("revenue month is validated", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/v1/tuition/revenue?month=09-2026", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("export", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/v1/tuition/revenue/export?month=2026-09", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, reportsvc.XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), reportsvc.RevenueFilename("2026-09"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
	})
}

func Test_tuitionApi_nothingToPay(t *testing.T) {
	app := setup(t)

	accountant := testutil.CreateUser(t, usrRepo, "Kế toán", "accountant", "accountant@test.vn", "", []string{user.RoleAccountant}, true)
	token := getToken(t, accountant)
	st := testutil.CreateStudent(t, studRepo, "HS001", "Nguyễn Văn An", "Lá 1")

	rec := do(app, http.MethodPost, "/v1/tuition", token, marchallObj(t, tuition.NewTuition{StudentID: "lol", Month: "2026-10"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown student")

	rec = do(app, http.MethodPost, "/v1/tuition", token, marchallObj(t, tuition.NewTuition{StudentID: st.ID, Month: "2026-10"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tu tuition.Tuition
	unmarshal(t, rec, &tu)
	assert.Zero(t, tu.Amount)

	rec = do(app, http.MethodPost, "/v1/tuition/"+tu.ID+"/pay", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"amount": "nothing to pay"}`, rec.Body.String())

	rec = do(app, http.MethodPost, "/v1/tuition", token, marchallObj(t, tuition.NewTuition{StudentID: st.ID, Month: "2026-10"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "one tuition per student & month")

	rec = do(app, http.MethodDelete, "/v1/tuition/"+tu.ID, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
