package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/enrollment"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/nutrition"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
)

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewStudentRepository(db)

	base := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"Trần Bình", "lê Chi", "Nguyễn An"}
	for i, name := range names {
		_, err := repo.CreateStudent(ctx, student.Student{
			Code:      "HS00" + string(rune('1'+i)),
			FullName:  name,
			ClassName: "Mầm 1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	fullNames := func(sts []student.Student) []string {
		res := make([]string, 0, len(sts))
		for _, st := range sts {
			res = append(res, st.FullName)
		}
		return res
	}

	t.Run("default ordering", func(t *testing.T) {
		sts, total, err := repo.QueryStudents(ctx, nil, nil, core.NoPaging)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, names, fullNames(sts))
	})

	t.Run("ordering & paging", func(t *testing.T) {
		sts, total, err := repo.QueryStudents(ctx, nil, []core.DBOrdering{{Field: "full_name", Ascending: true}}, core.Paging{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []string{"lê Chi", "Nguyễn An"}, fullNames(sts))

		sts, _, err = repo.QueryStudents(ctx, nil, []core.DBOrdering{{Field: "full_name", Ascending: true}}, core.Paging{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"Trần Bình"}, fullNames(sts))

		sts, _, err = repo.QueryStudents(ctx, nil, []core.DBOrdering{{Field: "code"}}, core.Paging{Page: 5, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, sts)
	})

	t.Run("search", func(t *testing.T) {
		sts, total, err := repo.QueryStudents(ctx, &student.QueryFilter{Search: "CHI"}, nil, core.NoPaging)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"lê Chi"}, fullNames(sts))
	})

	t.Run("code uniqueness", func(t *testing.T) {
		sts, _, err := repo.QueryStudents(ctx, &student.QueryFilter{Search: "hs001"}, nil, core.NoPaging)
		require.NoError(t, err)
		require.Len(t, sts, 1)
		assert.Equal(t, student.ErrCodeExists, repo.CheckCodeUniqueness(ctx, "hs001"))
		assert.NoError(t, repo.CheckCodeUniqueness(ctx, "HS001", sts[0]))
		assert.NoError(t, repo.CheckCodeUniqueness(ctx, "HS009"))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetStudent(ctx, "nope")
		assert.Equal(t, student.ErrNotFound, err)
		_, err = repo.UpdateStudent(ctx, student.Student{ID: "nope"})
		assert.Equal(t, student.ErrNotFound, err)
		assert.Equal(t, student.ErrNotFound, repo.DeleteStudent(ctx, "nope"))
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db, _ := Open()
	repo := NewUserRepository(db)

	usr, err := repo.CreateUser(ctx, user.User{Name: "Cô Lan", Username: "lan", Email: "lan@school.vn", IsActive: true, Roles: []string{user.RoleTeacher}})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "lan", "other@school.vn"))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUsernameUniqueness(ctx, "other", "lan@school.vn"))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "lan", "lan@school.vn", usr))

	got, err := repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "lan@school.vn"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	_, err = repo.GetUser(ctx, user.GetFilter{Username: "lan@school.vn"})
	assert.Equal(t, user.ErrNotFound, err)

	users, err := repo.QueryUsers(ctx, &user.QueryFilter{Roles: []string{user.RoleStaff}}, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	n, err := repo.DeleteUsersByID(ctx, usr.ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMedicalRepository_LatestCertificate(t *testing.T) {
	ctx := context.Background()
	db, _ := Open()
	repo := NewMedicalRepository(db)

	for _, day := range []int{3, 20, 11} {
		_, err := repo.CreateCertificate(ctx, medical.Certificate{StudentID: "st1", ExaminedAt: core.NewDate(2024, time.September, day)})
		require.NoError(t, err)
	}
	_, err := repo.CreateCertificate(ctx, medical.Certificate{StudentID: "st2", ExaminedAt: core.NewDate(2024, time.December, 1)})
	require.NoError(t, err)

	latest, err := repo.LatestCertificate(ctx, "st1")
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, time.September, 20), latest.ExaminedAt)

	_, err = repo.LatestCertificate(ctx, "st3")
	assert.Equal(t, medical.ErrNotFound, err)
}

func TestTuitionRepository(t *testing.T) {
	ctx := context.Background()
	db, _ := Open()
	repo := NewTuitionRepository(db)

	paidAt := time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateTuition(ctx, tuition.Tuition{StudentID: "st1", Month: "2024-09", Amount: 300, Status: tuition.StatusPaid, PaidAt: &paidAt})
	require.NoError(t, err)
	_, err = repo.CreateTuition(ctx, tuition.Tuition{StudentID: "st2", Month: "2024-09", Amount: 100, Status: tuition.StatusUnpaid})
	require.NoError(t, err)

	_, err = repo.CreateTuition(ctx, tuition.Tuition{StudentID: "st1", Month: "2024-09"})
	assert.Equal(t, tuition.ErrTuitionExists, errors.Cause(err))

	rows, total, err := repo.QueryTuitions(ctx, &tuition.QueryFilter{Month: "2024-09"}, []core.DBOrdering{{Field: "paid_at", Ascending: true}}, core.NoPaging)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "st2", rows[0].StudentID) // unpaid first

	rows, _, err = repo.QueryTuitions(ctx, &tuition.QueryFilter{Statuses: []string{tuition.StatusPaid}}, nil, core.NoPaging)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(300), rows[0].Amount)

	_, err = repo.GetSchoolService(ctx, "nope")
	assert.Equal(t, tuition.ErrServiceNotFound, err)
}

func TestRepositories_rowsAreNotShared(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)

	t.Run("food", func(t *testing.T) {
		repo := NewFoodRepository(db)
		f, err := repo.CreateFood(ctx, food.Food{
			Name:        "Cháo gà",
			Ingredients: []nutrition.Ingredient{{Name: "Gạo", Quantity: nutrition.Quantity{Amount: 50, Unit: "g"}}},
			CreatedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)
		f.Ingredients[0].Calories = 100 // caller's copy

		got, err := repo.GetFood(ctx, f.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Ingredients[0].Calories)

		got.Ingredients[0].Calories = 200
		rows, _, err := repo.QueryFoods(ctx, &food.QueryFilter{}, nil, core.NoPaging)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].Ingredients[0].Calories)

		rows[0].Ingredients[0].Calories = 300
		got, err = repo.GetFood(ctx, f.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Ingredients[0].Calories)
	})

	t.Run("menu", func(t *testing.T) {
		repo := NewMenuRepository(db)
		m, err := repo.CreateMenu(ctx, menu.Menu{
			Name: "Tuần 1",
			Days: []menu.Day{{Meals: []menu.Meal{{Type: "lunch", Foods: []menu.Portion{{Name: "Cháo gà", Weight: 150}}}}}},
		})
		require.NoError(t, err)

		got, err := repo.GetMenu(ctx, m.ID)
		require.NoError(t, err)
		got.Days[0].Meals[0].Foods[0].Weight = 999

		got, err = repo.GetMenu(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 150.0, got.Days[0].Meals[0].Foods[0].Weight)
	})

	t.Run("room", func(t *testing.T) {
		repo := NewRoomRepository(db)
		r, err := repo.CreateRoom(ctx, room.Room{Name: "Lá 1", Facilities: []room.Facility{{Name: "Bàn", Total: 10}}})
		require.NoError(t, err)

		got, err := repo.GetRoom(ctx, r.ID)
		require.NoError(t, err)
		got.Facilities[0].Missing = 3

		got, err = repo.GetRoom(ctx, r.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Facilities[0].Missing)
	})

	t.Run("enrollment", func(t *testing.T) {
		repo := NewEnrollmentRepository(db)
		a, err := repo.CreateApplication(ctx, enrollment.Application{StudentName: "Bé Na", CertificateIDs: make([]string, 1, 4)})
		require.NoError(t, err)

		got, err := repo.GetApplication(ctx, a.ID)
		require.NoError(t, err)
		got.CertificateIDs[0] = "f1"

		got, err = repo.GetApplication(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{""}, got.CertificateIDs)
	})
}
