package tests

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/schoolops/apps/api/echo"
	"github.com/trezcool/schoolops/core/user"
	emailsvc "github.com/trezcool/schoolops/services/email"
	"github.com/trezcool/schoolops/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "Str0ng!Passw0rd", []string{user.RoleTeacher}, true)
	testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@test.vn", "Str0ng!Passw0rd", []string{user.RoleTeacher}, false)

	login := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}
	failed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{name: "unknown user", body: login("nobody", "Str0ng!Passw0rd"), wantCode: http.StatusBadRequest, wantData: failed},
		{name: "wrong password", body: login("teacher", "nope"), wantCode: http.StatusBadRequest, wantData: failed},
		{
			name: "inactive user", body: login("gone", "Str0ng!Passw0rd"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "by username", body: login("TEACHER", "Str0ng!Passw0rd"), wantCode: http.StatusOK},
		{name: "by email", body: login("teacher@test.vn", "Str0ng!Passw0rd"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodPost, "/v1/users/login", "", tt.body)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				unmarshal(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}

	usr, err := usrRepo.GetUser(ctx(), user.GetFilter{Username: "teacher"})
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero(), "last login set")
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	path := func(search, ordering string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	now := time.Now()
	usr1 := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.vn", "", nil, true, now.Add(1*time.Hour))
	usr2 := testutil.CreateUser(t, usrRepo, "King", "user02", "king@test.vn", "", nil, true, now.Add(2*time.Hour))
	nurse := testutil.CreateUser(t, usrRepo, "Hero", "hero", "user3@test.vn", "", []string{user.RoleNurse}, true, now.Add(3*time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.vn", "", []string{user.RoleAdmin}, true, now.Add(4*time.Hour))
	principal := testutil.CreateUser(t, usrRepo, "Principal", "princip", "princip@test.vn", "", []string{user.RoleAdminPrincipal}, true, now.Add(5*time.Hour))
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "", []string{user.RoleTeacher}, true, now.Add(6*time.Hour))

	adminToken := getToken(t, admin)

	runHTTPTests(t, app, []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2, nurse, admin, principal, teacher),
		},
		{name: "search (unknown)", path: path("lol", ""), token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "search=USE", path: path("USE", ""), token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, usr1, usr2, nurse)},
		{name: "role (unknown)", path: path("", "", "lol"), token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "role=admin:", path: path("", "", user.RoleAdmin), token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, admin, principal)},
		{
			name: "role=staff:", path: path("", "", user.RoleStaff), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, nurse, teacher),
		},
		{
			name: "order by -created_at", path: path("", "-created_at"), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, teacher, principal, admin, nurse, usr2, usr1),
		},
		{
			name: "order by name", path: path("", "name"), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin, nurse, usr2, principal, teacher, usr1),
		},
		{
			name: "unknown ordering field is ignored", path: path("", "password_hash"), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2, nurse, admin, principal, teacher),
		},
		{
			name: "filtering & ordering", path: path("", "-name", user.RoleStaff), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, teacher, nurse),
		},
	})
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.vn", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "", []string{user.RoleTeacher}, true)
	nurse := testutil.CreateUser(t, usrRepo, "Nurse", "nurse", "nurse@test.vn", "", []string{user.RoleNurse}, true)

	runHTTPTests(t, app, []httpTest{
		{name: "self", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher), wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
		{
			name: "someone else", path: "/v1/users/" + nurse.ID, token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "admin", path: "/v1/users/" + nurse.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, nurse)},
		{
			name: "unknown", path: "/v1/users/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.vn", "", []string{user.RoleAdmin}, true)
	principal := testutil.CreateUser(t, usrRepo, "Principal", "princip", "princip@test.vn", "", []string{user.RoleAdminPrincipal}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.vn", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, admin)

	runHTTPTests(t, app, []httpTest{
		{name: "staff cannot delete", method: http.MethodDelete, path: "/v1/users/" + teacher.ID, token: getToken(t, teacher), wantCode: http.StatusForbidden},
		{name: "no suicide", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken, wantCode: http.StatusForbidden},
		{name: "higher role", method: http.MethodDelete, path: "/v1/users/" + principal.ID, token: adminToken, wantCode: http.StatusForbidden},
		{name: "deleted", method: http.MethodDelete, path: "/v1/users/" + teacher.ID, token: adminToken, wantCode: http.StatusNoContent},
	})

	_, err := usrRepo.GetUser(ctx(), user.GetFilter{ID: teacher.ID})
	assert.Equal(t, user.ErrNotFound, err)
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.vn", "", []string{user.RoleTeacher}, false) // 😂
	teacher := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.vn", "", []string{user.RoleTeacher}, true)

	now := time.Now()
	unrefreshableClaims := echoapi.GetUserClaims(conf, teacher, now.Add(-2*conf.Server.JWTRefreshExpirationDelta).Unix())
	unrefreshableToken, err := echoapi.GenerateToken(conf, unrefreshableClaims)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, teacher), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodPost, "/v1/users/token-refresh", tt.token)

			// cannot guess new token.. just check that it's valid
			if tt.wantCode == http.StatusOK {
				require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
				var resp echoapi.LoginResponse
				unmarshal(t, rec, &resp)

				claims := new(echoapi.Claims)
				_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
					return []byte(conf.SecretKey), nil
				})
				require.NoError(t, err)
				assert.Equal(t, teacher.ID, claims.Subject)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.vn", "0ld!Passw0rd", []string{user.RoleTeacher}, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	t.Run("unknown email", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		rec := do(app, http.MethodPost, "/v1/users/password-reset", "", marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.vn"}))
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: successData}, rec)
		assert.Empty(t, emailsvc.Sent())
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/users/password-reset", "", marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email"`)
	})

	emailsvc.ResetSentMessages()
	rec := do(app, http.MethodPost, "/v1/users/password-reset", "", marchallObj(t, echoapi.PasswordResetRequest{Email: "HERO@test.vn"}))
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: successData}, rec)

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, teacher.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, teacher.Name)

	match := regexp.MustCompile(`/password-reset/([^/\s]+)/([^/\s"<]+)`).FindStringSubmatch(sent[0].TextContent)
	require.Len(t, match, 3, "reset link in %q", sent[0].TextContent)

	confirm := func(uid, token string) []byte {
		return marchallObj(t, user.ResetUserPassword{UID: uid, Token: token, Password: "N3w!Passw0rd", PasswordConfirm: "N3w!Passw0rd"})
	}
	runHTTPTests(t, app, []httpTest{
		{name: "required fields", method: http.MethodPost, path: "/v1/users/password-reset-confirm", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "invalid token", method: http.MethodPost, path: "/v1/users/password-reset-confirm", body: confirm(match[1], "lol"), wantCode: http.StatusBadRequest},
		{name: "reset", method: http.MethodPost, path: "/v1/users/password-reset-confirm", body: confirm(match[1], match[2]), wantCode: http.StatusOK},
	})

	rec = do(app, http.MethodPost, "/v1/users/login", "", marchallObj(t, echoapi.LoginRequest{Username: "hero", Password: "N3w!Passw0rd"}))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
