package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	echoapi "github.com/trezcool/schoolops/apps/api/echo"
	"github.com/trezcool/schoolops/apps/shared"
	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/enrollment"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/nutrition"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
	emailsvc "github.com/trezcool/schoolops/services/email"
	logsvc "github.com/trezcool/schoolops/services/logger"
	inmemdb "github.com/trezcool/schoolops/storage/database/inmem"
	filestore "github.com/trezcool/schoolops/storage/files"
)

var (
	conf = core.NewTestConfig()

	usrRepo     user.Repository
	studRepo    student.Repository
	tuitionRepo tuition.Repository
	payments    *paymentStub
	calculator  *calculatorStub

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) echoapi.Server {
	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	studRepo = inmemdb.NewStudentRepository(db)
	tuitionRepo = inmemdb.NewTuitionRepository(db)

	files, err := filestore.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	payments = &paymentStub{statuses: make(map[string]string)}
	calculator = new(calculatorStub)

	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	studSvc := student.NewService(studRepo)
	foodSvc := food.NewService(inmemdb.NewFoodRepository(db), calculator)
	validate, translator := shared.NewValidator()

	// set up server
	return echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logsvc.NewRollbarLogger(zaptest.NewLogger(t), conf),
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			StudentSvc:     studSvc,
			CurriculumSvc:  curriculum.NewService(inmemdb.NewCurriculumRepository(db)),
			FoodSvc:        foodSvc,
			MenuSvc:        menu.NewService(inmemdb.NewMenuRepository(db), foodSvc),
			EnrollmentSvc:  enrollment.NewServiceMock(inmemdb.NewEnrollmentRepository(db), studSvc, mailSvc),
			MedicalSvc:     medical.NewService(inmemdb.NewMedicalRepository(db), studSvc),
			RoomSvc:        room.NewService(inmemdb.NewRoomRepository(db)),
			TuitionSvc:     tuition.NewService(tuitionRepo, studSvc, payments),
			Files:          files,
		},
	)
}

// calculatorStub gives every ingredient the same nutrients, or fails with the error set by the tests.
type calculatorStub struct {
	mu  sync.Mutex
	err error
}

func (c *calculatorStub) Calculate(_ context.Context, _ string, ingredients []nutrition.Ingredient) ([]nutrition.Nutrients, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}

	out := make([]nutrition.Nutrients, len(ingredients))
	for i := range out {
		out[i] = nutrition.Nutrients{Calories: 10, Protein: 1, Lipid: 1, Carbohydrate: 1}
	}
	return out, nil
}

// paymentStub reports the statuses set by the tests; payments are pending by default.
type paymentStub struct {
	mu       sync.Mutex
	statuses map[string]string
}

func (p *paymentStub) CreatePayment(_ context.Context, req tuition.PaymentRequest) (tuition.PaymentSession, error) {
	return tuition.PaymentSession{
		Ref:        "ref-" + req.OrderID,
		PaymentURL: "https://pay.test/" + req.OrderID,
		QRCode:     "qr-" + req.OrderID,
	}, nil
}

func (p *paymentStub) PaymentStatus(_ context.Context, ref string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.statuses[ref]; ok {
		return s, nil
	}
	return tuition.PaymentPending, nil
}

func (c *calculatorStub) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (p *paymentStub) set(ref, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[ref] = status
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves a request & returns the recorded response.
func do(app echoapi.Server, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	token, err := echoapi.GenerateToken(conf, echoapi.GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app echoapi.Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func ctx() context.Context { return context.Background() }
