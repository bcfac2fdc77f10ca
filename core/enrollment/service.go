package enrollment

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

var (
	// errors
	ErrNotFound     = errors.New("enrollment application not found")
	errNoteRequired = core.NewValidationError(nil, core.FieldError{Field: "note", Error: "a reason is required"})
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, a Application) (Application, error)
		QueryApplications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Application, int, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		UpdateApplication(ctx context.Context, a Application) (Application, error)
		DeleteApplication(ctx context.Context, id string) error
	}

	// StudentCreator registers the enrolled children; Delete undoes an enrollment that failed to save.
	StudentCreator interface {
		CheckUniqueness(ctx context.Context, code string, excluded ...student.Student) error
		Create(ctx context.Context, ns student.NewStudent) (student.Student, error)
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		Submit(ctx context.Context, na NewApplication) (Application, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Application, int, error)
		GetByID(ctx context.Context, id string) (Application, error)
		Update(ctx context.Context, a Application, na NewApplication) (Application, error)
		AttachCertificates(ctx context.Context, a Application, fileIDs ...string) (Application, error)
		Approve(ctx context.Context, a Application, d Decision) (Application, error)
		Reject(ctx context.Context, a Application, d Decision) (Application, error)
		Cancel(ctx context.Context, a Application, d Decision) (Application, error)
		Enroll(ctx context.Context, a Application, er EnrollRequest) (Application, error)
		Delete(ctx context.Context, a Application) error
	}

	service struct {
		repo     Repository
		students StudentCreator
		mailSvc  core.EmailService
		notify   func(msg *core.EmailMessage)
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentCreator, mailSvc core.EmailService) Service {
	svc := newService(repo, students, mailSvc)
	svc.notify = func(msg *core.EmailMessage) { go svc.mailSvc.SendMessages(msg) }
	return svc
}

// NewServiceMock returns a Service sending its emails synchronously.
func NewServiceMock(repo Repository, students StudentCreator, mailSvc core.EmailService) Service {
	svc := newService(repo, students, mailSvc)
	svc.notify = func(msg *core.EmailMessage) { svc.mailSvc.SendMessages(msg) }
	return svc
}

func newService(repo Repository, students StudentCreator, mailSvc core.EmailService) *service {
	return &service{repo: repo, students: students, mailSvc: mailSvc}
}

func (svc *service) Submit(ctx context.Context, na NewApplication) (Application, error) {
	now := core.NowFunc().UTC()
	a := Application{Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	apply(&a, na)
	a, err := svc.repo.CreateApplication(ctx, a)
	if err != nil {
		return Application{}, err
	}
	return a.WithActions(), nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Application, int, error) {
	apps, total, err := svc.repo.QueryApplications(ctx, filter, ordering, paging)
	if err != nil {
		return nil, 0, err
	}
	for i := range apps {
		apps[i] = apps[i].WithActions()
	}
	return apps, total, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Application, error) {
	a, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	return a.WithActions(), nil
}

func (svc *service) Update(ctx context.Context, a Application, na NewApplication) (Application, error) {
	if err := Gates.Check(ActionUpdate, a.Status); err != nil {
		return Application{}, err
	}
	apply(&a, na)
	return svc.save(ctx, a)
}

func (svc *service) AttachCertificates(ctx context.Context, a Application, fileIDs ...string) (Application, error) {
	if err := Gates.Check(ActionUpdate, a.Status); err != nil {
		return Application{}, err
	}
	ids := append(make([]string, 0, len(a.CertificateIDs)+len(fileIDs)), a.CertificateIDs...)
	for _, id := range fileIDs {
		if !contains(ids, id) {
			ids = append(ids, id)
		}
	}
	a.CertificateIDs = ids
	return svc.save(ctx, a)
}

func (svc *service) Approve(ctx context.Context, a Application, d Decision) (Application, error) {
	if err := Gates.Check(ActionApprove, a.Status); err != nil {
		return Application{}, err
	}
	d.Clean()
	a.Status = StatusApproved
	a.Note = d.Note
	a, err := svc.save(ctx, a)
	if err != nil {
		return Application{}, err
	}
	svc.notifyParent(a, "Hồ sơ nhập học đã được duyệt", "enrollment_approved")
	return a, nil
}

func (svc *service) Reject(ctx context.Context, a Application, d Decision) (Application, error) {
	if err := Gates.Check(ActionReject, a.Status); err != nil {
		return Application{}, err
	}
	if d.Clean(); d.Note == "" {
		return Application{}, errNoteRequired
	}
	a.Status = StatusRejected
	a.Note = d.Note
	a, err := svc.save(ctx, a)
	if err != nil {
		return Application{}, err
	}
	svc.notifyParent(a, "Kết quả xét duyệt hồ sơ nhập học", "enrollment_rejected")
	return a, nil
}

func (svc *service) Cancel(ctx context.Context, a Application, d Decision) (Application, error) {
	if err := Gates.Check(ActionCancel, a.Status); err != nil {
		return Application{}, err
	}
	if d.Clean(); d.Note != "" {
		a.Note = d.Note
	}
	a.Status = StatusCancelled
	return svc.save(ctx, a)
}

// Enroll registers the child of an approved Application as a Student.
func (svc *service) Enroll(ctx context.Context, a Application, er EnrollRequest) (Application, error) {
	if err := Gates.Check(ActionEnroll, a.Status); err != nil {
		return Application{}, err
	}
	if err := svc.students.CheckUniqueness(ctx, er.Code); err != nil {
		return Application{}, err
	}

	st, err := svc.students.Create(ctx, student.NewStudent{
		Code:        er.Code,
		FullName:    a.StudentName,
		DateOfBirth: a.DateOfBirth,
		Gender:      a.Gender,
		ClassName:   er.ClassName,
		AgeGroup:    a.AgeGroup,
		ParentName:  a.ParentName,
		ParentPhone: a.ParentPhone,
		ParentEmail: a.ParentEmail,
		Address:     a.Address,
	})
	if err != nil {
		return Application{}, errors.Wrap(err, "creating student")
	}

	a.Status = StatusEnrolled
	a.StudentID = st.ID
	enrolled, err := svc.save(ctx, a)
	if err != nil {
		// the code must stay free for a retry
		if derr := svc.students.Delete(ctx, st.ID); derr != nil {
			return Application{}, errors.Wrapf(err, "removing student %s: %v", st.ID, derr)
		}
		return Application{}, err
	}
	return enrolled, nil
}

func (svc *service) Delete(ctx context.Context, a Application) error {
	if err := Gates.Check(ActionDelete, a.Status); err != nil {
		return err
	}
	return svc.repo.DeleteApplication(ctx, a.ID)
}

func (svc *service) save(ctx context.Context, a Application) (Application, error) {
	a.UpdatedAt = core.NowFunc().UTC()
	a, err := svc.repo.UpdateApplication(ctx, a)
	if err != nil {
		return Application{}, errors.Wrap(err, "updating application")
	}
	return a.WithActions(), nil
}

func (svc *service) notifyParent(a Application, subject, tmpl string) {
	if a.ParentEmail == "" {
		return
	}
	svc.notify(&core.EmailMessage{
		To:           []mail.Address{{Name: a.ParentName, Address: a.ParentEmail}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: map[string]string{
			"ID":          a.ID,
			"StudentName": a.StudentName,
			"Note":        a.Note,
		},
	})
}

func apply(a *Application, data NewApplication) {
	a.StudentName = data.StudentName
	a.DateOfBirth = data.DateOfBirth
	a.Gender = data.Gender
	a.AgeGroup = data.AgeGroup
	a.Address = data.Address
	a.ParentName = data.ParentName
	a.ParentPhone = data.ParentPhone
	a.ParentEmail = data.ParentEmail
	a.ParentJob = data.ParentJob
	a.CertificateIDs = data.CertificateIDs
	if a.CertificateIDs == nil {
		a.CertificateIDs = []string{}
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
