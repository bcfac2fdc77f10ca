package tuition

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("tuition not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrTuitionExists   = errors.New("the student already has a tuition for this month")
	ErrPaymentFailed   = errors.New("payment provider error")
)

type (
	Repository interface {
		CreateSchoolService(ctx context.Context, s SchoolService) (SchoolService, error)
		QuerySchoolServices(ctx context.Context, filter *ServiceFilter, ordering []core.DBOrdering, paging core.Paging) ([]SchoolService, int, error)
		GetSchoolService(ctx context.Context, id string) (SchoolService, error)
		UpdateSchoolService(ctx context.Context, s SchoolService) (SchoolService, error)
		DeleteSchoolService(ctx context.Context, id string) error

		// CreateTuition returns ErrTuitionExists when the student already has a Tuition for the month.
		CreateTuition(ctx context.Context, t Tuition) (Tuition, error)
		QueryTuitions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Tuition, int, error)
		GetTuition(ctx context.Context, id string) (Tuition, error)
		UpdateTuition(ctx context.Context, t Tuition) (Tuition, error)
		DeleteTuition(ctx context.Context, id string) error
	}

	// Students is the read side of the student registry.
	Students interface {
		Query(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]student.Student, int, error)
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	Service interface {
		CreateService(ctx context.Context, ns NewSchoolService) (SchoolService, error)
		QueryServices(ctx context.Context, filter *ServiceFilter, ordering []core.DBOrdering, paging core.Paging) ([]SchoolService, int, error)
		GetServiceByID(ctx context.Context, id string) (SchoolService, error)
		UpdateService(ctx context.Context, s SchoolService, ns NewSchoolService) (SchoolService, error)
		DeleteService(ctx context.Context, id string) error

		Create(ctx context.Context, nt NewTuition) (Tuition, error)
		Generate(ctx context.Context, gr GenerateRequest) (GenerateResult, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Tuition, int, error)
		GetByID(ctx context.Context, id string) (Tuition, error)
		Update(ctx context.Context, t Tuition, nt NewTuition) (Tuition, error)
		Delete(ctx context.Context, t Tuition) error

		StartPayment(ctx context.Context, t Tuition) (Tuition, PaymentSession, error)
		RefreshPayment(ctx context.Context, t Tuition) (Tuition, error)
		Processing(ctx context.Context) ([]Tuition, error)

		Revenue(ctx context.Context, month string) (RevenueReport, error)
	}

	service struct {
		repo     Repository
		students Students
		payments PaymentProvider
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students Students, payments PaymentProvider) Service {
	return &service{repo: repo, students: students, payments: payments}
}

func (svc *service) CreateService(ctx context.Context, ns NewSchoolService) (SchoolService, error) {
	now := core.NowFunc().UTC()
	s := SchoolService{IsActive: true, CreatedAt: now, UpdatedAt: now}
	applyService(&s, ns)
	return svc.repo.CreateSchoolService(ctx, s)
}

func (svc *service) QueryServices(ctx context.Context, filter *ServiceFilter, ordering []core.DBOrdering, paging core.Paging) ([]SchoolService, int, error) {
	return svc.repo.QuerySchoolServices(ctx, filter, ordering, paging)
}

func (svc *service) GetServiceByID(ctx context.Context, id string) (SchoolService, error) {
	return svc.repo.GetSchoolService(ctx, id)
}

func (svc *service) UpdateService(ctx context.Context, s SchoolService, ns NewSchoolService) (SchoolService, error) {
	applyService(&s, ns)
	s.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateSchoolService(ctx, s)
}

func (svc *service) DeleteService(ctx context.Context, id string) error {
	return svc.repo.DeleteSchoolService(ctx, id)
}

func (svc *service) Create(ctx context.Context, nt NewTuition) (Tuition, error) {
	if _, err := svc.students.GetByID(ctx, nt.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Tuition{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return Tuition{}, errors.Wrap(err, "getting student")
	}

	now := core.NowFunc().UTC()
	t := Tuition{StudentID: nt.StudentID, Month: nt.Month, Status: StatusUnpaid, CreatedAt: now, UpdatedAt: now}
	applyTuition(&t, nt)
	t, err := svc.repo.CreateTuition(ctx, t)
	if err != nil {
		if errors.Cause(err) == ErrTuitionExists {
			return Tuition{}, core.NewValidationError(err, core.FieldError{Field: "month", Error: ErrTuitionExists.Error()})
		}
		return Tuition{}, err
	}
	return t.WithActions(), nil
}

// Generate creates one Tuition per student for the month, billing the given services.
// Students already billed for the month are skipped.
func (svc *service) Generate(ctx context.Context, gr GenerateRequest) (GenerateResult, error) {
	items := make([]Item, 0, len(gr.ServiceIDs))
	for _, id := range gr.ServiceIDs {
		s, err := svc.repo.GetSchoolService(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrServiceNotFound {
				return GenerateResult{}, core.NewValidationError(err, core.FieldError{Field: "service_ids", Error: err.Error() + ": " + id})
			}
			return GenerateResult{}, errors.Wrap(err, "getting service")
		}
		if !s.IsActive {
			return GenerateResult{}, core.NewValidationError(nil, core.FieldError{Field: "service_ids", Error: "inactive service: " + s.Name})
		}
		items = append(items, Item{Name: s.Name, Amount: s.Price, ServiceID: s.ID})
	}

	studentIDs := gr.StudentIDs
	if len(studentIDs) == 0 {
		students, _, err := svc.students.Query(ctx, nil, nil, core.NoPaging)
		if err != nil {
			return GenerateResult{}, errors.Wrap(err, "querying students")
		}
		for _, st := range students {
			studentIDs = append(studentIDs, st.ID)
		}
	}

	existing, _, err := svc.repo.QueryTuitions(ctx, &QueryFilter{Month: gr.Month}, nil, core.NoPaging)
	if err != nil {
		return GenerateResult{}, errors.Wrap(err, "querying tuitions")
	}
	billed := make(map[string]bool, len(existing))
	for _, t := range existing {
		billed[t.StudentID] = true
	}

	res := GenerateResult{Created: []Tuition{}}
	now := core.NowFunc().UTC()
	for _, sid := range studentIDs {
		if billed[sid] {
			res.Skipped++
			continue
		}
		t := Tuition{
			StudentID: sid,
			Month:     gr.Month,
			Items:     append([]Item(nil), items...),
			Amount:    sumItems(items),
			Status:    StatusUnpaid,
			CreatedAt: now,
			UpdatedAt: now,
		}
		t, err := svc.repo.CreateTuition(ctx, t)
		if err != nil {
			if errors.Cause(err) == ErrTuitionExists {
				res.Skipped++
				continue
			}
			return res, errors.Wrap(err, "creating tuition")
		}
		billed[sid] = true
		res.Created = append(res.Created, t.WithActions())
	}
	return res, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Tuition, int, error) {
	tuitions, total, err := svc.repo.QueryTuitions(ctx, filter, ordering, paging)
	if err != nil {
		return nil, 0, err
	}
	for i := range tuitions {
		tuitions[i] = tuitions[i].WithActions()
	}
	return tuitions, total, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Tuition, error) {
	t, err := svc.repo.GetTuition(ctx, id)
	if err != nil {
		return Tuition{}, err
	}
	return t.WithActions(), nil
}

// Update replaces the items (or amount) of an unpaid Tuition; its student and month are kept.
func (svc *service) Update(ctx context.Context, t Tuition, nt NewTuition) (Tuition, error) {
	if err := Gates.Check(ActionUpdate, t.Status); err != nil {
		return Tuition{}, err
	}
	applyTuition(&t, nt)
	return svc.save(ctx, t)
}

func (svc *service) Delete(ctx context.Context, t Tuition) error {
	if err := Gates.Check(ActionDelete, t.Status); err != nil {
		return err
	}
	return svc.repo.DeleteTuition(ctx, t.ID)
}

// StartPayment opens a payment session with the provider; the Tuition is processing until the provider settles it.
func (svc *service) StartPayment(ctx context.Context, t Tuition) (Tuition, PaymentSession, error) {
	if err := Gates.Check(ActionPay, t.Status); err != nil {
		return Tuition{}, PaymentSession{}, err
	}
	if t.Amount <= 0 {
		return Tuition{}, PaymentSession{}, core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "nothing to pay"})
	}

	sess, err := svc.payments.CreatePayment(ctx, PaymentRequest{
		OrderID:     t.ID,
		Amount:      t.Amount,
		Description: "Hoc phi " + t.Month,
	})
	if err != nil {
		return Tuition{}, PaymentSession{}, errors.Wrap(ErrPaymentFailed, err.Error())
	}

	t.Status = StatusProcessing
	t.PaymentRef = sess.Ref
	t.PaymentURL = sess.PaymentURL
	t, err = svc.save(ctx, t)
	if err != nil {
		return Tuition{}, PaymentSession{}, err
	}
	return t, sess, nil
}

// RefreshPayment asks the provider how a processing Tuition's payment went.
// Other tuitions are returned unchanged.
func (svc *service) RefreshPayment(ctx context.Context, t Tuition) (Tuition, error) {
	if !Gates.Allowed(ActionRefresh, t.Status) {
		return t.WithActions(), nil
	}

	status, err := svc.payments.PaymentStatus(ctx, t.PaymentRef)
	if err != nil {
		return Tuition{}, errors.Wrap(ErrPaymentFailed, err.Error())
	}

	switch status {
	case PaymentSucceeded:
		paidAt := core.NowFunc().UTC()
		t.Status = StatusPaid
		t.PaidAt = &paidAt
	case PaymentFailed:
		t.Status = StatusFailed
	default:
		return t.WithActions(), nil
	}
	return svc.save(ctx, t)
}

func (svc *service) Processing(ctx context.Context) ([]Tuition, error) {
	tuitions, _, err := svc.repo.QueryTuitions(ctx, &QueryFilter{Statuses: []string{StatusProcessing}}, nil, core.NoPaging)
	return tuitions, err
}

func (svc *service) save(ctx context.Context, t Tuition) (Tuition, error) {
	t.UpdatedAt = core.NowFunc().UTC()
	t, err := svc.repo.UpdateTuition(ctx, t)
	if err != nil {
		return Tuition{}, errors.Wrap(err, "updating tuition")
	}
	return t.WithActions(), nil
}

func applyService(s *SchoolService, data NewSchoolService) {
	s.Name = data.Name
	s.Price = data.Price
	s.Unit = data.Unit
	s.Description = data.Description
	if data.IsActive != nil {
		s.IsActive = *data.IsActive
	}
}

func applyTuition(t *Tuition, data NewTuition) {
	t.Items = data.Items
	if t.Items == nil {
		t.Items = []Item{}
	}
	if len(t.Items) > 0 {
		t.Amount = sumItems(t.Items)
	} else {
		t.Amount = data.Amount
	}
}
