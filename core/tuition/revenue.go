package tuition

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

type (
	// RevenueReport sums a month's tuitions.
	RevenueReport struct {
		Month       string        `json:"month"`
		Count       int           `json:"count"`
		Total       int64         `json:"total"`
		Collected   int64         `json:"collected"`
		Outstanding int64         `json:"outstanding"`
		ByStatus    []StatusTotal `json:"by_status"`
		Items       []ItemTotal   `json:"items"`
		Lines       []RevenueLine `json:"lines"`
	}

	StatusTotal struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
		Amount int64  `json:"amount"`
	}

	ItemTotal struct {
		Name   string `json:"name"`
		Count  int    `json:"count"`
		Amount int64  `json:"amount"`
	}

	RevenueLine struct {
		TuitionID   string     `json:"tuition_id"`
		StudentID   string     `json:"student_id"`
		StudentCode string     `json:"student_code"`
		StudentName string     `json:"student_name"`
		ClassName   string     `json:"class_name"`
		Amount      int64      `json:"amount"`
		Status      string     `json:"status"`
		PaidAt      *time.Time `json:"paid_at"`
	}
)

func (svc *service) Revenue(ctx context.Context, month string) (RevenueReport, error) {
	if !core.IsYearMonth(month) {
		return RevenueReport{}, core.NewValidationError(nil, core.FieldError{Field: "month", Error: "month must be formatted as YYYY-MM"})
	}

	tuitions, _, err := svc.repo.QueryTuitions(ctx, &QueryFilter{Month: month}, nil, core.NoPaging)
	if err != nil {
		return RevenueReport{}, errors.Wrap(err, "querying tuitions")
	}

	rep := NewRevenueReport(month, tuitions)
	for i, line := range rep.Lines {
		st, err := svc.students.GetByID(ctx, line.StudentID)
		if err != nil {
			continue // student removed since
		}
		rep.Lines[i].StudentCode = st.Code
		rep.Lines[i].StudentName = st.FullName
		rep.Lines[i].ClassName = st.ClassName
	}
	sort.SliceStable(rep.Lines, func(i, j int) bool {
		if rep.Lines[i].ClassName != rep.Lines[j].ClassName {
			return rep.Lines[i].ClassName < rep.Lines[j].ClassName
		}
		return rep.Lines[i].StudentName < rep.Lines[j].StudentName
	})
	return rep, nil
}

// NewRevenueReport aggregates tuitions; every status is listed, in the order of Statuses.
func NewRevenueReport(month string, tuitions []Tuition) RevenueReport {
	rep := RevenueReport{
		Month:    month,
		Count:    len(tuitions),
		ByStatus: make([]StatusTotal, len(Statuses)),
		Items:    []ItemTotal{},
		Lines:    make([]RevenueLine, 0, len(tuitions)),
	}
	statusIdx := make(map[string]int, len(Statuses))
	for i, s := range Statuses {
		rep.ByStatus[i].Status = s
		statusIdx[s] = i
	}
	itemIdx := make(map[string]int)

	for _, t := range tuitions {
		rep.Total += t.Amount
		if t.Status == StatusPaid {
			rep.Collected += t.Amount
		}
		if i, ok := statusIdx[t.Status]; ok {
			rep.ByStatus[i].Count++
			rep.ByStatus[i].Amount += t.Amount
		}
		for _, it := range t.Items {
			i, ok := itemIdx[it.Name]
			if !ok {
				i = len(rep.Items)
				itemIdx[it.Name] = i
				rep.Items = append(rep.Items, ItemTotal{Name: it.Name})
			}
			rep.Items[i].Count++
			rep.Items[i].Amount += it.Amount
		}
		rep.Lines = append(rep.Lines, RevenueLine{
			TuitionID: t.ID,
			StudentID: t.StudentID,
			Amount:    t.Amount,
			Status:    t.Status,
			PaidAt:    t.PaidAt,
		})
	}
	rep.Outstanding = rep.Total - rep.Collected
	return rep
}
