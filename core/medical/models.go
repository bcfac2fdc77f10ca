package medical

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

// BMI categories for children
const (
	BMIUnderweight = "Suy dinh dưỡng"
	BMINormal      = "Bình thường"
	BMIOverweight  = "Thừa cân"
	BMIObese       = "Béo phì"
)

// Certificate is the health certificate of a medical examination.
type Certificate struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ExaminedAt core.Date `json:"examined_at"`
	Doctor     string    `json:"doctor"`
	HeightCm   float64   `json:"height_cm"`
	WeightKg   float64   `json:"weight_kg"`
	BMI        float64   `json:"bmi"`
	Eyes       string    `json:"eyes"`
	ENT        string    `json:"ent"`
	Teeth      string    `json:"teeth"`
	Skin       string    `json:"skin"`
	HeartLungs string    `json:"heart_lungs"`
	Other      string    `json:"other"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BMICategory classifies the BMI of a preschool child.
// The cut-offs are the usual 2-6 years screening values.
func (c Certificate) BMICategory() string {
	switch {
	case c.BMI <= 0:
		return ""
	case c.BMI < 14:
		return BMIUnderweight
	case c.BMI < 17:
		return BMINormal
	case c.BMI < 18.5:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// NewCertificate is also used to replace an existing Certificate.
type NewCertificate struct {
	StudentID  string    `json:"student_id" validate:"required"`
	ExaminedAt core.Date `json:"examined_at" validate:"required"`
	Doctor     string    `json:"doctor"`
	HeightCm   float64   `json:"height_cm" validate:"gt=0,lte=200"`
	WeightKg   float64   `json:"weight_kg" validate:"gt=0,lte=100"`
	Eyes       string    `json:"eyes"`
	ENT        string    `json:"ent"`
	Teeth      string    `json:"teeth"`
	Skin       string    `json:"skin"`
	HeartLungs string    `json:"heart_lungs"`
	Other      string    `json:"other"`
	Conclusion string    `json:"conclusion" validate:"required,notblank"`
}

func (nc *NewCertificate) Validate(validate *validator.Validate) error {
	nc.StudentID = core.CleanString(nc.StudentID)
	nc.Doctor = core.CleanString(nc.Doctor)
	nc.Conclusion = core.CleanString(nc.Conclusion)
	return validate.Struct(nc)
}

// CertificateView is a Certificate with its BMI category.
type CertificateView struct {
	Certificate
	BMICategory string `json:"bmi_category"`
}

func View(c Certificate) CertificateView {
	return CertificateView{Certificate: c, BMICategory: c.BMICategory()}
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	From      core.Date `query:"from"`
	To        core.Date `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
}

func (qf *QueryFilter) Match(c Certificate) bool {
	if qf == nil {
		return true
	}
	return (qf.StudentID == "" || qf.StudentID == c.StudentID) &&
		(qf.From.IsZero() || !c.ExaminedAt.Before(qf.From.Time)) &&
		(qf.To.IsZero() || !c.ExaminedAt.After(qf.To.Time))
}

var OrderingFields = []string{"examined_at", "bmi", "height_cm", "weight_kg", "created_at"}

func apply(c *Certificate, data NewCertificate) {
	c.StudentID = data.StudentID
	c.ExaminedAt = data.ExaminedAt
	c.Doctor = data.Doctor
	c.HeightCm = data.HeightCm
	c.WeightKg = data.WeightKg
	c.BMI = nutrition.BMI(data.WeightKg, data.HeightCm)
	c.Eyes = data.Eyes
	c.ENT = data.ENT
	c.Teeth = data.Teeth
	c.Skin = data.Skin
	c.HeartLungs = data.HeartLungs
	c.Other = data.Other
	c.Conclusion = data.Conclusion
}
