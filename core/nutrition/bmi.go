package nutrition

// BMIPrecision is the number of decimals kept for the body-mass index.
const BMIPrecision = 2

// BMI returns weight(kg) / height(m)², rounded to BMIPrecision. height is in centimeters.
// Non-positive measurements yield 0.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return Round(weightKg/(h*h), BMIPrecision)
}
