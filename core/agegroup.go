package core

// Age groups used to tag foods, menus, curricula & students.
const (
	AgeGroup1To2 = "1-2 tuổi"
	AgeGroup2To3 = "2-3 tuổi"
	AgeGroup3To4 = "3-4 tuổi"
	AgeGroup4To5 = "4-5 tuổi"
	AgeGroup5To6 = "5-6 tuổi"
)

var AgeGroups = []string{AgeGroup1To2, AgeGroup2To3, AgeGroup3To4, AgeGroup4To5, AgeGroup5To6}

func IsAgeGroup(s string) bool {
	for _, ag := range AgeGroups {
		if ag == s {
			return true
		}
	}
	return false
}
