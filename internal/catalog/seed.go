package catalog

import "healthlab-backend/internal/models"

func strPtr(v string) *string {
	return &v
}

var defaultTests = []models.Test{
	{Code: "CBC", Name: "Complete Blood Count", Category: "Hematology", Price: 20, Preparation: strPtr("No fasting required")},
	{Code: "IRON", Name: "Iron Studies", Category: "Hematology", Price: 25, Preparation: strPtr("8-10 hours fasting preferred")},
	{Code: "LFT", Name: "Liver Function Test", Category: "Biochemistry", Price: 30, Preparation: strPtr("No alcohol 24h before")},
	{Code: "CRP", Name: "C-Reactive Protein", Category: "Biochemistry", Price: 22, Preparation: strPtr("No special preparation")},
	{Code: "B12", Name: "Vitamin B12", Category: "Vitamins", Price: 28, Preparation: strPtr("Fasting 6-8 hours")},
	{Code: "FBS", Name: "Fasting Blood Sugar", Category: "Diabetes", Price: 12, Preparation: strPtr("Overnight fasting")},
	{Code: "HBA1C", Name: "HbA1c", Category: "Diabetes", Price: 18, Preparation: strPtr("No fasting required")},
}

// DefaultTests returns a copy of the seed catalog.
func DefaultTests() []models.Test {
	out := make([]models.Test, len(defaultTests))
	for i, t := range defaultTests {
		if t.Preparation != nil {
			t.Preparation = strPtr(*t.Preparation)
		}
		out[i] = t
	}
	return out
}
