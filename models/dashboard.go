package models

// FDVSection is the completeness of one chapter of the FDV documentation.
type FDVSection struct {
	Percent int `json:"percent"`
}

// FDVDashboard summarizes how complete a project's FDV documentation is.
type FDVDashboard struct {
	TotalScore int                   `json:"total_score"`
	Breakdown  map[string]FDVSection `json:"breakdown"`
}

// DefaultFDVDashboard returns the fixed breakdown served by /fdv-dashboard.
func DefaultFDVDashboard() FDVDashboard {
	return FDVDashboard{
		TotalScore: 80,
		Breakdown: map[string]FDVSection{
			"A – Orientering":           {Percent: 100},
			"B – Drift":                 {Percent: 100},
			"C – Tilsyn og vedlikehold": {Percent: 50},
			"D – Dokumentasjon":         {Percent: 75},
			"E – Teknisk dokumentasjon": {Percent: 75},
		},
	}
}
