package main

import (
	"net/http"
)

func handleWasteSummary(w http.ResponseWriter, r *http.Request) {
	var s WasteSummary
	s.ByStatus = map[string]int{}

	err := db.QueryRow("SELECT COUNT(*), COALESCE(SUM(weight_kg),0), COALESCE(SUM(item_count),0) FROM disposal_requests").
		Scan(&s.TotalRequests, &s.TotalWeightKG, &s.TotalItems)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	rows, err := db.Query("SELECT status, COUNT(*) FROM disposal_requests GROUP BY status")
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err == nil {
			s.ByStatus[status] = count
		}
	}

	jsonResp(w, map[string]interface{}{"summary": s})
}

// handleWasteForecast fits an ordinary least squares line over the daily
// collected weight totals and projects one day ahead. At least two days
// of data are required for a slope.
func handleWasteForecast(w http.ResponseWriter, r *http.Request) {
	rows, err := db.Query(`SELECT date(created_at), SUM(COALESCE(weight_kg,0))
		FROM disposal_requests
		WHERE weight_kg IS NOT NULL
		GROUP BY date(created_at)
		ORDER BY date(created_at)`)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	var daily []float64
	for rows.Next() {
		var day string
		var kg float64
		if err := rows.Scan(&day, &kg); err == nil {
			daily = append(daily, kg)
		}
	}

	if len(daily) < 2 {
		jsonErr(w, "not enough data for a forecast", 400)
		return
	}

	slope, intercept := fitLine(daily)

	var sse float64
	for i, y := range daily {
		pred := slope*float64(i) + intercept
		sse += (y - pred) * (y - pred)
	}

	forecast := WasteForecast{
		PredictedKG: slope*float64(len(daily)) + intercept,
		MSE:         sse / float64(len(daily)),
		Slope:       slope,
		Intercept:   intercept,
		SampleDays:  len(daily),
	}
	if forecast.PredictedKG < 0 {
		forecast.PredictedKG = 0
	}

	jsonResp(w, map[string]interface{}{"forecast": forecast})
}

// fitLine computes the least squares slope and intercept of y over the
// index sequence 0..n-1.
func fitLine(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
