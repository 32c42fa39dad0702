package domain

import "sort"

// MetricCode is the short code an audience-measurement vendor uses for a
// viewing statistic.
type MetricCode string

const (
	MetricAMR MetricCode = "AMR"
	MetricRCH MetricCode = "RCH"
	MetricATS MetricCode = "ATS"
	MetricSHR MetricCode = "SHR"
)

// Glossary maps metric codes to their human-readable definitions.
// It is descriptive only and consumed by downstream reporting.
var Glossary = map[MetricCode]string{
	MetricAMR: "Average Minute Rating: Average number of individuals who have seen a specific programme or daypart",
	MetricRCH: "Reach: Number of different individuals watching at least one minute of a programme or daypart",
	MetricATS: "Average Time Spent: Average number of minutes seen by each individual who has seen the programme or daypart",
	MetricSHR: "Share: Proportion of individuals viewing a specific programme or daypart compared to the total number of individuals watching TV during the same time interval",
}

// Describe returns the definition of a metric code and whether it is known.
func Describe(code MetricCode) (string, bool) {
	d, ok := Glossary[code]
	return d, ok
}

// MetricCodes returns the glossary codes in alphabetical order.
func MetricCodes() []MetricCode {
	codes := make([]MetricCode, 0, len(Glossary))
	for c := range Glossary {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
