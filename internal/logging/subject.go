package logging

import "strings"

// FormatSubject builds the lane/job/stage subject string used in console output.
func FormatSubject(lane, jobID, stage string) string {
	lane = strings.TrimSpace(lane)
	jobID = strings.TrimSpace(jobID)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 3)
	if lane != "" {
		var formattedLane string
		if len(lane) > 1 {
			formattedLane = strings.ToUpper(lane[:1]) + strings.ToLower(lane[1:])
		} else {
			formattedLane = strings.ToUpper(lane)
		}
		parts = append(parts, formattedLane)
	}
	switch {
	case jobID != "" && stage != "":
		parts = append(parts, "Job #"+jobID+" ("+stage+")")
	case jobID != "":
		parts = append(parts, "Job #"+jobID)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
