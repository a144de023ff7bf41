package responses

import "github.com/srad/videoanalyzer/database"

type JobsResponse struct {
	Jobs       []*database.AnalysisJob `json:"jobs"`
	TotalCount int64                   `json:"totalCount" extensions:"!x-nullable"`
	Skip       int                     `json:"skip" extensions:"!x-nullable"`
	Take       int                     `json:"take" extensions:"!x-nullable"`
}
