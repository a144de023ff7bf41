package requests

import "github.com/srad/videoanalyzer/database"

// JobsRequest Query of GET /jobs.
type JobsRequest struct {
	Skip   int                  `form:"skip" json:"skip" valid:"Min(0)"`
	Take   int                  `form:"take,default=20" json:"take" valid:"Range(1,100)"`
	States []database.JobStatus `form:"states" json:"states" extensions:"!x-nullable"`
}
