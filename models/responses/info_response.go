package responses

type HealthResponse struct {
	Status string `json:"status"`
}

type ServerInfoResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}
