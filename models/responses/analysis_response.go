package responses

// AnalysisResponse Body of a successful analysis.
type AnalysisResponse struct {
	JobID             string      `json:"jobId"`
	Message           string      `json:"message"`
	AnnotatedVideoURL string      `json:"annotatedVideoUrl"`
	Summary           interface{} `json:"summary" swaggertype:"object"`
}

// SpawnFailureResponse The worker could not be started.
type SpawnFailureResponse struct {
	JobID   string `json:"jobId"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WorkerFailureResponse The worker ran but did not produce a usable result.
type WorkerFailureResponse struct {
	JobID      string `json:"jobId"`
	Error      string `json:"error"`
	ExitCode   *int   `json:"exit_code"`
	ParseError string `json:"parse_error,omitempty"`
	StdoutRaw  string `json:"stdout_raw,omitempty"`
	StderrRaw  string `json:"stderr_raw,omitempty"`
	// AnnotatedVideoURL is only set if the worker reported an output.
	AnnotatedVideoURL *string `json:"annotatedVideoUrl"`
}

type StopJobResponse struct {
	JobID   string `json:"jobId"`
	Stopped bool   `json:"stopped"`
}
