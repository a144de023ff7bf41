package app

// ErrorResponse Body of every plain API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error Aborts the request with {"error": err}.
func (g *Gin) Error(httpCode int, err error) {
	g.C.AbortWithStatusJSON(httpCode, ErrorResponse{Error: err.Error()})
}
