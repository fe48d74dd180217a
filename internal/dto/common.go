package dto

// MutationResponse wraps the result of every state-changing endpoint.
type MutationResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListParams defines query parameters for keyset-paginated lists.
type ListParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}
