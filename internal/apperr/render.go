package apperr

// Response is the client-visible JSON shape of a failure:
// {"status": "fail"|"error", "message": "..."} plus err/stack detail in
// development mode.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Err     string `json:"err,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Render produces the response body for the error under the given mode.
//
// In development everything is exposed: message, the full wrapped cause, and
// the captured stack for defects.
//
// In production, operational errors expose only status and message;
// non-operational errors expose a fixed generic message and nothing else.
// This is a security boundary, not a convenience — weakening it leaks
// internals (driver messages, file paths, query text) to clients.
func (e *Error) Render(production bool) Response {
	if !production {
		resp := Response{
			Status:  e.Status,
			Message: e.Message,
			Stack:   e.Stack,
		}
		if e.Err != nil {
			resp.Err = e.Err.Error()
		}
		return resp
	}

	if e.Op {
		return Response{
			Status:  e.Status,
			Message: e.Message,
		}
	}

	return Response{
		Status:  StatusError,
		Message: genericMessage,
	}
}
