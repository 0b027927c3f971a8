package api

import "fmt"

// CreateUserRequest is the POST /api/v1/users payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate checks required fields.
func (r CreateUserRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// PingResponse is the liveness payload; the ALB target group health check
// matches on a 200 from /ping.
type PingResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the deep health payload from GET /.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
