package domain

// Result is the outcome of a user-initiated operation. Message carries the
// user-facing text on failure; Err classifies it for transport mapping.
type Result struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"invalidFields,omitempty"`
	Err     error    `json:"-"`
}

// Succeeded returns a successful Result.
func Succeeded() Result {
	return Result{OK: true}
}

// Failed returns a failed Result carrying msg.
func Failed(err error, msg string) Result {
	return Result{Message: msg, Err: err}
}
