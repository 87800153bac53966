package shared

// Principal is the authenticated caller of a request. It lives here so the
// middleware and every domain can share it without importing each other.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}
