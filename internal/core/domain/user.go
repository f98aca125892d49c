package domain

// User is the opaque actor identity referenced by ledger entries, payments and
// locks. The core only needs existence checks and audit attribution from it.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
	AuditFields
}
