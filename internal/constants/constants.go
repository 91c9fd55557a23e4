package constants

// Password and profile validation rules
const (
	MinPasswordLength = 6
	MinNameLength     = 2
	MaxNameLength     = 100
	BcryptCost        = 12
)

// Pagination bounds
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ContextKeyUser is the gin context key holding the authenticated principal.
const ContextKeyUser = "user"
