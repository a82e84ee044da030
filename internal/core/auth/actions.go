package auth

// Action names an operation subject to authorization.
type Action string

const (
	ActionCatCreate    Action = "cat:create"
	ActionCatRead      Action = "cat:read"
	ActionCatModifyOwn Action = "cat:modify-own"
	ActionCatModifyAny Action = "cat:modify-any"

	ActionUserRead      Action = "user:read"
	ActionUserRegister  Action = "user:register"
	ActionUserModifyOwn Action = "user:modify-own"
	ActionUserModifyAny Action = "user:modify-any"
)
