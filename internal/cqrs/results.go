package cqrs

// ChangeEmailResult reports whether the stored address was actually replaced.
type ChangeEmailResult struct {
	EmailAddress string
	Changed      bool
}
