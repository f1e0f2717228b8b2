package cqrs

// GetUserInfoQuery fetches the profile of the account owned by OwnerID.
type GetUserInfoQuery struct {
	OwnerID string
}
