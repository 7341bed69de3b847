package domain

// UserProfile is the local view of a user owned by the identity service.
type UserProfile struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`
}

func (p UserProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}
