package request

// RegisterRequest is the request body for registering a direct account
type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for PATCH /accounts/me.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// AddFriendRequest is the request body for sending a friend request
type AddFriendRequest struct {
	Nickname string `json:"nickname"`
}

// RecordResultRequest is the request body for recording a game result
type RecordResultRequest struct {
	Outcome string `json:"outcome"`
}
