package identity

// GuestRequest asks for a guest identity.
type GuestRequest struct {
	Name string `json:"name" binding:"required"`
}

// GuestResponse carries the new identity and its token.
type GuestResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}
