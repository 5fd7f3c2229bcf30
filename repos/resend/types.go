package resend

// Define the structure for your JSON payload
type InviteRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}
