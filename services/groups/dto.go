package groups

// Define the structure for your JSON payload
type CreateGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	MemberName   string   `json:"memberName"`
	GuestNames   []string `json:"guestNames"`
	TeamOneColor string   `json:"teamOneColor"`
	TeamTwoColor string   `json:"teamTwoColor"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

type JoinGroupResponse struct {
	GroupID       string `json:"groupId"`
	GroupName     string `json:"groupName"`
	AlreadyMember bool   `json:"alreadyMember"`
}

type MigrateGuestRequest struct {
	GroupID  string `json:"groupId" binding:"required"`
	GuestID  string `json:"guestId" binding:"required"`
	MemberID string `json:"memberId" binding:"required"`
}
