package mapper

import "kc-mini-app-backend/internal/features/user/models"

// ToUserResponse maps User model to UserResponse DTO
func ToUserResponse(user *models.User) *models.UserResponse {
	if user == nil {
		return nil
	}
	return &models.UserResponse{
		ID:                 user.ID,
		TelegramID:         user.TelegramID,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Username:           user.Username,
		Image:              user.Image,
		Role:               user.Role,
		Balance:            user.Balance,
		PlanType:           user.PlanType,
		HasMnemonic:        user.Mnemonic != "",
		WalletKitConnected: user.WalletKitConnected,
		WalletAddress:      user.WalletAddress,
		Banned:             user.Banned,
		BanReason:          user.BanReason,
		BanExpires:         user.BanExpires,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

func ToUserResponses(users []*models.User) []models.UserResponse {
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserResponse(u))
	}
	return out
}
