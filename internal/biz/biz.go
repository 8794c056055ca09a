package biz

import (
	"github.com/agrolink/consult-sync/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Session       *usecase.SessionUsecase
	Consultations *usecase.ConsultationUsecase
	Conversations *usecase.ConversationUsecase
	Unread        *usecase.UnreadUsecase
	Availability  *usecase.AvailabilityUsecase
	Notifications *usecase.NotificationUsecase
	Profile       *usecase.ProfileUsecase
}
