package repository

import (
	"context"
	"time"

	"kc-mini-app-backend/internal/features/tonproof/models"
)

type Repository interface {
	// SavePayload запоминает выданный payload до истечения ttl
	SavePayload(ctx context.Context, userID int64, payload string, ttl time.Duration) error

	// TakePayload удаляет payload и сообщает, был ли он выдан этому пользователю
	TakePayload(ctx context.Context, userID int64, payload string) (bool, error)

	// SaveProof сохраняет запись о верификации
	SaveProof(ctx context.Context, record *models.Record) error

	// GetProof получает запись о верификации, nil если её нет
	GetProof(ctx context.Context, userID int64) (*models.Record, error)
}
