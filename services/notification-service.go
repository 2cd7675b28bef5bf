package services

import (
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/repositories"
)

type NotificationService struct {
	repo *repositories.NotificationRepo
}

func NewNotificationService(repo *repositories.NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify writes a feed entry for the given user. Best effort.
func (s *NotificationService) Notify(username, message string) {
	if s == nil || s.repo == nil {
		return
	}
	_ = s.repo.CreateNotification(&models.Notification{
		Username:  username,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		IsRead:    false,
	})
}

func (s *NotificationService) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	return s.repo.GetNotificationsByUsername(username)
}

func (s *NotificationService) MarkNotificationAsRead(username, id, createdAt string) error {
	return s.repo.MarkNotificationAsRead(username, id, createdAt)
}

func (s *NotificationService) DeleteNotification(username, id, createdAt string) error {
	return s.repo.DeleteNotification(username, id, createdAt)
}
