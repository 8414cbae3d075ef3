package services

import (
	"context"
	"fmt"
	"sync"

	"jobportal_backend/internal/email"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services/dto"
)

// NotificationService сообщает владельцам сущностей о смене статуса.
// Отправка асинхронная и не влияет на результат операции.
type NotificationService interface {
	NotifyStatusChange(ctx context.Context, change dto.StatusChange)
	// Wait дожидается отправки уже запущенных писем
	Wait()
}

type notificationService struct {
	provider email.Provider
	wg       sync.WaitGroup
}

func NewNotificationService(provider email.Provider) NotificationService {
	return &notificationService{provider: provider}
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, change dto.StatusChange) {
	recipient, name, subject, ok := describeRecipient(change.Entity)
	if !ok || recipient == "" {
		return
	}

	data := email.TemplateData{
		"Name":    name,
		"Subject": subject,
		"Status":  change.To,
		"Reason":  change.Reason,
	}

	// запрос может завершиться раньше отправки
	sendCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.provider.SendTemplate([]string{recipient}, "Изменение статуса", email.StatusChangedTemplate, data)
		if err != nil {
			logger.CtxWithError(sendCtx, "failed to send status notification", err,
				"kind", change.Kind,
				"entity_id", change.Entity.GetID(),
			)
			return
		}
		logger.CtxDebug(sendCtx, "status notification sent", "kind", change.Kind, "entity_id", change.Entity.GetID())
	}()
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

// describeRecipient: адрес, имя и предмет письма для видов, у которых есть владелец
func describeRecipient(entity models.Entity) (to, name, subject string, ok bool) {
	switch e := entity.(type) {
	case *models.User:
		return e.Email, e.FullName(), "вашего аккаунта", true
	case *models.Company:
		return e.ContactEmail, e.Name, fmt.Sprintf("компании «%s»", e.Name), true
	case *models.Application:
		return e.ApplicantEmail, "", "вашего отклика", true
	default:
		return "", "", "", false
	}
}
