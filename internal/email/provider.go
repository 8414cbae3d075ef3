package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет готовое сообщение
	Send(email *Email) error

	// SendTemplate рендерит шаблон и отправляет его получателям
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	// Validate проверяет конфигурацию провайдера
	Validate() error

	Close() error
}

// TemplateRenderer рендерит шаблоны писем по имени
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
