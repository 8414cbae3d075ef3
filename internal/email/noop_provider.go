package email

import "sync"

// NoopProvider используется для тестов и локальной разработки: письма только запоминаются
type NoopProvider struct {
	mu       sync.Mutex
	renderer TemplateRenderer
	sent     []Email
}

func NewNoopProvider(renderer TemplateRenderer) *NoopProvider {
	return &NoopProvider{renderer: renderer}
}

func (p *NoopProvider) Send(email *Email) error {
	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()
	return nil
}

func (p *NoopProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	body := ""
	if p.renderer != nil {
		rendered, err := p.renderer.Render(templateName, data)
		if err != nil {
			return err
		}
		body = rendered
	}
	return p.Send(&Email{To: to, Subject: subject, HTMLBody: body})
}

func (p *NoopProvider) Validate() error { return nil }
func (p *NoopProvider) Close() error    { return nil }

// Sent возвращает копию отправленных писем
func (p *NoopProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}
