package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const StatusChangedTemplate = "status_changed"

const statusChangedHTML = `<p>Здравствуйте{{if .Name}}, {{.Name}}{{end}}!</p>
<p>Статус {{.Subject}} изменен на <strong>{{.Status}}</strong>.</p>
{{if .Reason}}<p>Причина: {{.Reason}}</p>{{end}}
<p>Это письмо отправлено автоматически.</p>`

// TemplateManager хранит разобранные html-шаблоны
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

// NewDefaultTemplateManager регистрирует встроенные шаблоны
func NewDefaultTemplateManager() *TemplateManager {
	tm := NewTemplateManager()
	if err := tm.AddTemplate(StatusChangedTemplate, statusChangedHTML); err != nil {
		panic(err)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
