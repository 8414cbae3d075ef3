package models

import "strings"

type EntityKind string

const (
	KindUser        EntityKind = "user"
	KindJob         EntityKind = "job"
	KindCompany     EntityKind = "company"
	KindApplication EntityKind = "application"
	KindBlogComment EntityKind = "blog_comment"
	KindSkill       EntityKind = "skill"
	KindJobCategory EntityKind = "job_category"
)

type DeletePolicy int

const (
	SoftDelete DeletePolicy = iota
	HardDelete
)

var allKinds = []EntityKind{
	KindUser, KindJob, KindCompany, KindApplication, KindBlogComment, KindSkill, KindJobCategory,
}

var kindAliases = map[string]EntityKind{
	"user":          KindUser,
	"users":         KindUser,
	"job":           KindJob,
	"jobs":          KindJob,
	"company":       KindCompany,
	"companies":     KindCompany,
	"application":   KindApplication,
	"applications":  KindApplication,
	"blog_comment":  KindBlogComment,
	"blogcomment":   KindBlogComment,
	"blog/comments": KindBlogComment,
	"comment":       KindBlogComment,
	"comments":      KindBlogComment,
	"skill":         KindSkill,
	"skills":        KindSkill,
	"job_category":  KindJobCategory,
	"jobcategory":   KindJobCategory,
	"category":      KindJobCategory,
	"categories":    KindJobCategory,
}

// AllKinds возвращает все виды сущностей в фиксированном порядке
func AllKinds() []EntityKind {
	out := make([]EntityKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseEntityKind принимает имя вида, множественное число или сегмент маршрута
func ParseEntityKind(s string) (EntityKind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))]
	return kind, ok
}

// RoutePath - сегмент пути под /admin
func (k EntityKind) RoutePath() string {
	switch k {
	case KindUser:
		return "users"
	case KindJob:
		return "jobs"
	case KindCompany:
		return "companies"
	case KindApplication:
		return "applications"
	case KindBlogComment:
		return "blog/comments"
	case KindSkill:
		return "skills"
	case KindJobCategory:
		return "categories"
	}
	return string(k)
}

// IsModerable - есть ли у вида статус
func (k EntityKind) IsModerable() bool {
	_, ok := statusSets[k]
	return ok
}

// DeletePolicy: пользователи, отклики и комментарии удаляются мягко, остальное физически
func (k EntityKind) DeletePolicy() DeletePolicy {
	switch k {
	case KindUser, KindApplication, KindBlogComment:
		return SoftDelete
	default:
		return HardDelete
	}
}

func (k EntityKind) String() string { return string(k) }

func (p DeletePolicy) String() string {
	if p == SoftDelete {
		return "soft"
	}
	return "hard"
}
