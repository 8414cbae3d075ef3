package models

import (
	"fmt"
	"sort"
)

type UserStatus string
type UserRole string
type JobStatus string
type CompanyStatus string
type ApplicationStatus string
type CommentStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"

	UserRoleAdmin     UserRole = "admin"
	UserRoleEmployer  UserRole = "employer"
	UserRoleHR        UserRole = "hr"
	UserRoleCandidate UserRole = "candidate"

	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
	JobStatusClosed    JobStatus = "closed"
	JobStatusExpired   JobStatus = "expired"

	CompanyStatusActive              CompanyStatus = "active"
	CompanyStatusInactive            CompanyStatus = "inactive"
	CompanyStatusSuspended           CompanyStatus = "suspended"
	CompanyStatusPendingVerification CompanyStatus = "pending_verification"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewing   ApplicationStatus = "reviewing"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusInterviewed ApplicationStatus = "interviewed"
	ApplicationStatusOffered     ApplicationStatus = "offered"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"

	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

var statusSets = map[EntityKind][]string{
	KindUser: {
		string(UserStatusActive), string(UserStatusInactive), string(UserStatusBanned),
	},
	KindJob: {
		string(JobStatusDraft), string(JobStatusPublished), string(JobStatusClosed), string(JobStatusExpired),
	},
	KindCompany: {
		string(CompanyStatusActive), string(CompanyStatusInactive),
		string(CompanyStatusSuspended), string(CompanyStatusPendingVerification),
	},
	KindApplication: {
		string(ApplicationStatusPending), string(ApplicationStatusReviewing),
		string(ApplicationStatusShortlisted), string(ApplicationStatusInterviewed),
		string(ApplicationStatusOffered), string(ApplicationStatusHired),
		string(ApplicationStatusRejected), string(ApplicationStatusWithdrawn),
	},
	KindBlogComment: {
		string(CommentStatusPending), string(CommentStatusApproved), string(CommentStatusRejected),
	},
}

var userRoles = []string{
	string(UserRoleAdmin), string(UserRoleEmployer), string(UserRoleHR), string(UserRoleCandidate),
}

// InvalidStatusError - статус не входит в набор вида
type InvalidStatusError struct {
	Kind   EntityKind
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q for %s", e.Status, e.Kind)
}

// StatusesFor возвращает копию набора статусов вида, nil для немодерируемых
func StatusesFor(kind EntityKind) []string {
	set, ok := statusSets[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// ValidateStatus проверяет только принадлежность набору, порядок переходов не проверяется
func ValidateStatus(kind EntityKind, status string) (string, error) {
	for _, s := range statusSets[kind] {
		if s == status {
			return s, nil
		}
	}
	return "", &InvalidStatusError{Kind: kind, Status: status}
}

func IsValidRole(role string) bool {
	for _, r := range userRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ModerableKinds - виды со статусом, отсортированы по имени
func ModerableKinds() []EntityKind {
	kinds := make([]EntityKind, 0, len(statusSets))
	for k := range statusSets {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
