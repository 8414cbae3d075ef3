package repositories

import (
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

// EntityRepository - единственная точка ввода-вывода для сущностей админки
type EntityRepository interface {
	FindPage(db *gorm.DB, kind models.EntityKind, criteria EntityCriteria) ([]models.Entity, int64, error)
	FindByID(db *gorm.DB, kind models.EntityKind, id string) (models.Entity, error)
	// UpdateStatus возвращает обновленную сущность и предыдущий статус.
	// Если статус уже равен целевому, запись не меняется.
	UpdateStatus(db *gorm.DB, kind models.EntityKind, id, status, reason string) (models.Entity, string, error)
	SoftDelete(db *gorm.DB, kind models.EntityKind, id string) error
	HardDelete(db *gorm.DB, kind models.EntityKind, id string) error
	Create(db *gorm.DB, kind models.EntityKind, entity models.Entity) error
	Exists(db *gorm.DB, kind models.EntityKind, column, value string) (bool, error)
	CountByStatus(db *gorm.DB, kind models.EntityKind) (int64, map[string]int64, error)
}

type EntityRepositoryImpl struct{}

func NewEntityRepository() EntityRepository {
	return &EntityRepositoryImpl{}
}

type kindSpec struct {
	table         string
	newModel      func() models.Entity
	findMany      func(tx *gorm.DB) ([]models.Entity, error)
	findOne       func(tx *gorm.DB, id string) (models.Entity, error)
	searchColumns []string
	filterColumns map[string]string
	uniqueColumns []string
	softDelete    bool
}

func specFor[T any, PT interface {
	*T
	models.Entity
}](table string, softDelete bool) kindSpec {
	return kindSpec{
		table:      table,
		softDelete: softDelete,
		newModel:   func() models.Entity { return PT(new(T)) },
		findMany: func(tx *gorm.DB) ([]models.Entity, error) {
			var rows []T
			if err := tx.Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]models.Entity, len(rows))
			for i := range rows {
				out[i] = PT(&rows[i])
			}
			return out, nil
		},
		findOne: func(tx *gorm.DB, id string) (models.Entity, error) {
			row := PT(new(T))
			if err := tx.Where(table+".id = ?", id).First(row).Error; err != nil {
				return nil, err
			}
			return row, nil
		},
	}
}

var kindSpecs = buildKindSpecs()

func buildKindSpecs() map[models.EntityKind]kindSpec {
	users := specFor[models.User]("users", true)
	users.searchColumns = []string{"users.email", "users.first_name", "users.last_name"}
	users.filterColumns = map[string]string{"role": "users.role"}
	users.uniqueColumns = []string{"email"}

	jobs := specFor[models.Job]("jobs", false)
	jobs.searchColumns = []string{"jobs.title"}
	jobs.filterColumns = map[string]string{"company": "jobs.company_id"}

	companies := specFor[models.Company]("companies", false)
	companies.searchColumns = []string{"companies.name", "companies.contact_email"}

	applications := specFor[models.Application]("applications", true)
	applications.searchColumns = []string{"applications.applicant_email"}
	applications.filterColumns = map[string]string{
		"jobId":  "applications.job_id",
		"userId": "applications.user_id",
	}

	comments := specFor[models.BlogComment]("blog_comments", true)
	comments.searchColumns = []string{"blog_comments.author_name", "blog_comments.author_email", "blog_comments.content"}
	comments.filterColumns = map[string]string{"blogId": "blog_comments.blog_id"}

	skills := specFor[models.Skill]("skills", false)
	skills.searchColumns = []string{"skills.name"}
	skills.uniqueColumns = []string{"name"}

	categories := specFor[models.JobCategory]("job_categories", false)
	categories.searchColumns = []string{"job_categories.name", "job_categories.slug"}
	categories.uniqueColumns = []string{"name", "slug"}

	return map[models.EntityKind]kindSpec{
		models.KindUser:        users,
		models.KindJob:         jobs,
		models.KindCompany:     companies,
		models.KindApplication: applications,
		models.KindBlogComment: comments,
		models.KindSkill:       skills,
		models.KindJobCategory: categories,
	}
}

func specOf(kind models.EntityKind) (kindSpec, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return kindSpec{}, ErrUnsupportedOperation
	}
	return spec, nil
}

// FindPage: сначала count, затем страница в порядке created_at DESC, id DESC
func (r *EntityRepositoryImpl) FindPage(db *gorm.DB, kind models.EntityKind, criteria EntityCriteria) ([]models.Entity, int64, error) {
	spec, err := specOf(kind)
	if err != nil {
		return nil, 0, err
	}

	countQuery, err := applyCriteria(db.Model(spec.newModel()), spec, criteria)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}
	if total == 0 || int64(criteria.Offset) >= total {
		return []models.Entity{}, total, nil
	}

	findQuery, _ := applyCriteria(db.Model(spec.newModel()), spec, criteria)
	findQuery = findQuery.
		Order(spec.table + ".created_at DESC").
		Order(spec.table + ".id DESC").
		Offset(criteria.Offset)
	if criteria.Limit > 0 {
		findQuery = findQuery.Limit(criteria.Limit)
	}

	rows, err := spec.findMany(findQuery)
	if err != nil {
		return nil, 0, classifyError(err)
	}
	return rows, total, nil
}

func (r *EntityRepositoryImpl) FindByID(db *gorm.DB, kind models.EntityKind, id string) (models.Entity, error) {
	spec, err := specOf(kind)
	if err != nil {
		return nil, err
	}
	entity, err := spec.findOne(db, id)
	if err != nil {
		return nil, classifyError(err)
	}
	return entity, nil
}

func (r *EntityRepositoryImpl) UpdateStatus(db *gorm.DB, kind models.EntityKind, id, status, reason string) (models.Entity, string, error) {
	spec, err := specOf(kind)
	if err != nil {
		return nil, "", err
	}
	if !kind.IsModerable() {
		return nil, "", ErrUnsupportedOperation
	}

	var (
		updated  models.Entity
		previous string
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		current, err := spec.findOne(tx, id)
		if err != nil {
			return err
		}
		previous = current.(models.Moderable).GetStatus()
		if previous == status {
			updated = current
			return nil
		}

		result := tx.Model(spec.newModel()).
			Where(spec.table+".id = ?", id).
			Updates(map[string]interface{}{
				"status":        status,
				"status_reason": reason,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEntityNotFound
		}

		updated, err = spec.findOne(tx, id)
		return err
	})
	if err != nil {
		return nil, "", classifyError(err)
	}
	return updated, previous, nil
}

// SoftDelete проставляет deleted_at; повторное удаление дает ErrEntityNotFound
func (r *EntityRepositoryImpl) SoftDelete(db *gorm.DB, kind models.EntityKind, id string) error {
	spec, err := specOf(kind)
	if err != nil {
		return err
	}
	if !spec.softDelete {
		return ErrUnsupportedOperation
	}
	return deleteRow(db, spec, id)
}

func (r *EntityRepositoryImpl) HardDelete(db *gorm.DB, kind models.EntityKind, id string) error {
	spec, err := specOf(kind)
	if err != nil {
		return err
	}
	return deleteRow(db.Unscoped(), spec, id)
}

func deleteRow(db *gorm.DB, spec kindSpec, id string) error {
	result := db.Where(spec.table+".id = ?", id).Delete(spec.newModel())
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

func (r *EntityRepositoryImpl) Create(db *gorm.DB, kind models.EntityKind, entity models.Entity) error {
	if _, err := specOf(kind); err != nil {
		return err
	}
	return classifyError(db.Create(entity).Error)
}

// Exists проверяет занятость уникального поля, включая мягко удаленные записи
func (r *EntityRepositoryImpl) Exists(db *gorm.DB, kind models.EntityKind, column, value string) (bool, error) {
	spec, err := specOf(kind)
	if err != nil {
		return false, err
	}
	allowed := false
	for _, c := range spec.uniqueColumns {
		if c == column {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, ErrUnsupportedFilter
	}

	var count int64
	err = db.Unscoped().Model(spec.newModel()).
		Where(spec.table+"."+column+" = ?", value).
		Count(&count).Error
	if err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

type statusCount struct {
	Status string
	Count  int64
}

// CountByStatus для немодерируемых видов возвращает только total
func (r *EntityRepositoryImpl) CountByStatus(db *gorm.DB, kind models.EntityKind) (int64, map[string]int64, error) {
	spec, err := specOf(kind)
	if err != nil {
		return 0, nil, err
	}

	if !kind.IsModerable() {
		var total int64
		if err := db.Model(spec.newModel()).Count(&total).Error; err != nil {
			return 0, nil, classifyError(err)
		}
		return total, nil, nil
	}

	var rows []statusCount
	err = db.Model(spec.newModel()).
		Select(spec.table + ".status AS status, COUNT(*) AS count").
		Group(spec.table + ".status").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, classifyError(err)
	}

	byStatus := make(map[string]int64, len(rows))
	var total int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}
	return total, byStatus, nil
}
