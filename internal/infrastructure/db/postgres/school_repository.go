package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// model is a gorm row that maps back to a domain entity.
type model[T any] interface {
	TableName() string
	toDomain() *T
}

type modelPtr[M any, T any] interface {
	*M
	model[T]
}

// dependent is a child table whose column references the entity's id.
type dependent struct {
	table  string
	column string
}

// tableMeta lists the columns a table exposes to listing and deletion.
type tableMeta struct {
	filterable map[string]bool
	search     []string
	order      string
	dependents []dependent
}

// EntityRepository implements ports.Repository[T] for one table.
type EntityRepository[T any, M any, PM modelPtr[M, T]] struct {
	db    *gorm.DB
	toRow func(*T) *M
	meta  tableMeta
}

func NewInstitutionRepository(db *gorm.DB) *EntityRepository[domain.Institution, institutionModel, *institutionModel] {
	return &EntityRepository[domain.Institution, institutionModel, *institutionModel]{
		db:    db,
		toRow: toInstitutionModel,
		meta: tableMeta{
			search:     []string{"name", "address"},
			order:      "name ASC, id ASC",
			dependents: []dependent{{table: "courses", column: "institution_id"}},
		},
	}
}

func NewCourseRepository(db *gorm.DB) *EntityRepository[domain.Course, courseModel, *courseModel] {
	return &EntityRepository[domain.Course, courseModel, *courseModel]{
		db:    db,
		toRow: toCourseModel,
		meta: tableMeta{
			filterable: map[string]bool{"institution_id": true, "level": true},
			search:     []string{"name"},
			order:      "year DESC, name ASC, id ASC",
			dependents: []dependent{{table: "students", column: "course_id"}},
		},
	}
}

func NewStudentRepository(db *gorm.DB) *EntityRepository[domain.Student, studentModel, *studentModel] {
	return &EntityRepository[domain.Student, studentModel, *studentModel]{
		db:    db,
		toRow: toStudentModel,
		meta: tableMeta{
			filterable: map[string]bool{"course_id": true},
			search:     []string{"first_name", "last_name", "document_id"},
			order:      "last_name ASC, first_name ASC, id ASC",
			dependents: []dependent{{table: "grades", column: "student_id"}},
		},
	}
}

func NewSubjectRepository(db *gorm.DB) *EntityRepository[domain.Subject, subjectModel, *subjectModel] {
	return &EntityRepository[domain.Subject, subjectModel, *subjectModel]{
		db:    db,
		toRow: toSubjectModel,
		meta: tableMeta{
			search:     []string{"name"},
			order:      "name ASC, id ASC",
			dependents: []dependent{{table: "grades", column: "subject_id"}},
		},
	}
}

func NewGradeRepository(db *gorm.DB) *EntityRepository[domain.Grade, gradeModel, *gradeModel] {
	return &EntityRepository[domain.Grade, gradeModel, *gradeModel]{
		db:    db,
		toRow: toGradeModel,
		meta: tableMeta{
			filterable: map[string]bool{"student_id": true, "subject_id": true, "period": true},
			search:     []string{"notes"},
			order:      "created_at DESC, id ASC",
		},
	}
}

func (r *EntityRepository[T, M, PM]) Create(ctx context.Context, entity *T) error {
	row := r.toRow(entity)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return writeError("create "+r.table(), err)
	}
	return nil
}

func (r *EntityRepository[T, M, PM]) Get(ctx context.Context, id string) (*T, error) {
	var row M
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageError("get "+r.table(), err)
	}
	return PM(&row).toDomain(), nil
}

// Update writes every column except id and created_at.
func (r *EntityRepository[T, M, PM]) Update(ctx context.Context, entity *T) error {
	row := r.toRow(entity)
	res := r.db.WithContext(ctx).
		Model(row).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(row)
	if res.Error != nil {
		return writeError("update "+r.table(), res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete refuses to remove a row that child tables still reference.
func (r *EntityRepository[T, M, PM]) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range r.meta.dependents {
			var n int64
			if err := tx.Table(d.table).Where(d.column+" = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrHasDependents
			}
		}

		res := tx.Delete(new(M), "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrHasDependents), errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrHasDependents
	case errors.Is(err, domain.ErrNotFound):
		return err
	default:
		return storageError("delete "+r.table(), err)
	}
}

func (r *EntityRepository[T, M, PM]) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, storageError("exists "+r.table(), err)
	}
	return n > 0, nil
}

// List returns a page of rows matching filter and the total match count.
func (r *EntityRepository[T, M, PM]) List(ctx context.Context, filter ports.ListFilter) ([]*T, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(new(M)).Scopes(r.filtered(filter)).Count(&total).Error; err != nil {
		return nil, 0, storageError("count "+r.table(), err)
	}

	var rows []M
	err := db.Scopes(r.filtered(filter)).
		Order(r.meta.order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, storageError("list "+r.table(), err)
	}

	out := make([]*T, 0, len(rows))
	for i := range rows {
		out = append(out, PM(&rows[i]).toDomain())
	}
	return out, total, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// filtered applies only the filter columns registered for the table; unknown
// keys are ignored.
func (r *EntityRepository[T, M, PM]) filtered(filter ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		for col, val := range filter.Equals {
			if val == "" || !r.meta.filterable[col] {
				continue
			}
			q = q.Where(col+" = ?", val)
		}
		if s := strings.TrimSpace(filter.Search); s != "" && len(r.meta.search) > 0 {
			like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
			conds := make([]string, 0, len(r.meta.search))
			args := make([]any, 0, len(r.meta.search))
			for _, col := range r.meta.search {
				conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
				args = append(args, like)
			}
			q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		return q
	}
}

func (r *EntityRepository[T, M, PM]) table() string {
	var row M
	return PM(&row).TableName()
}

// writeError maps constraint violations raised by inserts and updates.
func writeError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NewValidationError("reference", "does not reference an existing record")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.NewValidationError("value", "violates a table constraint")
	}
	return storageError(op, err)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
