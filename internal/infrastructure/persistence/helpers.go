package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain errors for the named entity
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.ErrNotFound.Code, entity+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, entity+" already exists")
	default:
		return fmt.Errorf("%s query failed: %w", entity, err)
	}
}

// replaceChildren deletes the parent's child rows whose ids are not in keep
func replaceChildren(tx *gorm.DB, model any, fk string, parentID uuid.UUID, keep []uuid.UUID) error {
	q := tx.Where(fk+" = ?", parentID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(model).Error
}

// paginate applies offset and limit when the filter asks for a page
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likeEscaper escapes LIKE wildcards so search text matches literally.
// Queries using it must declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\';
// works on both postgres and sqlite
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// isPostgres reports whether the connection uses the postgres dialect
func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// nextSequenceValue allocates from a postgres sequence, or MAX+1 on other dialects
func nextSequenceValue(db *gorm.DB, sequence, table string) (int64, error) {
	var next int64
	if isPostgres(db) {
		err := db.Raw("SELECT nextval(?::regclass)", sequence).Scan(&next).Error
		return next, err
	}
	err := db.Raw("SELECT COALESCE(MAX(display_id), 0) + 1 FROM " + table).Scan(&next).Error
	return next, err
}
