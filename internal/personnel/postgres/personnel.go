package postgres

import (
	"context"
	"errors"
	"strings"

	personnelDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/personnel"
	"github.com/frahmantamala/personnel-records/internal/personnel"
	"gorm.io/gorm"
)

type PersonnelRepository struct {
	db *gorm.DB
}

func NewPersonnelRepository(db *gorm.DB) personnel.RepositoryAPI {
	return &PersonnelRepository{db: db}
}

// personnelRow is a personnel row joined with its catalog names and the
// linked account.
type personnelRow struct {
	personnelDatamodel.Personnel `gorm:"embedded"`
	AccountID                    *int64  `gorm:"column:account_id"`
	RankName                     *string `gorm:"column:rank_name"`
	UnitName                     *string `gorm:"column:unit_name"`
	StatusName                   *string `gorm:"column:status_name"`
}

func (r *PersonnelRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("personnel").
		Select("personnel.*, accounts.id AS account_id, ranks.name AS rank_name, units.name AS unit_name, status_types.name AS status_name").
		Joins("LEFT JOIN ranks ON ranks.id = personnel.rank_id").
		Joins("LEFT JOIN units ON units.id = personnel.unit_id").
		Joins("LEFT JOIN status_types ON status_types.id = personnel.status_id").
		Joins("LEFT JOIN accounts ON accounts.personnel_id = personnel.id")
}

// List orders by rank precedence then paternal surname. Personnel without a
// rank sort last.
func (r *PersonnelRepository) List(ctx context.Context, filter personnel.Filter) ([]*personnel.Personnel, error) {
	query := r.joined(ctx)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(personnel.code) LIKE ? OR LOWER(personnel.id_document) LIKE ? OR LOWER(personnel.first_names) LIKE ? OR LOWER(personnel.paternal_surname) LIKE ? OR LOWER(personnel.maternal_surname) LIKE ?",
			like, like, like, like, like)
	}
	if filter.UnitID != nil {
		query = query.Where("personnel.unit_id = ?", *filter.UnitID)
	}
	if filter.StatusID != nil {
		query = query.Where("personnel.status_id = ?", *filter.StatusID)
	}
	if filter.Active != nil {
		query = query.Where("personnel.is_active = ?", *filter.Active)
	}

	var rows []personnelRow
	err := query.
		Order("COALESCE(ranks.sort_order, 2147483647) ASC").
		Order("personnel.paternal_surname ASC").
		Order("personnel.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*personnel.Personnel, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i]))
	}
	return out, nil
}

func (r *PersonnelRepository) GetByID(ctx context.Context, id int64) (*personnel.Personnel, error) {
	var rows []personnelRow
	err := r.joined(ctx).Where("personnel.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, personnel.ErrPersonnelNotFound
	}
	return fromRow(&rows[0]), nil
}

func (r *PersonnelRepository) Create(ctx context.Context, p *personnel.Personnel) error {
	dm := toDataModel(p)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return translate(err)
	}
	p.ID = dm.ID
	p.CreatedAt = dm.CreatedAt
	p.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *PersonnelRepository) Update(ctx context.Context, p *personnel.Personnel) error {
	dm := toDataModel(p)
	result := r.db.WithContext(ctx).
		Model(&personnelDatamodel.Personnel{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_by", "created_at").
		Updates(dm)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return personnel.ErrPersonnelNotFound
	}
	return nil
}

func (r *PersonnelRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&personnelDatamodel.Personnel{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return personnel.ErrPersonnelNotFound
	}
	return nil
}

func (r *PersonnelRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	return r.exists(ctx, "code", code, excludeID)
}

func (r *PersonnelRepository) ExistsByIDDocument(ctx context.Context, idDocument string, excludeID int64) (bool, error) {
	return r.exists(ctx, "id_document", idDocument, excludeID)
}

func (r *PersonnelRepository) exists(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&personnelDatamodel.Personnel{}).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error
	return count > 0, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return personnel.ErrDuplicatePersonnel
	}
	return err
}

func toDataModel(p *personnel.Personnel) *personnelDatamodel.Personnel {
	return &personnelDatamodel.Personnel{
		ID:                 p.ID,
		Code:               p.Code,
		IDDocument:         p.IDDocument,
		IssuedIn:           p.IssuedIn,
		FirstNames:         p.FirstNames,
		PaternalSurname:    p.PaternalSurname,
		MaternalSurname:    p.MaternalSurname,
		BirthDate:          p.BirthDate,
		Gender:             p.Gender,
		RankID:             p.RankID,
		UnitID:             p.UnitID,
		StatusID:           p.StatusID,
		HireDate:           p.HireDate,
		Phone:              p.Phone,
		EmergencyPhone:     p.EmergencyPhone,
		InstitutionalEmail: p.InstitutionalEmail,
		IsActive:           p.IsActive,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func fromRow(row *personnelRow) *personnel.Personnel {
	dm := row.Personnel
	return &personnel.Personnel{
		ID:                 dm.ID,
		Code:               dm.Code,
		IDDocument:         dm.IDDocument,
		IssuedIn:           dm.IssuedIn,
		FirstNames:         dm.FirstNames,
		PaternalSurname:    dm.PaternalSurname,
		MaternalSurname:    dm.MaternalSurname,
		BirthDate:          dm.BirthDate,
		Gender:             dm.Gender,
		RankID:             dm.RankID,
		RankName:           deref(row.RankName),
		UnitID:             dm.UnitID,
		UnitName:           deref(row.UnitName),
		StatusID:           dm.StatusID,
		StatusName:         deref(row.StatusName),
		HireDate:           dm.HireDate,
		Phone:              dm.Phone,
		EmergencyPhone:     dm.EmergencyPhone,
		InstitutionalEmail: dm.InstitutionalEmail,
		AccountID:          row.AccountID,
		IsActive:           dm.IsActive,
		CreatedBy:          dm.CreatedBy,
		CreatedAt:          dm.CreatedAt,
		UpdatedAt:          dm.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
