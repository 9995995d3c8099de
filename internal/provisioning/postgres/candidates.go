package postgres

import (
	"context"

	"github.com/frahmantamala/personnel-records/internal/provisioning"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

type candidateRow struct {
	ID                 int64  `gorm:"column:id"`
	IDDocument         string `gorm:"column:id_document"`
	FirstNames         string `gorm:"column:first_names"`
	PaternalSurname    string `gorm:"column:paternal_surname"`
	MaternalSurname    string `gorm:"column:maternal_surname"`
	Phone              string `gorm:"column:phone"`
	InstitutionalEmail string `gorm:"column:institutional_email"`
}

// Eligible lists personnel with an institutional email and no linked account.
func (r *CandidateRepository) Eligible(ctx context.Context) ([]provisioning.Candidate, error) {
	var rows []candidateRow
	err := r.db.WithContext(ctx).
		Table("personnel").
		Select("personnel.id, personnel.id_document, personnel.first_names, personnel.paternal_surname, personnel.maternal_surname, personnel.phone, personnel.institutional_email").
		Joins("LEFT JOIN accounts ON accounts.personnel_id = personnel.id").
		Where("accounts.id IS NULL").
		Where("COALESCE(personnel.institutional_email, '') <> ''").
		Order("personnel.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row candidateRow, _ int) provisioning.Candidate {
		last := row.PaternalSurname
		if row.MaternalSurname != "" {
			last += " " + row.MaternalSurname
		}
		return provisioning.Candidate{
			PersonnelID:        row.ID,
			IDDocument:         row.IDDocument,
			FirstNames:         row.FirstNames,
			LastNames:          last,
			Phone:              row.Phone,
			InstitutionalEmail: row.InstitutionalEmail,
		}
	}), nil
}
