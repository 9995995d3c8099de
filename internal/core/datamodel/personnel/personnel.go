package personnel

import "time"

type Personnel struct {
	ID                 int64      `gorm:"primaryKey"`
	Code               string     `gorm:"column:code;uniqueIndex;not null"`
	IDDocument         string     `gorm:"column:id_document;uniqueIndex;not null"`
	IssuedIn           string     `gorm:"column:issued_in;not null;default:LP"`
	FirstNames         string     `gorm:"column:first_names;not null"`
	PaternalSurname    string     `gorm:"column:paternal_surname;not null"`
	MaternalSurname    string     `gorm:"column:maternal_surname"`
	BirthDate          *time.Time `gorm:"column:birth_date"`
	Gender             string     `gorm:"column:gender"`
	RankID             *int64     `gorm:"column:rank_id"`
	UnitID             *int64     `gorm:"column:unit_id"`
	StatusID           *int64     `gorm:"column:status_id"`
	HireDate           *time.Time `gorm:"column:hire_date"`
	Phone              string     `gorm:"column:phone"`
	EmergencyPhone     string     `gorm:"column:emergency_phone"`
	InstitutionalEmail string     `gorm:"column:institutional_email"`
	IsActive           bool       `gorm:"column:is_active;not null"`
	CreatedBy          *int64     `gorm:"column:created_by"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Personnel) TableName() string {
	return "personnel"
}
