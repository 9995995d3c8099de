package catalog

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
)

// Entry is implemented by every catalog row type.
type Entry interface {
	Validate() *internal.AppError
}

// Kind describes one catalog table.
type Kind struct {
	Entity string
	Path   string
	Table  string
	Order  string
}

var (
	KindRank             = Kind{Entity: "rank", Path: "ranks", Table: "ranks", Order: "sort_order ASC, name ASC"}
	KindUnit             = Kind{Entity: "unit", Path: "units", Table: "units", Order: "name ASC"}
	KindStatusType       = Kind{Entity: "status type", Path: "statuses", Table: "status_types", Order: "name ASC"}
	KindSanctionType     = Kind{Entity: "sanction type", Path: "sanction-types", Table: "sanction_types", Order: "name ASC"}
	KindCommendationType = Kind{Entity: "commendation type", Path: "commendation-types", Table: "commendation_types", Order: "name ASC"}
)

type Rank struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Abbreviation string    `json:"abbreviation" gorm:"column:abbreviation;not null"`
	SortOrder    int       `json:"sort_order" gorm:"column:sort_order;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Rank) TableName() string { return KindRank.Table }

func (r Rank) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", r.Name).Required().MaxLength(100)
	v.Field("abbreviation", r.Abbreviation).Required().MaxLength(20)
	v.Field("sort_order", r.SortOrder).IntRange(0, 1000)
	return v.Validate()
}

type Unit struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"column:name;not null"`
	Description string    `json:"description" gorm:"column:description"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Unit) TableName() string { return KindUnit.Table }

func (u Unit) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("code", u.Code).Required().MaxLength(20)
	v.Field("name", u.Name).Required().MaxLength(200)
	return v.Validate()
}

const DefaultStatusColor = "#007bff"

type StatusType struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Color     string    `json:"color" gorm:"column:color;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (StatusType) TableName() string { return KindStatusType.Table }

func (s StatusType) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", s.Name).Required().MaxLength(50)
	v.Field("color", s.Color).HexColor()
	return v.Validate()
}

const (
	SeverityMinor    = "leve"
	SeveritySerious  = "grave"
	SeverityCritical = "muy_grave"
)

type SanctionType struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Severity  string    `json:"severity" gorm:"column:severity;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (SanctionType) TableName() string { return KindSanctionType.Table }

func (s SanctionType) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", s.Name).Required().MaxLength(100)
	v.Field("severity", s.Severity).Required().OneOf(SeverityMinor, SeveritySerious, SeverityCritical)
	return v.Validate()
}

type CommendationType struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"column:description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (CommendationType) TableName() string { return KindCommendationType.Table }

func (c CommendationType) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", c.Name).Required().MaxLength(100)
	return v.Validate()
}

// normalize fills defaults a client may omit.
func normalize[T Entry](entry *T) {
	switch e := any(entry).(type) {
	case *StatusType:
		if e.Color == "" {
			e.Color = DefaultStatusColor
		}
	}
}
