package personnel

import (
	"strings"
	"time"

	"github.com/frahmantamala/personnel-records/internal/core/events"
)

const (
	GenderMale      = "M"
	GenderFemale    = "F"
	DefaultIssuedIn = "LP"
)

// Personnel is a member of the institution. RankName, UnitName, StatusName
// and AccountID are resolved on read and ignored on write.
type Personnel struct {
	ID                 int64      `json:"id"`
	Code               string     `json:"code"`
	IDDocument         string     `json:"id_document"`
	IssuedIn           string     `json:"issued_in"`
	FirstNames         string     `json:"first_names"`
	PaternalSurname    string     `json:"paternal_surname"`
	MaternalSurname    string     `json:"maternal_surname,omitempty"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	Gender             string     `json:"gender,omitempty"`
	RankID             *int64     `json:"rank_id,omitempty"`
	RankName           string     `json:"rank_name,omitempty"`
	UnitID             *int64     `json:"unit_id,omitempty"`
	UnitName           string     `json:"unit_name,omitempty"`
	StatusID           *int64     `json:"status_id,omitempty"`
	StatusName         string     `json:"status_name,omitempty"`
	HireDate           *time.Time `json:"hire_date,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	EmergencyPhone     string     `json:"emergency_phone,omitempty"`
	InstitutionalEmail string     `json:"institutional_email,omitempty"`
	AccountID          *int64     `json:"account_id,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedBy          *int64     `json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (p *Personnel) LastNames() string {
	return strings.TrimSpace(p.PaternalSurname + " " + p.MaternalSurname)
}

func (p *Personnel) FullName() string {
	return strings.TrimSpace(p.FirstNames + " " + p.LastNames())
}

func (p *Personnel) Placement() events.Placement {
	return events.Placement{RankID: p.RankID, UnitID: p.UnitID, StatusID: p.StatusID}
}

// Apply copies the writable fields of input onto p. A nil IsActive keeps
// the current value.
func (p *Personnel) Apply(input PersonnelInput) {
	p.Code = strings.TrimSpace(input.Code)
	p.IDDocument = strings.TrimSpace(input.IDDocument)
	p.IssuedIn = input.IssuedIn
	if p.IssuedIn == "" {
		p.IssuedIn = DefaultIssuedIn
	}
	p.FirstNames = strings.TrimSpace(input.FirstNames)
	p.PaternalSurname = strings.TrimSpace(input.PaternalSurname)
	p.MaternalSurname = strings.TrimSpace(input.MaternalSurname)
	p.BirthDate = input.BirthDate
	p.Gender = input.Gender
	p.RankID = input.RankID
	p.UnitID = input.UnitID
	p.StatusID = input.StatusID
	p.HireDate = input.HireDate
	p.Phone = input.Phone
	p.EmergencyPhone = input.EmergencyPhone
	p.InstitutionalEmail = strings.TrimSpace(input.InstitutionalEmail)
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}

type Filter struct {
	Search   string
	UnitID   *int64
	StatusID *int64
	Active   *bool
}
