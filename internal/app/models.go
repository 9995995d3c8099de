package app

import (
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/commendation"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
	personnelDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/personnel"
	sysconfigDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/sysconfig"
	"github.com/frahmantamala/personnel-records/internal/kardex"
	"github.com/frahmantamala/personnel-records/internal/leave"
	"github.com/frahmantamala/personnel-records/internal/sanction"
)

// Models lists every persisted type. Tests build their schema from it;
// deployed databases use the SQL migrations.
func Models() []interface{} {
	return []interface{}{
		&catalog.Rank{},
		&catalog.Unit{},
		&catalog.StatusType{},
		&catalog.SanctionType{},
		&catalog.CommendationType{},
		&personnelDatamodel.Personnel{},
		&accountDatamodel.Account{},
		&sysconfigDatamodel.SystemConfig{},
		&kardex.Entry{},
		&leave.Request{},
		&sanction.Record{},
		&commendation.Record{},
	}
}
