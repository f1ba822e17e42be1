package drill

import (
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/types"
)

func reportWith(records ...model.ProgressRecord) types.ProgressReport {
	return types.ProgressReport{Records: records}
}
