package bureau

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is the record set produced by one upload. A new upload replaces it
// whole.
type Dataset struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  []Record  `json:"-"`
}

// NewDataset parses rows (header first) into a fresh Dataset.
func NewDataset(fileName string, rows [][]string) *Dataset {
	return &Dataset{
		ID:       uuid.NewString(),
		FileName: fileName,
		LoadedAt: time.Now().UTC(),
		Records:  FromRows(rows),
	}
}

// Len is the number of loaded records, zero for a nil Dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// View evaluates st over the dataset. A nil Dataset yields the empty view.
func (d *Dataset) View(st FilterState) View {
	if d == nil {
		return BuildView(nil, st)
	}
	return BuildView(d.Records, st)
}
