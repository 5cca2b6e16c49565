package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table         string
	ID            string
	Subject       string
	Chapter       string
	Class         string
	Unit          string
	Status        string
	IsWeakChapter string
	CreatedAt     string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:         "core.chapter",
	ID:            "id",
	Subject:       "subject",
	Chapter:       "chapter",
	Class:         "class",
	Unit:          "unit",
	Status:        "status",
	IsWeakChapter: "isweakchapter",
	CreatedAt:     "createdat",
}

// Columns returns all standard column names in scan order
func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.Subject, t.Chapter, t.Class, t.Unit,
		t.Status, t.IsWeakChapter, t.CreatedAt,
	}
}
