package specification

import "gorm.io/gorm"

// ByRelativePath filters chunks belonging to one source document
type ByRelativePath struct {
	Path string
}

func (s ByRelativePath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("relative_path = ?", s.Path)
}

// InChunkOrder sorts by document then position inside it
type InChunkOrder struct{}

func (s InChunkOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("relative_path ASC").Order("chunk_index ASC")
}
