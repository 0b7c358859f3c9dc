// Package gallery archives finished renders in a SQLite database.
//
// Each render is stored with its parameters and its encoded image, gzip
// compressed. The archive is a single file and can be copied or shared as is.
package gallery

import (
	"strconv"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Metadata describes the archive as a whole.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Generator   string
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Generator != "" {
		result["generator"] = m.Generator
	}

	return result
}

func metadataFromMap(m map[string]string) Metadata {
	return Metadata{
		Name:        m["name"],
		Description: m["description"],
		Version:     m["version"],
		Generator:   m["generator"],
	}
}

// Entry is one archived render. Data holds the encoded image and is only
// populated by Reader.Read.
type Entry struct {
	ID         string
	Preset     string
	Format     string
	Width      int
	Height     int
	Iterations int
	Plotted    uint64
	Seed       uint64
	// Params is the preset serialized as a flame file.
	Params    string
	CreatedAt time.Time
	Data      []byte
}

// Filename returns a stable file name for exporting the entry.
func (e Entry) Filename() string {
	short := e.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return e.Preset + "_" + short + "." + e.Format
}

func (e Entry) String() string {
	return e.ID + " " + e.Preset + " " + strconv.Itoa(e.Width) + "x" + strconv.Itoa(e.Height)
}
