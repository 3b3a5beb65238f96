package models

import "time"

// Operation is one recorded run of a pngme command against a file.
type Operation struct {
	ID         uint32    `db:"id" json:"id"`
	Op         string    `db:"op" json:"op"`
	FilePath   string    `db:"file_path" json:"file_path"`
	ChunkType  string    `db:"chunk_type" json:"chunk_type"`
	DataLength uint32    `db:"data_length" json:"data_length"`
	CRC        uint32    `db:"crc" json:"crc"`
	Sealed     bool      `db:"sealed" json:"sealed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
