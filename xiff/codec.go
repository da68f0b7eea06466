package xiff

// ChunkReader pulls chunks from a stream until it reports false.
type ChunkReader interface {
	Next() (chunk Chunk, ok bool)
}

// ChunkWriter pushes one chunk per call as a self-contained frame.
type ChunkWriter interface {
	Encode(chunk Chunk) error
}
