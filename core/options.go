package core

// DevMode puts application in to dev mode
var DevMode = false

// ShowDebugMessages allows for log.Debug to print to console.
var ShowDebugMessages = false

// ProtectedMode forces the server to default in protected mode.
var ProtectedMode = "no"

// IndexEdges is the minimum number of ring edges before a segmenter ring is
// indexed. Zero means use the segment package default.
var IndexEdges int
