package emit

// Transport is the output surface the Emitter writes a response into.
//
// A Transport holds per-response mutable state (header list, status, buffer
// layers) and must be owned by one emission at a time. Use a separate
// Transport per connection.
type Transport interface {
	BufferLayers

	// HeadersAlreadyCommitted reports whether output already left through
	// some path other than the Emitter. file and line locate the write when
	// known.
	HeadersAlreadyCommitted() (committed bool, file string, line int)

	WriteHeaderLine(line string, replace bool, statusHint int) error
	WriteStatusLine(line string, replace bool, statusHint int) error

	// WriteBodyBytes may be called many times; bytes keep their order.
	WriteBodyBytes(p []byte) error

	FinalizeConnection() error
}
