package domain

// Capability is the result of probing the server once at session start.
type Capability struct {
	// Size is the declared content length in bytes, or -1 when the server
	// did not report one.
	Size int64

	// AcceptsRanges is true when the probe's range request came back as
	// partial content, meaning the file can be split across workers.
	AcceptsRanges bool
}

func (c Capability) SizeKnown() bool {
	return c.Size >= 0
}
