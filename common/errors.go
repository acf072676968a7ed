package common

import "errors"

// Error categories shared by the engine packages. Concrete errors wrap one of these so callers can
// classify them with errors.Is.
var (
	// ErrSetup marks failures that occur while building the engine (initial shader compilation,
	// device creation, invalid configuration). These are the only errors allowed to abort the process.
	ErrSetup = errors.New("setup failure")

	// ErrCompile marks a recoverable shader compilation failure, including I/O failures while
	// reading a shader for reload. The previous artifact stays in use.
	ErrCompile = errors.New("shader compile failure")

	// ErrProgramming marks API misuse such as a post-process pass without an input texture or an
	// unknown mesh handle. The offending operation is skipped for the frame.
	ErrProgramming = errors.New("programming error")
)
