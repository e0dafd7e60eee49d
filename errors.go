package flow

import "errors"

// Editing errors. They are recovered at the call site: the operation is
// rejected and the graph is left unchanged.
var (
	ErrUnknownType       = errors.New("flow: unknown node type")
	ErrForbidden         = errors.New("flow: node is not deletable")
	ErrPortOccupied      = errors.New("flow: port already has an outgoing edge")
	ErrInvalidConnection = errors.New("flow: invalid connection")
	ErrNodeNotFound      = errors.New("flow: node not found")
	ErrPathNotFound      = errors.New("flow: path not found")
	ErrNotBranch         = errors.New("flow: node is not a conditional branch")
	ErrInvalidPatch      = errors.New("flow: invalid payload patch")
	ErrInvalidPath       = errors.New("flow: invalid path")
)

// Persistence and session errors.
var (
	ErrNotFound       = errors.New("flow: no saved flow")
	ErrNetwork        = errors.New("flow: network error")
	ErrInvalidGraph   = errors.New("flow: graph is not valid")
	ErrSaveInProgress = errors.New("flow: save already in progress")
	ErrLoadInProgress = errors.New("flow: load in progress")
	ErrStaleLoad      = errors.New("flow: load discarded, graph changed while loading")
)
