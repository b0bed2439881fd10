package sidecar

import "peek-and-poke/sidecar/internal/wire"

// EntityRef aliases the wire-level entity reference so hosts can describe
// entities without importing the protocol package.
type EntityRef = wire.EntityRef
