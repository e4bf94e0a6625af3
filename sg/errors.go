package sg

import "errors"

var (
	ErrDuplicateName    = errors.New("sg: name already present under this node")
	ErrUnknownType      = errors.New("sg: unknown node type tag")
	ErrUnknownSubtype   = errors.New("sg: unknown node subtype")
	ErrShapeMismatch    = errors.New("sg: buffer shape does not match its semantic role")
	ErrNotFound         = errors.New("sg: no child with this name")
	ErrTypeMismatch     = errors.New("sg: value type does not match the declared parameter type")
	ErrIncompleteScene  = errors.New("sg: scene is missing required nodes")
	ErrUnknownLightKind = errors.New("sg: unknown light kind")
	ErrFrameActive      = errors.New("sg: session already has an active frame")
	ErrMissingValue     = errors.New("sg: value-typed node requires an initial value")
)
