// Package internal holds code generation primitives shared by the engine.
// Nothing in here is part of the public API.
package internal
