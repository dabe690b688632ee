// Package service wires protocol transport to domain handlers.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or streamable HTTP and delegates tool meaning to package domain.
package service
