// Package domain defines the MCP tools exposed by the bridge: their schemas,
// inputs, results and handlers. Transport concerns live in package service.
package domain
