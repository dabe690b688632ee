// Package gamedata talks to the data sources that describe Tribal Wars
// worlds: the twhelp directory API (servers, worlds, indexed entity search)
// and the plaintext map snapshots each world host publishes.
//
// It performs no caching and no retries; each call is one upstream request.
package gamedata
