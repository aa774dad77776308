// Package gamelink is a client for the Gunchete game backend. It talks to
// the server over two channels: a stateless REST channel for request/response
// operations (see package client) and a persistent realtime socket for
// multiplayer matches, chat, parties, and presence (see package socket).
//
// Both channels are built on adapter interfaces so that transports are
// interchangeable: any type implementing client.Adapter or socket.Adapter can
// move the bytes. The realtime socket is pump-driven: inbound messages and
// connection transitions only become observable through Tick, which makes the
// same engine usable from a dedicated pumping goroutine or from a
// single-threaded cooperative scheduler.
//
// This package holds the error taxonomy shared by both channels.
package gamelink
