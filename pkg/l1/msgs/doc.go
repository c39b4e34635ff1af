// Package msgs defines the wire protocol between a car and its drivers
// (joystick daemon, shell, monitors) and all message schemas.
//
// Every message travels in a Typed envelope. The type ID carries the
// kind (command or event), the group and whether a command is a reply.
package msgs
