// Package model defines the device capability and command types shared
// across the data plane library.
//
// A Capability describes what the embedding application's hardware can do:
// either a list of sensor specs or a list of actuator specs, plus the
// identity-adjacent metadata (name, description, firmware/hardware versions)
// reported on the info endpoint. The capability is supplied once before the
// service starts and is read-only afterward, except for the fields
// synchronized from an accepted configuration (name, type, read interval).
//
// A Command is the transient representation of a control-plane command
// request. Commands are constructed per inbound request and never persisted.
package model
