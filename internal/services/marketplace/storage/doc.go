// Package storage defines persistence contracts for marketplace records.
//
// These interfaces exist so provisioning and ledger logic can depend on stable
// domain semantics without coupling to SQLite schema details. Each write
// method is an independent remote call with its own durability boundary;
// provisioning deliberately does not get a cross-record transaction here.
package storage
