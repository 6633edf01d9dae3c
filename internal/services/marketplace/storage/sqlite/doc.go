// Package sqlite provides SQLite-backed marketplace persistence.
//
// It is the default on-disk store shared by provisioning writes, directory
// reads, and the ledger aggregation core.
package sqlite
