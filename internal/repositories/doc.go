// Package repositories implements SQLite persistence for the client.
//
// [LocalStorage] is a string key/value table that backs the session record. It satisfies
// session.Storage and additionally lists keys with their write times for the storage command.
package repositories
