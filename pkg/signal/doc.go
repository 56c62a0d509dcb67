// Package signal turns report text back into typed records.
//
// Reports are semi-structured markdown written by earlier stages or by
// external tooling. Every parser here is total: malformed or absent fields
// become zero values or nil pointers, never errors. Pattern matching on
// report text is confined to this package.
package signal
