// Package ksql understands just enough of the ksqlDB statement dialect to
// drive deployments: normalizing statements for transmission, classifying
// them by action/object kind/name, and parsing pipeline scripts into
// individual statements with their directives.
//
// This is deliberately not a SQL parser. Classification exists so callers can
// decide logging verbosity and dialect variants (e.g. swapping TABLE/STREAM
// on a DROP retry); anything the tokenizer does not recognize classifies as
// ActionOther and is passed to the server untouched.
package ksql
